package services

import (
	"github.com/rs/zerolog"

	"github.com/yigit/catequesis/internal/app/auth"
	"github.com/yigit/catequesis/internal/app/repositories"
)

// Services bundles the business services of the application
type Services struct {
	Auth          *AuthService
	Students      *StudentService
	Groups        *GroupService
	Authorization *auth.AuthorizationService
}

// NewServices wires every service on top of repos
func NewServices(repos *repositories.Repositories, logger zerolog.Logger) *Services {
	authz := auth.NewAuthorizationService(repos.Users, repos.Groups)
	return &Services{
		Auth:          NewAuthService(repos.Users, repos.Students, logger),
		Students:      NewStudentService(repos.Students, repos.Groups, authz, logger),
		Groups:        NewGroupService(repos.Groups, repos.Users, logger),
		Authorization: authz,
	}
}
