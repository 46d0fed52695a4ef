package auth

import (
	"context"
	"errors"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

// AuthorizationService resolves what an authenticated caller may see
type AuthorizationService struct {
	userRepo  repositories.UserRepository
	groupRepo repositories.GroupRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.UserRepository, groupRepo repositories.GroupRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
	}
}

// StudentFilter returns the visibility filter applied to the student listing of identity
func (s *AuthorizationService) StudentFilter(ctx context.Context, identity *models.Identity) (models.StudentFilter, error) {
	none := models.StudentFilter{Scope: models.ScopeNone}
	if identity == nil {
		return none, nil
	}

	switch identity.Role {
	case models.RoleAdmin:
		return models.StudentFilter{Scope: models.ScopeAll}, nil

	case models.RoleCatechist:
		groupIDs, err := s.groupRepo.ListIDsByCatechist(ctx, identity.UserID)
		if err != nil {
			logger.Error().Err(err).Str("userID", identity.UserID.String()).Msg("Error listing groups of catechist")
			return none, err
		}
		if len(groupIDs) == 0 {
			return none, nil
		}
		return models.StudentFilter{Scope: models.ScopeGroups, GroupIDs: groupIDs}, nil

	case models.RoleStudent:
		// The link lives on the stored account, not in the session
		user, err := s.userRepo.GetByID(ctx, identity.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				logger.Warn().Str("userID", identity.UserID.String()).Msg("Session refers to a user that no longer exists")
				return none, nil
			}
			return none, err
		}
		if user.LinkedStudentID == nil {
			return none, nil
		}
		return models.StudentFilter{Scope: models.ScopeStudent, StudentID: *user.LinkedStudentID}, nil
	}

	return none, nil
}
