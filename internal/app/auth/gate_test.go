package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

func identity(role models.Role) *models.Identity {
	return &models.Identity{UserID: uuid.New(), Username: string(role), Role: role, SessionID: "s"}
}

func TestAuthorizeUnauthenticated(t *testing.T) {
	for _, req := range []Requirement{AnyRole(), OnlyRole(models.RoleAdmin), OnlyRole(models.RoleStudent)} {
		d := Authorize(nil, req)
		assert.False(t, d.Allowed, req.String())
		assert.Equal(t, ReasonAuthenticationRequired, d.Reason)
		assert.Equal(t, LoginPath, d.Redirect)
		assert.ErrorIs(t, d.Err(), apperrors.ErrAuthenticationRequired)
	}
}

func TestAuthorizeAdminPassesEveryRequirement(t *testing.T) {
	admin := identity(models.RoleAdmin)
	for _, req := range []Requirement{AnyRole(), OnlyRole(models.RoleAdmin), OnlyRole(models.RoleCatechist), OnlyRole(models.RoleStudent)} {
		d := Authorize(admin, req)
		assert.True(t, d.Allowed, req.String())
		assert.NoError(t, d.Err())
	}
}

func TestAuthorizeExactRoleMatch(t *testing.T) {
	tests := []struct {
		role    models.Role
		req     Requirement
		allowed bool
	}{
		{models.RoleCatechist, AnyRole(), true},
		{models.RoleStudent, AnyRole(), true},
		{models.RoleCatechist, OnlyRole(models.RoleCatechist), true},
		{models.RoleStudent, OnlyRole(models.RoleStudent), true},
		{models.RoleCatechist, OnlyRole(models.RoleAdmin), false},
		{models.RoleStudent, OnlyRole(models.RoleAdmin), false},
		{models.RoleStudent, OnlyRole(models.RoleCatechist), false},
		{models.RoleCatechist, OnlyRole(models.RoleStudent), false},
	}

	for _, tt := range tests {
		d := Authorize(identity(tt.role), tt.req)
		assert.Equal(t, tt.allowed, d.Allowed, "%s on %s", tt.role, tt.req)
		if !tt.allowed {
			assert.Equal(t, ReasonPermissionDenied, d.Reason)
			assert.Equal(t, HomePath, d.Redirect)
			assert.ErrorIs(t, d.Err(), apperrors.ErrPermissionDenied)
		}
	}
}

func TestAuthorizeUnknownRoleDenied(t *testing.T) {
	d := Authorize(identity(models.Role("invitado")), OnlyRole(models.RoleCatechist))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonPermissionDenied, d.Reason)
}
