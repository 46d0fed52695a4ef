package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/helpers"
)

// GroupService manages groups
type GroupService struct {
	groupRepo repositories.GroupRepository
	userRepo  repositories.UserRepository
	logger    zerolog.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repositories.GroupRepository, userRepo repositories.UserRepository, logger zerolog.Logger) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// List returns every group with its catechist
func (s *GroupService) List(ctx context.Context) ([]*models.Group, error) {
	return s.groupRepo.List(ctx)
}

// ListCatechists returns the users that can lead a group
func (s *GroupService) ListCatechists(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListByRole(ctx, models.RoleCatechist)
}

// Create creates a group. The optional catechist must hold the catechist role.
func (s *GroupService) Create(ctx context.Context, form dto.GroupForm) (*models.Group, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return nil, apperrors.NewValidationError(dto.MsgNameRequired)
	}

	catechistID, err := helpers.ParseOptionalID(form.CatechistID)
	if err != nil {
		return nil, apperrors.NewCustomError(err, dto.MsgInvalidID)
	}

	if catechistID != nil {
		user, err := s.userRepo.GetByID(ctx, *catechistID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return nil, apperrors.NewCustomError(apperrors.ErrCatechistNotFound, dto.MsgCatechistNotFound)
			}
			return nil, err
		}
		if user.Role != models.RoleCatechist {
			return nil, apperrors.NewCustomError(apperrors.ErrCatechistNotFound, dto.MsgCatechistNotFound)
		}
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(form.Description),
		CatechistID: catechistID,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	s.logger.Info().Str("groupID", group.ID.String()).Msg("Group created")
	return group, nil
}
