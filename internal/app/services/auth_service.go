package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/auth"
)

// AuthService handles login, registration and account maintenance
type AuthService struct {
	userRepo    repositories.UserRepository
	studentRepo repositories.StudentRepository
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repositories.UserRepository, studentRepo repositories.StudentRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		studentRepo: studentRepo,
		logger:      logger,
	}
}

// Login verifies credentials. Unknown usernames and wrong passwords yield the same
// error so callers cannot tell them apart.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			auth.BurnPasswordCheck(password)
			s.logger.Info().Str("username", username).Msg("Login failed: unknown username")
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, dto.MsgInvalidCredentials)
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Error fetching user during login")
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Info().Str("username", username).Msg("Login failed: wrong password")
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidCredentials, dto.MsgInvalidCredentials)
	}

	s.logger.Info().Str("userID", user.ID.String()).Str("role", user.Role.String()).Msg("User logged in")
	return user, nil
}

// RegisterUser creates an account. A student account naming a national id is linked to that
// student; when no student matches, the account is still created and the result carries a warning.
func (s *AuthService) RegisterUser(ctx context.Context, form dto.RegisterUserForm) (*dto.RegistrationResult, error) {
	role := models.Role(form.Role)
	if !role.Valid() {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidRole, dto.MsgInvalidRole)
	}

	if strings.TrimSpace(form.Username) == "" || strings.TrimSpace(form.FullName) == "" {
		return nil, apperrors.NewValidationError(dto.MsgNameRequired)
	}

	// Fast path; the storage constraint stays authoritative under concurrent registrations
	exists, err := s.userRepo.UsernameExists(ctx, form.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewCustomError(apperrors.ErrUsernameTaken, fmt.Sprintf(dto.MsgUsernameTaken, form.Username))
	}

	hash, err := s.hashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     form.Username,
		PasswordHash: hash,
		Role:         role,
		FullName:     strings.TrimSpace(form.FullName),
	}

	result := &dto.RegistrationResult{}
	linked, warning, err := s.resolveLink(ctx, role, form.NationalID)
	if err != nil {
		return nil, err
	}
	user.LinkedStudentID = linked
	result.Linked = linked != nil
	result.Warning = warning

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrUsernameTaken) {
			return nil, apperrors.NewCustomError(apperrors.ErrUsernameTaken, fmt.Sprintf(dto.MsgUsernameTaken, form.Username))
		}
		return nil, err
	}

	result.UserID = user.ID.String()
	s.logger.Info().Str("userID", result.UserID).Str("role", role.String()).Bool("linked", result.Linked).Msg("User registered")
	return result, nil
}

// UpsertUserInput describes an account maintained outside the registration form
type UpsertUserInput struct {
	Username   string
	Password   string
	Role       models.Role
	FullName   string
	NationalID string
}

// UpsertUser creates the account or overwrites the one holding the same username.
// It reports whether the account was created and any link warning.
func (s *AuthService) UpsertUser(ctx context.Context, in UpsertUserInput) (bool, string, error) {
	if !in.Role.Valid() {
		return false, "", apperrors.NewCustomError(apperrors.ErrInvalidRole, dto.MsgInvalidRole)
	}
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return false, "", apperrors.NewValidationError("username and password are required")
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return false, "", err
	}

	linked, warning, err := s.resolveLink(ctx, in.Role, in.NationalID)
	if err != nil {
		return false, "", err
	}

	user := &models.User{
		Username:        in.Username,
		PasswordHash:    hash,
		Role:            in.Role,
		FullName:        in.FullName,
		LinkedStudentID: linked,
	}
	created, err := s.userRepo.Upsert(ctx, user)
	if err != nil {
		return false, "", err
	}

	s.logger.Info().Str("username", in.Username).Bool("created", created).Msg("User upserted")
	return created, warning, nil
}

// hashPassword hashes password, reporting passwords bcrypt cannot take as validation errors
func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, apperrors.ErrPasswordTooLong) {
			return "", apperrors.NewCustomError(err, dto.MsgPasswordTooLong)
		}
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// resolveLink finds the student a new student account is linked to
func (s *AuthService) resolveLink(ctx context.Context, role models.Role, nationalID string) (*uuid.UUID, string, error) {
	nationalID = strings.TrimSpace(nationalID)
	if role != models.RoleStudent || nationalID == "" {
		return nil, "", nil
	}

	student, err := s.studentRepo.GetByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			s.logger.Warn().Str("nationalID", nationalID).Msg("No student to link, account created unlinked")
			return nil, fmt.Sprintf(dto.MsgLinkTargetAbsent, nationalID), nil
		}
		return nil, "", err
	}
	id := student.ID
	return &id, "", nil
}
