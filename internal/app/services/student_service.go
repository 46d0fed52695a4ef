package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/catequesis/internal/app/auth"
	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/models/dto"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/helpers"
)

// StudentService manages students
type StudentService struct {
	studentRepo repositories.StudentRepository
	groupRepo   repositories.GroupRepository
	authz       *auth.AuthorizationService
	logger      zerolog.Logger
	now         func() time.Time
}

// NewStudentService creates a new StudentService
func NewStudentService(studentRepo repositories.StudentRepository, groupRepo repositories.GroupRepository, authz *auth.AuthorizationService, logger zerolog.Logger) *StudentService {
	return &StudentService{
		studentRepo: studentRepo,
		groupRepo:   groupRepo,
		authz:       authz,
		logger:      logger,
		now:         time.Now,
	}
}

// ListVisible returns the students identity is allowed to see
func (s *StudentService) ListVisible(ctx context.Context, identity *models.Identity) ([]*models.Student, error) {
	filter, err := s.authz.StudentFilter(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.studentRepo.List(ctx, filter)
}

// Get retrieves a student by ID
func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, studentError(err, "")
	}
	return student, nil
}

// Create enrolls a new student
func (s *StudentService) Create(ctx context.Context, form dto.StudentForm) (*models.Student, error) {
	student := &models.Student{
		Status:         models.StudentStatusActive,
		EnrollmentDate: s.now().UTC(),
		Familiars:      []models.Familiar{},
		Sacraments:     []models.Sacrament{},
		Evaluations:    []models.Evaluation{},
		Attendances:    []models.Attendance{},
		Certificates:   []models.Certificate{},
	}
	if err := s.apply(ctx, student, form); err != nil {
		return nil, err
	}

	exists, err := s.studentRepo.NationalIDExists(ctx, student.PersonalData.NationalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, studentError(apperrors.ErrNationalIDTaken, student.PersonalData.NationalID)
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, studentError(err, student.PersonalData.NationalID)
	}

	s.logger.Info().Str("studentID", student.ID.String()).Msg("Student enrolled")
	return student, nil
}

// Update overwrites personal data, status and group of an existing student
func (s *StudentService) Update(ctx context.Context, id uuid.UUID, form dto.StudentForm) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, studentError(err, "")
	}

	if err := s.apply(ctx, student, form); err != nil {
		return nil, err
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, studentError(err, student.PersonalData.NationalID)
	}

	s.logger.Info().Str("studentID", id.String()).Msg("Student updated")
	return student, nil
}

// Delete removes a student together with every account linked to it
func (s *StudentService) Delete(ctx context.Context, id uuid.UUID) error {
	removed, err := s.studentRepo.DeleteWithLinkedUsers(ctx, id)
	if err != nil {
		return studentError(err, "")
	}

	s.logger.Info().Str("studentID", id.String()).Int64("removedUsers", removed).Msg("Student deleted")
	return nil
}

// apply copies form values onto student, resolving the optional group
func (s *StudentService) apply(ctx context.Context, student *models.Student, form dto.StudentForm) error {
	birthDate, err := helpers.ParseDate(form.BirthDate)
	if err != nil {
		return apperrors.NewCustomError(err, dto.MsgInvalidDate)
	}

	groupID, err := helpers.ParseOptionalID(form.GroupID)
	if err != nil {
		return apperrors.NewCustomError(err, dto.MsgInvalidID)
	}
	if groupID != nil {
		if _, err := s.groupRepo.GetByID(ctx, *groupID); err != nil {
			if errors.Is(err, apperrors.ErrGroupNotFound) {
				return apperrors.NewCustomError(err, dto.MsgGroupNotFound)
			}
			return err
		}
	}

	firstName, lastName := strings.TrimSpace(form.FirstName), strings.TrimSpace(form.LastName)
	if firstName == "" || lastName == "" {
		return apperrors.NewValidationError(dto.MsgNameRequired)
	}

	student.PersonalData = models.PersonalData{
		FirstName:  firstName,
		LastName:   lastName,
		NationalID: strings.TrimSpace(form.NationalID),
		BirthDate:  birthDate,
		Gender:     strings.TrimSpace(form.Gender),
	}
	if status := strings.TrimSpace(form.Status); status != "" {
		student.Status = status
	}
	student.GroupID = groupID
	student.Group = nil
	return nil
}

// studentError attaches the user-facing notice to known student errors
func studentError(err error, nationalID string) error {
	switch {
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return apperrors.NewCustomError(err, dto.MsgStudentNotFound)
	case errors.Is(err, apperrors.ErrNationalIDTaken):
		return apperrors.NewCustomError(err, fmt.Sprintf(dto.MsgNationalIDTaken, nationalID))
	default:
		return err
	}
}
