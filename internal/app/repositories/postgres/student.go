package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/db"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/dberrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

const nationalIDConstraint = "students_national_id_key"

var studentColumns = []string{
	"s.id", "s.first_name", "s.last_name", "s.national_id", "s.birth_date", "s.gender",
	"s.status", "s.enrollment_date", "s.group_id",
	"s.familiars", "s.sacraments", "s.evaluations", "s.attendances", "s.certificates",
	"g.name",
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ repositories.StudentRepository = (*StudentRepository)(nil)

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		db: database,
		sb: newBuilder(),
	}
}

// nonNil keeps JSONB columns as "[]" rather than SQL NULL
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func scanStudent(row interface{ Scan(dest ...any) error }) (*models.Student, error) {
	var s models.Student
	var groupName *string
	err := row.Scan(
		&s.ID, &s.PersonalData.FirstName, &s.PersonalData.LastName, &s.PersonalData.NationalID,
		&s.PersonalData.BirthDate, &s.PersonalData.Gender, &s.Status, &s.EnrollmentDate, &s.GroupID,
		&s.Familiars, &s.Sacraments, &s.Evaluations, &s.Attendances, &s.Certificates,
		&groupName,
	)
	if err != nil {
		return nil, err
	}
	if s.GroupID != nil && groupName != nil {
		s.Group = &models.GroupSummary{ID: *s.GroupID, Name: *groupName}
	}
	return &s, nil
}

// selectStudents joins each student with its group; students without a group are kept
func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).
		From("students s").
		LeftJoin("catechism_groups g ON g.id = s.group_id")
}

// Create creates a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}

	p := student.PersonalData
	sql, args, err := r.sb.Insert("students").
		Columns("id", "first_name", "last_name", "national_id", "birth_date", "gender", "status",
			"enrollment_date", "group_id", "familiars", "sacraments", "evaluations", "attendances", "certificates").
		Values(student.ID, p.FirstName, p.LastName, p.NationalID, p.BirthDate, p.Gender, student.Status,
			student.EnrollmentDate, student.GroupID,
			nonNil(student.Familiars), nonNil(student.Sacraments), nonNil(student.Evaluations),
			nonNil(student.Attendances), nonNil(student.Certificates)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, nationalIDConstraint) {
			logger.Warn().Str("nationalID", p.NationalID).Msg("Attempted to create student with duplicate national id")
			return apperrors.ErrNationalIDTaken
		}
		logger.Error().Err(err).Str("nationalID", p.NationalID).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	logger.Info().Str("studentID", student.ID.String()).Msg("Student created successfully")
	return nil
}

func (r *StudentRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := r.selectStudents().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"s.id": idArg(id)})
}

// GetByNationalID retrieves a student by national id
func (r *StudentRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Student, error) {
	return r.getOne(ctx, squirrel.Eq{"s.national_id": nationalID})
}

// NationalIDExists checks if a national id is already registered
func (r *StudentRepository) NationalIDExists(ctx context.Context, nationalID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE national_id = $1)`, nationalID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking national id existence: %w", err)
	}
	return exists, nil
}

// Update updates personal data, status, group and history of an existing student
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	p := student.PersonalData
	sql, args, err := r.sb.Update("students").
		Set("first_name", p.FirstName).
		Set("last_name", p.LastName).
		Set("national_id", p.NationalID).
		Set("birth_date", p.BirthDate).
		Set("gender", p.Gender).
		Set("status", student.Status).
		Set("group_id", student.GroupID).
		Set("familiars", nonNil(student.Familiars)).
		Set("sacraments", nonNil(student.Sacraments)).
		Set("evaluations", nonNil(student.Evaluations)).
		Set("attendances", nonNil(student.Attendances)).
		Set("certificates", nonNil(student.Certificates)).
		Where(squirrel.Eq{"id": idArg(student.ID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, nationalIDConstraint) {
			return apperrors.ErrNationalIDTaken
		}
		logger.Error().Err(err).Str("studentID", student.ID.String()).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// List retrieves the students admitted by filter
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	query := r.selectStudents().OrderBy("s.last_name", "s.first_name")

	switch filter.Scope {
	case models.ScopeAll:
	case models.ScopeGroups:
		if len(filter.GroupIDs) == 0 {
			return []*models.Student{}, nil
		}
		query = query.Where(squirrel.Eq{"s.group_id": idArgs(filter.GroupIDs)})
	case models.ScopeStudent:
		query = query.Where(squirrel.Eq{"s.id": idArg(filter.StudentID)})
	default:
		return []*models.Student{}, nil
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return students, nil
}

// DeleteWithLinkedUsers removes the student and its linked users in one transaction
func (r *StudentRepository) DeleteWithLinkedUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	var removed int64
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM students WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			if isNoRows(err) {
				return apperrors.ErrStudentNotFound
			}
			return fmt.Errorf("error locking student: %w", err)
		}

		tag, err := deleteWhere(ctx, tx, r.sb.Delete("users").Where(squirrel.Eq{"linked_student_id": idArg(id)}))
		if err != nil {
			return fmt.Errorf("error deleting linked users: %w", err)
		}
		removed = tag

		if _, err := deleteWhere(ctx, tx, r.sb.Delete("students").Where(squirrel.Eq{"id": idArg(id)})); err != nil {
			return fmt.Errorf("error deleting student: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info().Str("studentID", id.String()).Int64("removedUsers", removed).Msg("Student deleted with linked users")
	return removed, nil
}

func deleteWhere(ctx context.Context, q querier, builder squirrel.DeleteBuilder) (int64, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
