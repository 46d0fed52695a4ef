package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/db"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/dberrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

const usernameConstraint = "users_username_key"

var userColumns = []string{"id", "username", "password_hash", "role", "full_name", "linked_student_id", "created_at"}

// UserRepository handles user database operations
type UserRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{
		db: database,
		sb: newBuilder(),
	}
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var user models.User
	var role string
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &role, &user.FullName, &user.LinkedStudentID, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	sql, args, err := r.sb.Insert("users").
		Columns(userColumns...).
		Values(user.ID, user.Username, user.PasswordHash, string(user.Role), user.FullName, user.LinkedStudentID, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, usernameConstraint) {
			logger.Warn().Str("username", user.Username).Msg("Attempted to create user with duplicate username")
			return apperrors.ErrUsernameTaken
		}
		logger.Error().Err(err).Str("username", user.Username).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// Upsert creates the user or overwrites the account holding the same username
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	sql, args, err := r.sb.Insert("users").
		Columns(userColumns...).
		Values(uuid.New(), user.Username, user.PasswordHash, string(user.Role), user.FullName, user.LinkedStudentID, time.Now().UTC()).
		Suffix(`ON CONFLICT ON CONSTRAINT ` + usernameConstraint + ` DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			role = EXCLUDED.role,
			full_name = EXCLUDED.full_name,
			linked_student_id = EXCLUDED.linked_student_id
			RETURNING id, created_at, (xmax = 0) AS inserted`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build upsert user query: %w", err)
	}

	var inserted bool
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &inserted); err != nil {
		logger.Error().Err(err).Str("username", user.Username).Msg("Error executing upsert user query")
		return false, fmt.Errorf("error upserting user: %w", err)
	}
	return inserted, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": idArg(id)})
}

// GetByUsername retrieves a user by exact username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

// UsernameExists checks if a username is already registered
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking username existence: %w", err)
	}
	return exists, nil
}

// ListByRole lists every user holding role
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"role": string(role)}).
		OrderBy("full_name", "username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
