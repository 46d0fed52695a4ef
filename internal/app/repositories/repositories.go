package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
)

// UserRepository defines the storage operations on user accounts
type UserRepository interface {
	// Create inserts a new user. A duplicate username yields apperrors.ErrUsernameTaken.
	Create(ctx context.Context, user *models.User) error
	// Upsert creates the user or overwrites the account with the same username.
	// It reports whether a new account was created.
	Upsert(ctx context.Context, user *models.User) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
}

// StudentRepository defines the storage operations on students
type StudentRepository interface {
	// Create inserts a new student. A duplicate national id yields apperrors.ErrNationalIDTaken.
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	GetByNationalID(ctx context.Context, nationalID string) (*models.Student, error)
	NationalIDExists(ctx context.Context, nationalID string) (bool, error)
	Update(ctx context.Context, student *models.Student) error
	// List returns the students admitted by filter, each joined with its group when present.
	List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error)
	// DeleteWithLinkedUsers removes the student and every user linked to it as one unit.
	// It returns the number of users removed.
	DeleteWithLinkedUsers(ctx context.Context, id uuid.UUID) (int64, error)
}

// GroupRepository defines the storage operations on groups
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	// List returns every group joined with its catechist when present.
	List(ctx context.Context) ([]*models.Group, error)
	ListIDsByCatechist(ctx context.Context, catechistID uuid.UUID) ([]uuid.UUID, error)
}

// Store is the storage backend behind the repositories
type Store interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Users    UserRepository
	Students StudentRepository
	Groups   GroupRepository
	Store    Store
}
