package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

type userRepository struct {
	db *DB
}

// NewUserRepository creates an in-memory user repository
func NewUserRepository(db *DB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) findByUsername(username string) *models.User {
	for _, u := range r.db.users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	if err := r.db.check(); err != nil {
		return err
	}

	if r.findByUsername(user.Username) != nil {
		return apperrors.ErrUsernameTaken
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.db.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	if err := r.db.check(); err != nil {
		return false, err
	}

	if existing := r.findByUsername(user.Username); existing != nil {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		r.db.users[user.ID] = cloneUser(user)
		return false, nil
	}

	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	r.db.users[user.ID] = cloneUser(user)
	return true, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	if u, ok := r.db.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	if u := r.findByUsername(username); u != nil {
		return cloneUser(u), nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return false, err
	}
	return r.findByUsername(username) != nil, nil
}

func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	users := make([]*models.User, 0)
	for _, u := range r.db.users {
		if u.Role == role {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].DisplayName() < users[j].DisplayName() })
	return users, nil
}
