package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

type groupRepository struct {
	db *DB
}

// NewGroupRepository creates an in-memory group repository
func NewGroupRepository(db *DB) repositories.GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	if err := r.db.check(); err != nil {
		return err
	}

	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	r.db.groups[group.ID] = cloneGroup(group)
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	g, ok := r.db.groups[id]
	if !ok {
		return nil, apperrors.ErrGroupNotFound
	}
	return r.withCatechist(g), nil
}

func (r *groupRepository) List(ctx context.Context) ([]*models.Group, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	groups := make([]*models.Group, 0, len(r.db.groups))
	for _, g := range r.db.groups {
		groups = append(groups, r.withCatechist(g))
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (r *groupRepository) ListIDsByCatechist(ctx context.Context, catechistID uuid.UUID) ([]uuid.UUID, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0)
	for _, g := range r.db.groups {
		if g.CatechistID != nil && *g.CatechistID == catechistID {
			ids = append(ids, g.ID)
		}
	}
	return ids, nil
}

func (r *groupRepository) withCatechist(g *models.Group) *models.Group {
	c := cloneGroup(g)
	if g.CatechistID != nil {
		if u, ok := r.db.users[*g.CatechistID]; ok {
			c.Catechist = &models.UserSummary{ID: u.ID, Username: u.Username, FullName: u.FullName}
		}
	}
	return c
}
