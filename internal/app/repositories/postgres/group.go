package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/db"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

// GroupRepository handles group database operations
type GroupRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

var _ repositories.GroupRepository = (*GroupRepository)(nil)

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(database *db.PostgresDB) *GroupRepository {
	return &GroupRepository{
		db: database,
		sb: newBuilder(),
	}
}

// Create creates a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}

	sql, args, err := r.sb.Insert("catechism_groups").
		Columns("id", "name", "description", "catechist_id").
		Values(group.ID, group.Name, group.Description, group.CatechistID).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create group query: %w", err)
	}

	if _, err := r.db.Pool.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("name", group.Name).Msg("Error executing create group query")
		return fmt.Errorf("error creating group: %w", err)
	}
	return nil
}

// selectGroups joins each group with its catechist; a missing catechist yields NULL columns
func (r *GroupRepository) selectGroups() squirrel.SelectBuilder {
	return r.sb.Select("g.id", "g.name", "g.description", "g.catechist_id", "u.id", "u.username", "u.full_name").
		From("catechism_groups g").
		LeftJoin("users u ON u.id = g.catechist_id")
}

func scanGroup(row interface{ Scan(dest ...any) error }) (*models.Group, error) {
	var group models.Group
	var catechistID *uuid.UUID
	var username, fullName *string
	if err := row.Scan(&group.ID, &group.Name, &group.Description, &group.CatechistID, &catechistID, &username, &fullName); err != nil {
		return nil, err
	}
	if catechistID != nil {
		group.Catechist = &models.UserSummary{ID: *catechistID}
		if username != nil {
			group.Catechist.Username = *username
		}
		if fullName != nil {
			group.Catechist.FullName = *fullName
		}
	}
	return &group, nil
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	sql, args, err := r.selectGroups().Where(squirrel.Eq{"g.id": idArg(id)}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get group query: %w", err)
	}

	group, err := scanGroup(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error retrieving group: %w", err)
	}
	return group, nil
}

// List retrieves all groups
func (r *GroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	sql, args, err := r.selectGroups().OrderBy("g.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list groups query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// ListIDsByCatechist returns the ids of the groups led by catechistID
func (r *GroupRepository) ListIDsByCatechist(ctx context.Context, catechistID uuid.UUID) ([]uuid.UUID, error) {
	sql, args, err := r.sb.Select("id").
		From("catechism_groups").
		Where(squirrel.Eq{"catechist_id": idArg(catechistID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list group ids query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing group ids: %w", err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
