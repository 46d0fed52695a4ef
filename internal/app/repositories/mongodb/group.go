package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/db"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

// GroupRepository handles group documents
type GroupRepository struct {
	groups *mongo.Collection
}

var _ repositories.GroupRepository = (*GroupRepository)(nil)

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(database *db.MongoDB) *GroupRepository {
	return &GroupRepository{groups: database.Database.Collection(db.GroupsCollection)}
}

// catechistLookup joins each group with its catechist, keeping groups without one
var catechistLookup = mongo.Pipeline{
	{{Key: "$lookup", Value: bson.M{"from": db.UsersCollection, "localField": "catequista_id", "foreignField": "_id", "as": "catequista_info"}}},
	{{Key: "$unwind", Value: bson.M{"path": "$catequista_info", "preserveNullAndEmptyArrays": true}}},
}

// Create inserts a new group
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	if _, err := r.groups.InsertOne(ctx, toGroupDoc(group)); err != nil {
		logger.Error().Err(err).Str("name", group.Name).Msg("Error inserting group")
		return fmt.Errorf("error creating group: %w", err)
	}
	return nil
}

func (r *GroupRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]*models.Group, error) {
	cursor, err := r.groups.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating groups: %w", err)
	}
	return decodeAll(ctx, cursor, (*groupDoc).model)
}

// GetByID retrieves a group by ID
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	pipeline := append(mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id.String()}}}}, catechistLookup...)
	groups, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, apperrors.ErrGroupNotFound
	}
	return groups[0], nil
}

// List retrieves all groups
func (r *GroupRepository) List(ctx context.Context) ([]*models.Group, error) {
	pipeline := append(append(mongo.Pipeline{}, catechistLookup...), bson.D{{Key: "$sort", Value: bson.D{{Key: "nombre", Value: 1}}}})
	return r.aggregate(ctx, pipeline)
}

// ListIDsByCatechist returns the ids of the groups led by catechistID
func (r *GroupRepository) ListIDsByCatechist(ctx context.Context, catechistID uuid.UUID) ([]uuid.UUID, error) {
	cursor, err := r.groups.Find(ctx, bson.M{"catequista_id": catechistID.String()})
	if err != nil {
		return nil, fmt.Errorf("error listing group ids: %w", err)
	}
	groups, err := decodeAll(ctx, cursor, (*groupDoc).model)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids, nil
}
