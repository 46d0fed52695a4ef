package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/db"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/dberrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

// UserRepository handles user documents
type UserRepository struct {
	users *mongo.Collection
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.MongoDB) *UserRepository {
	return &UserRepository{users: database.Database.Collection(db.UsersCollection)}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if _, err := r.users.InsertOne(ctx, toUserDoc(user)); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			logger.Warn().Str("username", user.Username).Msg("Attempted to create user with duplicate username")
			return apperrors.ErrUsernameTaken
		}
		logger.Error().Err(err).Str("username", user.Username).Msg("Error inserting user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// Upsert creates the user or overwrites the account holding the same username
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (bool, error) {
	newID := uuid.New().String()

	set := bson.M{
		"contrasena":      user.PasswordHash,
		"rol":             string(user.Role),
		"nombre_completo": user.FullName,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": newID, "fecha_creacion": time.Now().UTC()},
	}
	if user.LinkedStudentID != nil {
		set["catequizando_id"] = user.LinkedStudentID.String()
	} else {
		update["$unset"] = bson.M{"catequizando_id": ""}
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc userDoc
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"usuario": user.Username}, update, opts).Decode(&doc); err != nil {
		logger.Error().Err(err).Str("username", user.Username).Msg("Error upserting user")
		return false, fmt.Errorf("error upserting user: %w", err)
	}

	stored, err := doc.model()
	if err != nil {
		return false, err
	}
	user.ID = stored.ID
	user.CreatedAt = stored.CreatedAt
	return doc.ID == newID, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return doc.model()
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

// GetByUsername retrieves a user by exact username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"usuario": username})
}

// UsernameExists checks if a username is already registered
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := r.users.CountDocuments(ctx, bson.M{"usuario": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("error checking username existence: %w", err)
	}
	return n > 0, nil
}

// ListByRole lists every user holding role
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nombre_completo", Value: 1}, {Key: "usuario", Value: 1}})
	cursor, err := r.users.Find(ctx, bson.M{"rol": string(role)}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return decodeAll(ctx, cursor, (*userDoc).model)
}
