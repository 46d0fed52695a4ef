package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yigit/catequesis/internal/config"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
	"github.com/yigit/catequesis/internal/pkg/logger"
)

// Collection names
const (
	UsersCollection    = "usuarios"
	StudentsCollection = "catequizandos"
	GroupsCollection   = "grupos"
)

// MongoDB document store connection structure
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects to MongoDB and makes sure the indexes exist
func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	connectTimeout, err := time.ParseDuration(cfg.Database.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connect timeout: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetServerSelectionTimeout(connectTimeout).
		SetConnectTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	m := &MongoDB{Client: client, Database: client.Database(cfg.Mongo.Database)}
	if err := m.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")
	return m, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "usuario", Value: 1}}, Options: options.Index().SetUnique(true).SetName("usuario_unique")},
			{Keys: bson.D{{Key: "catequizando_id", Value: 1}}, Options: options.Index().SetName("catequizando_id")},
		},
		StudentsCollection: {
			{Keys: bson.D{{Key: "datos_personales.cedula", Value: 1}}, Options: options.Index().SetUnique(true).SetName("cedula_unique")},
			{Keys: bson.D{{Key: "grupo_id", Value: 1}}, Options: options.Index().SetName("grupo_id")},
		},
		GroupsCollection: {
			{Keys: bson.D{{Key: "catequista_id", Value: 1}}, Options: options.Index().SetName("catequista_id")},
		},
	}

	for collection, models := range indexes {
		if _, err := m.Database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// Ping checks that the server answers
func (m *MongoDB) Ping(ctx context.Context) error {
	if err := m.Client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

// Close disconnects the client
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
