package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/db"
)

// NewRepositories wires the repository bundle on top of database
func NewRepositories(database *db.MongoDB) *repositories.Repositories {
	return &repositories.Repositories{
		Users:    NewUserRepository(database),
		Students: NewStudentRepository(database),
		Groups:   NewGroupRepository(database),
		Store:    database,
	}
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// decodeAll drains cursor, converting each document with convert
func decodeAll[D any, M any](ctx context.Context, cursor *mongo.Cursor, convert func(*D) (*M, error)) ([]*M, error) {
	defer cursor.Close(ctx)

	out := make([]*M, 0)
	for cursor.Next(ctx) {
		var doc D
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding document: %w", err)
		}
		m, err := convert(&doc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
