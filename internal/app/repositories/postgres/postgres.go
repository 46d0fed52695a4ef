// Package postgres implements the repositories on PostgreSQL with pgx and squirrel.
package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/db"
)

// querier is satisfied by both the pool and a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewRepositories wires the repository bundle on top of database
func NewRepositories(database *db.PostgresDB) *repositories.Repositories {
	return &repositories.Repositories{
		Users:    NewUserRepository(database),
		Students: NewStudentRepository(database),
		Groups:   NewGroupRepository(database),
		Store:    database,
	}
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// idArg renders an id for squirrel.Eq, which would otherwise expand the
// [16]byte array into a list.
func idArg(id uuid.UUID) string {
	return id.String()
}

func idArgs(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
