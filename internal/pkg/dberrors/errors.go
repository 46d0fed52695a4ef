package dberrors

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	// unique_violation is 23505
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
}

// IsDuplicateKeyError checks if the error is a MongoDB duplicate key error.
func IsDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// IsUnavailable reports whether err means the storage backend could not be reached.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrStorageUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		errors.Is(err, mongo.ErrClientDisconnected)
}

// IsTransactionUnsupported reports whether a MongoDB server rejected a
// transaction because it is not part of a replica set.
func IsTransactionUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	// IllegalOperation is 20
	return errors.As(err, &cmdErr) && cmdErr.Code == 20
}
