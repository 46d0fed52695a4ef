// Package sessionstore tracks the one active session each user may hold.
package sessionstore

import (
	"context"
	"time"
)

// Registry records the active session id of every logged-in user.
// Activating a new session for a user replaces the previous one.
type Registry interface {
	Activate(ctx context.Context, userID, sessionID string, ttl time.Duration) error
	IsActive(ctx context.Context, userID, sessionID string) (bool, error)
	Revoke(ctx context.Context, userID, sessionID string) error
}
