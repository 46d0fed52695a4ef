package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catequesis:session:"

// revokeScript deletes the key only while it still holds the given session id
var revokeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisRegistry keeps sessions in Redis so they are shared by every server process
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry wraps an existing Redis client
func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func sessionKey(userID string) string {
	return keyPrefix + userID
}

// Activate implements Registry
func (r *RedisRegistry) Activate(ctx context.Context, userID, sessionID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(userID), sessionID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// IsActive implements Registry
func (r *RedisRegistry) IsActive(ctx context.Context, userID, sessionID string) (bool, error) {
	value, err := r.client.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read session: %w", err)
	}
	return value == sessionID, nil
}

// Revoke implements Registry
func (r *RedisRegistry) Revoke(ctx context.Context, userID, sessionID string) error {
	if err := revokeScript.Run(ctx, r.client, []string{sessionKey(userID)}, sessionID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
