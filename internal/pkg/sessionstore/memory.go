package sessionstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	sessionID string
	expiresAt time.Time
}

// MemoryRegistry keeps sessions in process memory. Sessions do not survive a restart.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryRegistry creates an empty in-process registry
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

// Activate implements Registry
func (r *MemoryRegistry) Activate(_ context.Context, userID, sessionID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[userID] = memoryEntry{sessionID: sessionID, expiresAt: r.now().Add(ttl)}
	return nil
}

// IsActive implements Registry
func (r *MemoryRegistry) IsActive(_ context.Context, userID, sessionID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sessions[userID]
	if !ok || entry.sessionID != sessionID {
		return false, nil
	}
	return r.now().Before(entry.expiresAt), nil
}

// Revoke implements Registry
func (r *MemoryRegistry) Revoke(_ context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.sessions[userID]; ok && entry.sessionID == sessionID {
		delete(r.sessions, userID)
	}
	return nil
}
