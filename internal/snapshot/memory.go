package snapshot

import (
	"context"
	"sync"

	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
)

// MemoryStore keeps slots in process memory. Slots are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryStore creates an empty in-memory slot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]byte)}
}

// Save stores a copy of payload.
func (m *MemoryStore) Save(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[key] = append([]byte(nil), payload...)

	return nil
}

// Load returns a copy of the stored payload.
func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	payload, ok := m.slots[key]
	if !ok {
		return nil, apperrors.ErrSnapshotNotFound
	}

	return append([]byte(nil), payload...), nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}
