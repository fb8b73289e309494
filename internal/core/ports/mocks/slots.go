package mocks

import (
	"context"
	"sync"

	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
)

// SlotStore is a thread-safe in-memory implementation of ports.SlotStore.
type SlotStore struct {
	mu    sync.RWMutex
	slots map[string][]byte

	// SaveFn allows overriding Save behavior.
	SaveFn func(ctx context.Context, key string, payload []byte) error

	// LoadFn allows overriding Load behavior.
	LoadFn func(ctx context.Context, key string) ([]byte, error)

	// PingErr is returned by Ping.
	PingErr error
}

// NewSlotStore creates an empty slot store.
func NewSlotStore() *SlotStore {
	return &SlotStore{slots: make(map[string][]byte)}
}

// Save stores a copy of payload under key.
func (s *SlotStore) Save(ctx context.Context, key string, payload []byte) error {
	if s.SaveFn != nil {
		return s.SaveFn(ctx, key, payload)
	}

	s.Set(key, payload)

	return nil
}

// Load returns the payload stored under key.
func (s *SlotStore) Load(ctx context.Context, key string) ([]byte, error) {
	if s.LoadFn != nil {
		return s.LoadFn(ctx, key)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.slots[key]
	if !ok {
		return nil, apperrors.ErrSnapshotNotFound
	}

	return append([]byte(nil), payload...), nil
}

// Ping returns PingErr.
func (s *SlotStore) Ping(_ context.Context) error {
	return s.PingErr
}

// Set writes a slot directly.
func (s *SlotStore) Set(key string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = append([]byte(nil), payload...)
}

// Len returns the number of stored slots.
func (s *SlotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.slots)
}
