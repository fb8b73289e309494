// Package snapshot persists the last fact-check evidence list a browser
// session asked to view in detail.
//
// Each session owns one named slot. Writes overwrite the slot; nothing
// clears it. The serialized form is the JSON array of evidence items.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lueurxax/fakenews-web/internal/core/domain"
	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
	"github.com/lueurxax/fakenews-web/internal/core/ports"
)

// SlotName is the fixed name of the evidence slot.
const SlotName = "factCheckResults"

// Evidence reads and writes evidence snapshots on top of a slot store.
type Evidence struct {
	store ports.SlotStore
}

// NewEvidence wraps store.
func NewEvidence(store ports.SlotStore) *Evidence {
	return &Evidence{store: store}
}

// Key returns the slot key for a session.
func Key(sessionID string) string {
	return sessionID + ":" + SlotName
}

// Save overwrites the session's snapshot with items.
func (e *Evidence) Save(ctx context.Context, sessionID string, items []domain.EvidenceItem) error {
	payload, err := Encode(items)
	if err != nil {
		return err
	}

	if err := e.store.Save(ctx, Key(sessionID), payload); err != nil {
		return fmt.Errorf("save evidence snapshot: %w", err)
	}

	return nil
}

// Load returns the session's snapshot. It returns ErrSnapshotNotFound when
// nothing was written and ErrSnapshotCorrupt when the slot cannot be decoded.
func (e *Evidence) Load(ctx context.Context, sessionID string) ([]domain.EvidenceItem, error) {
	payload, err := e.store.Load(ctx, Key(sessionID))
	if err != nil {
		return nil, fmt.Errorf("load evidence snapshot: %w", err)
	}

	return Decode(payload)
}

// Ping checks the underlying store.
func (e *Evidence) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// Encode serializes items. A nil list is stored as an empty array.
func Encode(items []domain.EvidenceItem) ([]byte, error) {
	if items == nil {
		items = []domain.EvidenceItem{}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode evidence snapshot: %w", err)
	}

	return payload, nil
}

// Decode parses a serialized snapshot. JSON null is treated as absent.
func Decode(payload []byte) ([]domain.EvidenceItem, error) {
	var items []domain.EvidenceItem

	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrSnapshotCorrupt, err)
	}

	if items == nil {
		return nil, apperrors.ErrSnapshotNotFound
	}

	return items, nil
}
