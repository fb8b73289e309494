package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/lueurxax/fakenews-web/internal/core/errors"
)

// Save upserts the payload of a snapshot slot.
func (db *DB) Save(ctx context.Context, key string, payload []byte) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO evidence_snapshots (slot_key, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (slot_key) DO UPDATE
		SET payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, key, payload)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	return nil
}

// Load returns the payload of a snapshot slot.
func (db *DB) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte

	err := db.Pool.QueryRow(ctx, `
		SELECT payload
		FROM evidence_snapshots
		WHERE slot_key = $1
	`, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSnapshotNotFound
		}

		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	return payload, nil
}

// Ping checks the pool.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	return nil
}
