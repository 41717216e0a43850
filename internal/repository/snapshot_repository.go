package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Snapshot collection keys. Each key maps to one flat JSON array in the
// snapshots table, mirroring the collection layout the state store works with.
const (
	KeySessions  = "sessions"
	KeyTeachers  = "teachers"
	KeyStudents  = "students"
	KeyTimeSlots = "time_slots"
)

// SnapshotRepository persists whole collections as JSON documents keyed by
// collection name. Writes replace the entire document; there is no row-level
// access by design, the in-memory store owns the data.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load reads the JSON document stored under key and unmarshals it into dest.
// A missing key leaves dest untouched and returns ok=false.
func (r *SnapshotRepository) Load(ctx context.Context, key string, dest interface{}) (bool, error) {
	const query = `SELECT data FROM snapshots WHERE key = ?`
	var raw string
	if err := r.db.GetContext(ctx, &raw, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("unmarshal snapshot %s: %w", key, err)
	}
	return true, nil
}

// Save marshals value and replaces the document stored under key.
func (r *SnapshotRepository) Save(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}
	const query = `INSERT INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// UpdatedAt reports the last write time for a key, or zero when absent.
func (r *SnapshotRepository) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	const query = `SELECT updated_at FROM snapshots WHERE key = ?`
	var ts time.Time
	if err := r.db.GetContext(ctx, &ts, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("snapshot updated_at %s: %w", key, err)
	}
	return ts, nil
}
