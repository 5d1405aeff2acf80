// Package journal keeps an append-only history of comparisons, trip plans
// and rate refreshes. Records are written by a bus subscriber and never read
// back by the pricing code.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record kinds.
const (
	KindCompare = "compare"
	KindCards   = "cards"
	KindSurvey  = "survey"
	KindPlan    = "plan"
	KindRates   = "rates"
)

// Record is one journal entry.
type Record struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewRecord marshals payload into a new record with a random ID.
func NewRecord(kind string, payload any, at time.Time) (Record, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Record{ID: uuid.NewString(), Kind: kind, Timestamp: at.UTC(), Payload: raw}, nil
}

// Query filters records. Zero fields do not filter; Limit <= 0 is unlimited.
type Query struct {
	Start time.Time
	End   time.Time
	Kind  string
	Limit int
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return q.Kind == "" || r.Kind == q.Kind
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	// Backend is "jsonl" or "sqlite". Empty disables the journal.
	Backend string `json:"backend"`
	Path    string `json:"path"`
	// Rotation settings of the jsonl backend.
	MaxSizeMB  int `json:"max_size_mb"`
	MaxBackups int `json:"max_backups"`
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults fills the path and rotation limits of an enabled journal.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		return
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "evcharge-journal.db"
		default:
			c.Path = "evcharge-journal.jsonl"
		}
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks the backend name.
func (c Config) Validate() error {
	switch c.Backend {
	case "", "jsonl", "sqlite":
		return nil
	}
	return fmt.Errorf("unknown journal backend %s", c.Backend)
}

// Open returns the configured store, or nil when the journal is disabled.
func Open(c Config) (Store, error) {
	switch c.Backend {
	case "":
		return nil, nil
	case "jsonl":
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(c.Path)
	}
	return nil, fmt.Errorf("unknown journal backend %s", c.Backend)
}
