// Package postgres persists compliance events through database/sql with the
// lib/pq driver. Events are stored as JSONB documents with the columns the
// overdue sweep queries on pulled out for indexing.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sitewatch/internal/compliance"
	"sitewatch/pkg/domain"
	"sitewatch/pkg/platform/sentinel"
)

const schema = `
CREATE TABLE IF NOT EXISTS compliance_events (
    id                  UUID PRIMARY KEY,
    status              TEXT NOT NULL,
    severity            TEXT NOT NULL,
    correction_deadline TIMESTAMPTZ NOT NULL,
    payload             JSONB NOT NULL,
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_compliance_events_deadline
    ON compliance_events (correction_deadline)
    WHERE status <> 'CLOSED';
`

type Store struct {
	db *sql.DB
}

// NewStore opens a pool against dsn. The caller owns closing the store.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open compliance store: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStoreWithDB wraps an existing handle. Tests and shared pools.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure compliance schema: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, ev compliance.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal compliance event: %w", err)
	}
	const q = `
INSERT INTO compliance_events (id, status, severity, correction_deadline, payload, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (id) DO UPDATE
SET status = EXCLUDED.status,
    severity = EXCLUDED.severity,
    payload = EXCLUDED.payload,
    updated_at = now()`
	if _, err := s.db.ExecContext(ctx, q,
		ev.ID.String(), string(ev.Status), string(ev.Severity), ev.CorrectionDeadline, payload,
	); err != nil {
		return fmt.Errorf("save compliance event: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id domain.EventID) (compliance.Event, error) {
	const q = `SELECT payload FROM compliance_events WHERE id = $1`
	var payload []byte
	err := s.db.QueryRowContext(ctx, q, id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return compliance.Event{}, sentinel.ErrNotFound
	}
	if err != nil {
		return compliance.Event{}, fmt.Errorf("find compliance event: %w", err)
	}
	var ev compliance.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return compliance.Event{}, fmt.Errorf("decode compliance event: %w", err)
	}
	return ev, nil
}

func (s *Store) ListOverdue(ctx context.Context, now time.Time) ([]compliance.Event, error) {
	const q = `
SELECT payload FROM compliance_events
WHERE status <> 'CLOSED' AND correction_deadline < $1
ORDER BY correction_deadline`
	rows, err := s.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, fmt.Errorf("list overdue events: %w", err)
	}
	defer rows.Close()

	var out []compliance.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan overdue event: %w", err)
		}
		var ev compliance.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("decode overdue event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }
