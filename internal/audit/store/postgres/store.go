package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"sitewatch/internal/audit"
	"sitewatch/pkg/domain"
	"sitewatch/pkg/platform/sentinel"
)

// Store persists audit trails in PostgreSQL: insert-only entry rows keyed by
// (session_id, seq) plus one digest row per trail. Rows are never updated or
// deleted; retention is handled by an external archival policy.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL audit store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_trails (
	session_id       UUID PRIMARY KEY,
	owner_id         TEXT NOT NULL,
	version          BIGINT NOT NULL DEFAULT 0,
	integrity_digest TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_entries (
	session_id  UUID NOT NULL REFERENCES audit_trails(session_id),
	seq         BIGINT NOT NULL,
	entry       JSONB NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (session_id, seq)
);
`

// EnsureSchema creates the audit tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *Store) CreateTrail(ctx context.Context, sessionID domain.SessionID, ownerID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_trails (session_id, owner_id) VALUES ($1, $2)`,
		sessionID.String(), ownerID,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert audit trail: %w", err)
	}
	return nil
}

// Append writes the entry row and advances the trail head in one
// transaction. The optimistic version guard keeps the digest row consistent
// with the entry sequence even if a rogue writer bypasses the service lock.
func (s *Store) Append(ctx context.Context, sessionID domain.SessionID, seq uint64, entry audit.Entry, digest string) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE audit_trails
		 SET version = $2, integrity_digest = $3
		 WHERE session_id = $1 AND version = $2 - 1`,
		sessionID.String(), int64(seq), digest,
	)
	if err != nil {
		return fmt.Errorf("advance trail head: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrConflict
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO audit_entries (session_id, seq, entry, recorded_at)
		 VALUES ($1, $2, $3, $4)`,
		sessionID.String(), int64(seq), payload, entry.Timestamp,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *Store) LoadTrail(ctx context.Context, sessionID domain.SessionID) (audit.Trail, error) {
	var (
		ownerID string
		version int64
		digest  string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT owner_id, version, integrity_digest FROM audit_trails WHERE session_id = $1`,
		sessionID.String(),
	).Scan(&ownerID, &version, &digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return audit.Trail{}, sentinel.ErrNotFound
	}
	if err != nil {
		return audit.Trail{}, fmt.Errorf("load audit trail: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT entry FROM audit_entries WHERE session_id = $1 ORDER BY seq`,
		sessionID.String(),
	)
	if err != nil {
		return audit.Trail{}, fmt.Errorf("load audit entries: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return audit.Trail{}, fmt.Errorf("scan audit entry: %w", err)
		}
		var e audit.Entry
		if err := json.Unmarshal(payload, &e); err != nil {
			return audit.Trail{}, fmt.Errorf("decode audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return audit.Trail{}, fmt.Errorf("iterate audit entries: %w", err)
	}

	return audit.Trail{
		SessionID:       sessionID,
		OwnerID:         ownerID,
		Entries:         entries,
		Version:         uint64(version),
		IntegrityDigest: digest,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
