package audit

import (
	"context"

	"sitewatch/pkg/domain"
)

// Store is the durable mirror of the in-process trails. Implementations are
// append-only: rows are never updated or deleted, and a seq collision is a
// conflict, never an overwrite.
//
// The service treats Append as at-least-once: on failure the in-process
// snapshot is not advanced and the caller retries the whole AddEntry.
type Store interface {
	// CreateTrail registers a session with its owner.
	CreateTrail(ctx context.Context, sessionID domain.SessionID, ownerID string) error
	// Append persists one entry at the given sequence number together with
	// the resulting chain head.
	Append(ctx context.Context, sessionID domain.SessionID, seq uint64, entry Entry, digest string) error
	// LoadTrail rebuilds the full trail for a session, entries in append
	// order. Returns sentinel.ErrNotFound for unknown sessions.
	LoadTrail(ctx context.Context, sessionID domain.SessionID) (Trail, error)
}
