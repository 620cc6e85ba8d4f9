package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: append/insert collided with an existing record
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrTampered: stored integrity digest no longer matches the recomputed chain
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrTampered     = errors.New("integrity digest mismatch")
	ErrUnavailable  = errors.New("unavailable")
)
