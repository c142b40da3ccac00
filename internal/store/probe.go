package store

import (
	"context"
	"errors"
)

// Status is the result of a lightweight connectivity probe.
type Status struct {
	Connected bool   `json:"connected"`
	Reason    string `json:"reason,omitempty"`
}

// Probe runs a cheap query against the tires table and classifies the
// outcome. A missing schema is a distinct degraded state so callers can
// prompt for setup instead of retrying; it never produces a hard failure.
func (s *Store) Probe(ctx context.Context) Status {
	var id string
	err := s.pool.QueryRow(ctx, `SELECT id FROM tires LIMIT 1`).Scan(&id)
	err = classify(err)
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		return Status{Connected: true}
	case errors.Is(err, ErrSchemaMissing):
		return Status{Connected: false, Reason: "missing_tables"}
	default:
		return Status{Connected: false, Reason: "unreachable"}
	}
}
