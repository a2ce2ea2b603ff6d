package domain

import "context"

// TokenStore persists the tracked-token registry.
type TokenStore interface {
	// Upsert inserts or updates a token by mint.
	Upsert(ctx context.Context, t TrackedToken) error
	// ListActive returns all tokens currently flagged for tracking.
	ListActive(ctx context.Context) ([]TrackedToken, error)
	// Get returns a single token by mint, or ErrNotFound.
	Get(ctx context.Context, mint string) (TrackedToken, error)
	// Deactivate stops tracking a token without deleting its row.
	Deactivate(ctx context.Context, mint string) error
}
