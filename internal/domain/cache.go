package domain

import "context"

// StatsCache mirrors published token statistics into shared storage so other
// processes (or a future UI backend) can read them without holding an engine.
type StatsCache interface {
	// SetStats stores the latest snapshot for a mint.
	SetStats(ctx context.Context, stats TokenStats) error
	// GetStats returns the stored snapshot for a mint, or ErrNotFound.
	GetStats(ctx context.Context, mint string) (TokenStats, error)
	// GetAllStats returns snapshots for the given mints; missing mints are
	// omitted from the result map.
	GetAllStats(ctx context.Context, mints []string) (map[string]TokenStats, error)
}
