package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Creat0r69/faith/internal/domain"
	"github.com/redis/go-redis/v9"
)

// statsTTL bounds how long a mirrored snapshot outlives its engine. Stats
// are republished on every tick, so a stale key means the token went quiet
// or the engine is gone.
const statsTTL = 24 * time.Hour

// StatsCache implements domain.StatsCache using Redis strings with
// JSON-serialized TokenStats.
//
// Key schema:
//
//	stats:{mint} - JSON TokenStats
type StatsCache struct {
	rdb *redis.Client
}

// NewStatsCache creates a StatsCache backed by the given Client.
func NewStatsCache(c *Client) *StatsCache {
	return &StatsCache{rdb: c.Underlying()}
}

func statsKey(mint string) string { return "stats:" + mint }

// SetStats stores the latest snapshot for a mint.
func (sc *StatsCache) SetStats(ctx context.Context, stats domain.TokenStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis: marshal stats %s: %w", stats.Mint, err)
	}
	if err := sc.rdb.Set(ctx, statsKey(stats.Mint), data, statsTTL).Err(); err != nil {
		return fmt.Errorf("redis: set stats %s: %w", stats.Mint, err)
	}
	return nil
}

// GetStats retrieves the stored snapshot for a mint. It returns
// domain.ErrNotFound when the key does not exist.
func (sc *StatsCache) GetStats(ctx context.Context, mint string) (domain.TokenStats, error) {
	data, err := sc.rdb.Get(ctx, statsKey(mint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.TokenStats{}, domain.ErrNotFound
		}
		return domain.TokenStats{}, fmt.Errorf("redis: get stats %s: %w", mint, err)
	}

	var stats domain.TokenStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return domain.TokenStats{}, fmt.Errorf("redis: unmarshal stats %s: %w", mint, err)
	}
	return stats, nil
}

// GetAllStats retrieves snapshots for multiple mints using a pipeline.
// Mints whose keys do not exist are silently omitted from the result map.
func (sc *StatsCache) GetAllStats(ctx context.Context, mints []string) (map[string]domain.TokenStats, error) {
	if len(mints) == 0 {
		return map[string]domain.TokenStats{}, nil
	}

	pipe := sc.rdb.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(mints))
	for _, mint := range mints {
		cmds[mint] = pipe.Get(ctx, statsKey(mint))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: get stats pipeline: %w", err)
	}

	result := make(map[string]domain.TokenStats, len(mints))
	for mint, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			continue
		}
		var stats domain.TokenStats
		if err := json.Unmarshal(data, &stats); err != nil {
			continue
		}
		result[mint] = stats
	}

	return result, nil
}

// Compile-time interface check.
var _ domain.StatsCache = (*StatsCache)(nil)
