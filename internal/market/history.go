package market

import (
	"sync"
	"time"
)

// DefaultRetention is how much trade history is kept per token.
const DefaultRetention = 24 * time.Hour

// Sample is one market-cap observation for a token.
type Sample struct {
	Time         time.Time
	MarketCapSol float64
}

// History maintains a per-token, time-ordered log of market-cap samples
// bounded to a fixed retention window. Samples are appended in arrival
// order; the feed is assumed to deliver in time order per token, and
// out-of-order arrival is not corrected.
type History struct {
	mu        sync.RWMutex
	samples   map[string][]Sample
	retention time.Duration
}

// NewHistory creates a History with the given retention window. A zero
// retention falls back to DefaultRetention.
func NewHistory(retention time.Duration) *History {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &History{
		samples:   make(map[string][]Sample),
		retention: retention,
	}
}

// Append records a new sample for the token and drops every retained sample
// that has aged out of the retention window relative to t.
func (h *History) Append(mint string, t time.Time, mcapSol float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pts := append(h.samples[mint], Sample{Time: t, MarketCapSol: mcapSol})

	cutoff := t.Add(-h.retention)
	i := 0
	for i < len(pts) && !pts[i].Time.After(cutoff) {
		i++
	}
	h.samples[mint] = pts[i:]
}

// AtOrBefore returns the first sample, scanning forward from the oldest
// retained, whose time is at or before target. This asymmetric semantics is
// what defines the baseline for percentage-change lookbacks: the oldest
// sample inside the lookback horizon wins.
func (h *History) AtOrBefore(mint string, target time.Time) (Sample, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.samples[mint] {
		if !s.Time.After(target) {
			return s, true
		}
	}
	return Sample{}, false
}

// Len returns the number of retained samples for the token.
func (h *History) Len(mint string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples[mint])
}

// Samples returns a copy of the retained samples for the token, oldest
// first. The returned slice is safe to mutate.
func (h *History) Samples(mint string) []Sample {
	h.mu.RLock()
	defer h.mu.RUnlock()

	src := h.samples[mint]
	if len(src) == 0 {
		return nil
	}
	out := make([]Sample, len(src))
	copy(out, src)
	return out
}
