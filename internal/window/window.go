// Package window aligns aggregation to fixed wall-clock boundaries, computes
// the spike metric, and retains a bounded history of finalized windows.
package window

import (
	"math"
	"sync"
	"time"
)

// Finalized is the immutable snapshot produced when a window closes. It is
// never mutated after creation and is discarded once evicted from History.
type Finalized struct {
	Start time.Time `json:"start"`
	Buy   int64     `json:"buy"`
	Sell  int64     `json:"sell"`
	Delta int64     `json:"delta"`
	Spike float64   `json:"spike"`
}

// Spike couples the percentage price move against a reference with the
// unsigned magnitude of the volume delta. The sign comes from price
// direction alone; the imbalance's own sign is intentionally discarded.
// Zero when the reference is missing or zero, the current price is missing,
// or the result is not finite.
func Spike(ref, cur float64, haveCur bool, delta int64) float64 {
	if ref == 0 || !haveCur {
		return 0
	}
	pctMove := (cur - ref) / ref
	spike := pctMove * math.Abs(float64(delta))
	if math.IsNaN(spike) || math.IsInf(spike, 0) {
		return 0
	}
	return spike
}

// History holds the most recent finalized windows, oldest first, evicting
// the oldest once the depth bound is exceeded. Safe for the scheduler to
// write and the renderer to read.
type History struct {
	mu   sync.Mutex
	rows []Finalized
	max  int
}

// NewHistory creates a history bounded to depth entries.
func NewHistory(depth int) *History {
	if depth < 1 {
		depth = 1
	}
	return &History{rows: make([]Finalized, 0, depth), max: depth}
}

// Push appends a finalized window, dropping the oldest beyond the bound.
func (h *History) Push(f Finalized) {
	h.mu.Lock()
	h.rows = append(h.rows, f)
	if len(h.rows) > h.max {
		h.rows = h.rows[1:]
	}
	h.mu.Unlock()
}

// Rows returns a copy of the retained windows, oldest first.
func (h *History) Rows() []Finalized {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Finalized, len(h.rows))
	copy(out, h.rows)
	return out
}

// Len reports the number of retained windows.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rows)
}
