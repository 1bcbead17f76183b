// Package delta owns the mutable per-window state: accumulated buy/sell
// volume, the latest quote, and the last traded price. All mutation is routed
// through one Aggregator guarded by a single mutex so the ingestion and
// scheduling paths can share it without either ever blocking the other for
// more than a constant-time critical section.
package delta

import (
	"strings"
	"sync"

	"github.com/yencarnacion/volume-delta/internal/classify"
	"github.com/yencarnacion/volume-delta/internal/market"
)

// Aggregator accumulates classified trade volume for a single instrument.
// Methods are safe for concurrent use; no method performs I/O or blocks
// beyond the shared lock.
type Aggregator struct {
	symbol string

	mu        sync.Mutex
	buyVol    int64
	sellVol   int64
	hasQuote  bool
	bid, ask  float64
	hasLast   bool
	lastPrice float64
}

// New returns an Aggregator bound to symbol. Symbol comparison is
// case-insensitive, so events for "aapl" and "AAPL" land in the same state.
func New(symbol string) *Aggregator {
	return &Aggregator{symbol: strings.ToUpper(symbol)}
}

// Symbol reports the tracked instrument, uppercased.
func (a *Aggregator) Symbol() string { return a.symbol }

// OnQuote replaces the latest quote. Quotes for other symbols are ignored.
// Last write wins; no quote history is kept.
func (a *Aggregator) OnQuote(q market.Quote) {
	if !strings.EqualFold(q.Symbol, a.symbol) {
		return
	}
	a.mu.Lock()
	a.bid, a.ask = q.Bid, q.Ask
	a.hasQuote = true
	a.mu.Unlock()
}

// OnTrade records the trade price as reference data and, when a quote exists,
// classifies the trade and adds its size to the matching volume bucket.
// Trades arriving before any quote update the last price but never the
// volumes: without a reference bid/ask no side can be inferred, so quote-less
// prints are deliberately excluded from the delta.
//
// The lock is dropped across the classification call so the critical
// sections stay O(1); the bid/ask are captured under the first hold.
func (a *Aggregator) OnTrade(t market.Trade) {
	if !strings.EqualFold(t.Symbol, a.symbol) {
		return
	}

	a.mu.Lock()
	a.lastPrice = t.Price
	a.hasLast = true
	if !a.hasQuote {
		a.mu.Unlock()
		return
	}
	bid, ask := a.bid, a.ask
	a.mu.Unlock()

	side := classify.Classify(t.Price, bid, ask)

	a.mu.Lock()
	if side == classify.Buy {
		a.buyVol += t.Size
	} else {
		a.sellVol += t.Size
	}
	a.mu.Unlock()
}

// Apply dispatches one feed event to OnTrade or OnQuote.
func (a *Aggregator) Apply(ev market.Event) {
	switch {
	case ev.Trade != nil:
		a.OnTrade(*ev.Trade)
	case ev.Quote != nil:
		a.OnQuote(*ev.Quote)
	}
}

// Snapshot returns the current accumulators. Repeated calls with no
// intervening trades return identical values.
func (a *Aggregator) Snapshot() (delta, buyVol, sellVol int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buyVol - a.sellVol, a.buyVol, a.sellVol
}

// LastPrice returns the most recent traded price. ok is false until the
// first trade arrives. The value survives Reset: it is reference data for
// the spike metric, not window-scoped state.
func (a *Aggregator) LastPrice() (price float64, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastPrice, a.hasLast
}

// Reset zeroes the volume accumulators at a window boundary. The latest
// quote and last trade price are untouched.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.buyVol = 0
	a.sellVol = 0
	a.mu.Unlock()
}
