// Package market standardizes payloads shared between the feed and the
// aggregation layer.
package market

import "time"

// Trade models a single execution print for the tracked instrument.
type Trade struct {
	Symbol string
	Price  float64
	Size   int64
	Ts     time.Time
}

// Quote models the prevailing top-of-book bid/ask. Last write wins; no
// history is retained anywhere downstream.
type Quote struct {
	Symbol string
	Bid    float64
	Ask    float64
	Ts     time.Time
}

// Event is one entry of a feed delivery batch. Exactly one field is non-nil.
type Event struct {
	Trade *Trade
	Quote *Quote
}
