// Package classify implements the quote-based tick rule that decides whether
// a trade's volume counts as buyer- or seller-initiated.
package classify

import "math"

// Epsilon is the absolute price tolerance used to absorb floating-point and
// report noise when comparing a print against the quote.
const Epsilon = 1e-3

// Side is the inferred aggressor side of a trade.
type Side int

const (
	// Buy means the trade is treated as buyer-initiated (lifted the ask).
	Buy Side = iota
	// Sell means the trade is treated as seller-initiated (hit the bid).
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Classify applies the tick rule to a trade price against the latest known
// bid/ask. It is pure and safe to call from any goroutine.
//
// The exact-match checks run before the range checks so a print at a crossed
// or locked quote is not misrouted by the distance comparison. A print
// strictly inside the quote goes to the nearer side; the strict `<` means an
// exact midpoint resolves to Sell. That tie-break is kept for compatibility
// with the established behavior of this rule, not as an economic claim.
//
// Callers must not invoke Classify before a quote exists; with no reference
// bid/ask no side can be inferred and the trade must skip accumulation.
func Classify(price, bid, ask float64) Side {
	switch {
	case math.Abs(price-ask) < Epsilon:
		return Buy
	case math.Abs(price-bid) < Epsilon:
		return Sell
	case price > ask+Epsilon:
		return Buy
	case price < bid-Epsilon:
		return Sell
	case math.Abs(price-ask) < math.Abs(price-bid):
		return Buy
	default:
		return Sell
	}
}
