package delta

import (
	"testing"

	"github.com/yencarnacion/volume-delta/internal/market"
)

func quote(bid, ask float64) market.Quote {
	return market.Quote{Symbol: "AAPL", Bid: bid, Ask: ask}
}

func trade(price float64, size int64) market.Trade {
	return market.Trade{Symbol: "AAPL", Price: price, Size: size}
}

func TestOnTradeBeforeQuoteUpdatesOnlyLastPrice(t *testing.T) {
	agg := New("AAPL")

	agg.OnTrade(trade(101.50, 25))

	delta, buy, sell := agg.Snapshot()
	if delta != 0 || buy != 0 || sell != 0 {
		t.Fatalf("quote-less trade touched volumes: delta=%d buy=%d sell=%d", delta, buy, sell)
	}
	price, ok := agg.LastPrice()
	if !ok || price != 101.50 {
		t.Fatalf("expected last price 101.50, got %v ok=%v", price, ok)
	}
}

func TestAccumulationScenario(t *testing.T) {
	agg := New("AAPL")
	agg.OnQuote(quote(100.00, 100.05))

	agg.OnTrade(trade(100.05, 10)) // exact ask
	agg.OnTrade(trade(100.00, 5))  // exact bid
	agg.OnTrade(trade(100.10, 3))  // above ask
	agg.OnTrade(trade(99.90, 2))   // below bid

	delta, buy, sell := agg.Snapshot()
	if buy != 13 {
		t.Fatalf("expected buyVolume 13, got %d", buy)
	}
	if sell != 7 {
		t.Fatalf("expected sellVolume 7, got %d", sell)
	}
	if delta != 6 {
		t.Fatalf("expected delta +6, got %d", delta)
	}
}

func TestMidpointTradeCountsAsSell(t *testing.T) {
	agg := New("AAPL")
	agg.OnQuote(quote(100.00, 100.50))

	agg.OnTrade(trade(100.25, 4))

	_, buy, sell := agg.Snapshot()
	if buy != 0 || sell != 4 {
		t.Fatalf("midpoint trade: expected sell +4, got buy=%d sell=%d", buy, sell)
	}
}

func TestSymbolMismatchIgnored(t *testing.T) {
	agg := New("AAPL")
	agg.OnQuote(market.Quote{Symbol: "MSFT", Bid: 1, Ask: 2})
	agg.OnTrade(market.Trade{Symbol: "MSFT", Price: 1.5, Size: 9})

	if _, ok := agg.LastPrice(); ok {
		t.Fatal("foreign trade updated last price")
	}
	if delta, _, _ := agg.Snapshot(); delta != 0 {
		t.Fatalf("foreign trade accumulated, delta=%d", delta)
	}
}

func TestSymbolCaseInsensitive(t *testing.T) {
	agg := New("aapl")
	agg.OnQuote(market.Quote{Symbol: "AAPL", Bid: 100.00, Ask: 100.05})
	agg.OnTrade(market.Trade{Symbol: "Aapl", Price: 100.05, Size: 7})

	_, buy, _ := agg.Snapshot()
	if buy != 7 {
		t.Fatalf("case-insensitive match failed, buy=%d", buy)
	}
}

func TestResetZeroesVolumesOnly(t *testing.T) {
	agg := New("AAPL")
	agg.OnQuote(quote(100.00, 100.05))
	agg.OnTrade(trade(100.05, 10))

	agg.Reset()

	delta, buy, sell := agg.Snapshot()
	if delta != 0 || buy != 0 || sell != 0 {
		t.Fatalf("reset left volumes: delta=%d buy=%d sell=%d", delta, buy, sell)
	}
	if price, ok := agg.LastPrice(); !ok || price != 100.05 {
		t.Fatalf("reset touched last price: %v ok=%v", price, ok)
	}

	// Quote survives too: the next trade still classifies.
	agg.OnTrade(trade(100.05, 3))
	if _, buy, _ = agg.Snapshot(); buy != 3 {
		t.Fatalf("quote lost across reset, buy=%d", buy)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	agg := New("AAPL")
	agg.OnQuote(quote(100.00, 100.05))
	agg.OnTrade(trade(100.05, 10))

	d1, b1, s1 := agg.Snapshot()
	d2, b2, s2 := agg.Snapshot()
	if d1 != d2 || b1 != b2 || s1 != s2 {
		t.Fatalf("snapshot not idempotent: (%d,%d,%d) vs (%d,%d,%d)", d1, b1, s1, d2, b2, s2)
	}
}
