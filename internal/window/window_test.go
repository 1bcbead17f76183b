package window

import (
	"math"
	"testing"
	"time"
)

func TestSpikeZeroCases(t *testing.T) {
	if got := Spike(0, 101, true, 500); got != 0 {
		t.Fatalf("zero reference: expected 0, got %v", got)
	}
	if got := Spike(100, 0, false, 500); got != 0 {
		t.Fatalf("no current price: expected 0, got %v", got)
	}
	if got := Spike(math.Inf(1), math.Inf(1), true, 500); got != 0 {
		t.Fatalf("non-finite result: expected 0, got %v", got)
	}
}

func TestSpikeSignFollowsPriceOnly(t *testing.T) {
	// Price up, sell-heavy flow: spike still positive because only |delta|
	// enters the product.
	up := Spike(100, 101, true, -400)
	if up <= 0 {
		t.Fatalf("price up: expected positive spike, got %v", up)
	}
	down := Spike(100, 99, true, 400)
	if down >= 0 {
		t.Fatalf("price down: expected negative spike, got %v", down)
	}
	if math.Abs(up-0.01*400) > 1e-9 {
		t.Fatalf("expected pct*|delta| = 4, got %v", up)
	}
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(4)
	base := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		h.Push(Finalized{Start: base.Add(time.Duration(i) * 5 * time.Second)})
	}

	rows := h.Rows()
	if len(rows) != 4 {
		t.Fatalf("expected 4 retained rows, got %d", len(rows))
	}
	// Oldest-first: entries 3..6 remain.
	for i, row := range rows {
		want := base.Add(time.Duration(i+3) * 5 * time.Second)
		if !row.Start.Equal(want) {
			t.Fatalf("row %d: expected start %v, got %v", i, want, row.Start)
		}
	}
}

func TestHistoryRowsIsACopy(t *testing.T) {
	h := NewHistory(2)
	h.Push(Finalized{Buy: 1})
	rows := h.Rows()
	rows[0].Buy = 99
	if h.Rows()[0].Buy != 1 {
		t.Fatal("mutating the returned slice leaked into history")
	}
}
