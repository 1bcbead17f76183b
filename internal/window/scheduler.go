package window

import (
	"context"
	"time"

	"github.com/yencarnacion/volume-delta/internal/delta"
	"github.com/yencarnacion/volume-delta/internal/metrics"
)

// Sink receives display updates from the scheduler at the poll cadence.
// Update carries the retained history plus the still-open live row; Close
// fires once per window boundary with the history whose last row is the
// window that just finalized.
type Sink interface {
	Update(history []Finalized, live Finalized)
	Close(history []Finalized)
}

// Recorder persists finalized windows. Optional.
type Recorder interface {
	Record(Finalized)
}

// priceWait bounds the startup wait for an initial reference price. If no
// trade arrives in time the scheduler proceeds anyway and the spike metric
// stays zero until data appears.
const priceWait = 2 * time.Second

// Scheduler drives the consumption path: it aligns windows to absolute
// multiples of the configured duration, polls the aggregator for live
// snapshots, and finalizes/resets at each boundary. It never blocks the
// ingestion path beyond the aggregator's own constant-time lock.
type Scheduler struct {
	agg     *delta.Aggregator
	clock   Clock
	dur     time.Duration
	poll    time.Duration
	history *History
	sink    Sink
	rec     Recorder
}

// NewScheduler wires a scheduler. rec may be nil.
func NewScheduler(agg *delta.Aggregator, clock Clock, dur, poll time.Duration, history *History, sink Sink, rec Recorder) *Scheduler {
	return &Scheduler{
		agg:     agg,
		clock:   clock,
		dur:     dur,
		poll:    poll,
		history: history,
		sink:    sink,
		rec:     rec,
	}
}

// Run loops over windows until ctx is canceled. Each boundary is computed as
// the previous end plus the duration, never "now plus duration", so the
// schedule cannot drift no matter how long a finalize pass takes.
func (s *Scheduler) Run(ctx context.Context) error {
	s.awaitFirstPrice(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Align the first window to the next absolute multiple of the duration.
	now := s.clock.Now()
	start := now.Truncate(s.dur)
	if start.Before(now) {
		start = start.Add(s.dur)
	}
	if err := s.sleepUntil(ctx, start); err != nil {
		return err
	}

	var ref float64
	for {
		// The window-open price is the reference for the spike metric,
		// falling back to the previous window's value when no trade printed.
		if p, ok := s.agg.LastPrice(); ok {
			ref = p
		}
		s.agg.Reset()

		end := start.Add(s.dur)
		for {
			now := s.clock.Now()
			if !now.Before(end) {
				break
			}
			s.sink.Update(s.history.Rows(), s.observe(start, ref))

			wait := s.poll
			if rem := end.Sub(now); rem < wait {
				wait = rem
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.clock.After(wait):
			}
		}

		fin := s.observe(start, ref)
		s.history.Push(fin)
		if s.rec != nil {
			s.rec.Record(fin)
		}
		metrics.WindowsClosedTotal.Inc()
		s.sink.Close(s.history.Rows())

		start = end
	}
}

// observe snapshots the aggregator and computes the spike against ref.
func (s *Scheduler) observe(start time.Time, ref float64) Finalized {
	d, buy, sell := s.agg.Snapshot()
	cur, haveCur := s.agg.LastPrice()
	return Finalized{
		Start: start,
		Buy:   buy,
		Sell:  sell,
		Delta: d,
		Spike: Spike(ref, cur, haveCur, d),
	}
}

func (s *Scheduler) awaitFirstPrice(ctx context.Context) {
	deadline := s.clock.Now().Add(priceWait)
	for s.clock.Now().Before(deadline) {
		if _, ok := s.agg.LastPrice(); ok {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.poll):
		}
	}
}

func (s *Scheduler) sleepUntil(ctx context.Context, t time.Time) error {
	rem := t.Sub(s.clock.Now())
	if rem <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(rem):
		return nil
	}
}
