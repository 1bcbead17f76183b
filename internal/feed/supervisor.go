package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/yencarnacion/volume-delta/internal/metrics"
)

// ErrBudgetExhausted is returned by Supervisor.Run when the retry budget
// runs out. Ingestion stops; callers may keep rendering last-known state.
var ErrBudgetExhausted = errors.New("feed retry budget exhausted")

// Outcome tags how a connection attempt ended. Using an explicit tag instead
// of an error taxonomy keeps the retry loop's termination conditions in one
// switch.
type Outcome int

const (
	OutcomeClean Outcome = iota
	OutcomeCancelled
	OutcomeTransient
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClean:
		return "clean"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeTransient:
		return "transient"
	default:
		return "failed"
	}
}

// ConnectFunc runs one full connection attempt to completion, typically
// (*Client).Run bound to a handler. It must release the connection's
// resources before returning.
type ConnectFunc func(ctx context.Context) error

// Supervisor owns the feed lifecycle: connect, dispatch, and reconnect under
// a bounded-retry policy.
//
//   - cancellation stops immediately, no retry
//   - connection resets retry after the delay without consuming the budget
//   - other errors consume the budget; exhaustion surfaces ErrBudgetExhausted
//   - a clean disconnect refills the budget and reconnects immediately
type Supervisor struct {
	connect ConnectFunc
	budget  int
	delay   time.Duration
	log     zerolog.Logger
}

// NewSupervisor wires a supervisor around connect with the given retry
// budget and fixed retry delay.
func NewSupervisor(connect ConnectFunc, budget int, delay time.Duration, log zerolog.Logger) *Supervisor {
	if budget < 1 {
		budget = 1
	}
	return &Supervisor{connect: connect, budget: budget, delay: delay, log: log}
}

// Run loops connection attempts until cancellation or budget exhaustion.
func (s *Supervisor) Run(ctx context.Context) error {
	remaining := s.budget
	for {
		err := s.connect(ctx)
		outcome := classifyOutcome(ctx, err)
		metrics.ReconnectsTotal.WithLabelValues(outcome.String()).Inc()

		switch outcome {
		case OutcomeCancelled:
			return ctx.Err()

		case OutcomeClean:
			remaining = s.budget
			s.log.Info().Msg("feed disconnected cleanly, reconnecting")

		case OutcomeTransient:
			s.log.Warn().Err(err).Dur("delay", s.delay).Msg("feed connection reset, retrying")
			if werr := s.wait(ctx); werr != nil {
				return werr
			}

		case OutcomeFailed:
			remaining--
			if remaining <= 0 {
				return fmt.Errorf("%w: %v", ErrBudgetExhausted, err)
			}
			s.log.Warn().Err(err).Int("remaining", remaining).Dur("delay", s.delay).Msg("feed error, retrying")
			if werr := s.wait(ctx); werr != nil {
				return werr
			}
		}
	}
}

func (s *Supervisor) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		return nil
	}
}

func classifyOutcome(ctx context.Context, err error) Outcome {
	switch {
	case ctx.Err() != nil:
		return OutcomeCancelled
	case err == nil:
		return OutcomeClean
	case isReset(err):
		return OutcomeTransient
	default:
		return OutcomeFailed
	}
}

// isReset matches transport-level reset errors, expected under normal
// network conditions and not worth a budget slot.
func isReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) ||
		strings.Contains(err.Error(), "connection reset by peer")
}
