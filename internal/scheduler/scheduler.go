package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc is invoked once per polling cycle.
type TickFunc func(ctx context.Context, now time.Time) error

// Options tune loop behaviour.
type Options struct {
	Interval time.Duration
	// Immediate runs the first tick at start instead of waiting one interval.
	Immediate bool
}

// Loop drives a fixed-interval polling job. Cycles are serialized: a tick
// that outlives the interval coalesces the missed firings instead of
// overlapping with them.
type Loop struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Loop instance.
func New(opts Options, logger zerolog.Logger) *Loop {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Loop{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the tick function until ctx is cancelled. Tick errors
// are logged and the loop continues; only cancellation stops it.
func (l *Loop) Run(ctx context.Context, tick TickFunc) error {
	if l.opts.Immediate {
		l.execute(ctx, tick)
	}

	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.execute(ctx, tick)
		}
	}
}

func (l *Loop) execute(ctx context.Context, tick TickFunc) {
	if ctx.Err() != nil {
		return
	}
	if err := tick(ctx, time.Now()); err != nil {
		l.logger.Error().Err(err).Msg("tick execution failed")
	}
}
