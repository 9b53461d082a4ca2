package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunImmediateTick(t *testing.T) {
	loop := New(Options{Interval: time.Hour, Immediate: true}, zerolog.Nop())

	var ticks atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, func(ctx context.Context, now time.Time) error {
			ticks.Add(1)
			cancel()
			return nil
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}

	if ticks.Load() != 1 {
		t.Fatalf("expected exactly one immediate tick, got %d", ticks.Load())
	}
}

func TestRunStopsWithoutTickWhenCancelled(t *testing.T) {
	loop := New(Options{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ticks atomic.Int64
	err := loop.Run(ctx, func(ctx context.Context, now time.Time) error {
		ticks.Add(1)
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ticks.Load() != 0 {
		t.Fatal("no tick should run after cancellation")
	}
}

func TestRunSerializesSlowTicks(t *testing.T) {
	loop := New(Options{Interval: 10 * time.Millisecond}, zerolog.Nop())

	var inFlight atomic.Int64
	var overlapped atomic.Bool
	var ticks atomic.Int64

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, func(ctx context.Context, now time.Time) error {
			if inFlight.Add(1) > 1 {
				overlapped.Store(true)
			}
			// Hold the cycle across several ticker firings.
			time.Sleep(35 * time.Millisecond)
			inFlight.Add(-1)
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}

	if overlapped.Load() {
		t.Fatal("cycles must never overlap, even when a tick outlives the interval")
	}
}

func TestRunContinuesAfterTickError(t *testing.T) {
	loop := New(Options{Interval: 5 * time.Millisecond, Immediate: true}, zerolog.Nop())

	var ticks atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, func(ctx context.Context, now time.Time) error {
			if ticks.Add(1) >= 2 {
				cancel()
			}
			return errors.New("tick failed")
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}

	if ticks.Load() < 2 {
		t.Fatal("a tick error must not stop the loop")
	}
}
