package driver

import (
	"context"
	"time"
)

// Wallclock delivers ticks from real time using a time.Ticker.
//
// This is the production driver: tick timestamps come from the system
// clock, so phase dwell times track real elapsed time even if individual
// ticks are delayed by scheduling jitter.
type Wallclock struct {
	interval time.Duration
}

// NewWallclock creates a real-time driver ticking at the given interval.
// Intervals below 1ms are clamped to 1ms to keep the ticker valid.
func NewWallclock(interval time.Duration) *Wallclock {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return &Wallclock{interval: interval}
}

// Run delivers ticks until ctx is cancelled.
//
// The first tick fires immediately so the controller establishes its
// phase clock without waiting a full interval.
func (w *Wallclock) Run(ctx context.Context, tick TickFunc) error {
	// Immediate first tick
	tick(time.Now())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			tick(t)
		}
	}
}
