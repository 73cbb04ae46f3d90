package driver

import (
	"context"
	"time"
)

// TickFunc is called once per tick with the time the tick represents.
//
// For the wallclock driver this is real time; for the pulse driver it is
// a synthetic timestamp derived from the tick count. Implementations must
// not retain the callback after Run returns.
type TickFunc func(now time.Time)

// Driver delivers a steady stream of ticks to the controller loop.
//
// Run blocks until ctx is cancelled, invoking tick at the driver's cadence.
// It returns nil on clean cancellation.
type Driver interface {
	Run(ctx context.Context, tick TickFunc) error
}
