package driver

import (
	"context"
	"time"
)

// Pulse delivers ticks from a synthetic clock.
//
// Each tick advances exactly one period from a fixed epoch, regardless of
// how much real time passes between deliveries. Tick n carries the
// timestamp epoch + n*period, so a run over the same inputs produces
// byte-identical phase timelines every time.
//
// The pace interval controls delivery cadence in real time and is
// independent of the synthetic period: a 50ms period paced at 1ms runs
// the simulation 50x faster than real time. A pace of zero free-runs
// with no sleeping, for offline replay.
type Pulse struct {
	epoch  time.Time
	period time.Duration
	pace   time.Duration

	n int64
}

// NewPulse creates a synthetic-clock driver.
//
// Parameters:
//   - epoch: Timestamp of tick zero
//   - period: Synthetic time advanced per tick (must be positive)
//   - pace: Real-time delay between ticks (zero free-runs)
func NewPulse(epoch time.Time, period, pace time.Duration) *Pulse {
	if period <= 0 {
		period = time.Millisecond
	}
	return &Pulse{epoch: epoch, period: period, pace: pace}
}

// Run delivers synthetic ticks until ctx is cancelled.
func (p *Pulse) Run(ctx context.Context, tick TickFunc) error {
	if p.pace <= 0 {
		return p.freeRun(ctx, tick)
	}

	ticker := time.NewTicker(p.pace)
	defer ticker.Stop()

	tick(p.next())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tick(p.next())
		}
	}
}

// freeRun pulses as fast as the loop spins, checking for cancellation
// between ticks.
func (p *Pulse) freeRun(ctx context.Context, tick TickFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		tick(p.next())
	}
}

// next returns the timestamp of the next tick and advances the counter.
func (p *Pulse) next() time.Time {
	t := p.epoch.Add(time.Duration(p.n) * p.period)
	p.n++
	return t
}

// Elapsed returns how much synthetic time has been delivered so far.
func (p *Pulse) Elapsed() time.Duration {
	return time.Duration(p.n) * p.period
}
