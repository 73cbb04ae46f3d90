package controller

import (
	"fmt"
	"sync"
	"time"
)

// Controller owns the intersection's phase and phase clock and advances them
// one discrete step per Tick.
//
// The tick model is single-threaded and synchronous: the driver calls Tick,
// Tick samples nothing itself, and the committed (phase, clock) pair is never
// observable half-updated. The controller is driver-agnostic: a wall-clock
// poller and a pulse counter produce identical phase sequences given
// identical input samples and timestamps.
//
// Thread Safety:
//   - All methods are safe for concurrent use. Tick holds the lock for the
//     whole evaluation; State and PhaseElapsed are read-only.
type Controller struct {
	durations Durations

	mu         sync.Mutex
	state      State
	phaseStart time.Time
	started    bool
}

// New creates a Controller in StateInit with the given dwell table.
//
// Returns:
//   - *Controller: Ready for the first Tick
//   - error: If the dwell table fails validation
func New(d Durations) (*Controller, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid durations: %w", err)
	}
	return &Controller{durations: d, state: StateInit}, nil
}

// Tick advances the state machine by exactly one logical step and returns
// the lamp pattern for the (possibly just-changed) phase.
//
// Evaluation order within the tick:
//  1. Reset short-circuit: ResetRequested forces StateInit and zeroes the
//     phase clock, skipping the transition decision entirely. Reset is never
//     combined with, or conditional on, the other inputs.
//  2. Transition decision on (phase, elapsed, inputs).
//  3. Commit: a changed phase zeroes the phase clock.
//  4. Lamp pattern recomputed from the committed phase.
//
// Parameters:
//   - in: This tick's debounced input sample
//   - now: This tick's timestamp (wall clock or synthetic pulse time)
//
// Returns:
//   - LightPattern: The lamp vector to drive for this tick
func (c *Controller) Tick(in Inputs, now time.Time) LightPattern {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		// First tick establishes the phase clock origin.
		c.phaseStart = now
		c.started = true
	}

	if in.ResetRequested {
		c.state = StateInit
		c.phaseStart = now
		return LightsFor(c.state)
	}

	elapsed := now.Sub(c.phaseStart)
	if elapsed < 0 {
		// Phase clock never runs backwards, whatever the driver feeds us.
		elapsed = 0
	}

	next := decide(c.state, elapsed, in, c.durations)
	if next != c.state {
		c.state = next
		c.phaseStart = now
	}

	return LightsFor(c.state)
}

// State returns the current phase. Read-only introspection for logging and
// telemetry; never mutates.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PhaseElapsed returns how long the controller has been in the current
// phase as of now. Always ≥ 0.
func (c *Controller) PhaseElapsed(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return 0
	}
	elapsed := now.Sub(c.phaseStart)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}

// Reset forces the controller to StateInit and zeroes the phase clock,
// independent of Tick. Equivalent to a tick with only ResetRequested set.
func (c *Controller) Reset(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateInit
	c.phaseStart = now
	c.started = true
}

// Lights returns the lamp pattern for the current phase without advancing
// the state machine.
func (c *Controller) Lights() LightPattern {
	c.mu.Lock()
	defer c.mu.Unlock()
	return LightsFor(c.state)
}
