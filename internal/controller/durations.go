package controller

import (
	"fmt"
	"time"
)

// Default phase dwell times. The asymmetry between the green phases is
// deliberate: the north-south approach is the favoured direction.
const (
	// DefaultInit is the settle time spent in StateInit before the first green.
	DefaultInit = 100 * time.Millisecond

	// DefaultNsGreen is the minimum north-south green dwell.
	DefaultNsGreen = 10 * time.Second

	// DefaultEwGreen is the minimum east-west green dwell.
	DefaultEwGreen = 6 * time.Second

	// DefaultYellow is the clearance dwell, identical for both approaches.
	DefaultYellow = 2 * time.Second

	// DefaultEmergencySettle is the pause between the east-west clearance
	// and the emergency green.
	DefaultEmergencySettle = 500 * time.Millisecond
)

// Durations is the per-phase minimum dwell table.
//
// A phase never transitions away from itself before its dwell has elapsed
// (the operator reset is the one exception). The two yellow dwells must be
// equal: yellow clearance is a safety interval and does not vary by approach
// or by traffic.
type Durations struct {
	Init            time.Duration
	NsGreen         time.Duration
	NsYellow        time.Duration
	EwGreen         time.Duration
	EwYellow        time.Duration
	EmergencySettle time.Duration
}

// DefaultDurations returns the standard dwell table.
func DefaultDurations() Durations {
	return Durations{
		Init:            DefaultInit,
		NsGreen:         DefaultNsGreen,
		NsYellow:        DefaultYellow,
		EwGreen:         DefaultEwGreen,
		EwYellow:        DefaultYellow,
		EmergencySettle: DefaultEmergencySettle,
	}
}

// For returns the minimum dwell for the given phase.
//
// StateEmergencyGreen has no dwell of its own: it is held by the emergency
// input, not by the clock. Unknown phases also return zero so the fail-safe
// transition out of them is never time-gated.
func (d Durations) For(s State) time.Duration {
	switch s {
	case StateInit:
		return d.Init
	case StateNsGreen:
		return d.NsGreen
	case StateNsYellow:
		return d.NsYellow
	case StateEwGreen:
		return d.EwGreen
	case StateEwYellow:
		return d.EwYellow
	case StateEmergencyTransition:
		return d.EmergencySettle
	default:
		return 0
	}
}

// Validate checks the dwell table for configuration errors.
//
// Returns:
//   - error: Description of the first problem found, or nil if valid
func (d Durations) Validate() error {
	if d.Init < 0 || d.NsGreen < 0 || d.NsYellow < 0 ||
		d.EwGreen < 0 || d.EwYellow < 0 || d.EmergencySettle < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if d.NsYellow != d.EwYellow {
		return fmt.Errorf("yellow dwell must be identical for both approaches (ns=%v ew=%v)",
			d.NsYellow, d.EwYellow)
	}
	if d.NsGreen == 0 || d.EwGreen == 0 || d.NsYellow == 0 {
		return fmt.Errorf("green and yellow dwells must be positive")
	}
	return nil
}
