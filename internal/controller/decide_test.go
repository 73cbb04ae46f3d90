package controller

import (
	"testing"
	"time"
)

// allStates includes every defined phase plus two out-of-range values to
// exercise the fail-safe defaults.
var allStates = []State{
	StateInit, StateNsGreen, StateNsYellow, StateEwGreen, StateEwYellow,
	StateEmergencyTransition, StateEmergencyGreen,
	State(42), State(255),
}

// allInputs enumerates every combination of the three flags decide can see.
// Reset is excluded: Tick short-circuits it before decide runs.
func allInputs() []Inputs {
	var combos []Inputs
	for _, emergency := range []bool{false, true} {
		for _, ns := range []bool{false, true} {
			for _, ew := range []bool{false, true} {
				combos = append(combos, Inputs{
					EmergencyRequested: emergency,
					NsDemand:           ns,
					EwDemand:           ew,
				})
			}
		}
	}
	return combos
}

func TestDecide_Total(t *testing.T) {
	d := DefaultDurations()
	elapsedValues := []time.Duration{0, time.Millisecond, 2 * time.Second, time.Hour}

	for _, s := range allStates {
		for _, in := range allInputs() {
			for _, elapsed := range elapsedValues {
				next := decide(s, elapsed, in, d)
				if !next.Valid() {
					t.Errorf("decide(%v, %v, %+v) = %v, not a defined phase", s, elapsed, in, next)
				}
			}
		}
	}
}

func TestDecide_UnknownStateFailsSafe(t *testing.T) {
	d := DefaultDurations()

	for _, s := range []State{State(42), State(255)} {
		if got := decide(s, 0, Inputs{}, d); got != StateInit {
			t.Errorf("normal branch: decide(%v) = %v, want %v", s, got, StateInit)
		}
		if got := decide(s, 0, Inputs{EmergencyRequested: true}, d); got != StateEmergencyGreen {
			t.Errorf("emergency branch: decide(%v) = %v, want %v", s, got, StateEmergencyGreen)
		}
	}
}

func TestDecideNormal_Table(t *testing.T) {
	d := DefaultDurations()

	tests := []struct {
		name    string
		state   State
		elapsed time.Duration
		inputs  Inputs
		want    State
	}{
		{"init holds before settle", StateInit, 50 * time.Millisecond, Inputs{}, StateInit},
		{"init to ns green after settle", StateInit, 100 * time.Millisecond, Inputs{}, StateNsGreen},
		{"ns green holds before dwell", StateNsGreen, 9 * time.Second, Inputs{EwDemand: true}, StateNsGreen},
		{"ns green holds without ew demand", StateNsGreen, time.Hour, Inputs{}, StateNsGreen},
		{"ns green yields on dwell and demand", StateNsGreen, 10 * time.Second, Inputs{EwDemand: true}, StateNsYellow},
		{"ns demand alone never ends ns green", StateNsGreen, time.Hour, Inputs{NsDemand: true}, StateNsGreen},
		{"ns yellow holds before clearance", StateNsYellow, time.Second, Inputs{}, StateNsYellow},
		{"ns yellow ignores demand", StateNsYellow, time.Second, Inputs{NsDemand: true, EwDemand: true}, StateNsYellow},
		{"ns yellow to ew green", StateNsYellow, 2 * time.Second, Inputs{}, StateEwGreen},
		{"ew green holds before dwell", StateEwGreen, 5 * time.Second, Inputs{NsDemand: true}, StateEwGreen},
		{"ew green holds without ns demand", StateEwGreen, time.Hour, Inputs{EwDemand: true}, StateEwGreen},
		{"ew green yields on dwell and demand", StateEwGreen, 6 * time.Second, Inputs{NsDemand: true}, StateEwYellow},
		{"ew yellow to ns green", StateEwYellow, 2 * time.Second, Inputs{}, StateNsGreen},
		{"emergency settle resumes to ns green", StateEmergencyTransition, 0, Inputs{}, StateNsGreen},
		{"emergency green resumes to ns green", StateEmergencyGreen, 0, Inputs{}, StateNsGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decide(tt.state, tt.elapsed, tt.inputs, d); got != tt.want {
				t.Errorf("decide(%v, %v, %+v) = %v, want %v",
					tt.state, tt.elapsed, tt.inputs, got, tt.want)
			}
		})
	}
}

func TestDecideEmergency_Table(t *testing.T) {
	d := DefaultDurations()
	emergency := Inputs{EmergencyRequested: true, NsDemand: true, EwDemand: true}

	tests := []struct {
		name    string
		state   State
		elapsed time.Duration
		want    State
	}{
		{"ns green holds as emergency green", StateNsGreen, 0, StateEmergencyGreen},
		{"emergency green holds", StateEmergencyGreen, time.Hour, StateEmergencyGreen},
		{"ew green forced to yellow", StateEwGreen, 0, StateEwYellow},
		{"ew yellow waits out clearance", StateEwYellow, time.Second, StateEwYellow},
		{"ew yellow to settle after clearance", StateEwYellow, 2 * time.Second, StateEmergencyTransition},
		{"settle holds before expiry", StateEmergencyTransition, 400 * time.Millisecond, StateEmergencyTransition},
		{"settle to emergency green", StateEmergencyTransition, 500 * time.Millisecond, StateEmergencyGreen},
		{"ns yellow skips straight to emergency green", StateNsYellow, 0, StateEmergencyGreen},
		{"init goes directly to emergency green", StateInit, 0, StateEmergencyGreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decide(tt.state, tt.elapsed, emergency, d); got != tt.want {
				t.Errorf("decide(%v, %v, emergency) = %v, want %v",
					tt.state, tt.elapsed, got, tt.want)
			}
		})
	}
}

// The demand flags must be ignored entirely while the emergency line is up.
func TestDecideEmergency_IgnoresDemand(t *testing.T) {
	d := DefaultDurations()

	for _, s := range allStates {
		for _, ns := range []bool{false, true} {
			for _, ew := range []bool{false, true} {
				in := Inputs{EmergencyRequested: true, NsDemand: ns, EwDemand: ew}
				base := decide(s, time.Second, Inputs{EmergencyRequested: true}, d)
				if got := decide(s, time.Second, in, d); got != base {
					t.Errorf("decide(%v, ns=%v, ew=%v) = %v, demand changed the emergency decision (want %v)",
						s, ns, ew, got, base)
				}
			}
		}
	}
}
