package controller

import "time"

// decide is the pure transition function: (phase, elapsed, inputs) → next
// phase. It is total: every phase value, including corrupted ones, maps to
// a defined result. It has no side effects.
//
// Reset is not handled here. The caller short-circuits a reset before the
// decision runs, so decide never sees that tick.
func decide(s State, elapsed time.Duration, in Inputs, d Durations) State {
	if in.EmergencyRequested {
		return decideEmergency(s, elapsed, d)
	}
	return decideNormal(s, elapsed, in, d)
}

// decideEmergency works the intersection towards (and then holds) the
// north-south green. Approach demand is ignored entirely while the
// emergency line is active.
func decideEmergency(s State, elapsed time.Duration, d Durations) State {
	switch s {
	case StateNsGreen, StateEmergencyGreen:
		// Already the safe direction; hold it.
		return StateEmergencyGreen

	case StateEwGreen:
		// Never jump green-to-green. Force a full yellow clearance first.
		return StateEwYellow

	case StateEwYellow:
		// Wait out the clearance already in progress.
		if elapsed >= d.For(StateEwYellow) {
			return StateEmergencyTransition
		}
		return StateEwYellow

	case StateEmergencyTransition:
		if elapsed >= d.For(StateEmergencyTransition) {
			return StateEmergencyGreen
		}
		return StateEmergencyTransition

	case StateNsYellow:
		// The north-south approach is the target, so its clearance towards
		// red is pointless. Skip straight to the emergency green.
		return StateEmergencyGreen

	default:
		// StateInit and anything unrecognised: go directly to the safe
		// emergency direction.
		return StateEmergencyGreen
	}
}

// decideNormal runs the demand-gated cycle. A green phase yields only when
// its minimum dwell has elapsed AND the opposing approach has demand; absent
// opposing demand it holds green indefinitely. Yellow phases are purely
// time-gated; traffic must never shorten or stretch a clearance.
func decideNormal(s State, elapsed time.Duration, in Inputs, d Durations) State {
	switch s {
	case StateInit:
		if elapsed >= d.For(StateInit) {
			return StateNsGreen
		}
		return StateInit

	case StateNsGreen:
		if elapsed >= d.For(StateNsGreen) && in.EwDemand {
			return StateNsYellow
		}
		return StateNsGreen

	case StateNsYellow:
		if elapsed >= d.For(StateNsYellow) {
			return StateEwGreen
		}
		return StateNsYellow

	case StateEwGreen:
		if elapsed >= d.For(StateEwGreen) && in.NsDemand {
			return StateEwYellow
		}
		return StateEwGreen

	case StateEwYellow:
		if elapsed >= d.For(StateEwYellow) {
			return StateNsGreen
		}
		return StateEwYellow

	case StateEmergencyTransition, StateEmergencyGreen:
		// The emergency line just dropped. Resume the cycle from the
		// north-south green without re-running a clearance: the intersection
		// is already clear in that direction.
		return StateNsGreen

	default:
		// Corrupted or future phase value: fail safe.
		return StateInit
	}
}
