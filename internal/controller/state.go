package controller

// State identifies one phase of the intersection cycle.
//
// Exactly one State is active at a time. It is the only persistent identity
// the controller owns; everything else is recomputed every tick.
type State uint8

// Phase enumeration. The zero value is StateInit so a zero Controller starts
// in the safe all-off phase.
const (
	// StateInit is the startup phase: all lamps off while the controller
	// settles. Also the forced target of an operator reset.
	StateInit State = iota

	// StateNsGreen grants right-of-way to the north-south approach.
	StateNsGreen

	// StateNsYellow clears the north-south approach before yielding.
	StateNsYellow

	// StateEwGreen grants right-of-way to the east-west approach.
	StateEwGreen

	// StateEwYellow clears the east-west approach before yielding.
	StateEwYellow

	// StateEmergencyTransition is the short settle between clearing the
	// east-west approach and granting the emergency green.
	StateEmergencyTransition

	// StateEmergencyGreen holds north-south green for an emergency vehicle.
	StateEmergencyGreen
)

// Valid reports whether s is a member of the phase enumeration.
//
// The transition and lamp functions are total over all State values, but
// anything outside the enumeration takes the fail-safe path (Init / all
// lamps off) rather than an arbitrary pattern.
func (s State) Valid() bool {
	return s <= StateEmergencyGreen
}

// String returns the canonical name of the phase, as used in logs, MQTT
// payloads, and the phase history table.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateNsGreen:
		return "ns_green"
	case StateNsYellow:
		return "ns_yellow"
	case StateEwGreen:
		return "ew_green"
	case StateEwYellow:
		return "ew_yellow"
	case StateEmergencyTransition:
		return "emergency_transition"
	case StateEmergencyGreen:
		return "emergency_green"
	default:
		return "unknown"
	}
}

// Inputs is one tick's worth of debounced boolean facts from the field.
//
// The four flags are independent and sampled fresh every tick; no ordering
// between them is assumed. Demand flags are the logical OR of every physical
// detector on that approach (fan-in happens in the field package).
type Inputs struct {
	// ResetRequested forces the controller back to StateInit this tick,
	// bypassing the transition decision entirely. Highest priority.
	ResetRequested bool

	// EmergencyRequested engages emergency preemption: the controller works
	// towards (and then holds) the north-south green, ignoring demand.
	EmergencyRequested bool

	// NsDemand reports at least one vehicle waiting on the north-south approach.
	NsDemand bool

	// EwDemand reports at least one vehicle waiting on the east-west approach.
	EwDemand bool
}

// LightPattern is the lamp output vector for one tick: four independent
// booleans, one per signal head group.
type LightPattern struct {
	NsGreen  bool `json:"ns_green"`
	NsYellow bool `json:"ns_yellow"`
	EwGreen  bool `json:"ew_green"`
	EwYellow bool `json:"ew_yellow"`
}

// Safe reports whether the pattern satisfies the mutual-exclusion invariant:
// at most one green and at most one yellow lit across the two approaches.
func (p LightPattern) Safe() bool {
	if p.NsGreen && p.EwGreen {
		return false
	}
	if p.NsYellow && p.EwYellow {
		return false
	}
	return true
}
