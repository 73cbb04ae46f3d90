package controller

// LightsFor maps a phase to its lamp pattern. Pure and total.
//
// Two pairs of phases alias to the same pattern:
//   - StateNsGreen and StateEmergencyGreen both light the north-south green,
//     so emergency traffic always sees the ordinary green aspect.
//   - StateEwYellow and StateEmergencyTransition both light the east-west
//     yellow, keeping the clearance aspect up while the controller settles.
//
// StateInit and any unrecognised phase light nothing. All-off is the
// explicit fail-safe default, never an arbitrary or stale pattern.
func LightsFor(s State) LightPattern {
	switch s {
	case StateNsGreen, StateEmergencyGreen:
		return LightPattern{NsGreen: true}
	case StateNsYellow:
		return LightPattern{NsYellow: true}
	case StateEwGreen:
		return LightPattern{EwGreen: true}
	case StateEwYellow, StateEmergencyTransition:
		return LightPattern{EwYellow: true}
	default:
		return LightPattern{}
	}
}
