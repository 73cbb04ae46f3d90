// Package controller implements the signal phase state machine for a single
// four-way intersection.
//
// This package manages:
//   - The phase enumeration (Init, NsGreen, NsYellow, EwGreen, EwYellow,
//     EmergencyTransition, EmergencyGreen)
//   - The phase clock (time elapsed in the current phase)
//   - The transition decision (timer-gated, demand-gated, with emergency
//     preemption and an operator reset that bypasses everything else)
//   - The mapping from phase to lamp pattern
//
// # Architecture
//
// The package is the pure core of junctiond. It performs no I/O: one call to
// Tick consumes a debounced input sample and a timestamp and returns the lamp
// pattern to drive. Detector fan-in, MQTT, persistence, and telemetry live in
// the surrounding packages.
//
//	DetectorBank → Controller.Tick → LampPanel
//
// # Safety Invariants
//
//   - At most one of {NS green, EW green} and at most one of
//     {NS yellow, EW yellow} is ever lit.
//   - Switching into or out of emergency mode always passes through a full
//     yellow clearance when the east-west approach holds green.
//   - Any unrecognised phase value decides to Init and lights nothing.
//
// # Usage
//
//	ctl, err := controller.New(controller.DefaultDurations())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pattern := ctl.Tick(controller.Inputs{EwDemand: true}, time.Now())
package controller
