// Package driver provides tick sources for the signal controller.
//
// The controller core is clocked externally: something must call its Tick
// method at a regular cadence, passing the current time. This package
// supplies two interchangeable sources:
//
//   - Wallclock: real time, backed by time.Ticker. Used in production.
//   - Pulse: a synthetic clock that advances a fixed period per tick,
//     independent of real time. Used for simulation and deterministic
//     replay, where a run must produce identical timestamps every time.
//
// Both satisfy the Driver interface and deliver ticks until their context
// is cancelled. The controller cannot tell them apart: it only ever sees
// a monotonically advancing time.Time.
package driver
