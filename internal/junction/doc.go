// Package junction orchestrates one intersection controller.
//
// The Loop owns the tick cycle: every tick it samples field inputs,
// advances the state machine, and on phase changes drives the lamp panel,
// appends to the phase history, and emits telemetry. Housekeeping
// (history pruning, demand sampling) runs on slower cadences derived
// from the same tick clock, so a simulated run exercises the full
// pipeline identically to a wallclock run.
//
// All side-effect dependencies sit behind small interfaces. The loop
// tolerates missing optional dependencies (recorder, telemetry, logger)
// so a bare controller-plus-lamps deployment still runs.
package junction
