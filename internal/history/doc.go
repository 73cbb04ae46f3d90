// Package history records signal phase changes to local storage.
//
// Every phase transition the controller commits is appended to the
// phase_history table: which phase ended, which began, the lamp pattern
// driven, how long the old phase held, and what triggered the change.
// The table is the cabinet's local audit trail and survives restarts,
// broker outages, and time-series database downtime.
//
// Retention is bounded: the orchestration loop prunes entries older than
// the configured retention window on a slow cadence.
package history
