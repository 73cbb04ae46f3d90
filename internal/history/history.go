package history

import (
	"context"
	"time"

	"github.com/nerrad567/junction-core/internal/controller"
)

// Phase change source values.
const (
	SourceTimer     = "timer"
	SourceDemand    = "demand"
	SourceEmergency = "emergency"
	SourceReset     = "reset"
)

// Entry represents a single recorded phase change.
//
// Each entry stores the full lamp pattern driven when the new phase was
// entered. This provides a local audit trail even when the time-series
// database is unavailable.
type Entry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// FromState is the phase that ended.
	FromState string `json:"from_state"`

	// ToState is the phase that began.
	ToState string `json:"to_state"`

	// Pattern is the lamp pattern driven on entering ToState.
	Pattern controller.LightPattern `json:"pattern"`

	// DwellMS is how long FromState held, in milliseconds.
	DwellMS int64 `json:"dwell_ms"`

	// Source identifies what triggered the change (timer, demand, emergency, reset).
	Source string `json:"source"`

	// CreatedAt is the timestamp of the phase change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Repository stores and retrieves phase change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// RecordPhaseChange appends a phase change to the history.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - from, to: The phases on either side of the transition
	//   - pattern: Lamp pattern driven on entering the new phase
	//   - dwell: How long the old phase held
	//   - source: What triggered the change (timer, demand, emergency, reset)
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	RecordPhaseChange(ctx context.Context, from, to controller.State, pattern controller.LightPattern, dwell time.Duration, source string) error

	// GetHistory returns recent phase changes, ordered newest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []Entry: Ordered newest-first history entries (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	GetHistory(ctx context.Context, limit int) ([]Entry, error)

	// PruneHistory deletes entries older than the given duration.
	//
	// Returns:
	//   - int64: Number of rows deleted
	//   - error: nil on success, otherwise the underlying database error
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}
