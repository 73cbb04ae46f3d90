package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/junction-core/internal/controller"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// SQLiteRepository implements Repository using SQLite.
//
// It stores lamp patterns as JSON in the phase_history table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite phase history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordPhaseChange inserts a new phase history entry.
func (r *SQLiteRepository) RecordPhaseChange(ctx context.Context, from, to controller.State, pattern controller.LightPattern, dwell time.Duration, source string) error {
	if source == "" {
		source = SourceTimer
	}
	if dwell < 0 {
		dwell = 0
	}

	patternJSON, err := json.Marshal(pattern)
	if err != nil {
		return fmt.Errorf("marshalling pattern: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO phase_history (from_state, to_state, pattern, dwell_ms, source) VALUES (?, ?, ?, ?, ?)",
		from.String(),
		to.String(),
		string(patternJSON),
		dwell.Milliseconds(),
		source,
	)
	if err != nil {
		return fmt.Errorf("inserting phase history: %w", err)
	}

	return nil
}

// GetHistory returns recent phase changes, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - limit: Maximum entries to return (default 50, max 500)
func (r *SQLiteRepository) GetHistory(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, from_state, to_state, pattern, dwell_ms, source, created_at
		 FROM phase_history
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying phase history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var patternJSON string
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.FromState, &entry.ToState, &patternJSON, &entry.DwellMS, &entry.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning phase history: %w", err)
		}

		if err := json.Unmarshal([]byte(patternJSON), &entry.Pattern); err != nil {
			return nil, fmt.Errorf("unmarshalling pattern: %w", err)
		}

		timestamp, err := parseHistoryTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating phase history: %w", err)
	}

	return entries, nil
}

// PruneHistory deletes history entries older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Duration to retain (entries older than now-olderThan are deleted)
//
// Returns:
//   - int64: Number of rows deleted
func (r *SQLiteRepository) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM phase_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting phase history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// parseHistoryTimestamp parses a timestamp stored in SQLite.
func parseHistoryTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02 15:04:05", value)
	if fallbackErr == nil {
		return fallback.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
