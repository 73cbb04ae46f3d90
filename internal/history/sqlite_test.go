package history

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/junction-core/internal/controller"
)

// openTestDB creates an in-memory SQLite database with the phase_history schema.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
		CREATE TABLE phase_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			from_state TEXT    NOT NULL,
			to_state   TEXT    NOT NULL,
			pattern    TEXT    NOT NULL,
			dwell_ms   INTEGER NOT NULL DEFAULT 0,
			source     TEXT    NOT NULL DEFAULT 'timer',
			created_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

func TestRecordAndGetHistory(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()

	pattern := controller.LightsFor(controller.StateNsGreen)
	err := repo.RecordPhaseChange(ctx, controller.StateInit, controller.StateNsGreen, pattern, 100*time.Millisecond, SourceTimer)
	if err != nil {
		t.Fatalf("RecordPhaseChange() error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("GetHistory() returned %d entries, want 1", len(entries))
	}

	entry := entries[0]
	if entry.FromState != "init" {
		t.Errorf("FromState = %q, want %q", entry.FromState, "init")
	}
	if entry.ToState != "ns_green" {
		t.Errorf("ToState = %q, want %q", entry.ToState, "ns_green")
	}
	if !entry.Pattern.NsGreen {
		t.Error("Pattern.NsGreen = false, want true")
	}
	if entry.DwellMS != 100 {
		t.Errorf("DwellMS = %d, want 100", entry.DwellMS)
	}
	if entry.Source != SourceTimer {
		t.Errorf("Source = %q, want %q", entry.Source, SourceTimer)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want a timestamp")
	}
}

func TestGetHistoryNewestFirst(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()

	transitions := []struct {
		from, to controller.State
	}{
		{controller.StateInit, controller.StateNsGreen},
		{controller.StateNsGreen, controller.StateNsYellow},
		{controller.StateNsYellow, controller.StateEwGreen},
	}
	for _, tr := range transitions {
		pattern := controller.LightsFor(tr.to)
		if err := repo.RecordPhaseChange(ctx, tr.from, tr.to, pattern, time.Second, SourceTimer); err != nil {
			t.Fatalf("RecordPhaseChange() error = %v", err)
		}
	}

	entries, err := repo.GetHistory(ctx, 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("GetHistory() returned %d entries, want 3", len(entries))
	}

	// Newest first: the last recorded transition comes back first.
	if entries[0].ToState != "ew_green" {
		t.Errorf("entries[0].ToState = %q, want %q", entries[0].ToState, "ew_green")
	}
	if entries[2].ToState != "ns_green" {
		t.Errorf("entries[2].ToState = %q, want %q", entries[2].ToState, "ns_green")
	}
}

func TestGetHistoryLimit(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		pattern := controller.LightsFor(controller.StateNsGreen)
		if err := repo.RecordPhaseChange(ctx, controller.StateEwYellow, controller.StateNsGreen, pattern, time.Second, SourceTimer); err != nil {
			t.Fatalf("RecordPhaseChange() error = %v", err)
		}
	}

	entries, err := repo.GetHistory(ctx, 2)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("GetHistory(limit=2) returned %d entries, want 2", len(entries))
	}
}

func TestRecordDefaultsSource(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()

	pattern := controller.LightsFor(controller.StateNsGreen)
	if err := repo.RecordPhaseChange(ctx, controller.StateInit, controller.StateNsGreen, pattern, 0, ""); err != nil {
		t.Fatalf("RecordPhaseChange() error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, 1)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if entries[0].Source != SourceTimer {
		t.Errorf("Source = %q, want default %q", entries[0].Source, SourceTimer)
	}
}

func TestRecordClampsNegativeDwell(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))
	ctx := context.Background()

	pattern := controller.LightsFor(controller.StateInit)
	if err := repo.RecordPhaseChange(ctx, controller.StateNsGreen, controller.StateInit, pattern, -time.Second, SourceReset); err != nil {
		t.Fatalf("RecordPhaseChange() error = %v", err)
	}

	entries, err := repo.GetHistory(ctx, 1)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if entries[0].DwellMS != 0 {
		t.Errorf("DwellMS = %d, want 0", entries[0].DwellMS)
	}
}

func TestPruneHistory(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	// Insert one old row directly, one fresh row through the repository.
	old := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)
	_, err := db.Exec(
		"INSERT INTO phase_history (from_state, to_state, pattern, dwell_ms, source, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		"init", "ns_green", "{}", 100, SourceTimer, old,
	)
	if err != nil {
		t.Fatalf("inserting old row: %v", err)
	}

	pattern := controller.LightsFor(controller.StateNsGreen)
	if err := repo.RecordPhaseChange(ctx, controller.StateInit, controller.StateNsGreen, pattern, 0, SourceTimer); err != nil {
		t.Fatalf("RecordPhaseChange() error = %v", err)
	}

	deleted, err := repo.PruneHistory(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneHistory() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("PruneHistory() deleted = %d, want 1", deleted)
	}

	entries, err := repo.GetHistory(ctx, 10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("after prune: %d entries, want 1", len(entries))
	}
}

func TestPruneHistoryInvalidDuration(t *testing.T) {
	repo := NewSQLiteRepository(openTestDB(t))

	if _, err := repo.PruneHistory(context.Background(), 0); err == nil {
		t.Error("PruneHistory(0) expected error")
	}
}
