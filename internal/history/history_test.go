package history

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupHistoryTestDB creates an in-memory SQLite database with the
// accessory_state_history table.
func setupHistoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE accessory_state_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			accessory_uuid TEXT NOT NULL,
			is_on INTEGER NOT NULL,
			brightness INTEGER NOT NULL,
			source TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;
		CREATE INDEX idx_state_history_accessory
			ON accessory_state_history (accessory_uuid, created_at DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// insertHistoryRow inserts a history row with a specific timestamp.
func insertHistoryRow(t *testing.T, db *sql.DB, uuid string, on bool, brightness int, source string, createdAt time.Time) {
	t.Helper()

	onValue := 0
	if on {
		onValue = 1
	}
	_, err := db.Exec(
		"INSERT INTO accessory_state_history (accessory_uuid, is_on, brightness, source, created_at) VALUES (?, ?, ?, ?, ?)",
		uuid,
		onValue,
		brightness,
		source,
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("failed to insert history row: %v", err)
	}
}

func TestRecordStateChange(t *testing.T) {
	repo := NewSQLiteRepository(setupHistoryTestDB(t))
	ctx := context.Background()

	if err := repo.RecordStateChange(ctx, "uuid-1", true, 75, SourceWrite); err != nil {
		t.Fatalf("RecordStateChange() error: %v", err)
	}

	entries, err := repo.GetHistory(ctx, "uuid-1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("GetHistory() returned %d entries, want 1", len(entries))
	}
	entry := entries[0]
	if !entry.On || entry.Brightness != 75 || entry.Source != SourceWrite {
		t.Errorf("entry = %+v, want on=true brightness=75 source=write", entry)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want database default timestamp")
	}
}

func TestRecordStateChange_RequiresUUID(t *testing.T) {
	repo := NewSQLiteRepository(setupHistoryTestDB(t))

	if err := repo.RecordStateChange(context.Background(), "", true, 50, SourceRead); err == nil {
		t.Error("RecordStateChange() with empty uuid should fail")
	}
}

func TestGetHistory_NewestFirst(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteRepository(db)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	insertHistoryRow(t, db, "uuid-1", false, 0, SourceRead, base)
	insertHistoryRow(t, db, "uuid-1", true, 50, SourceWrite, base.Add(time.Minute))
	insertHistoryRow(t, db, "uuid-1", true, 80, SourceWrite, base.Add(2*time.Minute))
	insertHistoryRow(t, db, "uuid-2", true, 10, SourceRead, base.Add(3*time.Minute))

	entries, err := repo.GetHistory(context.Background(), "uuid-1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("GetHistory() returned %d entries, want 3", len(entries))
	}
	if entries[0].Brightness != 80 || entries[2].Brightness != 0 {
		t.Errorf("entries not ordered newest first: %+v", entries)
	}
}

func TestGetHistory_ClampsLimit(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteRepository(db)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		insertHistoryRow(t, db, "uuid-1", true, i, SourceRead, base.Add(time.Duration(i)*time.Second))
	}

	entries, err := repo.GetHistory(context.Background(), "uuid-1", 2)
	if err != nil {
		t.Fatalf("GetHistory() error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("GetHistory(limit=2) returned %d entries", len(entries))
	}

	// Oversized limits are clamped rather than rejected.
	if _, err := repo.GetHistory(context.Background(), "uuid-1", 10000); err != nil {
		t.Errorf("GetHistory(limit=10000) error: %v", err)
	}
}

func TestPruneHistory(t *testing.T) {
	db := setupHistoryTestDB(t)
	repo := NewSQLiteRepository(db)

	now := time.Now().UTC()
	insertHistoryRow(t, db, "uuid-1", true, 50, SourceRead, now.Add(-48*time.Hour))
	insertHistoryRow(t, db, "uuid-1", true, 60, SourceRead, now)

	pruned, err := repo.PruneHistory(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("PruneHistory() error: %v", err)
	}
	if pruned != 1 {
		t.Errorf("PruneHistory() = %d, want 1", pruned)
	}

	entries, err := repo.GetHistory(context.Background(), "uuid-1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("remaining entries = %d, want 1", len(entries))
	}
}

func TestPruneHistory_RejectsNonPositiveDuration(t *testing.T) {
	repo := NewSQLiteRepository(setupHistoryTestDB(t))

	if _, err := repo.PruneHistory(context.Background(), 0); err == nil {
		t.Error("PruneHistory(0) should fail")
	}
}

// failingRepository always errors, to exercise the recorder's swallow path.
type failingRepository struct{}

func (failingRepository) RecordStateChange(context.Context, string, bool, int, string) error {
	return errors.New("history: boom")
}

func (failingRepository) GetHistory(context.Context, string, int) ([]Entry, error) {
	return nil, errors.New("history: boom")
}

func (failingRepository) PruneHistory(context.Context, time.Duration) (int64, error) {
	return 0, errors.New("history: boom")
}

// telemetrySpy captures telemetry writes.
type telemetrySpy struct {
	mu     sync.Mutex
	writes int
}

func (s *telemetrySpy) WriteAccessoryState(string, bool, int, string) {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
}

func TestRecorder_WritesRepositoryAndTelemetry(t *testing.T) {
	repo := NewSQLiteRepository(setupHistoryTestDB(t))
	spy := &telemetrySpy{}
	recorder := NewRecorder(repo)
	recorder.SetTelemetry(spy)

	recorder.RecordState(context.Background(), "uuid-1", true, 40, SourceWrite)

	entries, err := repo.GetHistory(context.Background(), "uuid-1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("recorded %d entries, want 1", len(entries))
	}
	spy.mu.Lock()
	defer spy.mu.Unlock()
	if spy.writes != 1 {
		t.Errorf("telemetry writes = %d, want 1", spy.writes)
	}
}

func TestRecorder_SwallowsPersistenceErrors(t *testing.T) {
	recorder := NewRecorder(failingRepository{})

	// Must not panic or surface the error.
	recorder.RecordState(context.Background(), "uuid-1", true, 40, SourceWrite)
}
