package accessory

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/glowbridge/glowbridge-core/internal/infrastructure/config"
)

// setupAccessoryTestDB creates an in-memory SQLite database with the accessories table.
func setupAccessoryTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE accessories (
			uuid TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			config TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
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

func testRecord(name string) *Record {
	now := time.Now().UTC().Truncate(time.Second)
	dev := config.Device{
		Name:   name,
		OnURL:  "http://" + name + "/on",
		OffURL: "http://" + name + "/off",
	}
	return &Record{
		UUID:      UUIDFor(dev.StableKey()),
		Name:      name,
		Device:    dev,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSQLiteRepository_UpsertAndGet(t *testing.T) {
	repo := NewSQLiteRepository(setupAccessoryTestDB(t))
	ctx := context.Background()

	record := testRecord("lamp-a")
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	got, err := repo.GetByUUID(ctx, record.UUID)
	if err != nil {
		t.Fatalf("GetByUUID() error: %v", err)
	}
	if got.Name != "lamp-a" {
		t.Errorf("Name = %q, want lamp-a", got.Name)
	}
	if got.Device.OnURL != "http://lamp-a/on" {
		t.Errorf("Device.OnURL = %q, round trip lost configuration", got.Device.OnURL)
	}
	if !got.CreatedAt.Equal(record.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, record.CreatedAt)
	}
}

func TestSQLiteRepository_UpsertReplacesConfig(t *testing.T) {
	repo := NewSQLiteRepository(setupAccessoryTestDB(t))
	ctx := context.Background()

	record := testRecord("lamp-a")
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}

	record.Device.StatusURL = "http://lamp-a/status"
	record.UpdatedAt = record.UpdatedAt.Add(time.Minute)
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("second Upsert() error: %v", err)
	}

	got, err := repo.GetByUUID(ctx, record.UUID)
	if err != nil {
		t.Fatalf("GetByUUID() error: %v", err)
	}
	if got.Device.StatusURL != "http://lamp-a/status" {
		t.Error("upsert did not replace stored configuration")
	}
	if !got.UpdatedAt.Equal(record.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, record.UpdatedAt)
	}
}

func TestSQLiteRepository_ListOrderedByName(t *testing.T) {
	repo := NewSQLiteRepository(setupAccessoryTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := repo.Upsert(ctx, testRecord(name)); err != nil {
			t.Fatalf("Upsert(%s) error: %v", name, err)
		}
	}

	records, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("List() returned %d records, want 3", len(records))
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if records[i].Name != name {
			t.Errorf("records[%d].Name = %q, want %q", i, records[i].Name, name)
		}
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := NewSQLiteRepository(setupAccessoryTestDB(t))
	ctx := context.Background()

	record := testRecord("lamp-a")
	if err := repo.Upsert(ctx, record); err != nil {
		t.Fatalf("Upsert() error: %v", err)
	}
	if err := repo.Delete(ctx, record.UUID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := repo.GetByUUID(ctx, record.UUID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByUUID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_DeleteMissing(t *testing.T) {
	repo := NewSQLiteRepository(setupAccessoryTestDB(t))

	err := repo.Delete(context.Background(), "missing-uuid")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := NewSQLiteRepository(setupAccessoryTestDB(t))

	_, err := repo.GetByUUID(context.Background(), "missing-uuid")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByUUID() error = %v, want ErrNotFound", err)
	}
}
