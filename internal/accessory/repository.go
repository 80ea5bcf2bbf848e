package accessory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glowbridge/glowbridge-core/internal/infrastructure/config"
)

// Repository defines the interface for accessory persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByUUID retrieves an accessory record by its UUID.
	// Returns ErrNotFound if the record does not exist.
	GetByUUID(ctx context.Context, uuid string) (*Record, error)

	// List retrieves all accessory records, ordered by name.
	List(ctx context.Context) ([]Record, error)

	// Upsert inserts the record, or replaces the stored device
	// configuration if the UUID already exists.
	Upsert(ctx context.Context, record *Record) error

	// Delete removes an accessory record by UUID.
	// Returns ErrNotFound if the record does not exist.
	Delete(ctx context.Context, uuid string) error
}

// SQLiteRepository implements Repository using SQLite.
// Device configuration is stored as a JSON document alongside the
// identity columns, so schema changes to the device shape do not
// require migrations.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByUUID retrieves an accessory record by its UUID.
func (r *SQLiteRepository) GetByUUID(ctx context.Context, uuid string) (*Record, error) {
	query := `
		SELECT uuid, name, config, created_at, updated_at
		FROM accessories
		WHERE uuid = ?`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, uuid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying accessory by uuid: %w", err)
	}
	return record, nil
}

// List retrieves all accessory records, ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT uuid, name, config, created_at, updated_at
		FROM accessories
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying accessories: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning accessory: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accessories: %w", err)
	}
	return records, nil
}

// Upsert inserts or replaces an accessory record.
// CreatedAt is preserved on replace; UpdatedAt always takes the new value.
func (r *SQLiteRepository) Upsert(ctx context.Context, record *Record) error {
	configJSON, err := json.Marshal(record.Device)
	if err != nil {
		return fmt.Errorf("marshalling device config: %w", err)
	}

	query := `
		INSERT INTO accessories (uuid, name, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (uuid) DO UPDATE SET
			name = excluded.name,
			config = excluded.config,
			updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		record.UUID,
		record.Name,
		string(configJSON),
		record.CreatedAt.UTC().Format(time.RFC3339),
		record.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting accessory: %w", err)
	}
	return nil
}

// Delete removes an accessory record by UUID.
func (r *SQLiteRepository) Delete(ctx context.Context, uuid string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accessories WHERE uuid = ?`, uuid)
	if err != nil {
		return fmt.Errorf("deleting accessory: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts over *sql.Row and *sql.Rows for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		record     Record
		configJSON string
		createdAt  string
		updatedAt  string
	)

	if err := row.Scan(&record.UUID, &record.Name, &configJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var dev config.Device
	if err := json.Unmarshal([]byte(configJSON), &dev); err != nil {
		return nil, fmt.Errorf("unmarshalling device config: %w", err)
	}
	record.Device = dev

	var err error
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if record.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &record, nil
}
