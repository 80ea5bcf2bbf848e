package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed history repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordStateChange appends a state change for an accessory.
func (r *SQLiteRepository) RecordStateChange(ctx context.Context, accessoryUUID string, on bool, brightness int, source string) error {
	if accessoryUUID == "" {
		return fmt.Errorf("accessory uuid is required")
	}
	if source == "" {
		source = SourceRead
	}

	onValue := 0
	if on {
		onValue = 1
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accessory_state_history (accessory_uuid, is_on, brightness, source) VALUES (?, ?, ?, ?)",
		accessoryUUID,
		onValue,
		brightness,
		source,
	)
	if err != nil {
		return fmt.Errorf("inserting state history: %w", err)
	}

	return nil
}

// GetHistory returns recent state changes for an accessory, ordered newest
// first. A non-positive limit uses the default of 50; limits above 200 are
// clamped.
func (r *SQLiteRepository) GetHistory(ctx context.Context, accessoryUUID string, limit int) ([]Entry, error) {
	if accessoryUUID == "" {
		return nil, fmt.Errorf("accessory uuid is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, accessory_uuid, is_on, brightness, source, created_at
		 FROM accessory_state_history
		 WHERE accessory_uuid = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		accessoryUUID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying state history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			entry     Entry
			onValue   int
			createdAt string
		)

		if err := rows.Scan(&entry.ID, &entry.AccessoryUUID, &onValue, &entry.Brightness, &entry.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning state history: %w", err)
		}
		entry.On = onValue != 0

		timestamp, err := parseHistoryTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating state history: %w", err)
	}

	return entries, nil
}

// PruneHistory deletes history entries older than the given duration.
func (r *SQLiteRepository) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM accessory_state_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting state history: %w", err)
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
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
