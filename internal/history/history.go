package history

import (
	"context"
	"time"
)

// State change source values.
const (
	SourceRead  = "read"
	SourceWrite = "write"
)

// Entry represents a single accessory state change record.
type Entry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// AccessoryUUID is the stable identifier of the accessory.
	AccessoryUUID string `json:"accessory_uuid"`

	// On is whether the accessory was on at the time of the change.
	On bool `json:"on"`

	// Brightness is the canonical brightness level (0-100).
	Brightness int `json:"brightness"`

	// Source identifies how the change was recorded (read, write).
	Source string `json:"source"`

	// CreatedAt is the timestamp of the change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// Repository stores and retrieves accessory state change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// RecordStateChange appends a state change for an accessory.
	RecordStateChange(ctx context.Context, accessoryUUID string, on bool, brightness int, source string) error

	// GetHistory returns recent state changes for the accessory,
	// ordered newest first. The limit may be clamped by the
	// implementation.
	GetHistory(ctx context.Context, accessoryUUID string, limit int) ([]Entry, error)

	// PruneHistory deletes entries older than the given duration and
	// returns the number of rows removed.
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}
