package accessory

import (
	"time"

	"github.com/google/uuid"

	"github.com/glowbridge/glowbridge-core/internal/infrastructure/config"
)

// uuidPrefix namespaces accessory identity keys so Glowbridge UUIDs never
// collide with other SHA-1 UUIDs derived from the same raw key.
const uuidPrefix = "glowbridge:"

// Record is a persisted accessory: one configured device plus the stable
// identity and bookkeeping timestamps attached to it.
type Record struct {
	// UUID is the stable accessory identifier, derived from the device's
	// identity key. It never changes for a given key.
	UUID string `json:"uuid"`

	// Name is the display name, copied from the device at reconcile time.
	Name string `json:"name"`

	// Device is the full device configuration as last reconciled.
	Device config.Device `json:"device"`

	// CreatedAt is when the accessory was first published.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the accessory configuration last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// UUIDFor derives the stable accessory UUID for a device identity key.
//
// The same key always yields the same UUID (version 5, name-based), which is
// what keeps an accessory's identity stable across restarts and reorderings
// of the device list.
func UUIDFor(stableKey string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(uuidPrefix+stableKey)).String()
}

// DeepCopy returns an independent copy of the record.
// Device is a value type with no reference fields, so a field copy suffices.
func (r *Record) DeepCopy() *Record {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}
