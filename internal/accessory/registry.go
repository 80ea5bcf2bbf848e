package accessory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/glowbridge/glowbridge-core/internal/infrastructure/config"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Host receives accessory lifecycle notifications as reconciliation
// applies its deltas. The API layer implements this to keep its routing
// table in step with the registry; other hosts (a HomeKit bridge, say)
// would implement the same interface.
type Host interface {
	RegisterAccessory(record *Record)
	UpdateAccessory(record *Record)
	UnregisterAccessory(uuid string)
}

// Controller handles reads and writes for a single accessory's device.
// The concrete implementation lives in the controller package; the
// registry only needs to create and hand them out.
type Controller interface {
	ReadOn(ctx context.Context) bool
	WriteOn(ctx context.Context, on bool)
	ReadBrightness(ctx context.Context) int
	WriteBrightness(ctx context.Context, level int) int
}

// ControllerFactory builds a controller for a reconciled accessory.
type ControllerFactory func(accessoryUUID string, dev config.Device) Controller

// ReconcileResult summarises the deltas applied by one reconciliation pass.
type ReconcileResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
}

// Registry owns the live accessory set. It restores persisted records on
// startup, reconciles them against the configured device list, and serves
// lookups for the API layer.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	factory ControllerFactory
	host    Host
	logger  Logger

	mu          sync.RWMutex
	known       map[string]*Record    // by UUID
	controllers map[string]Controller // by UUID
}

// NewRegistry creates an accessory registry.
// The repository provides persistence; the factory builds a controller for
// each published accessory.
func NewRegistry(repo Repository, factory ControllerFactory) *Registry {
	return &Registry{
		repo:        repo,
		factory:     factory,
		known:       make(map[string]*Record),
		controllers: make(map[string]Controller),
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// SetHost sets the accessory host notified of lifecycle changes.
func (r *Registry) SetHost(host Host) {
	r.host = host
}

// Restore loads all persisted accessory records into the registry and
// publishes them to the host. It should be called once on startup, before
// the first Reconcile.
func (r *Registry) Restore(ctx context.Context) error {
	records, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("restoring accessories: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range records {
		record := records[i].DeepCopy()
		r.known[record.UUID] = record
		r.controllers[record.UUID] = r.factory(record.UUID, record.Device)
		if r.host != nil {
			r.host.RegisterAccessory(record.DeepCopy())
		}
	}

	r.logger.Info("accessories restored", "count", len(records))
	return nil
}

// Reconcile compares the configured device list against the known
// accessory set and applies the deltas.
//
// A configured device that is not yet known is added. A known accessory
// whose device configuration differs from the configured one is updated
// in place, keeping its UUID. A known accessory with no configured
// counterpart is removed. Devices that fail validation are skipped with
// a warning and do not abort the pass.
//
// Persistence failures for one device are logged and do not stop the
// remaining deltas from being applied.
func (r *Registry) Reconcile(ctx context.Context, devices []config.Device) ReconcileResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result ReconcileResult
	now := time.Now().UTC()
	seen := make(map[string]bool, len(devices))

	for i := range devices {
		dev := devices[i]
		if !dev.Valid() {
			r.logger.Warn("skipping invalid device", "name", dev.Name)
			continue
		}

		id := UUIDFor(dev.StableKey())
		if seen[id] {
			r.logger.Warn("duplicate device identity, keeping first", "name", dev.Name, "uuid", id)
			continue
		}
		seen[id] = true

		existing, ok := r.known[id]
		switch {
		case !ok:
			r.addAccessory(ctx, id, dev, now)
			result.Added++
		case !sameDevice(existing.Device, dev):
			r.updateAccessory(ctx, existing, dev, now)
			result.Updated++
		}
	}

	for id := range r.known {
		if !seen[id] {
			r.removeAccessory(ctx, id)
			result.Removed++
		}
	}

	r.logger.Info("reconciliation complete",
		"added", result.Added, "updated", result.Updated, "removed", result.Removed)
	return result
}

// Get retrieves an accessory record by UUID.
// Returns ErrNotFound if the accessory does not exist.
// The returned record is a deep copy; callers can safely modify it.
func (r *Registry) Get(uuid string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.known[uuid]
	if !ok {
		return nil, ErrNotFound
	}
	return record.DeepCopy(), nil
}

// List returns all known accessory records as deep copies.
func (r *Registry) List() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]Record, 0, len(r.known))
	for _, record := range r.known {
		records = append(records, *record.DeepCopy())
	}
	return records
}

// Controller retrieves the controller for an accessory.
// Returns ErrNotFound if the accessory does not exist.
func (r *Registry) Controller(uuid string) (Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctrl, ok := r.controllers[uuid]
	if !ok {
		return nil, ErrNotFound
	}
	return ctrl, nil
}

// Count returns the number of known accessories.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.known)
}

// addAccessory publishes a new accessory. Caller holds the write lock.
func (r *Registry) addAccessory(ctx context.Context, id string, dev config.Device, now time.Time) {
	record := &Record{
		UUID:      id,
		Name:      dev.Name,
		Device:    dev,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.repo.Upsert(ctx, record); err != nil {
		r.logger.Error("persisting accessory failed", "uuid", id, "error", err)
	}

	r.known[id] = record
	r.controllers[id] = r.factory(id, dev)
	if r.host != nil {
		r.host.RegisterAccessory(record.DeepCopy())
	}

	r.logger.Info("accessory added", "uuid", id, "name", dev.Name)
}

// updateAccessory replaces an accessory's device configuration in place,
// keeping its UUID and creation time. Caller holds the write lock.
func (r *Registry) updateAccessory(ctx context.Context, existing *Record, dev config.Device, now time.Time) {
	existing.Name = dev.Name
	existing.Device = dev
	existing.UpdatedAt = now

	if err := r.repo.Upsert(ctx, existing); err != nil {
		r.logger.Error("persisting accessory failed", "uuid", existing.UUID, "error", err)
	}

	r.controllers[existing.UUID] = r.factory(existing.UUID, dev)
	if r.host != nil {
		r.host.UpdateAccessory(existing.DeepCopy())
	}

	r.logger.Info("accessory updated", "uuid", existing.UUID, "name", dev.Name)
}

// removeAccessory unpublishes an accessory. Caller holds the write lock.
func (r *Registry) removeAccessory(ctx context.Context, id string) {
	if err := r.repo.Delete(ctx, id); err != nil {
		r.logger.Error("deleting accessory failed", "uuid", id, "error", err)
	}

	delete(r.known, id)
	delete(r.controllers, id)
	if r.host != nil {
		r.host.UnregisterAccessory(id)
	}

	r.logger.Info("accessory removed", "uuid", id)
}

// sameDevice reports whether two device configurations are equivalent.
// Comparison is by JSON form, which tracks exactly the fields that matter
// to a published accessory.
func sameDevice(a, b config.Device) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}
