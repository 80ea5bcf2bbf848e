// Package accessory manages the set of published accessories and keeps it
// in sync with the declarative device list from configuration.
//
// Each accessory wraps one configured HTTP device and carries a stable UUID
// derived from the device's identity key, so the same device keeps the same
// accessory identity across restarts and configuration edits.
//
// The Registry is the central component. On startup it restores persisted
// accessory records, then Reconcile compares them against the configured
// device list and applies the resulting add, update and remove deltas to
// both the persistence layer and the accessory host.
package accessory
