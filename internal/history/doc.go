// Package history records accessory state changes.
//
// Every observed or commanded state change is appended to a local SQLite
// audit trail, and optionally mirrored to InfluxDB for time-series
// queries when that integration is enabled. The local trail is
// authoritative; telemetry is best effort.
package history
