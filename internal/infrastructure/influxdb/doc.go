// Package influxdb provides optional InfluxDB connectivity for Glowbridge Core.
//
// It wraps the official influxdb-client-go v2 library with connection
// management and non-blocking batched writes. When the integration is
// disabled in configuration, accessory state history is recorded to
// SQLite only.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    // ErrDisabled means the integration is off, not broken
//	}
//	defer client.Close()
//
//	client.WriteAccessoryState(uuid, true, 75, "write")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Error Handling
//
// Write operations are non-blocking; batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package influxdb
