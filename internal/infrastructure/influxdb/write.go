package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAccessoryState writes an accessory state snapshot to InfluxDB.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - accessoryUUID: Stable accessory identifier
//   - on: Whether the accessory is on
//   - brightness: Canonical brightness level (0-100)
//   - source: Origin of the change (read, write)
func (c *Client) WriteAccessoryState(accessoryUUID string, on bool, brightness int, source string) {
	if !c.IsConnected() {
		return
	}

	onValue := 0
	if on {
		onValue = 1
	}

	point := write.NewPoint(
		"accessory_state",
		map[string]string{
			"accessory_uuid": accessoryUUID,
			"source":         source,
		},
		map[string]interface{}{
			"on":         onValue,
			"brightness": brightness,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
