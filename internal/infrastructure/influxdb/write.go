package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteHeartbeat records a heartbeat arrival for a device.
//
// The write is non-blocking; data is batched and sent asynchronously.
// The online flag reflects the presence verdict at the time the
// heartbeat was processed.
//
// Example:
//
//	client.WriteHeartbeat("box-001", true)
func (c *Client) WriteHeartbeat(deviceID string, online bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"heartbeats",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"online": online,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteEventMetric records a device event arrival by type.
//
// Used for tracking event throughput across the fleet. The value is
// always 1; aggregation happens at query time.
//
// Example:
//
//	client.WriteEventMetric("box-001", "MEDICINE_TAKEN")
func (c *Client) WriteEventMetric(deviceID string, eventType string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_events",
		map[string]string{
			"device_id":  deviceID,
			"event_type": eventType,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePresenceTransition records an online/offline edge for a device.
//
// Transitions are far sparser than heartbeats, which makes them the
// better series for fleet availability dashboards.
func (c *Client) WritePresenceTransition(deviceID string, online bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"presence_transitions",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"online": online,
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
