package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePhaseMetric records a completed signal phase and how long it held.
//
// Called by the orchestration loop on every phase change, with the phase
// that just ended and its actual dwell time. The write is non-blocking;
// data is batched and sent asynchronously.
//
// Parameters:
//   - intersectionID: Which intersection this controller runs (e.g., "junction-001")
//   - phase: The phase that just ended (e.g., "ns_green", "ew_yellow")
//   - dwellSeconds: How long the phase actually held before transitioning
//
// Example:
//
//	client.WritePhaseMetric("junction-001", "ns_green", 10.05)
func (c *Client) WritePhaseMetric(intersectionID string, phase string, dwellSeconds float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"phase",
		map[string]string{
			"intersection_id": intersectionID,
			"phase":           phase,
		},
		map[string]interface{}{
			"dwell_seconds": dwellSeconds,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteDemandMetric records detector demand levels per approach.
//
// Sampled periodically rather than per tick to keep cardinality and
// volume low.
//
// Parameters:
//   - intersectionID: Which intersection this controller runs
//   - approach: "ns" or "ew"
//   - occupied: Whether any detector on the approach reports a waiting vehicle
func (c *Client) WriteDemandMetric(intersectionID string, approach string, occupied bool) {
	if !c.IsConnected() {
		return
	}

	demand := 0.0
	if occupied {
		demand = 1.0
	}

	point := write.NewPoint(
		"demand",
		map[string]string{
			"intersection_id": intersectionID,
			"approach":        approach,
		},
		map[string]interface{}{
			"occupied": demand,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteEmergencyMetric records an emergency preemption event.
//
// Written once when preemption engages (engaged=true) and once when the
// controller resumes normal service (engaged=false, with the total time
// the emergency corridor was held).
//
// Parameters:
//   - intersectionID: Which intersection this controller runs
//   - engaged: true when preemption starts, false when it releases
//   - holdSeconds: Total hold time on release (0 when engaging)
func (c *Client) WriteEmergencyMetric(intersectionID string, engaged bool, holdSeconds float64) {
	if !c.IsConnected() {
		return
	}

	state := 0.0
	if engaged {
		state = 1.0
	}

	point := write.NewPoint(
		"emergency",
		map[string]string{
			"intersection_id": intersectionID,
		},
		map[string]interface{}{
			"engaged":      state,
			"hold_seconds": holdSeconds,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "cabinet-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., replaying buffered data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
