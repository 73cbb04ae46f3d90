// Package influxdb provides InfluxDB connectivity for Junction Core.
//
// It wraps the official influxdb-client-go v2 library with Junction Core
// patterns for connection management, metric writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Phase dwell times (how long each signal phase actually held)
//   - Detector demand and occupancy rates per approach
//   - Emergency preemption events and recovery times
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "junction",
//	    Bucket: "signals",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record a completed phase
//	client.WritePhaseMetric("junction-001", "ns_green", 10.05)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// A controller ticking at 20Hz produces at most a handful of points per minute,
// so batching keeps network overhead negligible.
package influxdb
