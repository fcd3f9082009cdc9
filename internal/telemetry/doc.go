// Package telemetry turns arbiter transitions into metrics.
//
// Metrics exposes Prometheus counters and gauges on its own registry for the
// /metrics endpoint. InfluxRecorder writes one InfluxDB point per transition.
// Both implement arbiter.Observer.
package telemetry
