// Package metrics provides the Prometheus and InfluxDB implementations of
// core/metrics, registers them with the sink factory and exposes the
// /metrics endpoint.
package metrics
