// Package metrics defines the events recorded about comparisons, trip plans
// and exchange-rate refreshes, and the sink interfaces that record them.
// Sinks such as the Prometheus and InfluxDB implementations in infra/metrics
// are registered by name and combined with NewMultiSink when several are
// configured.
package metrics
