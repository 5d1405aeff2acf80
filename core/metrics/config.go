package metrics

import (
	"fmt"

	"github.com/kilianp07/evcharge/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	// PrometheusPort is the address of the /metrics endpoint, e.g. ":9091".
	// Empty disables the endpoint.
	PrometheusPort string `json:"prometheus_port" yaml:"prometheus_port"`
}

// Validate reports sinks without a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type is required", i)
		}
	}
	return nil
}

// Enabled reports whether a sink of the given type is configured.
func (c Config) Enabled(kind string) bool {
	for _, s := range c.Sinks {
		if s.Type == kind {
			return true
		}
	}
	return false
}
