package config

import "fmt"

// SentryConfig enables error reporting to Sentry. An empty DSN disables it.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}

// SetDefaults names the environment "production" when reporting is enabled.
func (s *SentryConfig) SetDefaults() {
	if s.DSN != "" && s.Environment == "" {
		s.Environment = "production"
	}
}

// Validate checks the sample rate.
func (s SentryConfig) Validate() error {
	if s.TracesSampleRate < 0 || s.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be within [0,1], got %v", s.TracesSampleRate)
	}
	return nil
}
