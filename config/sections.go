package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/evcharge/core/currency"
	"github.com/kilianp07/evcharge/core/planner"
	"github.com/kilianp07/evcharge/infra/ratecache"
	"github.com/kilianp07/evcharge/infra/rates"
)

// APIConfig defines the HTTP listener.
type APIConfig struct {
	Address string `json:"address"`
}

func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}

func (c APIConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

// RatesConfig configures the exchange-rate source and its cache.
type RatesConfig struct {
	URL            string      `json:"url"`
	TTLSeconds     int         `json:"ttl_seconds"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	Redis          RedisConfig `json:"redis"`
}

// RedisConfig enables the shared rate snapshot when Address is set.
type RedisConfig struct {
	Address string `json:"address"`
	Key     string `json:"key"`
}

func (c *RatesConfig) SetDefaults() {
	if c.URL == "" {
		c.URL = rates.DefaultURL
	}
	if c.TTLSeconds == 0 {
		c.TTLSeconds = int(currency.DefaultTTL / time.Second)
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.Redis.Address != "" && c.Redis.Key == "" {
		c.Redis.Key = ratecache.DefaultKey
	}
}

func (c RatesConfig) Validate() error {
	if c.TTLSeconds < 0 || c.TimeoutSeconds < 0 {
		return fmt.Errorf("ttl_seconds and timeout_seconds must not be negative")
	}
	return nil
}

func (c RatesConfig) TTL() time.Duration     { return time.Duration(c.TTLSeconds) * time.Second }
func (c RatesConfig) Timeout() time.Duration { return time.Duration(c.TimeoutSeconds) * time.Second }

// DirectoryConfig configures the OpenChargeMap client. Without an API key
// every search returns no chargers.
type DirectoryConfig struct {
	URL            string `json:"url"`
	APIKey         string `json:"api_key"`
	CountryCode    string `json:"country_code"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (c *DirectoryConfig) SetDefaults() {
	if c.CountryCode == "" {
		c.CountryCode = "GB"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 15
	}
}

func (c DirectoryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RoutingConfig configures the OpenRouteService client.
type RoutingConfig struct {
	URL            string `json:"url"`
	APIKey         string `json:"api_key"`
	Country        string `json:"country"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (c *RoutingConfig) SetDefaults() {
	if c.Country == "" {
		c.Country = "GB"
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 20
	}
}

func (c RoutingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PlannerConfig tunes the stop planner and the trip budget.
type PlannerConfig struct {
	StopStartPct    float64 `json:"stop_start_pct"`
	StopEndPct      float64 `json:"stop_end_pct"`
	LossPct         float64 `json:"loss_pct"`
	NoTaper         bool    `json:"no_taper"`
	RadiusKM        float64 `json:"radius_km"`
	MaxResults      int     `json:"max_results"`
	DisplayCurrency string  `json:"display_currency"`
	// ReferenceTariff prices the whole-trip budget.
	ReferenceTariff string `json:"reference_tariff"`
}

func (c *PlannerConfig) SetDefaults() {
	def := planner.DefaultOptions()
	if c.StopStartPct == 0 && c.StopEndPct == 0 {
		c.StopStartPct, c.StopEndPct = def.StopStartPct, def.StopEndPct
	}
	if c.LossPct == 0 {
		c.LossPct = def.LossPct
	}
	if c.RadiusKM == 0 {
		c.RadiusKM = def.RadiusKM
	}
	if c.MaxResults == 0 {
		c.MaxResults = def.MaxResults
	}
	if c.DisplayCurrency == "" {
		c.DisplayCurrency = "GBP"
	}
	if c.ReferenceTariff == "" {
		c.ReferenceTariff = "Pod Point"
	}
}

func (c PlannerConfig) Validate() error {
	if c.StopStartPct < 0 || c.StopEndPct > 100 || c.StopEndPct <= c.StopStartPct {
		return fmt.Errorf("stop window %.0f-%.0f%% is invalid", c.StopStartPct, c.StopEndPct)
	}
	if c.LossPct < 0 {
		return fmt.Errorf("loss_pct must not be negative")
	}
	if c.RadiusKM <= 0 || c.MaxResults <= 0 {
		return fmt.Errorf("radius_km and max_results must be positive")
	}
	if _, ok := currency.FallbackTable().Rate(c.DisplayCurrency); !ok {
		return fmt.Errorf("unsupported display currency %s", c.DisplayCurrency)
	}
	return nil
}

// Options converts the section into planner options.
func (c PlannerConfig) Options() planner.Options {
	return planner.Options{
		StopStartPct: c.StopStartPct,
		StopEndPct:   c.StopEndPct,
		LossPct:      c.LossPct,
		Taper:        !c.NoTaper,
		RadiusKM:     c.RadiusKM,
		MaxResults:   c.MaxResults,
	}
}

// CatalogConfig points at an optional YAML catalog replacing the built-in
// vehicles, tariffs and operator rules.
type CatalogConfig struct {
	Path string `json:"path"`
}
