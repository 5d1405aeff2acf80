package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/infra/journal"
	"github.com/kilianp07/evcharge/infra/mqtt"
)

type Config struct {
	API       APIConfig       `json:"api"`
	Rates     RatesConfig     `json:"rates"`
	Directory DirectoryConfig `json:"directory"`
	Routing   RoutingConfig   `json:"routing"`
	Planner   PlannerConfig   `json:"planner"`
	Catalog   CatalogConfig   `json:"catalog"`
	Metrics   metrics.Config  `json:"metrics"`
	Journal   journal.Config  `json:"journal"`
	MQTT      mqtt.Config     `json:"mqtt"`
	Sentry    SentryConfig    `json:"sentry"`
}

// Load reads path (YAML or JSON by extension) and applies K_ environment
// overrides, e.g. K_RATES__TTL_SECONDS=600. An empty path loads only the
// environment.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides. K_API__ADDRESS maps to api.address; the
	// callback rewrites "__" to the koanf delimiter before unflattening.
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.API.SetDefaults()
	c.Rates.SetDefaults()
	c.Directory.SetDefaults()
	c.Routing.SetDefaults()
	c.Planner.SetDefaults()
	c.Journal.SetDefaults()
	c.Sentry.SetDefaults()
	if c.MQTT.Broker != "" {
		c.MQTT.SetDefaults()
	}
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	var errs []error
	add := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", section, err))
		}
	}
	add("api", c.API.Validate())
	add("rates", c.Rates.Validate())
	add("planner", c.Planner.Validate())
	add("metrics", c.Metrics.Validate())
	add("journal", c.Journal.Validate())
	add("mqtt", c.MQTT.Validate())
	add("sentry", c.Sentry.Validate())
	return errors.Join(errs...)
}
