package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/tariff"
)

// TariffDef is the YAML form of a provider tariff.
type TariffDef struct {
	Provider   string  `yaml:"provider"`
	Energy     float64 `yaml:"energy"`
	Time       float64 `yaml:"time"`
	SessionFee float64 `yaml:"session_fee"`
	Currency   string  `yaml:"currency"`
	DefaultKW  float64 `yaml:"default_kw"`
	Type       string  `yaml:"type"`
	Category   string  `yaml:"category"`
	Network    string  `yaml:"network"`
}

// ToModel converts the definition into a tariff.
func (d TariffDef) ToModel() model.Tariff {
	return model.Tariff{
		Provider:    d.Provider,
		EnergyPrice: d.Energy,
		TimePrice:   d.Time,
		SessionFee:  d.SessionFee,
		Currency:    d.Currency,
		DefaultKW:   d.DefaultKW,
		Kind:        model.ParseTariffKind(d.Type),
		Category:    d.Category,
		Network:     d.Network,
	}
}

type file struct {
	Vehicles []model.Vehicle `yaml:"vehicles"`
	Tariffs  []TariffDef     `yaml:"tariffs"`
	Rules    []tariff.Rule   `yaml:"rules"`
}

// Load reads a YAML catalog file. Sections absent from the file keep their
// built-in defaults.
func Load(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return Parse(raw)
}

// Parse decodes a YAML catalog document.
func Parse(raw []byte) (Data, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Data{}, fmt.Errorf("decode catalog: %w", err)
	}
	d := Default()
	if len(f.Vehicles) > 0 {
		for _, v := range f.Vehicles {
			if err := v.Validate(); err != nil {
				return Data{}, fmt.Errorf("vehicle %q: %w", v.Model, err)
			}
		}
		d.Vehicles = f.Vehicles
	}
	if len(f.Tariffs) > 0 {
		d.Tariffs = make([]model.Tariff, len(f.Tariffs))
		for i, t := range f.Tariffs {
			if t.Currency == "" {
				return Data{}, fmt.Errorf("tariff %q: currency is required", t.Provider)
			}
			d.Tariffs[i] = t.ToModel()
		}
	}
	if len(f.Rules) > 0 {
		d.Rules = f.Rules
	}
	if err := d.Validate(); err != nil {
		return Data{}, err
	}
	return d, nil
}

// Validate checks that every rule points at a known tariff.
func (d Data) Validate() error {
	known := make(map[string]bool, len(d.Tariffs))
	for _, t := range d.Tariffs {
		known[t.Provider] = true
	}
	for _, r := range d.Rules {
		if r.Needle == "" {
			return fmt.Errorf("rule for %s has an empty needle", r.Provider)
		}
		if !known[r.Provider] {
			return fmt.Errorf("rule %q refers to unknown tariff %s", r.Needle, r.Provider)
		}
	}
	return nil
}
