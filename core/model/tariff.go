package model

import "fmt"

// TariffKind classifies where a tariff applies.
type TariffKind int

const (
	KindPublic TariffKind = iota
	KindHome
)

// String returns a human-readable representation of the kind.
func (k TariffKind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindPublic:
		return "public"
	default:
		return "unknown"
	}
}

// ParseTariffKind converts "home" or "public" into a TariffKind. Unknown
// values are treated as public.
func ParseTariffKind(s string) TariffKind {
	if s == "home" {
		return KindHome
	}
	return KindPublic
}

// Tariff is the pricing structure of a provider in its native currency.
type Tariff struct {
	Provider    string     `json:"provider"`
	Currency    string     `json:"currency"`
	EnergyPrice float64    `json:"energy_price"`          // currency per kWh
	TimePrice   float64    `json:"time_price,omitempty"`  // currency per minute
	SessionFee  float64    `json:"session_fee,omitempty"` // flat fee per session
	DefaultKW   float64    `json:"default_kw"`            // typical charger power
	Kind        TariffKind `json:"kind"`
	Category    string     `json:"category,omitempty"`
	Network     string     `json:"network,omitempty"`
}

// IsHome reports whether the tariff is a domestic tariff.
func (t Tariff) IsHome() bool { return t.Kind == KindHome }

// Validate rejects tariffs without a provider or currency and negative prices.
func (t Tariff) Validate() error {
	if t.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if t.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if t.EnergyPrice < 0 || t.TimePrice < 0 || t.SessionFee < 0 {
		return fmt.Errorf("prices must not be negative")
	}
	if t.DefaultKW < 0 {
		return fmt.Errorf("default power must not be negative")
	}
	return nil
}
