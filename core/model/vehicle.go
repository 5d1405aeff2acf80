package model

import (
	"errors"
	"fmt"
)

// ErrTargetNotAboveStart is returned when a session asks to charge to a level
// that is not above its starting level.
var ErrTargetNotAboveStart = errors.New("target SoC must be greater than start SoC")

// Vehicle describes the battery and charging capability of an electric vehicle.
type Vehicle struct {
	Model      string  `json:"model" yaml:"model"`
	Category   string  `json:"category,omitempty" yaml:"category"`
	BatteryKWh float64 `json:"battery_kwh" yaml:"battery_kwh"` // nameplate capacity
	MaxDCKW    float64 `json:"max_dc_kw" yaml:"max_dc_kw"`     // maximum DC charging power
}

// Validate checks that the vehicle configuration is sound.
func (v Vehicle) Validate() error {
	if v.BatteryKWh <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if v.MaxDCKW <= 0 {
		return fmt.Errorf("max DC power must be positive")
	}
	return nil
}

// ChargingSession is a single charge from StartPct to TargetPct.
type ChargingSession struct {
	StartPct  float64 `json:"start_pct"`
	TargetPct float64 `json:"target_pct"`
	// LossPct is the charging loss in percent (0-20) added on top of the
	// energy stored in the battery.
	LossPct float64 `json:"loss_pct"`
	Taper   bool    `json:"taper"`
}

// Validate rejects sessions that cannot be compared.
func (s ChargingSession) Validate() error {
	if s.StartPct < 0 || s.StartPct > 100 {
		return fmt.Errorf("start SoC %.1f out of range [0,100]", s.StartPct)
	}
	if s.TargetPct < 0 || s.TargetPct > 100 {
		return fmt.Errorf("target SoC %.1f out of range [0,100]", s.TargetPct)
	}
	if s.LossPct < 0 || s.LossPct > 20 {
		return fmt.Errorf("efficiency loss %.1f out of range [0,20]", s.LossPct)
	}
	if s.TargetPct <= s.StartPct {
		return ErrTargetNotAboveStart
	}
	return nil
}

// EnergyRequired returns the energy drawn from the charger in kWh, including
// losses. It is zero when the target does not exceed the start.
func (s ChargingSession) EnergyRequired(batteryKWh float64) float64 {
	if s.TargetPct <= s.StartPct {
		return 0
	}
	return batteryKWh * ((s.TargetPct - s.StartPct) / 100.0) * (1.0 + s.LossPct/100.0)
}
