// Package compare prices one charging session under several tariffs and
// ranks them by their cost in a common display currency.
package compare

import (
	"github.com/kilianp07/evcharge/core/charging"
	"github.com/kilianp07/evcharge/core/currency"
	"github.com/kilianp07/evcharge/core/model"
)

// Entry is the price of a session under one tariff.
type Entry struct {
	Provider    string  `json:"provider"`
	Network     string  `json:"network,omitempty"`
	Currency    string  `json:"currency"` // native currency of the tariff
	StationKW   float64 `json:"station_kw"`
	EffectiveKW float64 `json:"effective_kw"`
	Minutes     float64 `json:"minutes"`
	NativeCost  float64 `json:"native_cost"`
	Cost        float64 `json:"cost"` // in the display currency
	CostPer100  float64 `json:"cost_per_100"`
}

// Quote prices a session of energyKWh (grid side) under t at stationKW. The
// charging time uses the session's SoC window on the vehicle's battery.
func Quote(v model.Vehicle, s model.ChargingSession, energyKWh, stationKW float64, t model.Tariff, display string, rates currency.RateTable) Entry {
	effective := charging.EffectivePower(stationKW, v.MaxDCKW)
	minutes := charging.Minutes(v.BatteryKWh, effective, s.StartPct, s.TargetPct, s.Taper)
	native := charging.TariffCost(energyKWh, minutes, t)
	return Entry{
		Provider:    t.Provider,
		Network:     t.Network,
		Currency:    t.Currency,
		StationKW:   stationKW,
		EffectiveKW: effective,
		Minutes:     minutes,
		NativeCost:  native,
		Cost:        currency.Convert(native, t.Currency, display, rates),
	}
}

// CostPer100 returns the cost of covering 100 distance units, or 0 when no
// distance is added.
func CostPer100(cost, distanceAdded float64) float64 {
	if distanceAdded <= 0 {
		return 0
	}
	return cost / distanceAdded * 100.0
}
