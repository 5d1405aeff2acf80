// Package catalog holds the reference data injected into the resolver and the
// CLI: the vehicle database, provider tariffs and operator inference rules.
// Defaults are returned as fresh values; a YAML file may replace any part.
package catalog

import (
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/tariff"
)

// Data bundles the reference tables.
type Data struct {
	Vehicles []model.Vehicle
	Tariffs  []model.Tariff
	Rules    tariff.Rules
}

// Default returns the built-in reference data.
func Default() Data {
	return Data{Vehicles: DefaultVehicles(), Tariffs: DefaultTariffs(), Rules: DefaultRules()}
}

// DefaultVehicles returns the built-in vehicle database.
func DefaultVehicles() []model.Vehicle {
	return []model.Vehicle{
		{Model: "Tesla Model Y Long Range", BatteryKWh: 75.0, MaxDCKW: 250, Category: "Premium SUV"},
		{Model: "Tesla Model 3 Long Range", BatteryKWh: 75.0, MaxDCKW: 250, Category: "Premium Sedan"},
		{Model: "Audi Q4 e-tron 77", BatteryKWh: 77.0, MaxDCKW: 135, Category: "Premium SUV"},
		{Model: "Audi Q6 e-tron", BatteryKWh: 94.9, MaxDCKW: 270, Category: "Premium SUV"},
		{Model: "Ford Explorer Extended Range", BatteryKWh: 79.0, MaxDCKW: 185, Category: "SUV"},
		{Model: "BMW i4 eDrive40", BatteryKWh: 81.3, MaxDCKW: 205, Category: "Premium Sedan"},
		{Model: "Skoda Enyaq 85", BatteryKWh: 82.0, MaxDCKW: 175, Category: "SUV"},
		{Model: "Kia EV3 Long Range", BatteryKWh: 81.4, MaxDCKW: 135, Category: "SUV"},
		{Model: "Skoda Elroq 85", BatteryKWh: 82.0, MaxDCKW: 175, Category: "SUV"},
		{Model: "Volvo EX30 Extended Range", BatteryKWh: 69.0, MaxDCKW: 153, Category: "Compact SUV"},
		{Model: "MG4 Long Range", BatteryKWh: 77.0, MaxDCKW: 144, Category: "Hatchback"},
		{Model: "Hyundai Kona Electric 65", BatteryKWh: 65.4, MaxDCKW: 102, Category: "Compact SUV"},
		{Model: "VW ID.4 Pro", BatteryKWh: 77.0, MaxDCKW: 175, Category: "SUV"},
		{Model: "Nissan Ariya 87", BatteryKWh: 87.0, MaxDCKW: 130, Category: "SUV"},
		{Model: "Kia EV6 Long Range", BatteryKWh: 84.0, MaxDCKW: 235, Category: "SUV"},
		{Model: "Hyundai IONIQ 5 Long Range", BatteryKWh: 84.0, MaxDCKW: 235, Category: "SUV"},
		{Model: "Mercedes EQA 350", BatteryKWh: 70.5, MaxDCKW: 100, Category: "Premium SUV"},
		{Model: "Polestar 2 Long Range", BatteryKWh: 82.0, MaxDCKW: 205, Category: "Premium Sedan"},
		{Model: "BYD Dolphin Comfort", BatteryKWh: 60.4, MaxDCKW: 88, Category: "Hatchback"},
		{Model: "Vauxhall Corsa Electric", BatteryKWh: 51.0, MaxDCKW: 100, Category: "Hatchback"},
		{Model: CustomVehicle, BatteryKWh: 80.0, MaxDCKW: 150, Category: "Custom"},
	}
}

// CustomVehicle is the placeholder entry for user-entered battery and power figures.
const CustomVehicle = "Custom Vehicle"

func public(name string, energy, timePrice float64, currency string, kw float64, category, network string) model.Tariff {
	return model.Tariff{
		Provider: name, EnergyPrice: energy, TimePrice: timePrice, Currency: currency,
		DefaultKW: kw, Kind: model.KindPublic, Category: category, Network: network,
	}
}

func home(name string, energy float64) model.Tariff {
	return model.Tariff{
		Provider: name, EnergyPrice: energy, Currency: "GBP", DefaultKW: 7,
		Kind: model.KindHome, Category: "Home", Network: "Domestic",
	}
}

// DefaultTariffs returns the built-in provider presets in display order.
func DefaultTariffs() []model.Tariff {
	return []model.Tariff{
		public("MFG EV Power", 0.79, 0, "GBP", 150, "Rapid", "Regional"),
		public("EVYVE Charging Stations", 0.80, 0, "GBP", 150, "Rapid", "Regional"),
		public("Osprey Charging (App)", 0.82, 0, "GBP", 150, "Rapid", "National"),
		public("Osprey Charging (Contactless)", 0.87, 0, "GBP", 150, "Rapid", "National"),
		public("Electroverse", 0.80, 0, "GBP", 150, "Roaming", "Multi-Network"),
		public("Zapmap Zap-Pay", 0.80, 0, "GBP", 150, "Roaming", "Multi-Network"),
		public("Plugsurfing", 0.80, 0, "GBP", 150, "Roaming", "Multi-Network"),
		public("BP Pulse PAYG", 0.87, 0, "GBP", 150, "Rapid", "National"),
		public("Pod Point", 0.69, 0, "GBP", 75, "Fast", "National"),
		public("IZIVIA Pass", 0.75, 0, "EUR", 150, "Rapid", "European"),
		public("Electra+", 0.49, 0, "EUR", 150, "Rapid", "European"),
		public("Freshmile", 0.25, 0.05, "EUR", 50, "Fast", "European"),
		home("Home - Octopus Intelligent", 0.08),
		home("Home - E.ON Drive", 0.09),
		home("Home - EDF Standard", 0.10),
	}
}

// DefaultRules returns the operator inference rules. Longer, more specific
// needles come first where they overlap.
func DefaultRules() tariff.Rules {
	return tariff.Rules{
		{Needle: "bp pulse payg", Provider: "BP Pulse PAYG"},
		{Needle: "bp pulse", Provider: "BP Pulse PAYG"},
		{Needle: "osprey", Provider: "Osprey Charging (App)"},
		{Needle: "mfg ev power", Provider: "MFG EV Power"},
		{Needle: "motor fuel group", Provider: "MFG EV Power"},
		{Needle: "pod point", Provider: "Pod Point"},
		{Needle: "evyve", Provider: "EVYVE Charging Stations"},
	}
}

// Vehicle returns the vehicle with the given model name.
func (d Data) Vehicle(name string) (model.Vehicle, bool) {
	for _, v := range d.Vehicles {
		if v.Model == name {
			return v, true
		}
	}
	return model.Vehicle{}, false
}

// Resolver builds a tariff resolver from the data.
func (d Data) Resolver() (*tariff.Resolver, error) {
	cat, err := tariff.NewCatalog(d.Tariffs)
	if err != nil {
		return nil, err
	}
	return tariff.NewResolver(cat, d.Rules), nil
}
