package charging

import "github.com/kilianp07/evcharge/core/model"

// Cost returns the price of a session in the tariff's native currency.
// The result is not rounded.
func Cost(energyKWh, minutes, energyPrice, timePrice, sessionFee float64) float64 {
	return energyKWh*energyPrice + minutes*timePrice + sessionFee
}

// TariffCost applies Cost with the prices of t.
func TariffCost(energyKWh, minutes float64, t model.Tariff) float64 {
	return Cost(energyKWh, minutes, t.EnergyPrice, t.TimePrice, t.SessionFee)
}
