// Package charging models how long a charge takes and what it costs.
//
// Charging time follows a fixed taper: full power below 80% SoC, half power
// between 80% and 90% and 30% of the power above 90%. The bands are absolute
// SoC levels, so a session is split into segments clipped to the band
// boundaries and the segment times are summed. Costs are a linear combination
// of energy, elapsed time and a flat session fee in the tariff's currency.
package charging
