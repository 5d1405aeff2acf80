// Package currency converts amounts between currencies using a table of rates
// quoted against a single base currency.
package currency

import "maps"

// Status tells whether a table holds live quotes or fallback values.
type Status string

const (
	StatusLive     Status = "live"
	StatusFallback Status = "fallback"
)

// DefaultBase is the base currency of the fallback table and of the live
// quotes requested by default.
const DefaultBase = "EUR"

// RateTable maps currency codes to their value relative to Base. The base
// currency always maps to 1.0. A table is never mutated after construction.
type RateTable struct {
	base   string
	rates  map[string]float64
	status Status
	date   string
}

// NewRateTable copies rates into a new table and pins base to 1.0.
func NewRateTable(base string, rates map[string]float64, status Status, date string) RateTable {
	cp := make(map[string]float64, len(rates)+1)
	maps.Copy(cp, rates)
	cp[base] = 1.0
	return RateTable{base: base, rates: cp, status: status, date: date}
}

// FallbackTable returns the hardcoded rates used when no live quote is
// available.
func FallbackTable() RateTable {
	return NewRateTable(DefaultBase, map[string]float64{
		"GBP": 0.87,
		"USD": 1.10,
	}, StatusFallback, "fallback")
}

// Base returns the base currency code.
func (t RateTable) Base() string { return t.base }

// Status returns the freshness of the table.
func (t RateTable) Status() Status { return t.status }

// Date returns the quote date reported by the rate source.
func (t RateTable) Date() string { return t.date }

// Rate returns the rate of code relative to the base.
func (t RateTable) Rate(code string) (float64, bool) {
	r, ok := t.rates[code]
	return r, ok
}

// Rates returns a copy of the table as a map.
func (t RateTable) Rates() map[string]float64 {
	return maps.Clone(t.rates)
}

// Convert converts amount from one currency to another. Identical codes are
// returned unchanged. When either code is unknown the amount is returned
// unchanged so that callers can report it in its native currency.
func Convert(amount float64, from, to string, table RateTable) float64 {
	if from == to {
		return amount
	}
	fromRate, ok := table.Rate(from)
	if !ok || fromRate == 0 {
		return amount
	}
	toRate, ok := table.Rate(to)
	if !ok {
		return amount
	}
	baseAmount := amount
	if from != table.base {
		baseAmount = amount / fromRate
	}
	return baseAmount * toRate
}

// Snapshot is the serialisable form of a RateTable.
type Snapshot struct {
	Base   string             `json:"base"`
	Rates  map[string]float64 `json:"rates"`
	Status Status             `json:"status"`
	Date   string             `json:"date"`
}

// Snapshot returns the serialisable form of the table.
func (t RateTable) Snapshot() Snapshot {
	return Snapshot{Base: t.base, Rates: t.Rates(), Status: t.status, Date: t.date}
}

// Table rebuilds a RateTable from the snapshot.
func (s Snapshot) Table() RateTable {
	return NewRateTable(s.Base, s.Rates, s.Status, s.Date)
}

// Convert is a method form of the package level Convert.
func (t RateTable) Convert(amount float64, from, to string) float64 {
	return Convert(amount, from, to, t)
}
