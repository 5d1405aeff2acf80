// Package format renders durations and amounts for people.
package format

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{"GBP": "£", "EUR": "€", "USD": "$"}

// Symbol returns the currency symbol for code, or the code itself.
func Symbol(code string) string {
	if s, ok := symbols[code]; ok {
		return s
	}
	return code
}

// Money formats amount with two decimals behind the currency symbol.
func Money(amount float64, code string) string {
	return Symbol(code) + Round2(amount).StringFixed(2)
}

// Round2 rounds amount half away from zero to two decimals.
func Round2(amount float64) decimal.Decimal {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(amount).Round(2)
}

// Minutes renders a duration as "N min" below an hour and "Hh Mm" above.
func Minutes(m float64) string {
	if math.IsNaN(m) || m < 0 {
		m = 0
	}
	if m < 60 {
		return decimal.NewFromFloat(m).Round(0).String() + " min"
	}
	hours := int(m / 60)
	mins := int(math.Mod(m, 60))
	return fmt.Sprintf("%dh %dm", hours, mins)
}

// Percent renders p with one decimal.
func Percent(p float64) string {
	return decimal.NewFromFloat(p).Round(1).StringFixed(1) + "%"
}
