package planner

import (
	"math"

	"github.com/kilianp07/evcharge/core/model"
)

// UsableFraction is the share of nameplate capacity used per road-trip leg.
const UsableFraction = 0.70

// LegRange returns the distance covered by one leg.
func LegRange(batteryKWh, efficiency float64) float64 {
	return batteryKWh * UsableFraction * efficiency
}

// StopCount returns how many charging stops a trip needs. A trip within one
// leg's range needs none.
func StopCount(distance, batteryKWh, efficiency float64) int {
	leg := LegRange(batteryKWh, efficiency)
	if leg <= 0 || distance <= 0 {
		return 0
	}
	return int(math.Floor(distance / leg))
}

// StopFractions returns the positions of n stops as fractions of the route.
func StopFractions(n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{0.5}
	}
	step := 1.0 / float64(n+1)
	out := make([]float64, n)
	for i := range out {
		out[i] = step * float64(i+1)
	}
	return out
}

// PointAt maps a route fraction to the nearest sampled vertex of geometry.
func PointAt(geometry []model.Coordinate, fraction float64) (model.Coordinate, bool) {
	if len(geometry) == 0 {
		return model.Coordinate{}, false
	}
	n := len(geometry) - 1
	idx := int(math.Round(fraction * float64(n)))
	idx = max(0, min(n, idx))
	return geometry[idx], true
}
