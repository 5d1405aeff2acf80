package charging

import "iter"

const (
	// TaperStartPct is the SoC at which charging power is first reduced.
	TaperStartPct = 80.0
	// TaperFinalPct is the SoC above which the lowest power band applies.
	TaperFinalPct = 90.0

	midBandFactor   = 0.5
	finalBandFactor = 0.3

	// minRateKW keeps segment times finite if a band rate were ever zero.
	minRateKW = 0.1
)

// Segment is a portion of a session charged at a constant power.
type Segment struct {
	FromPct float64
	ToPct   float64
	PowerKW float64
}

// Width returns the SoC span of the segment in percent.
func (s Segment) Width() float64 { return s.ToPct - s.FromPct }

// Minutes returns the time needed to charge the segment on a battery of the
// given capacity.
func (s Segment) Minutes(batteryKWh float64) float64 {
	energy := batteryKWh * s.Width() / 100.0
	rate := s.PowerKW
	if rate < minRateKW {
		rate = minRateKW
	}
	return energy / rate * 60.0
}

// EffectivePower is the power a vehicle actually draws from a station.
func EffectivePower(stationKW, vehicleKW float64) float64 {
	if vehicleKW < stationKW {
		return vehicleKW
	}
	return stationKW
}

// Segments splits the SoC window [startPct, endPct) into constant-power
// segments. Without taper the whole window is one segment at full power.
// Nothing is yielded when effectiveKW <= 0 or endPct <= startPct.
func Segments(startPct, endPct, effectiveKW float64, taper bool) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		if effectiveKW <= 0 || endPct <= startPct {
			return
		}
		current := startPct
		for current < endPct {
			rate, next := effectiveKW, endPct
			if taper {
				switch {
				case current < TaperStartPct:
					next = min(endPct, TaperStartPct)
				case current < TaperFinalPct:
					rate = effectiveKW * midBandFactor
					next = min(endPct, TaperFinalPct)
				default:
					rate = effectiveKW * finalBandFactor
				}
			}
			if !yield(Segment{FromPct: current, ToPct: next, PowerKW: rate}) {
				return
			}
			current = next
		}
	}
}

// Minutes returns the elapsed charging time from startPct to endPct. It
// returns 0 when no charging is required or the power is not positive.
func Minutes(batteryKWh, effectiveKW, startPct, endPct float64, taper bool) float64 {
	var total float64
	for seg := range Segments(startPct, endPct, effectiveKW, taper) {
		total += seg.Minutes(batteryKWh)
	}
	return total
}
