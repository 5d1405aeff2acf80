// Package export writes comparison results and trip plans as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/core/planner"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// WriteResultCSV writes one row per ranked entry, cheapest first.
func WriteResultCSV(w io.Writer, res compare.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"rank", "provider", "effective_kw", "minutes", "native_cost", "native_currency", "cost", "currency", "cost_per_100"}); err != nil {
		return err
	}
	for i, e := range res.Entries {
		rec := []string{
			strconv.Itoa(i + 1),
			e.Provider,
			num(e.EffectiveKW),
			num(e.Minutes),
			num(e.NativeCost),
			e.Currency,
			num(e.Cost),
			res.Currency,
			num(e.CostPer100),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePlanCSV writes one row per recommended stop.
func WritePlanCSV(w io.Writer, plan planner.TripPlan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"stop", "lat", "lon", "charger", "operator", "tariff", "power_kw", "minutes", "cost", "currency"}); err != nil {
		return err
	}
	for _, s := range plan.Stops {
		r := s.Recommendation
		rec := []string{
			strconv.Itoa(s.Index + 1),
			num(r.Point.Lat),
			num(r.Point.Lon),
			r.ChargerName,
			r.Operator,
			r.Tariff,
			num(r.PowerKW),
			num(r.Minutes),
			num(r.Cost),
			plan.Currency,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
