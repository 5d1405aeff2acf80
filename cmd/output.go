package cmd

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/core/currency"
	"github.com/kilianp07/evcharge/core/format"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/planner"
	"github.com/kilianp07/evcharge/pkg/export"
)

// emit writes v in the selected output format. csvFn is nil for values
// without a CSV form.
func emit(w io.Writer, v any, tableFn, csvFn func(io.Writer) error) error {
	switch output {
	case "", "table":
		return tableFn(w)
	case "json":
		return export.WriteJSON(w, v)
	case "csv":
		if csvFn != nil {
			return csvFn(w)
		}
	}
	return fmt.Errorf("output %q is not supported here", output)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func rateNote(status currency.Status) string {
	if status == currency.StatusLive {
		return "live rates"
	}
	return "fallback rates"
}

func printResult(w io.Writer, res compare.Result) error {
	fmt.Fprintf(w, "Energy %.1f kWh, adds %.0f miles (%s)\n\n", res.EnergyKWh, res.DistanceAdded, rateNote(res.RateStatus))
	tw := table(w)
	fmt.Fprintln(tw, "PROVIDER\tPOWER\tTIME\tCOST\tPER 100 MI")
	for _, e := range res.Entries {
		fmt.Fprintf(tw, "%s\t%.0f kW\t%s\t%s\t%s\n", e.Provider, e.EffectiveKW,
			format.Minutes(e.Minutes), format.Money(e.Cost, res.Currency), format.Money(e.CostPer100, res.Currency))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.RunnerUp != "" {
		fmt.Fprintf(w, "\n%s is cheapest, saving %s (%s) over %s\n", res.Winner,
			format.Money(res.Savings, res.Currency), format.Percent(res.SavingsPct), res.RunnerUp)
	}
	return nil
}

func printPlan(w io.Writer, plan planner.TripPlan) error {
	fmt.Fprintf(w, "%.0f miles, %s driving, %d stop(s) required\n", plan.DistanceMiles, format.Minutes(plan.DurationMin), plan.StopsRequired)
	fmt.Fprintf(w, "Trip energy %.1f kWh, about %s with %s (%s)\n", plan.EnergyKWh,
		format.Money(plan.EstimatedCost, plan.Currency), plan.ReferenceTariff, rateNote(plan.RateStatus))
	if plan.StopsRequired == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw := table(w)
	fmt.Fprintln(tw, "STOP\tCHARGER\tOPERATOR\tTARIFF\tPOWER\tTIME\tCOST")
	for _, s := range plan.Stops {
		r := s.Recommendation
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.0f kW\t%s\t%s\n", s.Index+1, r.ChargerName, r.Operator, r.Tariff,
			r.PowerKW, format.Minutes(r.Minutes), format.Money(r.Cost, plan.Currency))
	}
	for _, i := range plan.Unresolved {
		fmt.Fprintf(tw, "%d\tno costable charger nearby\t\t\t\t\t\n", i+1)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(plan.Stops) > 0 {
		fmt.Fprintf(w, "\nStops total %s, %s charging\n", format.Money(plan.StopsCost, plan.Currency), format.Minutes(plan.StopsMinutes))
	}
	return nil
}

func printSurvey(w io.Writer, s planner.Survey) error {
	if len(s.Rows) == 0 {
		fmt.Fprintln(w, "No chargers found")
		return nil
	}
	tw := table(w)
	fmt.Fprintln(tw, "CHARGER\tOPERATOR\tDISTANCE\tPOWER\tTARIFF\tTIME\tCOST")
	for _, r := range s.Rows {
		dist, tariff, minutes, cost := "-", "-", "-", "-"
		if r.DistanceKM != nil {
			dist = fmt.Sprintf("%.1f km", *r.DistanceKM)
		}
		if r.Tariff != "" {
			tariff = r.Tariff
		}
		if r.Minutes != nil {
			minutes = format.Minutes(*r.Minutes)
		}
		if r.Cost != nil {
			cost = format.Money(*r.Cost, s.Currency)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f kW\t%s\t%s\t%s\n", r.Name, r.Operator, dist, r.EffectiveKW, tariff, minutes, cost)
	}
	return tw.Flush()
}

func printVehicles(w io.Writer, vehicles []model.Vehicle) error {
	tw := table(w)
	fmt.Fprintln(tw, "MODEL\tCATEGORY\tBATTERY\tMAX DC")
	for _, v := range vehicles {
		fmt.Fprintf(tw, "%s\t%s\t%.1f kWh\t%.0f kW\n", v.Model, v.Category, v.BatteryKWh, v.MaxDCKW)
	}
	return tw.Flush()
}

func printTariffs(w io.Writer, tariffs []model.Tariff) error {
	tw := table(w)
	fmt.Fprintln(tw, "PROVIDER\tKIND\tNETWORK\tENERGY\tTIME\tPOWER")
	for _, t := range tariffs {
		timePrice := "-"
		if t.TimePrice > 0 {
			timePrice = fmt.Sprintf("%s%.2f/min", format.Symbol(t.Currency), t.TimePrice)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s%.2f/kWh\t%s\t%.0f kW\n", t.Provider, t.Kind, t.Network,
			format.Symbol(t.Currency), t.EnergyPrice, timePrice, t.DefaultKW)
	}
	return tw.Flush()
}

func printRates(w io.Writer, t currency.RateTable) error {
	fmt.Fprintf(w, "Base %s, %s (%s)\n", t.Base(), t.Date(), rateNote(t.Status()))
	rates := t.Rates()
	codes := make([]string, 0, len(rates))
	for c := range rates {
		if c != t.Base() {
			codes = append(codes, c)
		}
	}
	sort.Strings(codes)
	tw := table(w)
	for _, c := range codes {
		fmt.Fprintf(tw, "%s\t%.4f\n", c, rates[c])
	}
	return tw.Flush()
}
