package compare

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kilianp07/evcharge/core/currency"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/tariff"
)

var (
	// ErrTooFewOffers is returned when fewer than two tariffs are compared.
	ErrTooFewOffers = errors.New("at least two tariffs are required")
	// ErrDuplicateOffer is returned when the same tariff is offered twice at
	// the same station power.
	ErrDuplicateOffer = errors.New("duplicate offer")
)

// Offer is a tariff used at a given station power. A zero StationKW uses the
// tariff's default power.
type Offer struct {
	Tariff    model.Tariff `json:"tariff"`
	StationKW float64      `json:"station_kw,omitempty"`
}

func (o Offer) stationKW() float64 {
	if o.StationKW > 0 {
		return o.StationKW
	}
	return o.Tariff.DefaultKW
}

// Request describes a comparison. Efficiency is the distance covered per kWh
// and only affects the per-100 figures.
type Request struct {
	Vehicle    model.Vehicle         `json:"vehicle"`
	Session    model.ChargingSession `json:"session"`
	Efficiency float64               `json:"efficiency"`
	Currency   string                `json:"currency"`
	Offers     []Offer               `json:"offers"`
}

// Result is a ranked comparison, cheapest first.
type Result struct {
	Currency      string          `json:"currency"`
	EnergyKWh     float64         `json:"energy_kwh"`
	DistanceAdded float64         `json:"distance_added"`
	Entries       []Entry         `json:"entries"`
	Winner        string          `json:"winner,omitempty"`
	RunnerUp      string          `json:"runner_up,omitempty"`
	Savings       float64         `json:"savings"`
	SavingsPct    float64         `json:"savings_pct"`
	RateStatus    currency.Status `json:"rate_status"`
	RateDate      string          `json:"rate_date"`
}

// Compare prices the session under every offer and ranks the results by
// converted cost. Sessions whose target does not exceed the start are
// refused with model.ErrTargetNotAboveStart.
func Compare(req Request, rates currency.RateTable) (Result, error) {
	if len(req.Offers) < 2 {
		return Result{}, ErrTooFewOffers
	}
	type key struct {
		provider string
		kw       float64
	}
	seen := make(map[key]struct{}, len(req.Offers))
	for _, o := range req.Offers {
		k := key{o.Tariff.Provider, o.stationKW()}
		if _, dup := seen[k]; dup {
			return Result{}, fmt.Errorf("%w: %s at %g kW", ErrDuplicateOffer, k.provider, k.kw)
		}
		seen[k] = struct{}{}
	}
	if err := req.Vehicle.Validate(); err != nil {
		return Result{}, fmt.Errorf("vehicle: %w", err)
	}
	if err := req.Session.Validate(); err != nil {
		return Result{}, err
	}
	res := newResult(req, rates)
	for _, o := range req.Offers {
		e := Quote(req.Vehicle, req.Session, res.EnergyKWh, o.stationKW(), o.Tariff, res.Currency, rates)
		e.CostPer100 = CostPer100(e.Cost, res.DistanceAdded)
		res.Entries = append(res.Entries, e)
	}
	res.rank()
	return res, nil
}

// CompareCards prices the session under every catalog tariff the user holds,
// each at its default power. Unlike Compare it accepts any number of
// matching tariffs, including none.
func CompareCards(req Request, catalog tariff.Catalog, allow tariff.AllowList, rates currency.RateTable) (Result, error) {
	if err := req.Vehicle.Validate(); err != nil {
		return Result{}, fmt.Errorf("vehicle: %w", err)
	}
	if err := req.Session.Validate(); err != nil {
		return Result{}, err
	}
	res := newResult(req, rates)
	for _, t := range catalog.Tariffs() {
		if !allow.Allows(t.Provider) {
			continue
		}
		e := Quote(req.Vehicle, req.Session, res.EnergyKWh, Offer{Tariff: t}.stationKW(), t, res.Currency, rates)
		e.CostPer100 = CostPer100(e.Cost, res.DistanceAdded)
		res.Entries = append(res.Entries, e)
	}
	res.rank()
	return res, nil
}

func newResult(req Request, rates currency.RateTable) Result {
	energy := req.Session.EnergyRequired(req.Vehicle.BatteryKWh)
	display := req.Currency
	if display == "" {
		display = rates.Base()
	}
	return Result{
		Currency:      display,
		EnergyKWh:     energy,
		DistanceAdded: energy * req.Efficiency,
		RateStatus:    rates.Status(),
		RateDate:      rates.Date(),
	}
}

// rank sorts entries by converted cost, keeping input order on ties, and
// fills in the winner and its savings over the runner-up.
func (r *Result) rank() {
	sort.SliceStable(r.Entries, func(i, j int) bool { return r.Entries[i].Cost < r.Entries[j].Cost })
	if len(r.Entries) == 0 {
		return
	}
	r.Winner = r.Entries[0].Provider
	if len(r.Entries) < 2 {
		return
	}
	runner := r.Entries[1]
	r.RunnerUp = runner.Provider
	r.Savings = runner.Cost - r.Entries[0].Cost
	if runner.Cost > 0 {
		r.SavingsPct = r.Savings / runner.Cost * 100.0
	}
}
