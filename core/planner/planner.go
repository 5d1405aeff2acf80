package planner

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/core/currency"
	"github.com/kilianp07/evcharge/core/logger"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/tariff"
)

// Options tunes how stops are priced and searched.
type Options struct {
	// StopStartPct and StopEndPct bound the charge priced at each stop.
	StopStartPct float64 `json:"stop_start_pct"`
	StopEndPct   float64 `json:"stop_end_pct"`
	LossPct      float64 `json:"loss_pct"`
	Taper        bool    `json:"taper"`
	// RadiusKM and MaxResults bound the directory search around a stop.
	RadiusKM   float64 `json:"radius_km"`
	MaxResults int     `json:"max_results"`
}

// DefaultOptions prices a 10-80% charge with 6% losses and taper, searching
// 10 chargers within 5 km.
func DefaultOptions() Options {
	return Options{StopStartPct: 10, StopEndPct: 80, LossPct: 6, Taper: true, RadiusKM: 5, MaxResults: 10}
}

func (o Options) session() model.ChargingSession {
	return model.ChargingSession{StartPct: o.StopStartPct, TargetPct: o.StopEndPct, LossPct: o.LossPct, Taper: o.Taper}
}

// Planner plans charging stops. It holds no state between calls.
type Planner struct {
	dir      Directory
	resolver *tariff.Resolver
	geocoder Geocoder
	router   Router
	opts     Options
	log      logger.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithOptions replaces DefaultOptions.
func WithOptions(o Options) Option { return func(p *Planner) { p.opts = o } }

// WithRouting enables PlanBetween.
func WithRouting(g Geocoder, r Router) Option {
	return func(p *Planner) { p.geocoder, p.router = g, r }
}

// WithLogger sets the logger used for per-stop directory failures.
func WithLogger(l logger.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// New returns a planner searching dir and pricing with resolver.
func New(dir Directory, resolver *tariff.Resolver, opts ...Option) *Planner {
	p := &Planner{dir: dir, resolver: resolver, opts: DefaultOptions(), log: logger.Nop{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TripRequest describes a trip to plan. Efficiency is in miles per kWh and
// Reference is the tariff used for the whole-trip budget.
type TripRequest struct {
	Vehicle    model.Vehicle    `json:"vehicle"`
	Efficiency float64          `json:"efficiency"`
	Route      model.Route      `json:"route"`
	Currency   string           `json:"currency"`
	Reference  model.Tariff     `json:"reference"`
	Allow      tariff.AllowList `json:"-"`
}

// TripPlan is the outcome of a planning run.
type TripPlan struct {
	DistanceMiles float64 `json:"distance_miles"`
	DurationMin   float64 `json:"duration_min"`
	StopsRequired int     `json:"stops_required"`
	// Stops holds only the stops that received a recommendation.
	Stops []model.RouteStop `json:"stops"`
	// Unresolved lists the indexes of stops without a costable charger.
	Unresolved []int `json:"unresolved,omitempty"`

	// Whole-trip budget based on the reference tariff.
	EnergyKWh       float64 `json:"energy_kwh"`
	EstimatedCost   float64 `json:"estimated_cost"`
	ReferenceTariff string  `json:"reference_tariff"`
	Currency        string  `json:"currency"`

	// Totals over the recommended stops.
	StopsCost    float64 `json:"stops_cost"`
	StopsMinutes float64 `json:"stops_minutes"`

	RateStatus currency.Status `json:"rate_status"`
}

// Plan computes the stops of req.Route and a recommendation per stop.
func (p *Planner) Plan(ctx context.Context, req TripRequest, rates currency.RateTable) (TripPlan, error) {
	if err := req.Vehicle.Validate(); err != nil {
		return TripPlan{}, fmt.Errorf("vehicle: %w", err)
	}
	if req.Efficiency <= 0 {
		return TripPlan{}, fmt.Errorf("efficiency must be positive")
	}
	display := req.Currency
	if display == "" {
		display = rates.Base()
	}
	distance := req.Route.DistanceMiles()
	plan := TripPlan{
		DistanceMiles:   distance,
		DurationMin:     req.Route.DurationMin,
		StopsRequired:   StopCount(distance, req.Vehicle.BatteryKWh, req.Efficiency),
		EnergyKWh:       distance / req.Efficiency,
		ReferenceTariff: req.Reference.Provider,
		Currency:        display,
		RateStatus:      rates.Status(),
	}
	native := plan.EnergyKWh * req.Reference.EnergyPrice
	plan.EstimatedCost = currency.Convert(native, req.Reference.Currency, display, rates)

	var costs, minutes []float64
	for i, frac := range StopFractions(plan.StopsRequired) {
		point, ok := PointAt(req.Route.Geometry, frac)
		if !ok {
			plan.Unresolved = append(plan.Unresolved, i)
			continue
		}
		rec, err := p.BestCharger(ctx, point, req.Vehicle, display, req.Allow, rates)
		if err != nil {
			p.log.Warnf("stop %d: charger lookup failed: %v", i+1, err)
		}
		if rec == nil {
			plan.Unresolved = append(plan.Unresolved, i)
			continue
		}
		plan.Stops = append(plan.Stops, model.RouteStop{Index: i, Fraction: frac, Point: point, Recommendation: rec})
		costs = append(costs, rec.Cost)
		minutes = append(minutes, rec.Minutes)
	}
	if len(costs) > 0 {
		plan.StopsCost = floats.Sum(costs)
		plan.StopsMinutes = floats.Sum(minutes)
	}
	return plan, nil
}

// BestCharger returns the cheapest costable charger around point, or nil
// when none of the nearby chargers resolves to an allowed tariff.
func (p *Planner) BestCharger(ctx context.Context, point model.Coordinate, v model.Vehicle, display string, allow tariff.AllowList, rates currency.RateTable) (*model.StopRecommendation, error) {
	if p.dir == nil {
		return nil, nil
	}
	candidates, err := p.dir.Nearby(ctx, point, p.opts.RadiusKM, p.opts.MaxResults)
	if err != nil {
		return nil, err
	}
	session := p.opts.session()
	energy := session.EnergyRequired(v.BatteryKWh)
	if energy <= 0 {
		return nil, nil
	}

	var recs []model.StopRecommendation
	var costs []float64
	for _, c := range candidates {
		t, ok := p.resolver.ResolveCandidate(c, allow)
		if !ok {
			continue
		}
		q := compare.Quote(v, session, energy, tariff.ConnectorPower(c), t, display, rates)
		recs = append(recs, model.StopRecommendation{
			ChargerName: c.DisplayName(),
			Operator:    c.DisplayOperator(),
			Point:       c.Point,
			PowerKW:     q.EffectiveKW,
			Tariff:      t.Provider,
			Cost:        q.Cost,
			Minutes:     q.Minutes,
		})
		costs = append(costs, q.Cost)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	best := recs[floats.MinIdx(costs)]
	return &best, nil
}

// PlanBetween geocodes from and to, fetches directions and plans the trip.
// Collaborator failures are returned as *UpstreamError without retrying.
func (p *Planner) PlanBetween(ctx context.Context, from, to string, req TripRequest, rates currency.RateTable) (TripPlan, error) {
	if p.geocoder == nil || p.router == nil {
		return TripPlan{}, ErrNoRouting
	}
	start, err := p.geocoder.Geocode(ctx, from)
	if err != nil {
		return TripPlan{}, &UpstreamError{Stage: "geocode start", Err: err}
	}
	end, err := p.geocoder.Geocode(ctx, to)
	if err != nil {
		return TripPlan{}, &UpstreamError{Stage: "geocode destination", Err: err}
	}
	route, err := p.router.Directions(ctx, start, end)
	if err != nil {
		return TripPlan{}, &UpstreamError{Stage: "directions", Err: err}
	}
	req.Route = route
	return p.Plan(ctx, req, rates)
}
