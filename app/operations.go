package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/evcharge/core/catalog"
	"github.com/kilianp07/evcharge/core/compare"
	"github.com/kilianp07/evcharge/core/currency"
	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/core/model"
	coremon "github.com/kilianp07/evcharge/core/monitoring"
	"github.com/kilianp07/evcharge/core/planner"
	"github.com/kilianp07/evcharge/core/tariff"
	"github.com/kilianp07/evcharge/infra/journal"
)

// ErrInvalidInput marks errors caused by the caller's request.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// VehicleRef names a catalogue vehicle or carries custom battery and power figures.
type VehicleRef struct {
	Model  string         `json:"model"`
	Custom *model.Vehicle `json:"custom,omitempty"`
}

// OfferQuery prices a catalogue provider, or a custom tariff when Tariff is
// set, optionally on a specific station power.
type OfferQuery struct {
	Provider  string        `json:"provider"`
	Tariff    *model.Tariff `json:"tariff,omitempty"`
	StationKW float64       `json:"station_kw,omitempty"`
}

// CompareQuery is a comparison request. Cards is only used by CompareCards;
// nil means every public provider.
type CompareQuery struct {
	Vehicle    VehicleRef            `json:"vehicle"`
	Session    model.ChargingSession `json:"session"`
	Efficiency float64               `json:"efficiency"`
	Currency   string                `json:"currency"`
	Offers     []OfferQuery          `json:"offers"`
	Cards      []string              `json:"cards,omitempty"`
}

// TripQuery plans a trip between two places, or along Route when it is set.
type TripQuery struct {
	From       string       `json:"from"`
	To         string       `json:"to"`
	Route      *model.Route `json:"route,omitempty"`
	Vehicle    VehicleRef   `json:"vehicle"`
	Efficiency float64      `json:"efficiency"`
	Currency   string       `json:"currency"`
	Reference  string       `json:"reference"`
	Cards      []string     `json:"cards,omitempty"`
}

// NearbyQuery surveys the chargers around At, or around Place once geocoded.
type NearbyQuery struct {
	Place      string                `json:"place"`
	At         *model.Coordinate     `json:"at,omitempty"`
	Vehicle    VehicleRef            `json:"vehicle"`
	Session    model.ChargingSession `json:"session"`
	Efficiency float64               `json:"efficiency"`
	Currency   string                `json:"currency"`
	RadiusKM   float64               `json:"radius_km"`
	MaxResults int                   `json:"max_results"`
	Cards      []string              `json:"cards,omitempty"`
}

// Vehicles returns the vehicle database.
func (s *Service) Vehicles() []model.Vehicle { return s.data.Vehicles }

// Tariffs returns the provider presets in display order.
func (s *Service) Tariffs() []model.Tariff { return s.resolver.Catalog().Tariffs() }

// Rates returns the current exchange-rate table.
func (s *Service) Rates(ctx context.Context) currency.RateTable { return s.rates.Table(ctx) }

// Journal returns the journal store, or nil when it is disabled.
func (s *Service) Journal() journal.Store { return s.store }

// Compare ranks the offers of q.
func (s *Service) Compare(ctx context.Context, q CompareQuery) (compare.Result, error) {
	req, err := s.compareRequest(q)
	if err != nil {
		return compare.Result{}, err
	}
	for _, o := range q.Offers {
		offer, err := s.offer(o)
		if err != nil {
			return compare.Result{}, err
		}
		req.Offers = append(req.Offers, offer)
	}
	res, err := compare.Compare(req, s.Rates(ctx))
	if err != nil {
		return compare.Result{}, invalid("%v", err)
	}
	s.quoted(journal.KindCompare, res)
	return res, nil
}

// CompareCards ranks every held card at its default power.
func (s *Service) CompareCards(ctx context.Context, q CompareQuery) (compare.Result, error) {
	req, err := s.compareRequest(q)
	if err != nil {
		return compare.Result{}, err
	}
	allow, err := s.allowList(q.Cards)
	if err != nil {
		return compare.Result{}, err
	}
	res, err := compare.CompareCards(req, s.resolver.Catalog(), allow, s.Rates(ctx))
	if err != nil {
		return compare.Result{}, invalid("%v", err)
	}
	s.quoted(journal.KindCards, res)
	return res, nil
}

// PlanTrip plans the charging stops of a trip. Collaborator failures are
// returned as *planner.UpstreamError and reported to monitoring.
func (s *Service) PlanTrip(ctx context.Context, q TripQuery) (planner.TripPlan, error) {
	v, err := s.vehicle(q.Vehicle)
	if err != nil {
		return planner.TripPlan{}, err
	}
	refName := q.Reference
	if refName == "" {
		refName = s.cfg.Planner.ReferenceTariff
	}
	ref, ok := s.resolver.ByName(refName)
	if !ok {
		return planner.TripPlan{}, invalid("unknown reference tariff %q", refName)
	}
	allow, err := s.allowList(q.Cards)
	if err != nil {
		return planner.TripPlan{}, err
	}
	display, err := s.currency(q.Currency)
	if err != nil {
		return planner.TripPlan{}, err
	}
	req := planner.TripRequest{Vehicle: v, Efficiency: q.Efficiency, Currency: display, Reference: ref, Allow: allow}

	started := time.Now()
	rates := s.Rates(ctx)
	var plan planner.TripPlan
	if q.Route != nil {
		req.Route = *q.Route
		plan, err = s.planner.Plan(ctx, req, rates)
	} else {
		if q.From == "" || q.To == "" {
			return planner.TripPlan{}, invalid("start and destination are required")
		}
		plan, err = s.planner.PlanBetween(ctx, q.From, q.To, req, rates)
	}
	ev := coremetrics.PlanEvent{
		DistanceMiles: plan.DistanceMiles,
		StopsRequired: plan.StopsRequired,
		StopsResolved: len(plan.Stops),
		StopsCost:     plan.StopsCost,
		EstimatedCost: plan.EstimatedCost,
		Currency:      display,
		Duration:      time.Since(started),
		Time:          started,
	}
	if err != nil {
		ev.Err = err.Error()
		s.bus.Publish(ev)
		return planner.TripPlan{}, s.classify(err)
	}
	s.bus.Publish(ev)
	s.journal(journal.KindPlan, plan)
	return plan, nil
}

// Nearby lists the chargers around a position, costing those a held card
// covers.
func (s *Service) Nearby(ctx context.Context, q NearbyQuery) (planner.Survey, error) {
	v, err := s.vehicle(q.Vehicle)
	if err != nil {
		return planner.Survey{}, err
	}
	// A session that adds no energy still lists the chargers, uncosted.
	if err := q.Session.Validate(); err != nil && !errors.Is(err, model.ErrTargetNotAboveStart) {
		return planner.Survey{}, invalid("%v", err)
	}
	allow, err := s.allowList(q.Cards)
	if err != nil {
		return planner.Survey{}, err
	}
	display, err := s.currency(q.Currency)
	if err != nil {
		return planner.Survey{}, err
	}
	var at model.Coordinate
	switch {
	case q.At != nil:
		at = *q.At
	case q.Place != "":
		at, err = s.geocoder.Geocode(ctx, q.Place)
		if err != nil {
			return planner.Survey{}, s.classify(&planner.UpstreamError{Stage: "geocode", Err: err})
		}
	default:
		return planner.Survey{}, invalid("a place or a position is required")
	}
	survey, err := s.planner.Survey(ctx, planner.SurveyRequest{
		At: at, Vehicle: v, Session: q.Session, Efficiency: q.Efficiency, Currency: display,
		RadiusKM: q.RadiusKM, MaxResults: q.MaxResults, Allow: allow,
	}, s.Rates(ctx))
	if err != nil {
		return planner.Survey{}, s.classify(err)
	}
	s.surveyed(survey)
	return survey, nil
}

func (s *Service) compareRequest(q CompareQuery) (compare.Request, error) {
	v, err := s.vehicle(q.Vehicle)
	if err != nil {
		return compare.Request{}, err
	}
	display, err := s.currency(q.Currency)
	if err != nil {
		return compare.Request{}, err
	}
	return compare.Request{Vehicle: v, Session: q.Session, Efficiency: q.Efficiency, Currency: display}, nil
}

func (s *Service) vehicle(ref VehicleRef) (model.Vehicle, error) {
	if ref.Custom != nil {
		v := *ref.Custom
		if v.Model == "" {
			v.Model = catalog.CustomVehicle
		}
		if err := v.Validate(); err != nil {
			return model.Vehicle{}, invalid("vehicle: %v", err)
		}
		return v, nil
	}
	if ref.Model == "" {
		return model.Vehicle{}, invalid("vehicle is required")
	}
	v, ok := s.data.Vehicle(ref.Model)
	if !ok {
		return model.Vehicle{}, invalid("unknown vehicle %q", ref.Model)
	}
	return v, nil
}

func (s *Service) offer(o OfferQuery) (compare.Offer, error) {
	if o.StationKW < 0 {
		return compare.Offer{}, invalid("station power must not be negative")
	}
	if o.Tariff != nil {
		t := *o.Tariff
		if t.Provider == "" {
			t.Provider = o.Provider
		}
		if err := t.Validate(); err != nil {
			return compare.Offer{}, invalid("tariff %q: %v", t.Provider, err)
		}
		return compare.Offer{Tariff: t, StationKW: o.StationKW}, nil
	}
	t, ok := s.resolver.ByName(o.Provider)
	if !ok {
		return compare.Offer{}, invalid("unknown provider %q", o.Provider)
	}
	return compare.Offer{Tariff: t, StationKW: o.StationKW}, nil
}

func (s *Service) allowList(cards []string) (tariff.AllowList, error) {
	if cards == nil {
		return tariff.NewAllowList(s.resolver.Catalog().PublicNames()...), nil
	}
	for _, c := range cards {
		if _, ok := s.resolver.ByName(c); !ok {
			return nil, invalid("unknown card %q", c)
		}
	}
	return tariff.NewAllowList(cards...), nil
}

func (s *Service) currency(code string) (string, error) {
	if code == "" {
		return s.cfg.Planner.DisplayCurrency, nil
	}
	if _, ok := currency.FallbackTable().Rate(code); !ok {
		return "", invalid("unsupported currency %q", code)
	}
	return code, nil
}

// classify reports collaborator failures and marks everything else as a
// request error.
func (s *Service) classify(err error) error {
	var up *planner.UpstreamError
	switch {
	case errors.As(err, &up):
		s.bus.Publish(coremetrics.UpstreamFailure{Stage: up.Stage, Time: time.Now()})
		if !errors.Is(err, planner.ErrNotFound) && !errors.Is(err, planner.ErrRouteTooLong) {
			coremon.CaptureUpstream(err, "planner")
		}
		return err
	case errors.Is(err, planner.ErrNoRouting), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return invalid("%v", err)
}

func (s *Service) quoted(kind string, res compare.Result) {
	ev := coremetrics.QuoteEvent{
		Kind:       kind,
		Winner:     res.Winner,
		RunnerUp:   res.RunnerUp,
		Currency:   res.Currency,
		Offers:     len(res.Entries),
		EnergyKWh:  res.EnergyKWh,
		Savings:    res.Savings,
		RateStatus: string(res.RateStatus),
		Time:       time.Now(),
	}
	if len(res.Entries) > 0 {
		ev.WinnerCost = res.Entries[0].Cost
	}
	s.bus.Publish(ev)
	s.journal(kind, res)
}

func (s *Service) surveyed(survey planner.Survey) {
	ev := coremetrics.QuoteEvent{Kind: journal.KindSurvey, Currency: survey.Currency, EnergyKWh: survey.EnergyKWh, Time: time.Now()}
	for _, r := range survey.Rows {
		if r.Cost == nil {
			continue
		}
		ev.Offers++
		if ev.Winner == "" || *r.Cost < ev.WinnerCost {
			ev.Winner, ev.WinnerCost = r.Name, *r.Cost
		}
	}
	s.bus.Publish(ev)
	s.journal(journal.KindSurvey, survey)
}

func (s *Service) ratesRefreshed(t currency.RateTable) {
	now := time.Now()
	s.bus.Publish(coremetrics.RateRefreshEvent{
		Base:   t.Base(),
		Status: string(t.Status()),
		Date:   t.Date(),
		Rates:  t.Rates(),
		Time:   now,
	})
	s.journal(journal.KindRates, t.Snapshot())
}

func (s *Service) journal(kind string, payload any) {
	rec, err := journal.NewRecord(kind, payload, time.Now())
	if err != nil {
		s.log.Errorf("journal %s: %v", kind, err)
		return
	}
	s.bus.Publish(rec)
}
