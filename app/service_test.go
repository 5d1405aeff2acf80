package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evcharge/config"
	"github.com/kilianp07/evcharge/core/currency"
	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/core/model"
	"github.com/kilianp07/evcharge/core/planner"
	"github.com/kilianp07/evcharge/infra/journal"
	"github.com/kilianp07/evcharge/infra/logger"
)

type fixedSource struct{ err error }

func (s fixedSource) Latest(context.Context) (currency.RateTable, error) {
	if s.err != nil {
		return currency.RateTable{}, s.err
	}
	return currency.NewRateTable("EUR", map[string]float64{"GBP": 0.85, "USD": 1.1}, currency.StatusLive, "2026-10-16"), nil
}

type directory struct{ chargers []model.ChargerCandidate }

func (d directory) Nearby(context.Context, model.Coordinate, float64, int) ([]model.ChargerCandidate, error) {
	return d.chargers, nil
}

type geocoder struct{ err error }

func (g geocoder) Geocode(_ context.Context, q string) (model.Coordinate, error) {
	if g.err != nil {
		return model.Coordinate{}, g.err
	}
	return model.Coordinate{Lat: 51.5, Lon: -0.1}, nil
}

type router struct{ route model.Route }

func (r router) Directions(context.Context, model.Coordinate, model.Coordinate) (model.Route, error) {
	return r.route, nil
}

type recordingSink struct {
	mu     sync.Mutex
	quotes []coremetrics.QuoteEvent
	plans  []coremetrics.PlanEvent
	rates  []coremetrics.RateRefreshEvent
	fails  []coremetrics.UpstreamFailure
}

func (s *recordingSink) RecordQuote(ev coremetrics.QuoteEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, ev)
	return nil
}

func (s *recordingSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = append(s.plans, ev)
	return nil
}

func (s *recordingSink) RecordRateRefresh(ev coremetrics.RateRefreshEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates = append(s.rates, ev)
	return nil
}

func (s *recordingSink) RecordUpstreamFailure(ev coremetrics.UpstreamFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails = append(s.fails, ev)
	return nil
}

func ptr(v float64) *float64 { return &v }

func straight(miles float64) model.Route {
	geo := make([]model.Coordinate, 11)
	for i := range geo {
		geo[i] = model.Coordinate{Lat: 51 + float64(i)*0.1, Lon: -1}
	}
	return model.Route{DistanceKM: miles / model.KMToMiles, DurationMin: 240, Geometry: geo}
}

// memStore keeps records after Close so tests can inspect them.
type memStore struct {
	mu   sync.Mutex
	recs []journal.Record
}

func (m *memStore) Append(_ context.Context, rec journal.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memStore) Query(_ context.Context, q journal.Query) ([]journal.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []journal.Record
	for _, r := range m.recs {
		if q.Kind == "" || r.Kind == q.Kind {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

func newService(t *testing.T, opts ...Option) (*Service, *recordingSink, journal.Store) {
	t.Helper()
	store := &memStore{}
	sink := &recordingSink{}
	base := []Option{
		WithRateSource(fixedSource{}),
		WithDirectory(directory{chargers: []model.ChargerCandidate{
			{Operator: "Pod Point", Site: "Tesco", Connections: []model.Connection{{PowerKW: ptr(7)}}},
			{Operator: "BP Pulse", Site: "Services", Connections: []model.Connection{{PowerKW: ptr(150)}}},
		}}),
		WithRouting(geocoder{}, router{route: straight(300)}),
		WithMetricsSink(sink),
		WithJournal(store),
		WithLogger(logger.NopLogger{}),
	}
	svc, err := New(config.Default(), append(base, opts...)...)
	require.NoError(t, err)
	svc.Start(context.Background())
	return svc, sink, store
}

func TestCompare(t *testing.T) {
	svc, sink, store := newService(t)
	res, err := svc.Compare(context.Background(), CompareQuery{
		Vehicle:    VehicleRef{Model: "Tesla Model 3 Long Range"},
		Session:    model.ChargingSession{StartPct: 20, TargetPct: 80, LossPct: 6, Taper: true},
		Efficiency: 3.5,
		Offers: []OfferQuery{
			{Provider: "Home - Octopus Intelligent"},
			{Provider: "Freshmile", StationKW: 22},
			{Provider: "Mine", Tariff: &model.Tariff{Currency: "USD", EnergyPrice: 0.3, DefaultKW: 50}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "GBP", res.Currency)
	assert.Equal(t, "Home - Octopus Intelligent", res.Winner)
	assert.Len(t, res.Entries, 3)

	require.NoError(t, svc.Close())
	require.Len(t, sink.quotes, 1)
	assert.Equal(t, journal.KindCompare, sink.quotes[0].Kind)
	assert.Equal(t, 3, sink.quotes[0].Offers)
	require.Len(t, sink.rates, 1)
	assert.Equal(t, "live", sink.rates[0].Status)

	recs, err := store.Query(context.Background(), journal.Query{})
	require.NoError(t, err)
	kinds := map[string]int{}
	for _, r := range recs {
		kinds[r.Kind]++
	}
	assert.Equal(t, map[string]int{journal.KindCompare: 1, journal.KindRates: 1}, kinds)
}

func TestCompareErrors(t *testing.T) {
	svc, _, _ := newService(t)
	defer svc.Close()
	session := model.ChargingSession{StartPct: 20, TargetPct: 80}
	cases := []CompareQuery{
		{Vehicle: VehicleRef{Model: "Flux Capacitor"}, Session: session, Offers: []OfferQuery{{Provider: "Pod Point"}, {Provider: "Freshmile"}}},
		{Vehicle: VehicleRef{Model: "MG4 Long Range"}, Session: session, Offers: []OfferQuery{{Provider: "Pod Point"}}},
		{Vehicle: VehicleRef{Model: "MG4 Long Range"}, Session: session, Offers: []OfferQuery{{Provider: "Pod Point"}, {Provider: "Nope"}}},
		{Vehicle: VehicleRef{Custom: &model.Vehicle{BatteryKWh: 0, MaxDCKW: 50}}, Session: session},
		{Vehicle: VehicleRef{Model: "MG4 Long Range"}, Session: session, Currency: "JPY"},
		{Vehicle: VehicleRef{Model: "MG4 Long Range"}, Session: session, Offers: []OfferQuery{{Provider: "Pod Point"}, {Provider: "Pod Point"}}},
	}
	for i, q := range cases {
		_, err := svc.Compare(context.Background(), q)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestCompareCardsDefaultsToPublicProviders(t *testing.T) {
	svc, _, _ := newService(t)
	defer svc.Close()
	q := CompareQuery{
		Vehicle:    VehicleRef{Custom: &model.Vehicle{BatteryKWh: 60, MaxDCKW: 100}},
		Session:    model.ChargingSession{StartPct: 10, TargetPct: 80},
		Efficiency: 4,
		Currency:   "EUR",
	}
	res, err := svc.CompareCards(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 12)
	for _, e := range res.Entries {
		assert.NotContains(t, e.Provider, "Home")
	}

	q.Cards = []string{"Pod Point", "Electra+"}
	res, err = svc.CompareCards(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)

	q.Cards = []string{"Unknown Card"}
	_, err = svc.CompareCards(context.Background(), q)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPlanTrip(t *testing.T) {
	svc, sink, store := newService(t)
	plan, err := svc.PlanTrip(context.Background(), TripQuery{
		From: "London", To: "Leeds",
		Vehicle:    VehicleRef{Model: "Tesla Model 3 Long Range"},
		Efficiency: 3.5,
		Cards:      []string{"Pod Point"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.StopsRequired)
	require.Len(t, plan.Stops, 1)
	assert.Equal(t, "Pod Point", plan.Stops[0].Recommendation.Tariff)
	assert.Equal(t, "Pod Point", plan.ReferenceTariff)
	assert.Equal(t, "GBP", plan.Currency)

	require.NoError(t, svc.Close())
	require.Len(t, sink.plans, 1)
	assert.Equal(t, 1, sink.plans[0].StopsResolved)
	assert.Empty(t, sink.plans[0].Err)

	recs, err := store.Query(context.Background(), journal.Query{Kind: journal.KindPlan})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestPlanTripUpstreamFailure(t *testing.T) {
	svc, sink, _ := newService(t, WithRouting(geocoder{err: planner.ErrNotFound}, router{}))
	_, err := svc.PlanTrip(context.Background(), TripQuery{
		From: "Atlantis", To: "Leeds",
		Vehicle:    VehicleRef{Model: "MG4 Long Range"},
		Efficiency: 3.5,
	})
	var up *planner.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, "geocode start", up.Stage)
	assert.False(t, errors.Is(err, ErrInvalidInput))

	require.NoError(t, svc.Close())
	require.Len(t, sink.fails, 1)
	assert.Equal(t, "geocode start", sink.fails[0].Stage)
	require.Len(t, sink.plans, 1)
	assert.NotEmpty(t, sink.plans[0].Err)
}

func TestPlanTripAlongRoute(t *testing.T) {
	svc, _, _ := newService(t)
	defer svc.Close()
	route := straight(100)
	plan, err := svc.PlanTrip(context.Background(), TripQuery{
		Route:      &route,
		Vehicle:    VehicleRef{Model: "MG4 Long Range"},
		Efficiency: 4,
		Reference:  "Electra+",
		Currency:   "EUR",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, plan.StopsRequired)
	assert.InDelta(t, 25*0.49, plan.EstimatedCost, 1e-6)

	_, err = svc.PlanTrip(context.Background(), TripQuery{Vehicle: VehicleRef{Model: "MG4 Long Range"}, Efficiency: 4})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.PlanTrip(context.Background(), TripQuery{Route: &route, Vehicle: VehicleRef{Model: "MG4 Long Range"}, Efficiency: 4, Reference: "Nope"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNearby(t *testing.T) {
	svc, sink, _ := newService(t)
	survey, err := svc.Nearby(context.Background(), NearbyQuery{
		Place:      "York",
		Vehicle:    VehicleRef{Model: "MG4 Long Range"},
		Session:    model.ChargingSession{StartPct: 20, TargetPct: 80},
		Efficiency: 4,
		Cards:      []string{"Pod Point"},
	})
	require.NoError(t, err)
	require.Len(t, survey.Rows, 2)
	var costed int
	for _, r := range survey.Rows {
		if r.Cost != nil {
			costed++
		}
	}
	assert.Equal(t, 1, costed)

	_, err = svc.Nearby(context.Background(), NearbyQuery{Vehicle: VehicleRef{Model: "MG4 Long Range"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.Close())
	require.Len(t, sink.quotes, 1)
	assert.Equal(t, journal.KindSurvey, sink.quotes[0].Kind)
	assert.Equal(t, 1, sink.quotes[0].Offers)
}

func TestRatesFallback(t *testing.T) {
	svc, sink, _ := newService(t, WithRateSource(fixedSource{err: errors.New("offline")}))
	table := svc.Rates(context.Background())
	assert.Equal(t, currency.StatusFallback, table.Status())
	require.NoError(t, svc.Close())
	require.Len(t, sink.rates, 1)
	assert.Equal(t, "fallback", sink.rates[0].Status)
}

func TestNewRejectsUnknownReference(t *testing.T) {
	cfg := config.Default()
	cfg.Planner.ReferenceTariff = "Nope"
	_, err := New(cfg, WithRateSource(fixedSource{}), WithMetricsSink(coremetrics.NopSink{}), WithLogger(logger.NopLogger{}))
	assert.Error(t, err)
}

func TestVehiclesAndTariffs(t *testing.T) {
	svc, _, _ := newService(t)
	defer svc.Close()
	assert.Len(t, svc.Vehicles(), 21)
	assert.Len(t, svc.Tariffs(), 15)
	assert.NotNil(t, svc.Journal())
}
