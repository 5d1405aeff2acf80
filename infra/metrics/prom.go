package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evcharge/core/metrics"
)

// PromSink records comparison, planning and rate events as Prometheus metrics.
type PromSink struct {
	quotes    *prometheus.CounterVec
	savings   *prometheus.HistogramVec
	plans     *prometheus.CounterVec
	planTime  prometheus.Histogram
	stops     *prometheus.CounterVec
	rates     *prometheus.GaugeVec
	refreshes *prometheus.CounterVec
	upstream  *prometheus.CounterVec
}

// NewPromSink registers the metrics on the default Prometheus registerer.
// The /metrics endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on reg. Collectors already
// registered by a previous sink are reused. A nil registerer defaults to the
// global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.quotes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evcharge_quotes_total",
		Help: "Ranked comparisons by kind and winning tariff",
	}, []string{"kind", "winner", "currency"})); err != nil {
		return nil, err
	}
	if s.savings, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "evcharge_quote_savings",
		Help:    "Saving of the winner over the runner-up in display currency",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50},
	}, []string{"kind", "currency"})); err != nil {
		return nil, err
	}
	if s.plans, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evcharge_plans_total",
		Help: "Trip plans by outcome",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if s.planTime, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "evcharge_plan_duration_seconds",
		Help:    "Time spent planning a trip including collaborator calls",
		Buckets: prometheus.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if s.stops, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evcharge_plan_stops_total",
		Help: "Charging stops computed by trip plans",
	}, []string{"resolved"})); err != nil {
		return nil, err
	}
	if s.rates, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "evcharge_exchange_rate",
		Help: "Units of currency per unit of the base currency",
	}, []string{"base", "currency"})); err != nil {
		return nil, err
	}
	if s.refreshes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evcharge_rate_refresh_total",
		Help: "Exchange-rate table refreshes by status",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.upstream, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evcharge_upstream_failures_total",
		Help: "Failed collaborator calls by stage",
	}, []string{"stage"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordQuote counts the comparison and observes the saving.
func (s *PromSink) RecordQuote(ev coremetrics.QuoteEvent) error {
	s.quotes.WithLabelValues(ev.Kind, ev.Winner, ev.Currency).Inc()
	if ev.RunnerUp != "" {
		s.savings.WithLabelValues(ev.Kind, ev.Currency).Observe(ev.Savings)
	}
	return nil
}

// RecordPlan counts the plan, its stops and its latency.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	outcome := "ok"
	if ev.Err != "" {
		outcome = "error"
	}
	s.plans.WithLabelValues(outcome).Inc()
	s.planTime.Observe(ev.Duration.Seconds())
	s.stops.WithLabelValues("true").Add(float64(ev.StopsResolved))
	s.stops.WithLabelValues("false").Add(float64(max(0, ev.StopsRequired-ev.StopsResolved)))
	return nil
}

// RecordRateRefresh exports the new table.
func (s *PromSink) RecordRateRefresh(ev coremetrics.RateRefreshEvent) error {
	s.refreshes.WithLabelValues(ev.Status).Inc()
	for code, rate := range ev.Rates {
		s.rates.WithLabelValues(ev.Base, code).Set(rate)
	}
	return nil
}

// RecordUpstreamFailure counts a failed collaborator call.
func (s *PromSink) RecordUpstreamFailure(ev coremetrics.UpstreamFailure) error {
	s.upstream.WithLabelValues(ev.Stage).Inc()
	return nil
}
