package metrics

import (
	"time"
)

// QuoteEvent summarises one ranked comparison.
type QuoteEvent struct {
	// Kind is "compare", "cards" or "survey".
	Kind       string
	Winner     string
	RunnerUp   string
	Currency   string
	Offers     int
	EnergyKWh  float64
	WinnerCost float64
	Savings    float64
	RateStatus string
	Time       time.Time
}

// MetricsSink records comparison outcomes.
type MetricsSink interface {
	RecordQuote(ev QuoteEvent) error
}

// PlanEvent summarises one trip plan.
type PlanEvent struct {
	DistanceMiles float64
	StopsRequired int
	StopsResolved int
	StopsCost     float64
	EstimatedCost float64
	Currency      string
	Duration      time.Duration
	Err           string
	Time          time.Time
}

// PlanRecorder records trip plans.
type PlanRecorder interface {
	RecordPlan(ev PlanEvent) error
}

// RateRefreshEvent is emitted whenever the shared rate table is replaced.
type RateRefreshEvent struct {
	Base   string
	Status string
	Date   string
	Rates  map[string]float64
	Time   time.Time
}

// RateRecorder records exchange-rate refreshes.
type RateRecorder interface {
	RecordRateRefresh(ev RateRefreshEvent) error
}

// UpstreamFailure records a failed collaborator call.
type UpstreamFailure struct {
	Stage string
	Time  time.Time
}

// UpstreamRecorder records collaborator failures.
type UpstreamRecorder interface {
	RecordUpstreamFailure(ev UpstreamFailure) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordQuote(QuoteEvent) error                { return nil }
func (NopSink) RecordPlan(PlanEvent) error                  { return nil }
func (NopSink) RecordRateRefresh(RateRefreshEvent) error    { return nil }
func (NopSink) RecordUpstreamFailure(UpstreamFailure) error { return nil }
