package metrics

// MultiSink fans events out to several sinks. Optional recorders are only
// called on sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordQuote forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordQuote(ev QuoteEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordQuote(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPlan forwards plan events.
func (m *MultiSink) RecordPlan(ev PlanEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PlanRecorder); ok {
			if err := rec.RecordPlan(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRateRefresh forwards rate refreshes.
func (m *MultiSink) RecordRateRefresh(ev RateRefreshEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RateRecorder); ok {
			if err := rec.RecordRateRefresh(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordUpstreamFailure forwards collaborator failures.
func (m *MultiSink) RecordUpstreamFailure(ev UpstreamFailure) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(UpstreamRecorder); ok {
			if err := rec.RecordUpstreamFailure(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
