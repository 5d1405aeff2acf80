package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/infra/logger"
	"github.com/kilianp07/evcharge/internal/eventbus"
)

// StartEventCollector records the metrics events published on bus into sink
// until ctx is canceled. The returned channel is closed when it stops.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	if log == nil {
		log = logger.NopLogger{}
	}
	return eventbus.Consume[eventbus.Event](ctx, bus, func(ev eventbus.Event) {
		if err := Record(sink, ev); err != nil {
			log.Warnf("metrics sink: %v", err)
		}
	})
}

// Record dispatches ev to the matching recorder of sink. Unknown events and
// recorders the sink does not implement are ignored.
func Record(sink coremetrics.MetricsSink, ev any) error {
	switch e := ev.(type) {
	case coremetrics.QuoteEvent:
		return sink.RecordQuote(e)
	case coremetrics.PlanEvent:
		if r, ok := sink.(coremetrics.PlanRecorder); ok {
			return r.RecordPlan(e)
		}
	case coremetrics.RateRefreshEvent:
		if r, ok := sink.(coremetrics.RateRecorder); ok {
			return r.RecordRateRefresh(e)
		}
	case coremetrics.UpstreamFailure:
		if r, ok := sink.(coremetrics.UpstreamRecorder); ok {
			return r.RecordUpstreamFailure(e)
		}
	}
	return nil
}
