package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evcharge/core/metrics"
	"github.com/kilianp07/evcharge/infra/logger"
)

// InfluxSink writes events to InfluxDB using the blocking write API.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink when the
// health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

func (s *InfluxSink) write(p *write.Point) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordQuote writes a "quote" point.
func (s *InfluxSink) RecordQuote(ev coremetrics.QuoteEvent) error {
	p := write.NewPointWithMeasurement("quote").
		AddTag("kind", ev.Kind).
		AddTag("winner", ev.Winner).
		AddTag("currency", ev.Currency).
		AddTag("rate_status", ev.RateStatus).
		AddField("offers", ev.Offers).
		AddField("energy_kwh", round3(ev.EnergyKWh)).
		AddField("winner_cost", round3(ev.WinnerCost)).
		AddField("savings", round3(ev.Savings)).
		SetTime(ev.Time)
	return s.write(p)
}

// RecordPlan writes a "trip_plan" point.
func (s *InfluxSink) RecordPlan(ev coremetrics.PlanEvent) error {
	p := write.NewPointWithMeasurement("trip_plan").
		AddTag("currency", ev.Currency).
		AddTag("ok", strconv.FormatBool(ev.Err == "")).
		AddField("distance_miles", round3(ev.DistanceMiles)).
		AddField("stops_required", ev.StopsRequired).
		AddField("stops_resolved", ev.StopsResolved).
		AddField("stops_cost", round3(ev.StopsCost)).
		AddField("estimated_cost", round3(ev.EstimatedCost)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	if ev.Err != "" {
		p = p.AddField("error", ev.Err)
	}
	return s.write(p)
}

// RecordRateRefresh writes one "exchange_rate" point per currency.
func (s *InfluxSink) RecordRateRefresh(ev coremetrics.RateRefreshEvent) error {
	for code, rate := range ev.Rates {
		p := write.NewPointWithMeasurement("exchange_rate").
			AddTag("base", ev.Base).
			AddTag("currency", code).
			AddTag("status", ev.Status).
			AddField("rate", rate).
			AddField("date", ev.Date).
			SetTime(ev.Time)
		if err := s.write(p); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
