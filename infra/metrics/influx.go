package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/urbanride/dispatch/core/metrics"
	"github.com/urbanride/dispatch/infra/logger"
)

// InfluxSink writes pricing and dispatch events to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
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

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
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

// RecordOrderPriced writes the priced order as a point.
func (s *InfluxSink) RecordOrderPriced(ev coremetrics.OrderPricedEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("order_priced").
		AddTag("order_id", ev.OrderID).
		AddTag("pricing_model", string(ev.PricingModel)).
		AddTag("tier", ev.Tier.String()).
		AddTag("component", "coordinator").
		AddField("final_price", round3(ev.FinalPrice)).
		AddField("revenue_score", round3(ev.RevenueScore)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDispatch writes the dispatch event as a point.
func (s *InfluxSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("order_dispatched").
		AddTag("order_id", ev.OrderID).
		AddTag("tier", ev.Tier.String()).
		AddTag("component", "coordinator").
		AddField("final_price", round3(ev.FinalPrice)).
		AddField("revenue_score", round3(ev.RevenueScore)).
		AddField("queue_wait_ms", round3(ev.QueueWait.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordCancel writes the cancellation as a point.
func (s *InfluxSink) RecordCancel(ev coremetrics.CancelEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("order_cancelled").
		AddTag("order_id", ev.OrderID).
		AddTag("tier", ev.Tier.String()).
		AddTag("component", "coordinator").
		AddField("count", 1).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRuleSnapshot writes a rule snapshot replacement event.
func (s *InfluxSink) RecordRuleSnapshot(ev coremetrics.RuleSnapshotEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("rule_snapshot").
		AddTag("component", "rule-store").
		AddField("version", int64(ev.Version)).
		AddField("rules", ev.Rules).
		AddField("accepted", ev.Accepted).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
