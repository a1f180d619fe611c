package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/urbanride/dispatch/core/metrics"
)

// PromSink records pricing and dispatch events in Prometheus metrics.
type PromSink struct {
	priced    *prometheus.CounterVec
	dispatch  *prometheus.CounterVec
	cancelled *prometheus.CounterVec
	wait      *prometheus.HistogramVec
	depth     *prometheus.GaugeVec
	rules     prometheus.Gauge
}

// NewPromSink registers the engine metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	priced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_priced_total",
		Help: "Total number of orders priced and enqueued",
	}, []string{"pricing_model", "tier"})
	dispatch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_dispatched_total",
		Help: "Total number of orders handed to fulfillment",
	}, []string{"tier"})
	cancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of orders cancelled while enqueued",
	}, []string{"tier"})
	wait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "queue_wait_seconds",
		Help:    "Time between enqueue and dispatch",
		Buckets: prometheus.DefBuckets,
	}, []string{"tier"})
	depth := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "queue_depth",
		Help: "Current number of enqueued orders per tier",
	}, []string{"tier"})
	rules := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pricing_rule_snapshot_version",
		Help: "Version of the active pricing rule snapshot",
	})

	s := &PromSink{priced: priced, dispatch: dispatch, cancelled: cancelled, wait: wait, depth: depth, rules: rules}
	for _, c := range []prometheus.Collector{priced, dispatch, cancelled, wait, depth, rules} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordOrderPriced increments the priced counter.
func (s *PromSink) RecordOrderPriced(ev coremetrics.OrderPricedEvent) error {
	s.priced.WithLabelValues(string(ev.PricingModel), ev.Tier.String()).Inc()
	return nil
}

// RecordDispatch increments the dispatch counter and observes the queue wait.
func (s *PromSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	s.dispatch.WithLabelValues(ev.Tier.String()).Inc()
	s.wait.WithLabelValues(ev.Tier.String()).Observe(ev.QueueWait.Seconds())
	return nil
}

// RecordCancel increments the cancellation counter.
func (s *PromSink) RecordCancel(ev coremetrics.CancelEvent) error {
	s.cancelled.WithLabelValues(ev.Tier.String()).Inc()
	return nil
}

// RecordRuleSnapshot tracks the active rule snapshot version.
func (s *PromSink) RecordRuleSnapshot(ev coremetrics.RuleSnapshotEvent) error {
	if ev.Accepted {
		s.rules.Set(float64(ev.Version))
	}
	return nil
}

// RecordQueueDepth sets the depth gauges.
func (s *PromSink) RecordQueueDepth(depths map[string]int) error {
	for tier, n := range depths {
		s.depth.WithLabelValues(tier).Set(float64(n))
	}
	return nil
}
