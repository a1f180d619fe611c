package metrics

import (
	"time"

	"github.com/urbanride/dispatch/core/model"
)

// OrderPricedEvent represents one order priced and enqueued.
type OrderPricedEvent struct {
	OrderID      string
	PricingModel model.PricingModel
	Tier         model.Tier
	FinalPrice   float64
	RevenueScore float64
	Time         time.Time
}

// DispatchEvent represents one order handed to the fulfillment collaborator.
type DispatchEvent struct {
	OrderID      string
	Tier         model.Tier
	FinalPrice   float64
	RevenueScore float64
	QueueWait    time.Duration
	Time         time.Time
}

// CancelEvent represents one order cancelled while enqueued.
type CancelEvent struct {
	OrderID string
	Tier    model.Tier
	Time    time.Time
}

// RuleSnapshotEvent captures a rule snapshot replacement.
type RuleSnapshotEvent struct {
	Version  uint64
	Rules    int
	Accepted bool
	Time     time.Time
}

// MetricsSink records pricing and dispatch events for observability purposes.
type MetricsSink interface {
	RecordOrderPriced(ev OrderPricedEvent) error
}

// DispatchRecorder is implemented by sinks able to record dispatch events.
type DispatchRecorder interface {
	RecordDispatch(ev DispatchEvent) error
}

// CancelRecorder is implemented by sinks able to record cancellations.
type CancelRecorder interface {
	RecordCancel(ev CancelEvent) error
}

// RuleSnapshotRecorder records rule snapshot replacements.
type RuleSnapshotRecorder interface {
	RecordRuleSnapshot(ev RuleSnapshotEvent) error
}

// QueueDepthRecorder records the per-tier queue depth.
type QueueDepthRecorder interface {
	RecordQueueDepth(depths map[string]int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordOrderPriced(OrderPricedEvent) error   { return nil }
func (NopSink) RecordDispatch(DispatchEvent) error         { return nil }
func (NopSink) RecordCancel(CancelEvent) error             { return nil }
func (NopSink) RecordRuleSnapshot(RuleSnapshotEvent) error { return nil }
func (NopSink) RecordQueueDepth(map[string]int) error      { return nil }
