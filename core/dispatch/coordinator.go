package dispatch

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/urbanride/dispatch/core/logger"
	"github.com/urbanride/dispatch/core/metrics"
	"github.com/urbanride/dispatch/core/model"
	"github.com/urbanride/dispatch/core/pricing"
	"github.com/urbanride/dispatch/core/queue"
	"github.com/urbanride/dispatch/internal/eventbus"
)

// Coordinator orchestrates classify, price, score and enqueue as one atomic
// unit, and exposes the dispatch, cancel and snapshot operations.
type Coordinator struct {
	rules  *pricing.Store
	calc   *pricing.Calculator
	scorer *pricing.Scorer
	queues *queue.Set
	seq    atomic.Uint64
	log    logger.Logger
	sink   metrics.MetricsSink
	bus    eventbus.EventBus
	now    func() time.Time
}

// NewCoordinator creates a coordinator. The metrics sink and event bus are
// optional; pass nil to disable them.
func NewCoordinator(rules *pricing.Store, calc *pricing.Calculator, scorer *pricing.Scorer, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus) (*Coordinator, error) {
	if rules == nil || calc == nil || scorer == nil {
		return nil, fmt.Errorf("dispatch: nil parameter provided to NewCoordinator")
	}
	if log == nil {
		log = logger.Nop{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Coordinator{
		rules:  rules,
		calc:   calc,
		scorer: scorer,
		queues: queue.NewSet(),
		log:    log,
		sink:   sink,
		bus:    bus,
		now:    time.Now,
	}, nil
}

// Submit prices, scores and classifies the order, then enqueues it in its
// tier. On any failure nothing is enqueued. The returned breakdown is the one
// stored on the queue entry; later rule replacements never alter it.
func (c *Coordinator) Submit(req model.OrderRequest) (model.PriceBreakdown, error) {
	tier, err := Classify(req.PricingModel)
	if err != nil {
		return model.PriceBreakdown{}, err
	}
	if req.RequestedAt.IsZero() {
		req.RequestedAt = c.now().UTC()
	}

	snap := c.rules.Snapshot()
	bd, err := c.calc.Calculate(req, snap)
	if err != nil {
		return model.PriceBreakdown{}, err
	}
	score, err := c.scorer.Score(req, bd)
	if err != nil {
		return model.PriceBreakdown{}, err
	}

	entry := &model.QueueEntry{
		OrderID:      req.OrderID,
		Tier:         tier,
		RevenueScore: score,
		Sequence:     c.seq.Add(1),
		Breakdown:    bd,
		CreatedAt:    c.now().UTC(),
		State:        model.StateEnqueued,
	}
	if err := c.queues.Enqueue(entry); err != nil {
		return model.PriceBreakdown{}, err
	}

	c.log.Debugw("order enqueued", map[string]any{
		"order_id": req.OrderID,
		"tier":     tier.String(),
		"price":    bd.FinalPrice,
		"score":    score,
	})
	c.record(func() error {
		return c.sink.RecordOrderPriced(metrics.OrderPricedEvent{
			OrderID:      req.OrderID,
			PricingModel: req.PricingModel,
			Tier:         tier,
			FinalPrice:   bd.FinalPrice,
			RevenueScore: score,
			Time:         entry.CreatedAt,
		})
	})
	c.recordDepth()
	if c.bus != nil {
		c.bus.Publish(eventbus.OrderEnqueued{Entry: *entry})
	}
	return bd, nil
}

// Dispatch atomically removes and returns the next eligible order: P0 before
// P1 before P2. The second return value is false when all tiers are empty.
func (c *Coordinator) Dispatch() (model.DispatchedOrder, bool) {
	entry, ok := c.queues.Dispatch()
	if !ok {
		return model.DispatchedOrder{}, false
	}
	dispatchedAt := c.now().UTC()
	out := model.DispatchedOrder{
		OrderID:      entry.OrderID,
		Tier:         entry.Tier,
		FinalPrice:   entry.Breakdown.FinalPrice,
		Breakdown:    entry.Breakdown,
		RevenueScore: entry.RevenueScore,
		EnqueuedAt:   entry.CreatedAt,
		DispatchedAt: dispatchedAt,
	}

	c.log.Infof("dispatched order %s from %s (price %.2f)", out.OrderID, out.Tier, out.FinalPrice)
	if rec, ok := c.sink.(metrics.DispatchRecorder); ok {
		c.record(func() error {
			return rec.RecordDispatch(metrics.DispatchEvent{
				OrderID:      out.OrderID,
				Tier:         out.Tier,
				FinalPrice:   out.FinalPrice,
				RevenueScore: out.RevenueScore,
				QueueWait:    dispatchedAt.Sub(out.EnqueuedAt),
				Time:         dispatchedAt,
			})
		})
	}
	c.recordDepth()
	if c.bus != nil {
		c.bus.Publish(eventbus.OrderDispatched{Order: out})
	}
	return out, true
}

// Cancel removes an enqueued order. Unknown or already-terminal ids yield
// queue.NotFoundError.
func (c *Coordinator) Cancel(orderID string) error {
	entry, err := c.queues.Cancel(orderID)
	if err != nil {
		return err
	}

	c.log.Infof("cancelled order %s in %s", orderID, entry.Tier)
	if rec, ok := c.sink.(metrics.CancelRecorder); ok {
		c.record(func() error {
			return rec.RecordCancel(metrics.CancelEvent{OrderID: orderID, Tier: entry.Tier, Time: c.now().UTC()})
		})
	}
	c.recordDepth()
	if c.bus != nil {
		c.bus.Publish(eventbus.OrderCancelled{OrderID: orderID, Tier: entry.Tier})
	}
	return nil
}

// Snapshot returns a point-in-time view of all three tiers.
func (c *Coordinator) Snapshot() queue.Snapshot {
	return c.queues.Snapshot()
}

// ReplaceRules validates and atomically installs a new rule snapshot.
// Validation failures leave the previous snapshot active.
func (c *Coordinator) ReplaceRules(rules []model.PricingRule) error {
	snap, err := c.rules.Replace(rules)
	if err != nil {
		c.log.Warnf("rule snapshot rejected: %v", err)
		if rec, ok := c.sink.(metrics.RuleSnapshotRecorder); ok {
			c.record(func() error {
				return rec.RecordRuleSnapshot(metrics.RuleSnapshotEvent{Rules: len(rules), Accepted: false, Time: c.now().UTC()})
			})
		}
		return err
	}
	c.log.Infof("rule snapshot v%d installed (%d rules)", snap.Version(), snap.Len())
	if rec, ok := c.sink.(metrics.RuleSnapshotRecorder); ok {
		c.record(func() error {
			return rec.RecordRuleSnapshot(metrics.RuleSnapshotEvent{Version: snap.Version(), Rules: snap.Len(), Accepted: true, Time: c.now().UTC()})
		})
	}
	if c.bus != nil {
		c.bus.Publish(eventbus.RulesReplaced{Version: snap.Version(), Rules: snap.Len()})
	}
	return nil
}

// ListRules returns the rules of the current snapshot.
func (c *Coordinator) ListRules() []model.PricingRule {
	return c.rules.Snapshot().Rules()
}

func (c *Coordinator) record(fn func() error) {
	if err := fn(); err != nil {
		c.log.Errorf("metrics error: %v", err)
	}
}

func (c *Coordinator) recordDepth() {
	if rec, ok := c.sink.(metrics.QueueDepthRecorder); ok {
		c.record(func() error { return rec.RecordQueueDepth(c.queues.Counts()) })
	}
}
