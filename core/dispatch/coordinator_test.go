package dispatch

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/urbanride/dispatch/core/metrics"
	"github.com/urbanride/dispatch/core/model"
	"github.com/urbanride/dispatch/core/pricing"
	"github.com/urbanride/dispatch/core/queue"
)

func testRates() pricing.RateConfig {
	return pricing.RateConfig{
		BaseRates: map[model.LocationCategory]map[model.VehicleType]float64{
			model.LocationUrban: {
				model.VehicleStandard: 10.0,
				model.VehiclePremium:  10.0,
			},
		},
		ContractRates: map[model.LocationCategory]map[model.VehicleType]float64{
			model.LocationUrban: {
				model.VehicleStandard: 12.0,
			},
		},
	}
}

func testRules() []model.PricingRule {
	return []model.PricingRule{
		{ID: "morning", Category: model.CategoryTime, Predicate: model.Predicate{TimeOfDay: model.TimeMorning}, Multiplier: 1.30, Confidence: model.ConfidenceHigh, Active: true},
		{ID: "urban", Category: model.CategoryLocation, Predicate: model.Predicate{Location: model.LocationUrban}, Multiplier: 1.15, Confidence: model.ConfidenceHigh, Active: true},
		{ID: "premium", Category: model.CategoryVehicle, Predicate: model.Predicate{VehicleType: model.VehiclePremium}, Multiplier: 1.60, Confidence: model.ConfidenceHigh, Active: true},
	}
}

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	calc, err := pricing.NewCalculator(testRates())
	if err != nil {
		t.Fatalf("calculator: %v", err)
	}
	scorer, err := pricing.NewScorer(pricing.ScoreConfig{})
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}
	store := pricing.NewStore()
	coord, err := NewCoordinator(store, calc, scorer, nil, nil, nil)
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	if err := coord.ReplaceRules(testRules()); err != nil {
		t.Fatalf("replace rules: %v", err)
	}
	return coord
}

func order(id string, m model.PricingModel) model.OrderRequest {
	vehicle := model.VehiclePremium
	if m == model.ModelContracted {
		vehicle = model.VehicleStandard
	}
	return model.OrderRequest{
		OrderID:       id,
		PricingModel:  m,
		Location:      model.LocationUrban,
		LoyaltyTier:   model.LoyaltyGold,
		VehicleType:   vehicle,
		TimeOfDay:     model.TimeMorning,
		DemandProfile: model.DemandNormal,
	}
}

func TestSubmitThenDispatch(t *testing.T) {
	coord := newTestCoordinator(t)

	bd, err := coord.Submit(order("o1", model.ModelStandard))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if bd.FinalPrice != 20.33 {
		t.Errorf("final price = %v, want 20.33", bd.FinalPrice)
	}

	out, ok := coord.Dispatch()
	if !ok {
		t.Fatalf("dispatch returned empty")
	}
	if out.OrderID != "o1" || out.Tier != model.TierP1 {
		t.Errorf("dispatched %s tier %s, want o1 P1", out.OrderID, out.Tier)
	}
	if !reflect.DeepEqual(out.Breakdown, bd) {
		t.Errorf("dispatched breakdown differs from the one returned at submit")
	}
	if out.RevenueScore != 20.33 {
		t.Errorf("score = %v, want 20.33 with gold weight 1.0", out.RevenueScore)
	}
	if _, ok := coord.Dispatch(); ok {
		t.Errorf("second dispatch should report empty")
	}
}

func TestSubmitFailureEnqueuesNothing(t *testing.T) {
	coord := newTestCoordinator(t)

	bad := order("o1", model.ModelStandard)
	bad.Location = "MOON"
	var reqErr *pricing.InvalidRequestError
	if _, err := coord.Submit(bad); !errors.As(err, &reqErr) {
		t.Fatalf("expected InvalidRequestError, got %v", err)
	}

	if _, err := coord.Submit(order("o1", "SPOT")); err == nil {
		t.Fatalf("expected classification error")
	}

	snap := coord.Snapshot()
	if snap.Counts["P0"]+snap.Counts["P1"]+snap.Counts["P2"] != 0 {
		t.Errorf("failed submits left entries behind: %v", snap.Counts)
	}
}

func TestDispatchTierPrecedence(t *testing.T) {
	coord := newTestCoordinator(t)
	if _, err := coord.Submit(order("custom", model.ModelCustom)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := coord.Submit(order("standard", model.ModelStandard)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := coord.Submit(order("contracted", model.ModelContracted)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	for _, want := range []string{"contracted", "standard", "custom"} {
		out, ok := coord.Dispatch()
		if !ok || out.OrderID != want {
			t.Fatalf("dispatch = %v %v, want %s", out.OrderID, ok, want)
		}
	}
}

func TestRuleReplacementDoesNotAlterEnqueuedBreakdowns(t *testing.T) {
	coord := newTestCoordinator(t)
	bd, err := coord.Submit(order("o1", model.ModelStandard))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := coord.ReplaceRules(nil); err != nil {
		t.Fatalf("replace: %v", err)
	}

	out, ok := coord.Dispatch()
	if !ok {
		t.Fatalf("dispatch returned empty")
	}
	if !reflect.DeepEqual(out.Breakdown, bd) {
		t.Errorf("enqueued breakdown changed after rule replacement")
	}

	// New submits see the empty snapshot.
	bd2, err := coord.Submit(order("o2", model.ModelStandard))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if bd2.FinalPrice == bd.FinalPrice {
		t.Errorf("new submit should price against the replaced snapshot")
	}
}

func TestReplaceRulesRejectedKeepsSnapshot(t *testing.T) {
	coord := newTestCoordinator(t)
	before := len(coord.ListRules())

	bad := testRules()
	bad[0].Multiplier = -1
	var vErr *pricing.ValidationError
	if err := coord.ReplaceRules(bad); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if got := len(coord.ListRules()); got != before {
		t.Errorf("rejected replacement changed the snapshot: %d rules, want %d", got, before)
	}
}

func TestCancelRemovesOrder(t *testing.T) {
	coord := newTestCoordinator(t)
	if _, err := coord.Submit(order("o1", model.ModelStandard)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := coord.Cancel("o1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok := coord.Dispatch(); ok {
		t.Errorf("cancelled order was dispatched")
	}
	var nf *queue.NotFoundError
	if err := coord.Cancel("o1"); !errors.As(err, &nf) {
		t.Errorf("second cancel should yield NotFoundError, got %v", err)
	}
}

func TestDuplicateSubmit(t *testing.T) {
	coord := newTestCoordinator(t)
	if _, err := coord.Submit(order("o1", model.ModelStandard)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	var de *queue.DuplicateError
	if _, err := coord.Submit(order("o1", model.ModelStandard)); !errors.As(err, &de) {
		t.Errorf("expected DuplicateError, got %v", err)
	}
}

func TestSequenceBreaksScoreTies(t *testing.T) {
	coord := newTestCoordinator(t)
	// Same request shape prices identically, so order falls back to arrival.
	for _, id := range []string{"first", "second", "third"} {
		if _, err := coord.Submit(order(id, model.ModelCustom)); err != nil {
			t.Fatalf("submit %s: %v", id, err)
		}
	}
	for _, want := range []string{"first", "second", "third"} {
		out, ok := coord.Dispatch()
		if !ok || out.OrderID != want {
			t.Fatalf("dispatch = %v, want %s", out.OrderID, want)
		}
	}
}

type countingSink struct {
	mu         sync.Mutex
	priced     int
	dispatched int
	cancelled  int
	snapshots  []bool
}

func (s *countingSink) RecordOrderPriced(metrics.OrderPricedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.priced++
	return nil
}

func (s *countingSink) RecordDispatch(metrics.DispatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched++
	return nil
}

func (s *countingSink) RecordCancel(metrics.CancelEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled++
	return nil
}

func (s *countingSink) RecordRuleSnapshot(ev metrics.RuleSnapshotEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, ev.Accepted)
	return nil
}

func TestCoordinatorEmitsMetrics(t *testing.T) {
	calc, err := pricing.NewCalculator(testRates())
	if err != nil {
		t.Fatalf("calculator: %v", err)
	}
	scorer, err := pricing.NewScorer(pricing.ScoreConfig{})
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}
	sink := &countingSink{}
	coord, err := NewCoordinator(pricing.NewStore(), calc, scorer, nil, sink, nil)
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	if err := coord.ReplaceRules(testRules()); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if _, err := coord.Submit(order("o1", model.ModelStandard)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := coord.Submit(order("o2", model.ModelStandard)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, ok := coord.Dispatch(); !ok {
		t.Fatalf("dispatch returned empty")
	}
	if err := coord.Cancel("o2"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.priced != 2 || sink.dispatched != 1 || sink.cancelled != 1 {
		t.Errorf("sink saw priced=%d dispatched=%d cancelled=%d", sink.priced, sink.dispatched, sink.cancelled)
	}
	if len(sink.snapshots) != 1 || !sink.snapshots[0] {
		t.Errorf("sink snapshots = %v, want one accepted", sink.snapshots)
	}
}

func TestConcurrentSubmitAndDispatch(t *testing.T) {
	coord := newTestCoordinator(t)
	models := []model.PricingModel{model.ModelContracted, model.ModelStandard, model.ModelCustom}

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := string(rune('a'+p)) + "-" + string(rune('0'+i/10)) + string(rune('0'+i%10))
				if _, err := coord.Submit(order(id, models[i%3])); err != nil {
					t.Errorf("submit %s: %v", id, err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for {
		out, ok := coord.Dispatch()
		if !ok {
			break
		}
		if seen[out.OrderID] {
			t.Fatalf("order %s dispatched twice", out.OrderID)
		}
		seen[out.OrderID] = true
	}
	if len(seen) != 200 {
		t.Fatalf("dispatched %d orders, want 200", len(seen))
	}
}
