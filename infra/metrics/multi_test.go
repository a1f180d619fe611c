package metrics

import (
	"fmt"
	"testing"

	coremetrics "github.com/urbanride/dispatch/core/metrics"
)

type recordingSink struct {
	priced     int
	dispatched int
	failPriced bool
}

func (s *recordingSink) RecordOrderPriced(coremetrics.OrderPricedEvent) error {
	if s.failPriced {
		return fmt.Errorf("sink down")
	}
	s.priced++
	return nil
}

func (s *recordingSink) RecordDispatch(coremetrics.DispatchEvent) error {
	s.dispatched++
	return nil
}

// pricedOnlySink implements the base interface but no optional recorders.
type pricedOnlySink struct{ priced int }

func (s *pricedOnlySink) RecordOrderPriced(coremetrics.OrderPricedEvent) error {
	s.priced++
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{}
	multi := NewMultiSink(a, b)

	if err := multi.RecordOrderPriced(coremetrics.OrderPricedEvent{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if a.priced != 1 || b.priced != 1 {
		t.Errorf("priced counts = %d/%d, want 1/1", a.priced, b.priced)
	}
}

func TestMultiSinkSkipsMissingRecorders(t *testing.T) {
	full := &recordingSink{}
	base := &pricedOnlySink{}
	multi := NewMultiSink(full, base)

	if err := multi.RecordDispatch(coremetrics.DispatchEvent{}); err != nil {
		t.Fatalf("record dispatch: %v", err)
	}
	if full.dispatched != 1 {
		t.Errorf("dispatch recorder not reached")
	}
	if base.priced != 0 {
		t.Errorf("base sink should be untouched by dispatch events")
	}
}

func TestMultiSinkReturnsFirstError(t *testing.T) {
	bad := &recordingSink{failPriced: true}
	after := &recordingSink{}
	multi := NewMultiSink(bad, after)

	if err := multi.RecordOrderPriced(coremetrics.OrderPricedEvent{}); err == nil {
		t.Fatalf("expected error from failing sink")
	}
	if after.priced != 0 {
		t.Errorf("fan-out should stop at the first error")
	}
}

func TestNopSinkSatisfiesRecorders(t *testing.T) {
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if _, ok := sink.(coremetrics.DispatchRecorder); !ok {
		t.Errorf("NopSink should record dispatches")
	}
	if _, ok := sink.(coremetrics.QueueDepthRecorder); !ok {
		t.Errorf("NopSink should record queue depth")
	}
}
