package metrics

import coremetrics "github.com/urbanride/dispatch/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOrderPriced forwards the event to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordOrderPriced(ev coremetrics.OrderPricedEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordOrderPriced(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDispatch forwards dispatch events.
func (m *MultiSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.DispatchRecorder); ok {
			if err := rec.RecordDispatch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordCancel forwards cancellation events.
func (m *MultiSink) RecordCancel(ev coremetrics.CancelEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.CancelRecorder); ok {
			if err := rec.RecordCancel(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRuleSnapshot forwards rule snapshot events.
func (m *MultiSink) RecordRuleSnapshot(ev coremetrics.RuleSnapshotEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RuleSnapshotRecorder); ok {
			if err := rec.RecordRuleSnapshot(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordQueueDepth forwards depth gauges.
func (m *MultiSink) RecordQueueDepth(depths map[string]int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.QueueDepthRecorder); ok {
			if err := rec.RecordQueueDepth(depths); err != nil {
				return err
			}
		}
	}
	return nil
}
