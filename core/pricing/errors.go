package pricing

import "fmt"

// InvalidRequestError reports a missing or malformed order field.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports a segment with no configured rate.
type ConfigurationError struct {
	Segment string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: segment %s: %s", e.Segment, e.Reason)
}

// ValidationError identifies the offending rule when a snapshot is rejected.
// The previous snapshot stays active.
type ValidationError struct {
	RuleID string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("rule validation: %s", e.Reason)
	}
	return fmt.Sprintf("rule validation: rule %s: %s", e.RuleID, e.Reason)
}
