package pricing

import (
	"sync/atomic"

	"github.com/urbanride/dispatch/core/model"
)

// Snapshot is one immutable version of the rule set. In-flight calculations
// hold a snapshot pointer and are unaffected by concurrent replacements.
type Snapshot struct {
	version    uint64
	rules      []model.PricingRule
	byCategory map[model.RuleCategory][]model.PricingRule
}

// Version returns the monotonically increasing snapshot version.
func (s *Snapshot) Version() uint64 { return s.version }

// Rules returns a copy of all rules in the snapshot.
func (s *Snapshot) Rules() []model.PricingRule {
	out := make([]model.PricingRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules in the snapshot.
func (s *Snapshot) Len() int { return len(s.rules) }

func (s *Snapshot) rulesFor(cat model.RuleCategory) []model.PricingRule {
	return s.byCategory[cat]
}

// Store owns the current rule snapshot. Reads are lock-free; replacement is a
// single atomic pointer swap.
type Store struct {
	cur     atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewStore creates a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.cur.Store(&Snapshot{byCategory: map[model.RuleCategory][]model.PricingRule{}})
	return s
}

// Snapshot returns the current immutable snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.cur.Load()
}

// Replace validates the incoming rules and atomically publishes them as the
// new snapshot. On any validation failure the previous snapshot stays active.
func (s *Store) Replace(rules []model.PricingRule) (*Snapshot, error) {
	seen := make(map[string]struct{}, len(rules))
	byCat := make(map[model.RuleCategory][]model.PricingRule)
	cp := make([]model.PricingRule, len(rules))
	copy(cp, rules)
	for _, r := range cp {
		if err := ValidateRule(r); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ID]; dup {
			return nil, &ValidationError{RuleID: r.ID, Reason: "duplicate rule id"}
		}
		seen[r.ID] = struct{}{}
		byCat[r.Category] = append(byCat[r.Category], r)
	}
	snap := &Snapshot{
		version:    s.version.Add(1),
		rules:      cp,
		byCategory: byCat,
	}
	s.cur.Store(snap)
	return snap, nil
}

// ValidateRule checks the shape of a single rule against the rule schema.
func ValidateRule(r model.PricingRule) error {
	if r.ID == "" {
		return &ValidationError{Reason: "rule id is required"}
	}
	if !r.Category.Valid() {
		return &ValidationError{RuleID: r.ID, Reason: "unknown category " + string(r.Category)}
	}
	if r.Multiplier <= 0 {
		return &ValidationError{RuleID: r.ID, Reason: "multiplier must be positive"}
	}
	if !r.Confidence.Valid() {
		return &ValidationError{RuleID: r.ID, Reason: "unknown confidence " + string(r.Confidence)}
	}
	p := r.Predicate
	if p.TimeOfDay != "" && !p.TimeOfDay.Valid() {
		return &ValidationError{RuleID: r.ID, Reason: "unknown time_of_day " + string(p.TimeOfDay)}
	}
	if p.Location != "" && !p.Location.Valid() {
		return &ValidationError{RuleID: r.ID, Reason: "unknown location_category " + string(p.Location)}
	}
	if p.VehicleType != "" && !p.VehicleType.Valid() {
		return &ValidationError{RuleID: r.ID, Reason: "unknown vehicle_type " + string(p.VehicleType)}
	}
	if p.LoyaltyTier != "" && !p.LoyaltyTier.Valid() {
		return &ValidationError{RuleID: r.ID, Reason: "unknown loyalty_tier " + string(p.LoyaltyTier)}
	}
	if p.DemandAtLeast != "" && !p.DemandAtLeast.Valid() {
		return &ValidationError{RuleID: r.ID, Reason: "unknown demand_at_least " + string(p.DemandAtLeast)}
	}
	if w := p.Window; w != nil {
		if w.Start < 0 || w.Start > 23 || w.End < 0 || w.End > 24 {
			return &ValidationError{RuleID: r.ID, Reason: "window hours out of range"}
		}
	}
	return nil
}
