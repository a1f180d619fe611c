package model

// RuleCategory identifies the pricing dimension a rule applies to. Categories
// are evaluated in a fixed order during pricing.
type RuleCategory string

const (
	CategoryTime        RuleCategory = "TIME"
	CategoryLocation    RuleCategory = "LOCATION"
	CategoryVehicle     RuleCategory = "VEHICLE"
	CategoryDemandSurge RuleCategory = "DEMAND_SURGE"
	CategoryEvent       RuleCategory = "EVENT"
)

// Categories returns the evaluation order used by the price calculator.
func Categories() []RuleCategory {
	return []RuleCategory{CategoryTime, CategoryLocation, CategoryVehicle, CategoryDemandSurge, CategoryEvent}
}

func (c RuleCategory) Valid() bool {
	switch c {
	case CategoryTime, CategoryLocation, CategoryVehicle, CategoryDemandSurge, CategoryEvent:
		return true
	}
	return false
}

// Confidence grades how reliable a rule is. It breaks specificity ties during
// rule selection.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// Rank orders confidence levels, higher is better.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceLow:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceHigh:
		return 2
	default:
		return -1
	}
}

// HourWindow is a half-open [Start, End) window over hours of the day.
// Windows wrapping midnight (Start > End) are allowed.
type HourWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the given hour falls inside the window.
func (w HourWindow) Contains(hour int) bool {
	if w.Start <= w.End {
		return hour >= w.Start && hour < w.End
	}
	return hour >= w.Start || hour < w.End
}

// Predicate is the set of attribute constraints a rule places on an order.
// Empty fields are unconstrained.
type Predicate struct {
	TimeOfDay     TimeOfDay        `json:"time_of_day,omitempty"`
	Location      LocationCategory `json:"location_category,omitempty"`
	VehicleType   VehicleType      `json:"vehicle_type,omitempty"`
	LoyaltyTier   LoyaltyTier      `json:"loyalty_tier,omitempty"`
	DemandAtLeast DemandProfile    `json:"demand_at_least,omitempty"`
	Window        *HourWindow      `json:"window,omitempty"`
}

// Specificity counts the constrained fields. More specific rules win over
// broader ones within the same category.
func (p Predicate) Specificity() int {
	n := 0
	if p.TimeOfDay != "" {
		n++
	}
	if p.Location != "" {
		n++
	}
	if p.VehicleType != "" {
		n++
	}
	if p.LoyaltyTier != "" {
		n++
	}
	if p.DemandAtLeast != "" {
		n++
	}
	if p.Window != nil {
		n++
	}
	return n
}

// Matches reports whether the order satisfies every constrained field.
func (p Predicate) Matches(o OrderRequest) bool {
	if p.TimeOfDay != "" && p.TimeOfDay != o.TimeOfDay {
		return false
	}
	if p.Location != "" && p.Location != o.Location {
		return false
	}
	if p.VehicleType != "" && p.VehicleType != o.VehicleType {
		return false
	}
	if p.LoyaltyTier != "" && p.LoyaltyTier != o.LoyaltyTier {
		return false
	}
	if p.DemandAtLeast != "" && o.DemandProfile.Rank() < p.DemandAtLeast.Rank() {
		return false
	}
	if p.Window != nil && !p.Window.Contains(o.RequestedAt.Hour()) {
		return false
	}
	return true
}

// PricingRule is one conditional multiplier. Rules are immutable once accepted
// into a snapshot; updates replace the whole snapshot.
type PricingRule struct {
	ID         string       `json:"id"`
	Category   RuleCategory `json:"category"`
	Predicate  Predicate    `json:"predicate"`
	Multiplier float64      `json:"multiplier"`
	Confidence Confidence   `json:"confidence"`
	Active     bool         `json:"active"`
}

// Specificity is the count of fields the rule's predicate constrains.
func (r PricingRule) Specificity() int { return r.Predicate.Specificity() }
