package pricing

import (
	"math"

	"github.com/urbanride/dispatch/core/model"
)

// Calculator prices orders against a rule snapshot. Calculate is pure: the
// same order and snapshot always produce the same breakdown.
type Calculator struct {
	rates RateConfig
}

// NewCalculator creates a calculator from the rate tables.
func NewCalculator(cfg RateConfig) (*Calculator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{rates: cfg}, nil
}

// ValidateRequest checks the order fields required for pricing. It is also
// used by transport layers to reject malformed requests at the boundary.
func ValidateRequest(o model.OrderRequest) error {
	if o.OrderID == "" {
		return &InvalidRequestError{Field: "order_id", Reason: "required"}
	}
	if !o.PricingModel.Valid() {
		return &InvalidRequestError{Field: "pricing_model", Reason: "unrecognized value " + string(o.PricingModel)}
	}
	if !o.Location.Valid() {
		return &InvalidRequestError{Field: "location_category", Reason: "unrecognized value " + string(o.Location)}
	}
	if !o.LoyaltyTier.Valid() {
		return &InvalidRequestError{Field: "loyalty_tier", Reason: "unrecognized value " + string(o.LoyaltyTier)}
	}
	if !o.VehicleType.Valid() {
		return &InvalidRequestError{Field: "vehicle_type", Reason: "unrecognized value " + string(o.VehicleType)}
	}
	if !o.TimeOfDay.Valid() {
		return &InvalidRequestError{Field: "time_of_day", Reason: "unrecognized value " + string(o.TimeOfDay)}
	}
	if !o.DemandProfile.Valid() {
		return &InvalidRequestError{Field: "demand_profile", Reason: "unrecognized value " + string(o.DemandProfile)}
	}
	if o.DistanceKM < 0 {
		return &InvalidRequestError{Field: "distance_km", Reason: "must not be negative"}
	}
	if o.DurationMin < 0 {
		return &InvalidRequestError{Field: "duration_min", Reason: "must not be negative"}
	}
	return nil
}

// Calculate prices the order against the snapshot and returns the breakdown.
func (c *Calculator) Calculate(order model.OrderRequest, snap *Snapshot) (model.PriceBreakdown, error) {
	if err := ValidateRequest(order); err != nil {
		return model.PriceBreakdown{}, err
	}
	if order.PricingModel == model.ModelContracted {
		return c.contracted(order)
	}

	base, err := c.basePrice(order)
	if err != nil {
		return model.PriceBreakdown{}, err
	}

	bd := model.PriceBreakdown{
		BasePrice:    base,
		Multipliers:  make(map[model.RuleCategory]float64, 5),
		AppliedRules: make(map[model.RuleCategory]string),
	}
	subtotal := base
	for _, cat := range model.Categories() {
		mult := 1.0
		if rule, ok := selectRule(snap.rulesFor(cat), order); ok {
			mult = rule.Multiplier
			bd.AppliedRules[cat] = rule.ID
		}
		bd.Multipliers[cat] = mult
		subtotal *= mult
	}
	bd.Subtotal = subtotal
	bd.LoyaltyDiscount = c.rates.LoyaltyDiscounts[order.LoyaltyTier]
	bd.FinalPrice = roundCents(subtotal * (1 - bd.LoyaltyDiscount))
	return bd, nil
}

// contracted returns a breakdown pinned to the contract rate: every category
// multiplier is 1.0 and no loyalty discount applies.
func (c *Calculator) contracted(order model.OrderRequest) (model.PriceBreakdown, error) {
	rate, ok := c.rates.ContractRates[order.Location][order.VehicleType]
	if !ok {
		return model.PriceBreakdown{}, &ConfigurationError{
			Segment: segment(order),
			Reason:  "no contract rate configured",
		}
	}
	bd := model.PriceBreakdown{
		BasePrice:   rate,
		Multipliers: make(map[model.RuleCategory]float64, 5),
		Subtotal:    rate,
		FinalPrice:  roundCents(rate),
	}
	for _, cat := range model.Categories() {
		bd.Multipliers[cat] = 1.0
	}
	return bd, nil
}

func (c *Calculator) basePrice(order model.OrderRequest) (float64, error) {
	if order.DistanceKM > 0 && order.DurationMin > 0 {
		return order.DistanceKM*c.rates.PerKM + order.DurationMin*c.rates.PerMinute, nil
	}
	rate, ok := c.rates.BaseRates[order.Location][order.VehicleType]
	if !ok {
		return 0, &ConfigurationError{Segment: segment(order), Reason: "no base rate configured"}
	}
	return rate, nil
}

// selectRule picks the single winning rule for one category: the active
// matching rule with the highest specificity, ties broken by confidence and
// then by lowest id so selection is deterministic.
func selectRule(rules []model.PricingRule, order model.OrderRequest) (model.PricingRule, bool) {
	var best model.PricingRule
	found := false
	for _, r := range rules {
		if !r.Active || !r.Predicate.Matches(order) {
			continue
		}
		if !found || betterRule(r, best) {
			best = r
			found = true
		}
	}
	return best, found
}

func betterRule(a, b model.PricingRule) bool {
	if a.Specificity() != b.Specificity() {
		return a.Specificity() > b.Specificity()
	}
	if a.Confidence.Rank() != b.Confidence.Rank() {
		return a.Confidence.Rank() > b.Confidence.Rank()
	}
	return a.ID < b.ID
}

func segment(o model.OrderRequest) string {
	return string(o.Location) + "/" + string(o.VehicleType)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
