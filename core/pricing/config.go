package pricing

import (
	"fmt"

	"github.com/urbanride/dispatch/core/model"
)

// RateConfig holds the business rate tables consumed by the calculator.
// Base and contract rates are keyed by location then vehicle type.
type RateConfig struct {
	BaseRates     map[model.LocationCategory]map[model.VehicleType]float64 `json:"base_rates"`
	ContractRates map[model.LocationCategory]map[model.VehicleType]float64 `json:"contract_rates"`
	// PerKM and PerMinute derive the base price when the order carries
	// distance and duration estimates.
	PerKM     float64 `json:"per_km"`
	PerMinute float64 `json:"per_minute"`
	// LoyaltyDiscounts maps loyalty tiers to discount fractions.
	LoyaltyDiscounts map[model.LoyaltyTier]float64 `json:"loyalty_discounts"`
}

// SetDefaults applies the documented business defaults for anything unset.
func (c *RateConfig) SetDefaults() {
	if c.LoyaltyDiscounts == nil {
		c.LoyaltyDiscounts = map[model.LoyaltyTier]float64{
			model.LoyaltyRegular: 0,
			model.LoyaltySilver:  0.10,
			model.LoyaltyGold:    0.15,
		}
	}
}

// Validate checks discount fractions stay in [0, 1) and rates are positive.
func (c RateConfig) Validate() error {
	for tier, d := range c.LoyaltyDiscounts {
		if d < 0 || d >= 1 {
			return fmt.Errorf("loyalty discount for %s out of range: %v", tier, d)
		}
	}
	for loc, vehicles := range c.BaseRates {
		for vt, rate := range vehicles {
			if rate <= 0 {
				return fmt.Errorf("base rate for %s/%s must be positive", loc, vt)
			}
		}
	}
	for loc, vehicles := range c.ContractRates {
		for vt, rate := range vehicles {
			if rate <= 0 {
				return fmt.Errorf("contract rate for %s/%s must be positive", loc, vt)
			}
		}
	}
	if c.PerKM < 0 || c.PerMinute < 0 {
		return fmt.Errorf("per-distance rates must not be negative")
	}
	return nil
}

// ScoreConfig holds the revenue score weights.
type ScoreConfig struct {
	// ContractScore is the fixed score attached to contracted orders. P0
	// ignores scores for ordering, the value only feeds monitoring.
	ContractScore float64 `json:"contract_score"`
	// LoyaltyWeights scales the final price into a revenue score per tier.
	LoyaltyWeights map[model.LoyaltyTier]float64 `json:"loyalty_weights"`
}

// SetDefaults applies the documented business defaults for anything unset.
func (c *ScoreConfig) SetDefaults() {
	if c.ContractScore == 0 {
		c.ContractScore = 100
	}
	if c.LoyaltyWeights == nil {
		c.LoyaltyWeights = map[model.LoyaltyTier]float64{
			model.LoyaltyGold:    1.0,
			model.LoyaltySilver:  0.95,
			model.LoyaltyRegular: 0.9,
		}
	}
}

// Validate checks all weights are positive so scores stay monotone in price.
func (c ScoreConfig) Validate() error {
	if c.ContractScore < 0 {
		return fmt.Errorf("contract score must not be negative")
	}
	for tier, w := range c.LoyaltyWeights {
		if w <= 0 {
			return fmt.Errorf("loyalty weight for %s must be positive", tier)
		}
	}
	return nil
}
