package model

import "time"

// PricingModel selects how an order is priced and which dispatch tier it lands in.
type PricingModel string

const (
	ModelContracted PricingModel = "CONTRACTED"
	ModelStandard   PricingModel = "STANDARD"
	ModelCustom     PricingModel = "CUSTOM"
)

// Valid reports whether the pricing model is one of the known values.
func (m PricingModel) Valid() bool {
	switch m {
	case ModelContracted, ModelStandard, ModelCustom:
		return true
	}
	return false
}

// LocationCategory classifies the pickup area of an order.
type LocationCategory string

const (
	LocationUrban    LocationCategory = "URBAN"
	LocationSuburban LocationCategory = "SUBURBAN"
	LocationRural    LocationCategory = "RURAL"
	LocationAirport  LocationCategory = "AIRPORT"
)

func (l LocationCategory) Valid() bool {
	switch l {
	case LocationUrban, LocationSuburban, LocationRural, LocationAirport:
		return true
	}
	return false
}

// LoyaltyTier is the customer loyalty level driving discounts and score weights.
type LoyaltyTier string

const (
	LoyaltyRegular LoyaltyTier = "REGULAR"
	LoyaltySilver  LoyaltyTier = "SILVER"
	LoyaltyGold    LoyaltyTier = "GOLD"
)

func (t LoyaltyTier) Valid() bool {
	switch t {
	case LoyaltyRegular, LoyaltySilver, LoyaltyGold:
		return true
	}
	return false
}

// VehicleType is the requested vehicle class.
type VehicleType string

const (
	VehicleEconomy  VehicleType = "ECONOMY"
	VehicleStandard VehicleType = "STANDARD"
	VehiclePremium  VehicleType = "PREMIUM"
)

func (v VehicleType) Valid() bool {
	switch v {
	case VehicleEconomy, VehicleStandard, VehiclePremium:
		return true
	}
	return false
}

// TimeOfDay buckets the requested pickup time.
type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "MORNING"
	TimeAfternoon TimeOfDay = "AFTERNOON"
	TimeEvening   TimeOfDay = "EVENING"
	TimeNight     TimeOfDay = "NIGHT"
)

func (t TimeOfDay) Valid() bool {
	switch t {
	case TimeMorning, TimeAfternoon, TimeEvening, TimeNight:
		return true
	}
	return false
}

// DemandProfile is the current demand level in the order's area. Values are
// ordered: Low < Normal < High.
type DemandProfile string

const (
	DemandLow    DemandProfile = "LOW"
	DemandNormal DemandProfile = "NORMAL"
	DemandHigh   DemandProfile = "HIGH"
)

func (d DemandProfile) Valid() bool {
	switch d {
	case DemandLow, DemandNormal, DemandHigh:
		return true
	}
	return false
}

// Rank returns the ordering position of the demand level, used for
// threshold predicates.
func (d DemandProfile) Rank() int {
	switch d {
	case DemandLow:
		return 0
	case DemandNormal:
		return 1
	case DemandHigh:
		return 2
	default:
		return -1
	}
}

// OrderRequest is an incoming ride request. It is immutable once submitted.
type OrderRequest struct {
	OrderID       string           `json:"order_id"`
	PricingModel  PricingModel     `json:"pricing_model"`
	Location      LocationCategory `json:"location_category"`
	LoyaltyTier   LoyaltyTier      `json:"loyalty_tier"`
	VehicleType   VehicleType      `json:"vehicle_type"`
	TimeOfDay     TimeOfDay        `json:"time_of_day"`
	DemandProfile DemandProfile    `json:"demand_profile"`
	// DistanceKM and DurationMin are optional; when both are positive the
	// base price is derived from them instead of the base rate table.
	DistanceKM  float64 `json:"distance_km,omitempty"`
	DurationMin float64 `json:"duration_min,omitempty"`
	// RequestedAt is stamped at the submission boundary and used for rule
	// time-window matching so pricing stays deterministic for a given order.
	RequestedAt time.Time `json:"requested_at"`
}

// PriceBreakdown is the audited result of pricing one order.
type PriceBreakdown struct {
	BasePrice       float64                  `json:"base_price"`
	Multipliers     map[RuleCategory]float64 `json:"multipliers"`
	AppliedRules    map[RuleCategory]string  `json:"applied_rules,omitempty"`
	LoyaltyDiscount float64                  `json:"loyalty_discount"`
	Subtotal        float64                  `json:"subtotal"`
	FinalPrice      float64                  `json:"final_price"`
}
