package pricing

import "github.com/urbanride/dispatch/core/model"

// Scorer turns a price breakdown into the revenue score used to order the
// P1/P2 queues. For a fixed loyalty tier the score is monotonically
// non-decreasing in final price; dispatch fairness depends on that.
type Scorer struct {
	cfg ScoreConfig
}

// NewScorer creates a scorer from the weight configuration.
func NewScorer(cfg ScoreConfig) (*Scorer, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score computes the revenue score for an order. Contracted orders get the
// fixed configured score; P0 ignores it for ordering.
func (s *Scorer) Score(order model.OrderRequest, bd model.PriceBreakdown) (float64, error) {
	switch order.PricingModel {
	case model.ModelContracted:
		return s.cfg.ContractScore, nil
	case model.ModelStandard, model.ModelCustom:
		w, ok := s.cfg.LoyaltyWeights[order.LoyaltyTier]
		if !ok {
			return 0, &InvalidRequestError{Field: "loyalty_tier", Reason: "no score weight for " + string(order.LoyaltyTier)}
		}
		return bd.FinalPrice * w, nil
	default:
		return 0, &InvalidRequestError{Field: "pricing_model", Reason: "unrecognized value " + string(order.PricingModel)}
	}
}
