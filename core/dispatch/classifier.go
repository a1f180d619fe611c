package dispatch

import (
	"fmt"

	"github.com/urbanride/dispatch/core/model"
)

// ClassificationError reports a pricing model that maps to no dispatch tier.
type ClassificationError struct {
	PricingModel model.PricingModel
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify: unrecognized pricing model %q", string(e.PricingModel))
}

// Classify maps the pricing model to its dispatch tier. This is the only
// place the pricing model is interpreted for queue placement.
func Classify(m model.PricingModel) (model.Tier, error) {
	switch m {
	case model.ModelContracted:
		return model.TierP0, nil
	case model.ModelStandard:
		return model.TierP1, nil
	case model.ModelCustom:
		return model.TierP2, nil
	default:
		return 0, &ClassificationError{PricingModel: m}
	}
}
