package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/urbanride/dispatch/app"
	"github.com/urbanride/dispatch/config"
	"github.com/urbanride/dispatch/core/model"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Price and enqueue a test order against the configured rates",
	RunE:  submitOrder,
}

var (
	submitModel    string
	submitLocation string
	submitLoyalty  string
	submitVehicle  string
	submitTime     string
	submitDemand   string
)

func init() {
	submitCmd.Flags().StringVar(&submitModel, "model", string(model.ModelStandard), "pricing model")
	submitCmd.Flags().StringVar(&submitLocation, "location", string(model.LocationUrban), "location category")
	submitCmd.Flags().StringVar(&submitLoyalty, "loyalty", string(model.LoyaltyRegular), "loyalty tier")
	submitCmd.Flags().StringVar(&submitVehicle, "vehicle", string(model.VehicleStandard), "vehicle type")
	submitCmd.Flags().StringVar(&submitTime, "time", string(model.TimeMorning), "time of day")
	submitCmd.Flags().StringVar(&submitDemand, "demand", string(model.DemandNormal), "demand profile")
	rootCmd.AddCommand(submitCmd)
}

func submitOrder(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// The ingestor needs a broker; a one-shot submission does not.
	cfg.MQTT.Enabled = false
	cfg.Metrics.PrometheusEnabled = false
	cfg.Metrics.InfluxEnabled = false

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	req := model.OrderRequest{
		OrderID:       uuid.NewString(),
		PricingModel:  model.PricingModel(submitModel),
		Location:      model.LocationCategory(submitLocation),
		LoyaltyTier:   model.LoyaltyTier(submitLoyalty),
		VehicleType:   model.VehicleType(submitVehicle),
		TimeOfDay:     model.TimeOfDay(submitTime),
		DemandProfile: model.DemandProfile(submitDemand),
	}
	bd, err := svc.Coordinator.Submit(req)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		OrderID   string               `json:"order_id"`
		Breakdown model.PriceBreakdown `json:"price_breakdown"`
	}{req.OrderID, bd})
}
