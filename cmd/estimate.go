package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"house-price-estimator/models"
	"house-price-estimator/services"
)

var estimateReq models.EstimateRequest

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the price of one property",
	Example: `  house-price-estimator estimate --location Kharghar --area 1000 --bhk 2 \
      --bathrooms 2 --floor 10 --total-floors 20 --age 5 --parking --lift`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return fmt.Errorf("service error: %w", err)
		}

		result, err := svc.Estimate(&estimateReq)
		if err != nil {
			if services.IsClientError(err) {
				return fmt.Errorf("invalid input: %w", err)
			}
			return fmt.Errorf("service error: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	f := estimateCmd.Flags()
	f.StringVar(&estimateReq.Location, "location", "", "Location name, e.g. Kharghar")
	f.Float64Var(&estimateReq.AreaSqft, "area", 0, "Area in square feet")
	f.IntVar(&estimateReq.BHK, "bhk", 0, "Bedrooms (BHK)")
	f.IntVar(&estimateReq.Bathrooms, "bathrooms", 1, "Bathrooms")
	f.IntVar(&estimateReq.Floor, "floor", 0, "Floor number, 0 for ground")
	f.IntVar(&estimateReq.TotalFloors, "total-floors", 0, "Floors in the building")
	f.Float64Var(&estimateReq.AgeOfProperty, "age", 0, "Age of the property in years")
	f.BoolVar(&estimateReq.Parking, "parking", false, "Has parking")
	f.BoolVar(&estimateReq.Lift, "lift", false, "Has a lift")
	for _, name := range []string{"location", "area", "bhk", "total-floors"} {
		_ = estimateCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(estimateCmd)
}
