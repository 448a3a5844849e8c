package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"house-price-estimator/services"
)

var locationsJSON bool

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List supported locations with market statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		stats, err := svc.ListLocations()
		if err != nil {
			return err
		}

		if !locationsJSON {
			services.PrintLocationReport(os.Stdout, stats)
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	locationsCmd.Flags().BoolVar(&locationsJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(locationsCmd)
}
