package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var modelInfoCmd = &cobra.Command{
	Use:   "model-info",
	Short: "Describe the loaded model",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService()
		if err != nil {
			return err
		}
		info, err := svc.ModelInfo()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}

func init() {
	rootCmd.AddCommand(modelInfoCmd)
}
