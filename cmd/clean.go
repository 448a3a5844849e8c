package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"house-price-estimator/services"
	"house-price-estimator/storage"
)

var skipStore bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the raw dataset, store accepted rows and report per-location statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := cleanDataset()
		if err != nil {
			return err
		}
		if len(table.Accepted) == 0 {
			return fmt.Errorf("all %d rows were dropped during cleaning", table.SourceRows)
		}

		if len(table.Dropped) > 0 {
			diag, err := storage.NewDiagnosticsWriter(cfg.DiagnosticsPath)
			if err != nil {
				return err
			}
			if err := diag.WriteDropped(table.Dropped); err != nil {
				diag.Close()
				return err
			}
			if err := diag.Close(); err != nil {
				return err
			}
			logger.Info("[clean] Dropped rows written to %s", cfg.DiagnosticsPath)
		}

		if !skipStore {
			store, err := openStore()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				if err := store.Write(table.Accepted); err != nil {
					return fmt.Errorf("storing training rows: %w", err)
				}
				logger.Info("[clean] Stored %d training rows (%s)", len(table.Accepted), cfg.StoreDriver)
			}
		}

		services.BuildLocationIndex(table.Accepted).PrintReport(os.Stdout)
		fmt.Printf("  Accepted %d of %d rows\n\n", len(table.Accepted), table.SourceRows)
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&skipStore, "no-store", false, "Do not write accepted rows to the record store")
	rootCmd.AddCommand(cleanCmd)
}
