package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"house-price-estimator/scraper/portal"
	"house-price-estimator/services"
	"house-price-estimator/storage"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect raw listings from the configured portal into a dataset CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("[scrape] Config: pages %d | concurrency %d | rate %dms",
			cfg.PagesToScrape, cfg.MaxConcurrency, cfg.RateLimitMs)

		s := portal.New(cfg, logger, services.NewLocationResolver())
		records, err := s.Scrape(cmd.Context())
		if err != nil {
			return err
		}

		w, err := storage.NewRawCSVWriter(cfg.RawOutputPath)
		if err != nil {
			return err
		}
		if err := w.WriteRaw(records); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}

		table := newCleaner().CleanAll(records)
		fmt.Printf("Scraped %d listings into %s (%d would be accepted for training)\n",
			len(records), cfg.RawOutputPath, len(table.Accepted))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}
