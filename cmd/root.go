package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"house-price-estimator/config"
	"house-price-estimator/utils"
)

var (
	datasetPath string
	modelPath   string
	logLevel    string

	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:          "house-price-estimator",
	Short:        "Clean Navi Mumbai listing data and estimate property prices",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		if cmd.Flags().Changed("dataset") {
			cfg.DatasetPath = datasetPath
		}
		if cmd.Flags().Changed("model") {
			cfg.ModelPath = modelPath
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}

		// Command output owns stdout; logs go to stderr.
		logger = utils.NewLoggerTo(os.Stderr, utils.ParseLevel(cfg.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "Raw listing CSV (overrides DATASET_PATH)")
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", "", "Model artifact JSON (overrides MODEL_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
