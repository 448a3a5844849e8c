package cmd

import (
	"fmt"

	"house-price-estimator/ml"
	"house-price-estimator/models"
	"house-price-estimator/services"
	"house-price-estimator/storage"
)

// openStore returns the configured training-record store, or nil when
// STORE_DRIVER is "none".
func openStore() (storage.RecordStore, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return storage.NewPostgresStore(cfg.DSN(), logger)
	case "sqlite":
		return storage.NewSQLiteStore(cfg.SQLitePath)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func newCleaner() *services.Cleaner {
	return services.NewCleaner(logger, services.NewLocationResolver(), cfg.CleanerOptions())
}

// cleanDataset reads and cleans the raw dataset in training mode.
func cleanDataset() (*models.TrainingTable, error) {
	raw, err := storage.LoadDataset(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	logger.Info("[pipeline] Read %d rows from %s", len(raw), cfg.DatasetPath)
	return newCleaner().CleanAll(raw), nil
}

// trainingRows returns the cleaned training records, preferring the store
// and falling back to cleaning the dataset when the store is empty.
func trainingRows() ([]*models.CanonicalRecord, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	if store != nil {
		defer store.Close()
		rows, err := store.FetchAll()
		if err != nil {
			logger.Warn("[pipeline] Could not read stored training rows: %v", err)
		} else if len(rows) > 0 {
			logger.Debug("[pipeline] Loaded %d training rows from %s store", len(rows), cfg.StoreDriver)
			return rows, nil
		}
	}

	table, err := cleanDataset()
	if err != nil {
		return nil, err
	}
	return table.Accepted, nil
}

// loadService builds an estimation service with the configured model and
// the location statistics of the training rows installed.
func loadService() (*services.EstimationService, error) {
	svc := services.NewEstimationService(newCleaner(), logger)

	model, err := ml.Load(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	pred, err := services.NewPredictor(model, cfg.ConfidenceWindow, logger)
	if err != nil {
		return nil, err
	}
	rows, err := trainingRows()
	if err != nil {
		return nil, err
	}
	snap, err := services.NewSnapshot(pred, services.BuildLocationIndex(rows), cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	svc.Reload(snap)
	return svc, nil
}
