package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"STORE_DRIVER", "AREA_MIN", "PRICE_QUANTILE_HIGH", "CONFIDENCE_WINDOW", "CACHE_TTL_SECONDS"} {
		t.Setenv(k, "")
	}
	cfg := fromEnv()

	if cfg.StoreDriver != "sqlite" {
		t.Errorf("StoreDriver = %q; want sqlite", cfg.StoreDriver)
	}
	if cfg.ConfidenceWindow != 20 {
		t.Errorf("ConfidenceWindow = %d; want 20", cfg.ConfidenceWindow)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v; want 5m", cfg.CacheTTL)
	}
	opts := cfg.CleanerOptions()
	if opts.AreaMin != 100 || opts.AreaMax != 10_000 || opts.PriceQuantileHigh != 0.99 {
		t.Errorf("CleanerOptions = %+v", opts)
	}
}

func TestOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("AREA_MIN", "250.5")
	t.Setenv("CONFIDENCE_WINDOW", "5")
	t.Setenv("CACHE_TTL_SECONDS", "0")
	t.Setenv("MAX_RETRIES", "not-a-number")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_PASSWORD", "")
	t.Setenv("POSTGRES_SSLMODE", "")
	t.Setenv("POSTGRES_DB", "prices")

	cfg := fromEnv()
	if cfg.StoreDriver != "postgres" {
		t.Errorf("StoreDriver = %q; want postgres", cfg.StoreDriver)
	}
	if cfg.AreaMin != 250.5 {
		t.Errorf("AreaMin = %v; want 250.5", cfg.AreaMin)
	}
	if cfg.ConfidenceWindow != 5 || cfg.CacheTTL != 0 {
		t.Errorf("ConfidenceWindow = %d, CacheTTL = %v", cfg.ConfidenceWindow, cfg.CacheTTL)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d; want fallback 3", cfg.MaxRetries)
	}
	if want := "host=localhost port=5432 user=estimator password=estimator123 dbname=prices sslmode=disable"; cfg.DSN() != want {
		t.Errorf("DSN = %q", cfg.DSN())
	}
}
