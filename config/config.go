package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"house-price-estimator/services"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// StoreDriver selects the training-record store: "postgres", "sqlite"
	// or "none".
	StoreDriver string
	SQLitePath  string

	DatasetPath     string
	ModelPath       string
	DiagnosticsPath string
	RawOutputPath   string

	AreaMin           float64
	AreaMax           float64
	PricePerSqftMin   float64
	PricePerSqftMax   float64
	PriceQuantileLow  float64
	PriceQuantileHigh float64

	ConfidenceWindow int
	CacheTTL         time.Duration
	LogLevel         string

	ListingsURL    string
	PagesToScrape  int
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	ChromeBin      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return fromEnv()
}

func fromEnv() *Config {
	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "estimator"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "estimator123"),
		PostgresDB:       getEnv("POSTGRES_DB", "housing_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		SQLitePath:  getEnv("SQLITE_PATH", "./output/training.db"),

		DatasetPath:     getEnv("DATASET_PATH", "./data/navi_mumbai_real_estate.csv"),
		ModelPath:       getEnv("MODEL_PATH", "./models/price_model.json"),
		DiagnosticsPath: getEnv("DIAGNOSTICS_PATH", "./output/dropped_rows.csv"),
		RawOutputPath:   getEnv("RAW_OUTPUT_PATH", "./output/raw_listings.csv"),

		AreaMin:           getEnvFloat("AREA_MIN", 100),
		AreaMax:           getEnvFloat("AREA_MAX", 10_000),
		PricePerSqftMin:   getEnvFloat("PPSF_MIN", 2_000),
		PricePerSqftMax:   getEnvFloat("PPSF_MAX", 50_000),
		PriceQuantileLow:  getEnvFloat("PRICE_QUANTILE_LOW", 0.01),
		PriceQuantileHigh: getEnvFloat("PRICE_QUANTILE_HIGH", 0.99),

		ConfidenceWindow: getEnvInt("CONFIDENCE_WINDOW", services.DefaultConfidenceWindow),
		CacheTTL:         time.Duration(getEnvInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		LogLevel:         getEnv("LOG_LEVEL", "info"),

		ListingsURL:    getEnv("LISTINGS_URL", "https://www.magicbricks.com/property-for-sale-in-navi-mumbai-pppfs"),
		PagesToScrape:  getEnvInt("PAGES_TO_SCRAPE", 2),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		ChromeBin:      getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// CleanerOptions returns the plausibility bounds for the record cleaner.
func (c *Config) CleanerOptions() services.CleanerOptions {
	return services.CleanerOptions{
		AreaMin:           c.AreaMin,
		AreaMax:           c.AreaMax,
		PricePerSqftMin:   c.PricePerSqftMin,
		PricePerSqftMax:   c.PricePerSqftMax,
		PriceQuantileLow:  c.PriceQuantileLow,
		PriceQuantileHigh: c.PriceQuantileHigh,
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
