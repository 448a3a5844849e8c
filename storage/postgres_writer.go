package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"house-price-estimator/models"
	"house-price-estimator/utils"
)

// PostgresStore persists cleaned training records to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to accept
// connections, runs schema migrations, and returns a ready-to-use store.
func NewPostgresStore(dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := utils.RetryConfig{MaxAttempts: 5, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS training_records (
			id              SERIAL PRIMARY KEY,
			location        VARCHAR(50)   NOT NULL,
			area_sqft       DOUBLE PRECISION NOT NULL,
			bhk             SMALLINT         NOT NULL,
			bathrooms       SMALLINT         NOT NULL,
			floor           SMALLINT         NOT NULL,
			total_floors    SMALLINT         NOT NULL,
			age_of_property DOUBLE PRECISION NOT NULL DEFAULT 0,
			parking         BOOLEAN          NOT NULL DEFAULT FALSE,
			lift            BOOLEAN          NOT NULL DEFAULT FALSE,
			price           DOUBLE PRECISION,
			created_at      TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_training_records_location ON training_records(location);
		CREATE INDEX IF NOT EXISTS idx_training_records_price    ON training_records(price);
	`)
	return err
}

// Write replaces the stored records in a single transaction, inserting in
// batches of 50 rows.
func (ps *PostgresStore) Write(records []*models.CanonicalRecord) error {
	if err := replaceRecords(ps.db, postgresPlaceholder, records); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	return nil
}

func postgresPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// FetchAll retrieves all stored records, used to rebuild location statistics.
func (ps *PostgresStore) FetchAll() ([]*models.CanonicalRecord, error) {
	rows, err := ps.db.Query(`SELECT ` + strings.Join(recordColumns, ", ") + `
		FROM training_records
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return records, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
