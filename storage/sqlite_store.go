package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"house-price-estimator/models"
)

// SQLiteStore keeps training records in a local SQLite file. It needs no
// server and is the default backend.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// A single connection serialises writers on the file.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS training_records (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			location        TEXT    NOT NULL,
			area_sqft       REAL    NOT NULL,
			bhk             INTEGER NOT NULL,
			bathrooms       INTEGER NOT NULL,
			floor           INTEGER NOT NULL,
			total_floors    INTEGER NOT NULL,
			age_of_property REAL    NOT NULL DEFAULT 0,
			parking         INTEGER NOT NULL DEFAULT 0,
			lift            INTEGER NOT NULL DEFAULT 0,
			price           REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_training_records_location ON training_records(location)`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write replaces the stored records in a single transaction.
func (s *SQLiteStore) Write(records []*models.CanonicalRecord) error {
	if err := replaceRecords(s.db, sqlitePlaceholder, records); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return nil
}

func sqlitePlaceholder(int) string { return "?" }

// FetchAll returns every stored record in insertion order.
func (s *SQLiteStore) FetchAll() ([]*models.CanonicalRecord, error) {
	rows, err := s.db.Query(`SELECT ` + strings.Join(recordColumns, ",") + ` FROM training_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: fetch all: %w", err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
