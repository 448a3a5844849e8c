package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"house-price-estimator/models"
)

const insertBatchSize = 50

// recordColumns is the column order shared by every SQL backend.
var recordColumns = []string{
	"location", "area_sqft", "bhk", "bathrooms", "floor", "total_floors",
	"age_of_property", "parking", "lift", "price",
}

func recordArgs(r *models.CanonicalRecord) ([]interface{}, error) {
	if !r.Location.Valid() {
		return nil, fmt.Errorf("record has no known location")
	}
	var price sql.NullFloat64
	if r.Price != nil {
		price = sql.NullFloat64{Float64: *r.Price, Valid: true}
	}
	return []interface{}{
		r.Location.String(), r.AreaSqft, r.BHK, r.Bathrooms, r.Floor, r.TotalFloors,
		r.AgeOfProperty, r.Parking, r.Lift, price,
	}, nil
}

// replaceRecords swaps the contents of training_records for records inside
// one transaction. Any failure rolls back to the previous contents.
// placeholder renders the driver's bind parameter for argument n (1-based).
func replaceRecords(db *sql.DB, placeholder func(n int) string, records []*models.CanonicalRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM training_records`); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	for i := 0; i < len(records); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := insertBatch(tx, placeholder, records[i:end]); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", i+1, end, err)
		}
	}
	return tx.Commit()
}

func insertBatch(tx *sql.Tx, placeholder func(n int) string, batch []*models.CanonicalRecord) error {
	n := len(recordColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*n)

	for idx, r := range batch {
		args, err := recordArgs(r)
		if err != nil {
			return err
		}
		placeholders := make([]string, n)
		for c := range placeholders {
			placeholders[c] = placeholder(idx*n + c + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, args...)
	}

	query := fmt.Sprintf(`INSERT INTO training_records (%s) VALUES %s`,
		strings.Join(recordColumns, ", "), strings.Join(valueStrings, ","))
	_, err := tx.Exec(query, valueArgs...)
	return err
}

// scanRecords reads rows selected in recordColumns order.
func scanRecords(rows *sql.Rows) ([]*models.CanonicalRecord, error) {
	defer rows.Close()

	var out []*models.CanonicalRecord
	for rows.Next() {
		var (
			r     models.CanonicalRecord
			loc   string
			price sql.NullFloat64
		)
		if err := rows.Scan(
			&loc, &r.AreaSqft, &r.BHK, &r.Bathrooms, &r.Floor, &r.TotalFloors,
			&r.AgeOfProperty, &r.Parking, &r.Lift, &price,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		l, ok := models.LocationByName(loc)
		if !ok {
			return nil, fmt.Errorf("scan row: unknown location %q", loc)
		}
		r.Location = l
		if price.Valid {
			p := price.Float64
			r.Price = &p
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}
