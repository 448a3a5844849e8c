package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"house-price-estimator/models"
)

// DatasetHeader is the column layout of raw listing files, as read back by
// ReadDataset.
var DatasetHeader = []string{
	"location", "actual_price", "area_sqft", "bhk", "bathrooms",
	"floor", "total_floors", "age_of_property", "parking", "lift",
}

var diagnosticsHeader = []string{"row", "reason", "field", "value", "error"}

// CSVWriter writes rows under a fixed header. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string, header []string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// NewRawCSVWriter opens a writer for raw listings in dataset layout.
func NewRawCSVWriter(path string) (*CSVWriter, error) {
	return NewCSVWriter(path, DatasetHeader)
}

// NewDiagnosticsWriter opens a writer for dropped-row diagnostics.
func NewDiagnosticsWriter(path string) (*CSVWriter, error) {
	return NewCSVWriter(path, diagnosticsHeader)
}

// WriteRaw appends raw listings in DatasetHeader order.
func (c *CSVWriter) WriteRaw(records []*models.RawRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			r.Location, r.Price, r.Area, r.BHK, r.Bathrooms,
			r.Floor, r.TotalFloors, r.Age, r.Parking, r.Lift,
		}
	}
	return c.writeRows(rows)
}

// WriteDropped appends one line per dropped training row.
func (c *CSVWriter) WriteDropped(dropped []models.DroppedRow) error {
	rows := make([][]string, len(dropped))
	for i, d := range dropped {
		rows[i] = []string{strconv.Itoa(d.Row), d.Reason, d.Field, d.Value, d.Err}
	}
	return c.writeRows(rows)
}

func (c *CSVWriter) writeRows(rows [][]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, row := range rows {
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
