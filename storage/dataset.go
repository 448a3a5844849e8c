package storage

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"house-price-estimator/models"
)

// columnAliases maps normalised header names onto RawRecord fields.
var columnAliases = map[string]string{
	"location":        "location",
	"actual_price":    "price",
	"price":           "price",
	"area_sqft":       "area",
	"area":            "area",
	"bhk":             "bhk",
	"bathrooms":       "bathrooms",
	"floor":           "floor",
	"total_floors":    "total_floors",
	"age_of_property": "age",
	"age":             "age",
	"parking":         "parking",
	"lift":            "lift",
}

// requiredColumns must be present for a dataset to be usable for training.
var requiredColumns = []string{"location", "price", "area", "bhk", "bathrooms", "floor"}

// LoadDataset reads the raw listing CSV at path.
func LoadDataset(path string) ([]*models.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %q: %w", path, err)
	}
	defer f.Close()
	return ReadDataset(f)
}

// ReadDataset reads a raw listing CSV. Every cell is kept as text; the
// cleaner does all interpretation, including of "NA" and blank cells, which
// are passed through verbatim. Header names are matched after trimming,
// lowercasing and replacing spaces with underscores.
func ReadDataset(r io.Reader) ([]*models.RawRecord, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("dataset: read csv: %w", df.Err)
	}

	cols := make(map[string][]string)
	for _, name := range df.Names() {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
		field, ok := columnAliases[key]
		if !ok {
			continue
		}
		if _, dup := cols[field]; dup {
			continue
		}
		cols[field] = df.Col(name).Records()
	}
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("dataset: missing column %q", req)
		}
	}

	cell := func(field string, i int) string {
		if vals, ok := cols[field]; ok {
			return vals[i]
		}
		return ""
	}

	n := df.Nrow()
	out := make([]*models.RawRecord, n)
	for i := 0; i < n; i++ {
		out[i] = &models.RawRecord{
			Row:         i + 1,
			Location:    cell("location", i),
			Price:       cell("price", i),
			Area:        cell("area", i),
			BHK:         cell("bhk", i),
			Bathrooms:   cell("bathrooms", i),
			Floor:       cell("floor", i),
			TotalFloors: cell("total_floors", i),
			Age:         cell("age", i),
			Parking:     cell("parking", i),
			Lift:        cell("lift", i),
		}
	}
	return out, nil
}
