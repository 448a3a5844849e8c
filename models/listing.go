package models

import "time"

// RawRecord holds one property listing exactly as it was captured: every
// field is free text. Row is the 1-based source row, used in diagnostics.
type RawRecord struct {
	Row         int
	Location    string
	Price       string
	Area        string
	BHK         string
	Bathrooms   string
	Floor       string
	TotalFloors string
	Age         string
	Parking     string
	Lift        string
}

// CanonicalRecord is a cleaned listing. Price is nil for inference requests.
type CanonicalRecord struct {
	Location      Location `json:"location"`
	AreaSqft      float64  `json:"area_sqft"`
	BHK           int      `json:"bhk"`
	Bathrooms     int      `json:"bathrooms"`
	Floor         int      `json:"floor"`
	TotalFloors   int      `json:"total_floors"`
	AgeOfProperty float64  `json:"age_of_property"`
	Parking       bool     `json:"parking"`
	Lift          bool     `json:"lift"`
	Price         *float64 `json:"price,omitempty"`
}

// PricePerSqft returns price / area for training rows, 0 when either is unset.
func (r *CanonicalRecord) PricePerSqft() float64 {
	if r.Price == nil || r.AreaSqft <= 0 {
		return 0
	}
	return *r.Price / r.AreaSqft
}

// EstimateRequest is the typed inference input handed over by the web layer.
type EstimateRequest struct {
	Location      string  `json:"location"`
	AreaSqft      float64 `json:"area_sqft"`
	BHK           int     `json:"bhk"`
	Bathrooms     int     `json:"bathrooms"`
	Floor         int     `json:"floor"`
	TotalFloors   int     `json:"total_floors"`
	AgeOfProperty float64 `json:"age_of_property"`
	Parking       bool    `json:"parking"`
	Lift          bool    `json:"lift"`
}

// DroppedRow records why a training row was excluded.
type DroppedRow struct {
	Row    int
	Reason string
	Field  string
	Value  string
	Err    string
}

// TrainingTable is the result of cleaning a raw dataset in training mode.
type TrainingTable struct {
	SourceRows int
	Accepted   []*CanonicalRecord
	Dropped    []DroppedRow
	DropCounts map[string]int
	CleanedAt  time.Time
}
