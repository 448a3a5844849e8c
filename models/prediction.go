package models

import (
	"bytes"
	"encoding/json"
)

// LocationStats summarises the accepted training rows of one location.
type LocationStats struct {
	Name            string  `json:"name"`
	AvgPrice        float64 `json:"avg_price"`
	MedianPrice     float64 `json:"median_price"`
	AvgPricePerSqft float64 `json:"avg_price_per_sqft"`
	MinPrice        float64 `json:"min_price"`
	MaxPrice        float64 `json:"max_price"`
	DataPoints      int     `json:"data_points"`
}

// LocationContext is the subset of LocationStats echoed with a prediction.
type LocationContext struct {
	Name            string  `json:"name"`
	AvgPrice        float64 `json:"avg_price"`
	MedianPrice     float64 `json:"median_price"`
	AvgPricePerSqft float64 `json:"avg_price_per_sqft"`
	DataPoints      int     `json:"data_points"`
}

// Context projects s onto the fields returned with a prediction.
func (s LocationStats) Context() LocationContext {
	return LocationContext{
		Name:            s.Name,
		AvgPrice:        s.AvgPrice,
		MedianPrice:     s.MedianPrice,
		AvgPricePerSqft: s.AvgPricePerSqft,
		DataPoints:      s.DataPoints,
	}
}

type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// FeatureWeight is one entry of a normalised feature-importance vector.
type FeatureWeight struct {
	Feature string
	Weight  float64
}

// FeatureWeights keeps presentation order (descending weight) and encodes
// as a JSON object whose keys appear in that order.
type FeatureWeights []FeatureWeight

func (fw FeatureWeights) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, w := range fw {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(w.Feature)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(w.Weight)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Map returns the weights keyed by feature name.
func (fw FeatureWeights) Map() map[string]float64 {
	m := make(map[string]float64, len(fw))
	for _, w := range fw {
		m[w.Feature] = w.Weight
	}
	return m
}

// Clone returns a copy that shares no backing array with fw.
func (fw FeatureWeights) Clone() FeatureWeights {
	if fw == nil {
		return nil
	}
	return append(make(FeatureWeights, 0, len(fw)), fw...)
}

// Sum returns the total weight.
func (fw FeatureWeights) Sum() float64 {
	var total float64
	for _, w := range fw {
		total += w.Weight
	}
	return total
}

// PredictionResult is the composed answer for one estimate request.
type PredictionResult struct {
	PredictedPrice    float64         `json:"predicted_price"`
	PriceRange        PriceRange      `json:"price_range"`
	PricePerSqft      float64         `json:"price_per_sqft"`
	ConfidenceScore   float64         `json:"confidence_score"`
	LocationContext   LocationContext `json:"location_context"`
	FeatureImportance FeatureWeights  `json:"feature_importance"`
	InputSummary      CanonicalRecord `json:"input_summary"`
}

// Clone returns a deep copy, so callers may modify the result freely.
func (r *PredictionResult) Clone() *PredictionResult {
	out := *r
	out.FeatureImportance = r.FeatureImportance.Clone()
	if r.InputSummary.Price != nil {
		price := *r.InputSummary.Price
		out.InputSummary.Price = &price
	}
	return &out
}

// ModelInfo describes the active model for operators.
type ModelInfo struct {
	Version           string         `json:"version"`
	ModelType         string         `json:"model_type"`
	Stages            int            `json:"stages"`
	Features          []string       `json:"features"`
	FeatureImportance FeatureWeights `json:"feature_importance"`
	Locations         []string       `json:"locations"`
	TrainingRows      int            `json:"training_rows"`
}
