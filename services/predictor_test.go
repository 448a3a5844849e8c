package services

import (
	"errors"
	"math"
	"testing"

	"house-price-estimator/models"
)

// stubModel returns fixed outputs regardless of the input vector.
type stubModel struct {
	final     float64
	staged    []float64
	names     []string
	weights   []float64
	encodeErr error
}

func (m *stubModel) Encode(*models.CanonicalRecord) ([]float64, error) {
	if m.encodeErr != nil {
		return nil, m.encodeErr
	}
	return []float64{0}, nil
}
func (m *stubModel) PredictFinal([]float64) float64    { return m.final }
func (m *stubModel) PredictStaged([]float64) []float64 { return m.staged }
func (m *stubModel) FeatureNames() []string            { return m.names }
func (m *stubModel) FeatureImportances() []float64     { return m.weights }
func (m *stubModel) Version() string                   { return "stub" }
func (m *stubModel) Stages() int                       { return len(m.staged) }

var allFeatures = []string{"location", "area_sqft", "bhk", "bathrooms", "floor",
	"total_floors", "age_of_property", "parking", "lift"}

func newStub(final float64, staged ...float64) *stubModel {
	return &stubModel{
		final:   final,
		staged:  staged,
		names:   allFeatures,
		weights: []float64{0.30, 0.45, 0.05, 0.04, 0.03, 0.03, 0.06, 0.02, 0.02},
	}
}

func kharghar1000() *models.CanonicalRecord {
	return &models.CanonicalRecord{
		Location: models.Kharghar, AreaSqft: 1000, BHK: 2, Bathrooms: 2,
		Floor: 10, TotalFloors: 20, AgeOfProperty: 5, Parking: true, Lift: true,
	}
}

func TestConfidencePinned(t *testing.T) {
	tests := []struct {
		name   string
		staged []float64
		final  float64
		window int
		want   float64
	}{
		{"flat tail", []float64{1, 2, 3, 100, 100, 100}, 100, 3, 1},
		// mean 105, σ 5, 1 − 5/(0.15·110) = 0.697
		{"two stages", []float64{100, 110}, 110, 20, 0.70},
		{"wild swings", []float64{10, 200, 10, 200}, 200, 20, ConfidenceFloor},
		{"window trims early noise", []float64{0, 1e9, 100, 100}, 100, 2, 1},
		{"empty", nil, 100, 20, ConfidenceFloor},
		{"zero final", []float64{0, 0}, 0, 20, ConfidenceFloor},
		{"nan stage", []float64{100, math.NaN()}, 100, 20, ConfidenceFloor},
		{"inf final", []float64{100}, math.Inf(1), 20, ConfidenceFloor},
		{"single stage", []float64{42}, 42, 20, 1},
	}
	for _, tt := range tests {
		if got := Confidence(tt.staged, tt.final, tt.window); got != tt.want {
			t.Errorf("%s: Confidence = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestConfidenceAlwaysInUnitInterval(t *testing.T) {
	seqs := [][]float64{
		{1, -1, 1, -1},
		{-5e6, -4e6},
		{1e300, -1e300},
		{3, 3, 3},
		{0.0001, 1e12, 7},
	}
	for _, s := range seqs {
		for _, final := range []float64{-1e6, -1, 1, 1e7} {
			c := Confidence(s, final, 3)
			if c < 0 || c > 1 || math.IsNaN(c) {
				t.Errorf("Confidence(%v, %v) = %v outside [0,1]", s, final, c)
			}
		}
	}
}

func TestPriceSpreadMonotonic(t *testing.T) {
	if got := PriceSpread(1); math.Abs(got-0.08) > 1e-12 {
		t.Errorf("PriceSpread(1) = %v; want 0.08", got)
	}
	if got := PriceSpread(0.5); math.Abs(got-0.10) > 1e-12 {
		t.Errorf("PriceSpread(0.5) = %v; want 0.10", got)
	}
	if got := PriceSpread(0); math.Abs(got-0.12) > 1e-12 {
		t.Errorf("PriceSpread(0) = %v; want 0.12", got)
	}
	prev := math.Inf(1)
	for c := 0.0; c <= 1.0; c += 0.05 {
		s := PriceSpread(c)
		if s > prev {
			t.Errorf("PriceSpread not decreasing at %v: %v > %v", c, s, prev)
		}
		prev = s
	}
}

func TestPredictComposesEstimate(t *testing.T) {
	p, err := NewPredictor(newStub(12_345_678.4, 12_000_000, 12_300_000, 12_345_678.4), 20, newTestLogger())
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Predict(kharghar1000())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if res.PredictedPrice != 12_345_678 {
		t.Errorf("PredictedPrice = %v", res.PredictedPrice)
	}
	if res.PricePerSqft != math.Round(res.PredictedPrice/1000) {
		t.Errorf("PricePerSqft = %v; want %v", res.PricePerSqft, math.Round(res.PredictedPrice/1000))
	}
	if res.ConfidenceScore < 0 || res.ConfidenceScore > 1 {
		t.Errorf("ConfidenceScore = %v", res.ConfidenceScore)
	}
	if !(res.PriceRange.Low <= res.PredictedPrice && res.PredictedPrice <= res.PriceRange.High) {
		t.Errorf("range %+v does not contain %v", res.PriceRange, res.PredictedPrice)
	}
	if res.PriceRange.Low < 0 {
		t.Errorf("negative low bound %v", res.PriceRange.Low)
	}
	if res.InputSummary != *kharghar1000() {
		t.Errorf("InputSummary = %+v", res.InputSummary)
	}
	if math.Abs(res.FeatureImportance.Sum()-1) > 1e-6 {
		t.Errorf("importance sums to %v", res.FeatureImportance.Sum())
	}
	if res.FeatureImportance[0].Feature != "area_sqft" {
		t.Errorf("heaviest feature = %q; want area_sqft", res.FeatureImportance[0].Feature)
	}
}

func TestPredictRangeHoldsAcrossConfidence(t *testing.T) {
	staged := [][]float64{
		{5e6},
		{1e6, 9e6, 2e6, 8e6},
		{4.9e6, 5e6, 5.1e6, 5e6},
	}
	for _, s := range staged {
		p, err := NewPredictor(newStub(s[len(s)-1], s...), 20, newTestLogger())
		if err != nil {
			t.Fatal(err)
		}
		res, err := p.Predict(kharghar1000())
		if err != nil {
			t.Fatalf("Predict(%v): %v", s, err)
		}
		if !(res.PriceRange.Low <= res.PredictedPrice && res.PredictedPrice <= res.PriceRange.High) {
			t.Errorf("staged %v: range %+v vs %v", s, res.PriceRange, res.PredictedPrice)
		}
		if res.ConfidenceScore < 0 || res.ConfidenceScore > 1 {
			t.Errorf("staged %v: confidence %v", s, res.ConfidenceScore)
		}
	}
}

func TestPredictErrors(t *testing.T) {
	notLoaded, err := NewPredictor(nil, 20, newTestLogger())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := notLoaded.Predict(kharghar1000()); !errors.Is(err, ErrModelNotLoaded) {
		t.Errorf("unloaded: error = %v", err)
	}

	var de *DomainError

	negative, _ := NewPredictor(newStub(-10, -10), 20, newTestLogger())
	if _, err := negative.Predict(kharghar1000()); !errors.As(err, &de) {
		t.Errorf("negative price: error = %v; want *DomainError", err)
	}

	ok, _ := NewPredictor(newStub(1e7, 1e7), 20, newTestLogger())
	bad := kharghar1000()
	bad.AreaSqft = 0
	if _, err := ok.Predict(bad); !errors.As(err, &de) {
		t.Errorf("zero area: error = %v; want *DomainError", err)
	}
	bad = kharghar1000()
	bad.Floor = 30
	if _, err := ok.Predict(bad); !errors.As(err, &de) {
		t.Errorf("floor above total: error = %v; want *DomainError", err)
	}
	if !IsServiceFault(de) || IsClientError(de) {
		t.Error("DomainError should classify as a service fault")
	}
}

func TestPricePerSqftGuard(t *testing.T) {
	var de *DomainError
	for _, area := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := PricePerSqft(1e7, area); !errors.As(err, &de) {
			t.Errorf("PricePerSqft(area=%v) error = %v; want *DomainError", area, err)
		}
	}
	if v, err := PricePerSqft(12_000_000, 1000); err != nil || v != 12_000 {
		t.Errorf("PricePerSqft = %v, %v", v, err)
	}
}

func TestNormaliseImportance(t *testing.T) {
	w, err := NormaliseImportance([]string{"a", "b", "c"}, []float64{1, 3, 0})
	if err != nil {
		t.Fatal(err)
	}
	if w[0].Feature != "b" || w[0].Weight != 0.75 || w[2].Weight != 0 {
		t.Errorf("weights = %+v", w)
	}

	uniform, err := NormaliseImportance([]string{"x", "y"}, []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if uniform[0].Weight != 0.5 || uniform[1].Weight != 0.5 {
		t.Errorf("all-zero importances = %+v; want uniform", uniform)
	}

	if _, err := NormaliseImportance([]string{"x"}, []float64{-0.1}); err == nil {
		t.Error("negative importance accepted")
	}
	if _, err := NormaliseImportance([]string{"x"}, nil); err == nil {
		t.Error("length mismatch accepted")
	}
	if _, err := NewPredictor(&stubModel{names: []string{"x"}, weights: []float64{-1}}, 20, newTestLogger()); err == nil {
		t.Error("NewPredictor accepted negative importances")
	}
}
