package ml

import (
	"errors"
	"math"
	"strings"
	"testing"

	"house-price-estimator/models"
)

const artifact = `{
  "version": "test-v1",
  "features": ["location", "area_sqft", "parking"],
  "location_classes": ["Vashi", "Kharghar", "Airoli"],
  "scaler": {"mean": [0, 1000, 0], "scale": [1, 500, 0]},
  "init_prediction": 10000000,
  "learning_rate": 0.5,
  "trees": [
    {"nodes": [
      {"feature": 1, "threshold": 0, "left": 1, "right": 2},
      {"leaf": true, "value": -2000000},
      {"leaf": true, "value": 4000000}
    ]},
    {"nodes": [
      {"feature": 0, "threshold": 0.5, "left": 1, "right": 2},
      {"leaf": true, "value": 1000000},
      {"leaf": true, "value": 0}
    ]}
  ],
  "feature_importances": [0.25, 0.5, 0.25]
}`

func TestDecodeAndPredict(t *testing.T) {
	e, err := Decode(strings.NewReader(artifact))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if e.Version() != "test-v1" {
		t.Errorf("Version = %q", e.Version())
	}
	if e.Stages() != 2 {
		t.Errorf("Stages = %d, want 2", e.Stages())
	}

	// Airoli sorts first, so its label code is 0.
	rec := &models.CanonicalRecord{Location: models.Airoli, AreaSqft: 1500, Parking: true}
	x, err := e.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []float64{0, 1, 1}
	for i := range want {
		if x[i] != want[i] {
			t.Errorf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}

	staged := e.PredictStaged(x)
	if len(staged) != 2 {
		t.Fatalf("staged len = %d", len(staged))
	}
	if staged[0] != 12_000_000 || staged[1] != 12_500_000 {
		t.Errorf("staged = %v, want [12000000 12500000]", staged)
	}
	if final := e.PredictFinal(x); final != staged[len(staged)-1] {
		t.Errorf("final %v != last stage %v", final, staged[1])
	}
}

func TestEncodeUnknownClass(t *testing.T) {
	e, err := Decode(strings.NewReader(artifact))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = e.Encode(&models.CanonicalRecord{Location: models.Ulwe, AreaSqft: 900})
	if !errors.Is(err, ErrUnknownClass) {
		t.Errorf("Encode(Ulwe) error = %v, want ErrUnknownClass", err)
	}
}

func TestPrepareAssignsVersion(t *testing.T) {
	e := &Ensemble{
		Features:       []string{"area_sqft"},
		Importances:    []float64{1},
		InitPrediction: 5,
	}
	if err := e.Prepare(); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if e.Version() == "" {
		t.Error("expected a generated version")
	}
	got := e.PredictStaged([]float64{math.NaN()})
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("treeless staged = %v, want [5]", got)
	}
}

func TestValidateRejectsBadArtifacts(t *testing.T) {
	tests := []struct {
		name string
		e    Ensemble
	}{
		{"no features", Ensemble{}},
		{"unknown feature", Ensemble{Features: []string{"garden"}, Importances: []float64{1}}},
		{"importance mismatch", Ensemble{Features: []string{"bhk"}, Importances: []float64{1, 2}}},
		{"scaler mismatch", Ensemble{Features: []string{"bhk"}, Importances: []float64{1},
			Scaler: Scaler{Mean: []float64{1}, Scale: nil}}},
		{"backward child", Ensemble{Features: []string{"bhk"}, Importances: []float64{1}, LearningRate: 0.1,
			Trees: []Tree{{Nodes: []Node{{Feature: 0, Left: 0, Right: 1}, {Leaf: true}}}}}},
		{"zero learning rate", Ensemble{Features: []string{"bhk"}, Importances: []float64{1},
			Trees: []Tree{{Nodes: []Node{{Leaf: true, Value: 1}}}}}},
		{"location without classes", Ensemble{Features: []string{"location"}, Importances: []float64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.e
			if err := e.Prepare(); err == nil {
				t.Error("Prepare accepted an invalid artifact")
			}
		})
	}
}
