// Package ml evaluates the trained gradient-boosted regression ensemble
// exported by the training job. Fitting happens elsewhere; this package only
// loads the artifact and runs it.
package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"house-price-estimator/models"
)

// ErrUnknownClass is returned by Encode for a location the model was not
// trained on.
var ErrUnknownClass = errors.New("ml: location not among model classes")

// Node is one node of a regression tree. Split nodes send x[Feature] <=
// Threshold to Left and everything else to Right.
type Node struct {
	Leaf      bool    `json:"leaf"`
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Scaler standardises features as (x - Mean) / Scale. Empty slices disable it.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Ensemble is a staged additive model: the prediction after stage i is
// InitPrediction + LearningRate * (tree_0(x) + ... + tree_i(x)).
type Ensemble struct {
	ID              string    `json:"version"`
	Features        []string  `json:"features"`
	LocationClasses []string  `json:"location_classes"`
	Scaler          Scaler    `json:"scaler"`
	InitPrediction  float64   `json:"init_prediction"`
	LearningRate    float64   `json:"learning_rate"`
	Trees           []Tree    `json:"trees"`
	Importances     []float64 `json:"feature_importances"`
	TrainedAt       time.Time `json:"trained_at"`

	classIndex map[string]int
}

// Load reads and validates a JSON model artifact from path.
func Load(path string) (*Ensemble, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ml: open model %q: %w", path, err)
	}
	defer f.Close()

	e, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("ml: load %q: %w", path, err)
	}
	return e, nil
}

// Decode reads a JSON model artifact. Artifacts without a version get a
// random one so reloads stay distinguishable in logs.
func Decode(r io.Reader) (*Ensemble, error) {
	var e Ensemble
	if err := json.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := e.Prepare(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Prepare validates the ensemble and builds its lookup tables. It must be
// called on ensembles constructed in code before use.
func (e *Ensemble) Prepare() error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := e.validate(); err != nil {
		return err
	}
	// Label encoding assigns codes in sorted class order.
	classes := append([]string(nil), e.LocationClasses...)
	sort.Strings(classes)
	e.classIndex = make(map[string]int, len(classes))
	for i, c := range classes {
		e.classIndex[c] = i
	}
	return nil
}

func (e *Ensemble) validate() error {
	n := len(e.Features)
	if n == 0 {
		return errors.New("ml: model has no features")
	}
	seen := make(map[string]bool, n)
	for _, f := range e.Features {
		if _, ok := featureGetters[f]; !ok {
			return fmt.Errorf("ml: unsupported feature %q", f)
		}
		if seen[f] {
			return fmt.Errorf("ml: duplicate feature %q", f)
		}
		seen[f] = true
	}
	if seen["location"] && len(e.LocationClasses) == 0 {
		return errors.New("ml: location feature without location classes")
	}
	if len(e.Scaler.Mean) != len(e.Scaler.Scale) ||
		(len(e.Scaler.Mean) != 0 && len(e.Scaler.Mean) != n) {
		return fmt.Errorf("ml: scaler has %d/%d entries for %d features",
			len(e.Scaler.Mean), len(e.Scaler.Scale), n)
	}
	if len(e.Importances) != n {
		return fmt.Errorf("ml: %d importances for %d features", len(e.Importances), n)
	}
	if len(e.Trees) > 0 && !(e.LearningRate > 0) {
		return errors.New("ml: learning rate must be positive")
	}
	for ti, t := range e.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("ml: tree %d is empty", ti)
		}
		for ni, node := range t.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= n {
				return fmt.Errorf("ml: tree %d node %d splits on feature %d", ti, ni, node.Feature)
			}
			if node.Left <= ni || node.Left >= len(t.Nodes) || node.Right <= ni || node.Right >= len(t.Nodes) {
				return fmt.Errorf("ml: tree %d node %d has children out of range", ti, ni)
			}
		}
	}
	return nil
}

var featureGetters = map[string]func(*models.CanonicalRecord) float64{
	"location":        nil, // label encoded
	"area_sqft":       func(r *models.CanonicalRecord) float64 { return r.AreaSqft },
	"bhk":             func(r *models.CanonicalRecord) float64 { return float64(r.BHK) },
	"bathrooms":       func(r *models.CanonicalRecord) float64 { return float64(r.Bathrooms) },
	"floor":           func(r *models.CanonicalRecord) float64 { return float64(r.Floor) },
	"total_floors":    func(r *models.CanonicalRecord) float64 { return float64(r.TotalFloors) },
	"age_of_property": func(r *models.CanonicalRecord) float64 { return r.AgeOfProperty },
	"parking":         func(r *models.CanonicalRecord) float64 { return boolFeature(r.Parking) },
	"lift":            func(r *models.CanonicalRecord) float64 { return boolFeature(r.Lift) },
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Encode turns a record into the model's scaled feature vector.
func (e *Ensemble) Encode(rec *models.CanonicalRecord) ([]float64, error) {
	x := make([]float64, len(e.Features))
	for i, f := range e.Features {
		if f == "location" {
			code, ok := e.classIndex[rec.Location.String()]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownClass, rec.Location)
			}
			x[i] = float64(code)
		} else {
			x[i] = featureGetters[f](rec)
		}
		if len(e.Scaler.Mean) > 0 {
			scale := e.Scaler.Scale[i]
			if scale == 0 {
				scale = 1
			}
			x[i] = (x[i] - e.Scaler.Mean[i]) / scale
		}
	}
	return x, nil
}

// PredictStaged returns the cumulative prediction after each stage, in
// training order. An ensemble without trees yields a single value.
func (e *Ensemble) PredictStaged(x []float64) []float64 {
	if len(e.Trees) == 0 {
		return []float64{e.InitPrediction}
	}
	out := make([]float64, len(e.Trees))
	acc := e.InitPrediction
	for i := range e.Trees {
		acc += e.LearningRate * e.Trees[i].eval(x)
		out[i] = acc
	}
	return out
}

// PredictFinal returns the full ensemble's prediction.
func (e *Ensemble) PredictFinal(x []float64) float64 {
	acc := e.InitPrediction
	for i := range e.Trees {
		acc += e.LearningRate * e.Trees[i].eval(x)
	}
	return acc
}

func (e *Ensemble) FeatureNames() []string { return append([]string(nil), e.Features...) }
func (e *Ensemble) FeatureImportances() []float64 { return append([]float64(nil), e.Importances...) }
func (e *Ensemble) Version() string { return e.ID }
func (e *Ensemble) Stages() int { return len(e.Trees) }

// eval walks from the root. Validation guarantees children point forward,
// so the walk terminates.
func (t *Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold || math.IsNaN(x[n.Feature]) {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
