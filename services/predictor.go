package services

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"house-price-estimator/ml"
	"house-price-estimator/models"
	"house-price-estimator/utils"
)

// Model is a trained staged ensemble. *ml.Ensemble satisfies it.
type Model interface {
	Encode(rec *models.CanonicalRecord) ([]float64, error)
	PredictFinal(x []float64) float64
	PredictStaged(x []float64) []float64
	FeatureNames() []string
	FeatureImportances() []float64
	Version() string
	Stages() int
}

const (
	// DefaultConfidenceWindow is the number of trailing boosting stages
	// whose spread drives the confidence score.
	DefaultConfidenceWindow = 20
	// confidenceTolerance is the relative standard deviation at which
	// confidence reaches its floor.
	confidenceTolerance = 0.15
	// ConfidenceFloor is the lowest confidence ever reported.
	ConfidenceFloor = 0.5

	baseSpread     = 0.08
	spreadPerDoubt = 0.04
)

// Predictor turns canonical records into priced estimates. It never mutates
// after NewPredictor and is safe for concurrent use.
type Predictor struct {
	model      Model
	window     int
	importance models.FeatureWeights
	logger     *utils.Logger
}

// NewPredictor wraps model. The global importance vector is read and
// normalised once here. A nil model yields a predictor that reports
// ErrModelNotLoaded.
func NewPredictor(model Model, window int, logger *utils.Logger) (*Predictor, error) {
	if window < 1 {
		window = DefaultConfidenceWindow
	}
	p := &Predictor{model: model, window: window, logger: logger}
	if model == nil {
		return p, nil
	}
	weights, err := NormaliseImportance(model.FeatureNames(), model.FeatureImportances())
	if err != nil {
		return nil, err
	}
	p.importance = weights
	return p, nil
}

// Loaded reports whether a model is installed.
func (p *Predictor) Loaded() bool { return p != nil && p.model != nil }

// Predict prices rec. The returned result has no location context; the
// caller composes it.
func (p *Predictor) Predict(rec *models.CanonicalRecord) (*models.PredictionResult, error) {
	if !p.Loaded() {
		return nil, ErrModelNotLoaded
	}
	if err := checkInvariants(rec); err != nil {
		return nil, err
	}

	x, err := p.model.Encode(rec)
	if err != nil {
		if errors.Is(err, ml.ErrUnknownClass) {
			return nil, &UnknownLocationError{Location: rec.Location.String()}
		}
		return nil, &DomainError{Detail: err.Error()}
	}

	raw := p.model.PredictFinal(x)
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw <= 0 {
		return nil, &DomainError{Detail: fmt.Sprintf("model produced non-positive price %v", raw)}
	}

	conf := Confidence(p.model.PredictStaged(x), raw, p.window)
	spread := PriceSpread(conf)

	point := math.Round(raw)
	ppsf, err := PricePerSqft(point, rec.AreaSqft)
	if err != nil {
		return nil, err
	}

	result := &models.PredictionResult{
		PredictedPrice: point,
		PriceRange: models.PriceRange{
			Low:  math.Max(0, math.Round(raw*(1-spread))),
			High: math.Round(raw * (1 + spread)),
		},
		PricePerSqft:      ppsf,
		ConfidenceScore:   conf,
		FeatureImportance: p.importance.Clone(),
		InputSummary:      *rec,
	}
	result.InputSummary.Price = nil

	p.logger.Info("[predictor] %s, %.0f sqft, %d BHK: ₹%.0f (confidence %.2f)",
		rec.Location, rec.AreaSqft, rec.BHK, point, conf)
	return result, nil
}

// FeatureImportance returns a copy of the normalised global weights,
// heaviest first.
func (p *Predictor) FeatureImportance() models.FeatureWeights { return p.importance.Clone() }

// Confidence scores how settled the ensemble was over its last window
// stages: 1 − σ/(0.15·|final|), clamped to [ConfidenceFloor, 1] and rounded
// to two decimals. Sequences with non-finite values, or a zero final value,
// score the floor.
func Confidence(staged []float64, final float64, window int) float64 {
	if len(staged) == 0 || final == 0 || math.IsNaN(final) || math.IsInf(final, 0) {
		return ConfidenceFloor
	}
	if window < 1 {
		window = DefaultConfidenceWindow
	}
	if len(staged) > window {
		staged = staged[len(staged)-window:]
	}

	var mean float64
	for _, v := range staged {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ConfidenceFloor
		}
		mean += v
	}
	mean /= float64(len(staged))
	var ss float64
	for _, v := range staged {
		ss += (v - mean) * (v - mean)
	}
	std := math.Sqrt(ss / float64(len(staged)))

	conf := 1 - std/(confidenceTolerance*math.Abs(final))
	if math.IsNaN(conf) {
		return ConfidenceFloor
	}
	conf = math.Max(ConfidenceFloor, math.Min(1, conf))
	return math.Round(conf*100) / 100
}

// PriceSpread maps confidence to the relative half-width of the price
// range: 8% at full confidence, widening linearly to 12% at zero.
func PriceSpread(confidence float64) float64 {
	c := math.Max(0, math.Min(1, confidence))
	return baseSpread + (1-c)*spreadPerDoubt
}

// PricePerSqft divides price by area, refusing a non-positive area rather
// than returning Inf or NaN. The result is rounded to whole rupees.
func PricePerSqft(price, area float64) (float64, error) {
	if !(area > 0) || math.IsInf(area, 0) {
		return 0, &DomainError{Detail: fmt.Sprintf("area %v is not positive", area)}
	}
	return math.Round(price / area), nil
}

// NormaliseImportance scales importances to sum to 1 and orders them by
// descending weight, ties by name. All-zero input becomes uniform.
func NormaliseImportance(names []string, values []float64) (models.FeatureWeights, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("feature importance: %d names for %d values", len(names), len(values))
	}
	if len(names) == 0 {
		return nil, errors.New("feature importance: empty vector")
	}
	var total float64
	for i, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("feature importance: %s has invalid weight %v", names[i], v)
		}
		total += v
	}

	out := make(models.FeatureWeights, len(names))
	for i, name := range names {
		w := 1 / float64(len(names))
		if total > 0 {
			w = values[i] / total
		}
		out[i] = models.FeatureWeight{Feature: name, Weight: w}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Feature < out[j].Feature
	})
	return out, nil
}

// checkInvariants re-verifies what the cleaner guarantees.
func checkInvariants(rec *models.CanonicalRecord) error {
	switch {
	case rec == nil:
		return &DomainError{Detail: "nil record"}
	case !rec.Location.Valid():
		return &DomainError{Detail: "invalid location"}
	case !(rec.AreaSqft > 0) || math.IsInf(rec.AreaSqft, 0):
		return &DomainError{Detail: fmt.Sprintf("area %v is not positive", rec.AreaSqft)}
	case rec.BHK < 1:
		return &DomainError{Detail: fmt.Sprintf("bhk %d below 1", rec.BHK)}
	case rec.Bathrooms < 1:
		return &DomainError{Detail: fmt.Sprintf("bathrooms %d below 1", rec.Bathrooms)}
	case rec.Floor < 0 || rec.TotalFloors < 1 || rec.Floor > rec.TotalFloors:
		return &DomainError{Detail: fmt.Sprintf("floor %d of %d", rec.Floor, rec.TotalFloors)}
	case rec.AgeOfProperty < 0 || math.IsNaN(rec.AgeOfProperty):
		return &DomainError{Detail: fmt.Sprintf("age %v is negative", rec.AgeOfProperty)}
	}
	return nil
}
