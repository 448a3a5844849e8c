package services

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"house-price-estimator/models"
	"house-price-estimator/utils"
)

// Snapshot pairs a predictor with the location statistics of the same
// training run. Snapshots are immutable; a retrain installs a new one.
type Snapshot struct {
	Predictor *Predictor
	Index     *LocationIndex
	LoadedAt  time.Time

	// results memoises estimates for this model version only, so a reload
	// never serves a stale price.
	results *cache.Cache
}

// NewSnapshot checks that both halves are present. A positive cacheTTL
// enables result caching.
func NewSnapshot(pred *Predictor, idx *LocationIndex, cacheTTL time.Duration) (*Snapshot, error) {
	if !pred.Loaded() {
		return nil, ErrModelNotLoaded
	}
	if idx == nil {
		return nil, fmt.Errorf("snapshot: location index is nil")
	}
	snap := &Snapshot{Predictor: pred, Index: idx, LoadedAt: time.Now()}
	if cacheTTL > 0 {
		snap.results = cache.New(cacheTTL, 2*cacheTTL)
	}
	return snap, nil
}

// EstimationService is the single composition point of cleaning, location
// context and prediction. Errors from either stage reach the caller as is.
type EstimationService struct {
	cleaner *Cleaner
	logger  *utils.Logger
	current atomic.Pointer[Snapshot]
}

// NewEstimationService returns a service with no model installed; Estimate
// reports ErrModelNotLoaded until Reload is called.
func NewEstimationService(cleaner *Cleaner, logger *utils.Logger) *EstimationService {
	return &EstimationService{cleaner: cleaner, logger: logger}
}

// Reload atomically replaces the active predictor and index. In-flight
// estimates finish on the snapshot they started with.
func (s *EstimationService) Reload(snap *Snapshot) {
	if snap == nil {
		s.current.Store(nil)
		s.logger.Warn("[estimator] Model unloaded")
		return
	}
	prev := s.current.Swap(snap)
	if prev != nil {
		s.logger.Info("[estimator] Replaced model %s with %s",
			prev.Predictor.model.Version(), snap.Predictor.model.Version())
		return
	}
	s.logger.Info("[estimator] Loaded model %s (%d locations, %d training rows)",
		snap.Predictor.model.Version(), len(snap.Index.order), snap.Index.Rows())
}

// Loaded reports whether a snapshot is installed.
func (s *EstimationService) Loaded() bool { return s.current.Load() != nil }

// Estimate validates a typed request and prices it.
func (s *EstimationService) Estimate(req *models.EstimateRequest) (*models.PredictionResult, error) {
	rec, err := s.cleaner.CleanRequest(req)
	if err != nil {
		return nil, err
	}
	return s.estimate(rec)
}

// EstimateRaw cleans a free-text record in inference mode and prices it.
func (s *EstimationService) EstimateRaw(raw *models.RawRecord) (*models.PredictionResult, error) {
	rec, err := s.cleaner.Clean(raw, ModeInference)
	if err != nil {
		return nil, err
	}
	return s.estimate(rec)
}

func (s *EstimationService) estimate(rec *models.CanonicalRecord) (*models.PredictionResult, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrModelNotLoaded
	}

	key := cacheKey(rec)
	if snap.results != nil {
		if hit, ok := snap.results.Get(key); ok {
			s.logger.Debug("[estimator] Cache hit %s", key)
			return hit.(*models.PredictionResult).Clone(), nil
		}
	}

	stats, err := snap.Index.Lookup(rec.Location)
	if err != nil {
		return nil, err
	}
	result, err := snap.Predictor.Predict(rec)
	if err != nil {
		return nil, err
	}
	result.LocationContext = stats.Context()

	if snap.results != nil {
		snap.results.SetDefault(key, result.Clone())
	}
	return result, nil
}

// ListLocations returns the market statistics of every location with data,
// ordered by name.
func (s *EstimationService) ListLocations() ([]models.LocationStats, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrModelNotLoaded
	}
	return snap.Index.List(), nil
}

// ModelInfo describes the active model.
func (s *EstimationService) ModelInfo() (*models.ModelInfo, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrModelNotLoaded
	}
	m := snap.Predictor.model
	info := &models.ModelInfo{
		Version:           m.Version(),
		ModelType:         "Gradient Boosting Regressor",
		Stages:            m.Stages(),
		Features:          m.FeatureNames(),
		FeatureImportance: snap.Predictor.FeatureImportance(),
		TrainingRows:      snap.Index.Rows(),
	}
	for _, st := range snap.Index.List() {
		info.Locations = append(info.Locations, st.Name)
	}
	return info, nil
}

// cacheKey is "estimate:" followed by the colon-separated record fields.
func cacheKey(rec *models.CanonicalRecord) string {
	return fmt.Sprintf("estimate:%d:%g:%d:%d:%d:%d:%g:%t:%t",
		int(rec.Location), rec.AreaSqft, rec.BHK, rec.Bathrooms, rec.Floor,
		rec.TotalFloors, rec.AgeOfProperty, rec.Parking, rec.Lift)
}
