package optimizer

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// originKey labels the shopper's start point in travel facts and matrices.
const originKey = "origin"

// travelCostPerKm approximates fuel cost for fallback legs, in pence.
const travelCostPerKm = 40

// DefaultFallbackDurations returns the static average travel times from the
// origin, in minutes, keyed by lowercased store name. Stores not listed get
// the configured default (20 minutes).
func DefaultFallbackDurations() map[string]float64 {
	return map[string]float64{
		"aldi":        10,
		"lidl":        12,
		"asda":        15,
		"iceland":     12,
		"morrisons":   14,
		"tesco":       8,
		"sainsbury's": 10,
		"co-op":       5,
		"m&s":         18,
		"waitrose":    22,
	}
}

// TravelEstimator produces travel facts between the origin and stores, and
// pairwise matrices among stores. It delegates to the location collaborator
// when one is configured and recovers every failure through static fallback
// tables; travel estimation never returns an error.
type TravelEstimator struct {
	svc       LocationService // nil when no collaborator is configured
	breaker   *CircuitBreaker
	config    *Config
	fallbacks map[string]float64
	metrics   *MetricsRecorder
	logger    zerolog.Logger
}

// NewTravelEstimator creates a travel estimator. svc may be nil, in which
// case every leg comes from the fallback tables. fallbacks may be nil to
// use the defaults.
func NewTravelEstimator(svc LocationService, config *Config, fallbacks map[string]float64, metrics *MetricsRecorder, logger zerolog.Logger) *TravelEstimator {
	if fallbacks == nil {
		fallbacks = DefaultFallbackDurations()
	}
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	return &TravelEstimator{
		svc:       svc,
		breaker:   NewCircuitBreaker("location_service", nil, logger),
		config:    config,
		fallbacks: fallbacks,
		metrics:   metrics,
		logger:    logger.With().Str("component", "travel_estimator").Logger(),
	}
}

// NewSession returns a travel session whose memoized facts live exactly as
// long as one optimization call.
func (e *TravelEstimator) NewSession() *TravelSession {
	return &TravelSession{
		estimator: e,
		cache:     make(map[string]TravelFact),
	}
}

// TravelSession memoizes travel facts per (from,to,method) for a single
// plan. Sessions are not shared across calls.
type TravelSession struct {
	estimator *TravelEstimator
	mu        sync.Mutex
	cache     map[string]TravelFact
}

// FromOrigin estimates travel from the origin to a store. origin may be nil;
// the static table answers in that case.
func (s *TravelSession) FromOrigin(ctx context.Context, origin *Location, store Store) TravelFact {
	return s.estimate(ctx, originKey, origin, store.ID, store.Coordinates, store.Name, s.estimator.config.DefaultTravelMin)
}

// Between estimates travel between two stores. Fallback legs with no table
// entry get the conservative matrix constant rather than the larger
// origin default; route quality degrades, availability does not.
func (s *TravelSession) Between(ctx context.Context, from, to Store) TravelFact {
	return s.estimate(ctx, from.ID, from.Coordinates, to.ID, to.Coordinates, to.Name, s.estimator.config.MatrixFallbackMin)
}

func (s *TravelSession) estimate(ctx context.Context, fromID string, from *Location, toID string, to *Location, toName string, defaultMin float64) TravelFact {
	key := fmt.Sprintf("%s|%s|%s", fromID, toID, TravelDriving)
	s.mu.Lock()
	if fact, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return fact
	}
	s.mu.Unlock()

	fact := s.estimator.lookup(ctx, fromID, from, toID, to, toName, defaultMin)

	s.mu.Lock()
	s.cache[key] = fact
	s.mu.Unlock()
	return fact
}

// lookup performs one collaborator call, degrading to the fallback tables
// on any failure, timeout or open breaker.
func (e *TravelEstimator) lookup(ctx context.Context, fromID string, from *Location, toID string, to *Location, toName string, defaultMin float64) TravelFact {
	if e.svc == nil || from == nil || to == nil {
		e.metrics.RecordTravelFallback()
		return e.fallbackFact(fromID, from, toID, to, toName, defaultMin)
	}
	if !e.breaker.Allow() {
		e.metrics.RecordTravelFallback()
		return e.fallbackFact(fromID, from, toID, to, toName, defaultMin)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.config.TravelLookupTimeout)
	defer cancel()

	fact, err := e.svc.EstimateTravel(lookupCtx, *from, *to, TravelDriving)
	if err != nil {
		e.breaker.RecordFailure(err)
		e.metrics.RecordTravelLookup(true)
		e.metrics.RecordTravelFallback()
		e.logger.Debug().Err(err).Str("from", fromID).Str("to", toID).
			Msg("Travel lookup failed, using fallback")
		return e.fallbackFact(fromID, from, toID, to, toName, defaultMin)
	}

	e.breaker.RecordSuccess()
	e.metrics.RecordTravelLookup(false)
	fact.From = fromID
	fact.To = toID
	fact.Fallback = false
	return fact
}

// fallbackFact builds a leg from static data: duration from the per-store
// average table when the destination is known, otherwise defaultMin;
// distance and cost from straight-line geometry when both coordinates are
// known.
func (e *TravelEstimator) fallbackFact(fromID string, from *Location, toID string, to *Location, toName string, defaultMin float64) TravelFact {
	duration := defaultMin
	if avg, ok := e.fallbacks[strings.ToLower(strings.TrimSpace(toName))]; ok {
		duration = avg
	}

	fact := TravelFact{
		From:        fromID,
		To:          toID,
		DurationMin: duration,
		Fallback:    true,
	}
	if from != nil && to != nil {
		km := HaversineKm(*from, *to)
		fact.DistanceM = int64(math.Round(km * 1000))
		fact.CostPence = int64(math.Round(km * travelCostPerKm))
	}
	return fact
}

// EstimateAll fetches origin-to-store facts for every store concurrently
// through a bounded worker pool. Results are positionally aligned with
// stores; individual failures degrade to fallbacks and never abort the batch.
func (s *TravelSession) EstimateAll(ctx context.Context, origin *Location, stores []Store) []TravelFact {
	facts := make([]TravelFact, len(stores))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.estimator.config.TravelWorkers)
	for i, store := range stores {
		g.Go(func() error {
			// Each worker writes a distinct slot; no locking needed here.
			facts[i] = s.FromOrigin(gctx, origin, store)
			return nil
		})
	}
	// Workers never return errors; estimation degrades instead of failing.
	_ = g.Wait()
	return facts
}

// BuildMatrix returns an (n+1)x(n+1) travel-time matrix in minutes where
// index 0 is the origin and index i+1 is stores[i]. The diagonal is zero.
// Lookups run concurrently through the bounded pool; a failed lookup fills
// its slot from fallback data rather than aborting the build.
func (s *TravelSession) BuildMatrix(ctx context.Context, origin *Location, stores []Store) [][]float64 {
	n := len(stores)
	matrix := make([][]float64, n+1)
	for i := range matrix {
		matrix[i] = make([]float64, n+1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.estimator.config.TravelWorkers)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			fact := s.FromOrigin(gctx, origin, stores[i])
			matrix[0][i+1] = fact.DurationMin
			matrix[i+1][0] = fact.DurationMin
			return nil
		})
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.Go(func() error {
				fact := s.Between(gctx, stores[i], stores[j])
				matrix[i+1][j+1] = fact.DurationMin
				matrix[j+1][i+1] = fact.DurationMin
				return nil
			})
		}
	}
	_ = g.Wait()
	return matrix
}
