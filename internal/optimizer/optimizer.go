// Package optimizer computes shopping plans: item-to-store assignments,
// ranked store recommendations under budget and travel constraints, and
// travel-ordered routes. It is a pure computation library over caller-owned
// data; it knows nothing about HTTP or persistence and keeps no state
// between calls.
package optimizer

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ShoppingOptimizer composes the classifier, cost model, availability
// index, travel estimator, scorer, combination search and route sequencer
// into the three public operations.
type ShoppingOptimizer struct {
	classifier *ItemClassifier
	costs      *CostModel
	travel     *TravelEstimator
	scorer     *RecommendationScorer
	search     *CombinationSearch
	sequencer  *RouteSequencer
	filter     *ConstraintFilter
	config     *Config
	metrics    *MetricsRecorder
	logger     zerolog.Logger
}

// NewShoppingOptimizer wires the optimizer. locations may be nil; every
// travel estimate then comes from the static fallback tables. costs may be
// nil to use the default price tables.
func NewShoppingOptimizer(locations LocationService, costs *CostModel, config *Config, metrics *MetricsRecorder, logger zerolog.Logger) *ShoppingOptimizer {
	if costs == nil {
		costs = NewCostModel(nil, nil)
	}
	if config == nil {
		config = Defaults()
	}
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	log := logger.With().Str("component", "shopping_optimizer").Logger()
	return &ShoppingOptimizer{
		classifier: NewItemClassifier(),
		costs:      costs,
		travel:     NewTravelEstimator(locations, config, nil, metrics, logger),
		scorer:     NewRecommendationScorer(),
		search:     NewCombinationSearch(costs, config, metrics, logger),
		sequencer:  NewRouteSequencer(),
		filter:     NewConstraintFilter(costs),
		config:     config,
		metrics:    metrics,
		logger:     log,
	}
}

// OptimizeShoppingList ranks stores by priority score, admits them under
// the request's constraints and assigns every item exactly once. The
// returned stores are in descending score order; TotalEstimatedCost never
// exceeds the budget when one is set. When the constraints reject every
// store, Stores is empty, OverBudget is set and the unconstrained plan is
// attached as Suggestion.
func (o *ShoppingOptimizer) OptimizeShoppingList(ctx context.Context, req *PlanRequest) (result *OptimizedShoppingList, err error) {
	start := time.Now()
	defer func() { o.metrics.RecordOperation("optimize", time.Since(start), err) }()

	if err = req.Validate(o.config.MaxBasketItems, 0); err != nil {
		return nil, err
	}
	o.metrics.RecordBasketSize(len(req.Items))
	o.metrics.RecordCandidateStores("optimize", len(req.Stores))

	items := o.classifier.ClassifyItems(req.Items)
	stores := sortStoresByID(req.Stores)
	avail := NewAvailabilityIndex(req.Inventories)

	ranked := o.rankStores(ctx, items, stores, avail, req.Origin, req.Constraints)
	if len(ranked) > o.config.ResultLimit {
		ranked = ranked[:o.config.ResultLimit]
	}

	outcome := o.filter.Apply(ranked, items, avail, req.Constraints)

	result = &OptimizedShoppingList{
		Items:              items,
		Stores:             outcome.admitted,
		TotalEstimatedCost: outcome.totalCost,
		EstimatedTimeMin:   outcome.totalTimeMin,
		UnfulfilledItems:   outcome.unfulfilled,
	}
	result.OverBudget = outcome.budgetRejections > 0 && len(outcome.unfulfilled) > 0

	if len(outcome.admitted) == 0 && outcome.budgetRejections+outcome.timeRejections > 0 {
		// Business-constraint failure is not an error: return the
		// unconstrained best effort so the caller can show what the
		// budget is excluding.
		unconstrained := o.filter.Apply(ranked, items, avail, Constraints{Weights: req.Constraints.Weights})
		result.Suggestion = unconstrained.admitted
	}

	if len(items) > 0 {
		o.metrics.RecordCoverageRatio(float64(len(items)-len(outcome.unfulfilled)) / float64(len(items)))
	}
	return result, nil
}

// rankStores builds one scored recommendation per store. Travel facts from
// the origin are fetched concurrently; each recommendation carries the full
// set of items the store could supply, which the constraint filter later
// narrows to a unique assignment.
func (o *ShoppingOptimizer) rankStores(ctx context.Context, items []Item, stores []Store, avail *AvailabilityIndex, origin *Location, c Constraints) []StoreRecommendation {
	session := o.travel.NewSession()
	facts := session.EstimateAll(ctx, origin, stores)

	recs := make([]StoreRecommendation, 0, len(stores))
	for i, store := range stores {
		available := avail.ItemsAvailableAt(items, store)
		multiplier, ok := avail.PriceMultiplier(store)
		if !ok {
			multiplier = o.costs.Multiplier(store)
		}
		rec := StoreRecommendation{
			Store:         store,
			Items:         available,
			Subtotal:      o.costs.EstimateSubtotal(available, multiplier),
			TravelTimeMin: facts[i].DurationMin,
		}
		rec.PriorityScore = o.scorer.Score(store, available, multiplier, facts[i].DurationMin, c)
		recs = append(recs, rec)
	}
	sortRecommendations(recs)
	return recs
}

// FindCheapestCombination searches store subsets of size 1..3 for the
// cheapest assignment covering the whole list, with no budget ceiling.
// When no subset covers everything, the best partial plan is returned with
// the uncoverable items flagged.
func (o *ShoppingOptimizer) FindCheapestCombination(ctx context.Context, req *PlanRequest) (result *CombinationResult, err error) {
	start := time.Now()
	defer func() { o.metrics.RecordOperation("cheapest", time.Since(start), err) }()

	if err = req.Validate(o.config.MaxBasketItems, o.config.MaxCatalogStores); err != nil {
		return nil, err
	}
	o.metrics.RecordBasketSize(len(req.Items))
	o.metrics.RecordCandidateStores("cheapest", len(req.Stores))

	items := o.classifier.ClassifyItems(req.Items)
	avail := NewAvailabilityIndex(req.Inventories)

	return o.search.FindCheapest(ctx, items, req.Stores, avail, o.config.MaxSubsetSize, true)
}

// FindFastestRoute distributes items to every store that can fulfil them
// (a store may duplicate another's items here), then orders the stops by
// nearest-neighbor over the travel matrix from the origin. Each stop's
// travel time is the leg from the previous stop.
func (o *ShoppingOptimizer) FindFastestRoute(ctx context.Context, req *PlanRequest) (plan *RoutePlan, err error) {
	start := time.Now()
	defer func() { o.metrics.RecordOperation("route", time.Since(start), err) }()

	if err = req.Validate(o.config.MaxBasketItems, 0); err != nil {
		return nil, err
	}
	o.metrics.RecordBasketSize(len(req.Items))
	o.metrics.RecordCandidateStores("route", len(req.Stores))

	items := o.classifier.ClassifyItems(req.Items)
	stores := sortStoresByID(req.Stores)
	avail := NewAvailabilityIndex(req.Inventories)

	// Only stores that can supply something get a stop.
	type stop struct {
		store Store
		items []Item
	}
	stops := make([]stop, 0, len(stores))
	covered := make([]bool, len(items))
	for _, store := range stores {
		available := avail.ItemsAvailableAt(items, store)
		if len(available) == 0 {
			continue
		}
		for i := range items {
			if avail.IsAvailable(items[i], store) {
				covered[i] = true
			}
		}
		stops = append(stops, stop{store: store, items: available})
	}

	plan = &RoutePlan{}
	for i, item := range items {
		if !covered[i] {
			plan.UnfulfilledItems = append(plan.UnfulfilledItems, item)
		}
	}
	if len(stops) == 0 {
		return plan, nil
	}

	routeStores := make([]Store, len(stops))
	for i, st := range stops {
		routeStores[i] = st.store
	}

	session := o.travel.NewSession()
	matrix := session.BuildMatrix(ctx, req.Origin, routeStores)
	order, legs := o.sequencer.Sequence(matrix)

	for pos, idx := range order {
		st := stops[idx]
		multiplier, ok := avail.PriceMultiplier(st.store)
		if !ok {
			multiplier = o.costs.Multiplier(st.store)
		}
		priced := make([]Item, len(st.items))
		copy(priced, st.items)
		for i := range priced {
			priced[i].EstimatedCost = o.costs.EstimateItemCost(priced[i], multiplier)
		}
		var subtotal int64
		for _, item := range priced {
			subtotal += item.EstimatedCost
		}
		plan.Stops = append(plan.Stops, StoreRecommendation{
			Store:         st.store,
			Items:         priced,
			Subtotal:      subtotal,
			TravelTimeMin: legs[pos],
		})
		plan.TotalTimeMin += legs[pos]
	}
	o.metrics.RecordRouteStops(len(plan.Stops))
	return plan, nil
}
