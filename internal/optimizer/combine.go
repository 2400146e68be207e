package optimizer

import (
	"context"

	"github.com/rs/zerolog"
)

// CombinationSearch enumerates store subsets up to a bounded size and picks
// the cheapest feasible item assignment. The enumeration visits
// C(n,1)+...+C(n,K) subsets, so K is hard-capped at 3 and the catalog at
// MaxCatalogStores; both bounds are enforced, not assumed.
type CombinationSearch struct {
	costs   *CostModel
	config  *Config
	metrics *MetricsRecorder
	logger  zerolog.Logger
}

// NewCombinationSearch creates a combination search.
func NewCombinationSearch(costs *CostModel, config *Config, metrics *MetricsRecorder, logger zerolog.Logger) *CombinationSearch {
	if metrics == nil {
		metrics = NewMetricsRecorder()
	}
	return &CombinationSearch{
		costs:   costs,
		config:  config,
		metrics: metrics,
		logger:  logger.With().Str("component", "combination_search").Logger(),
	}
}

// storeFacts caches per-store availability and item costs so each subset
// evaluation is a table lookup, not a recomputation.
type storeFacts struct {
	store      Store
	multiplier float64
	itemCosts  []int64 // aligned with the item slice; -1 when unavailable
}

// FindCheapest returns the minimum-cost assignment of items to a subset of
// at most maxStores stores. Each item goes to the cheapest store in the
// subset where it is available; this is a greedy per-item rule, not a joint
// matching, which is exact here because store subtotals are additive and
// independent per item.
//
// Subsets that leave items unfulfilled are rejected while any full-coverage
// subset exists. When none does and allowPartial is set, the best partial
// subset wins (most items covered, then lowest cost); otherwise the result
// reports every item as unfulfilled with an empty store list.
func (s *CombinationSearch) FindCheapest(ctx context.Context, items []Item, stores []Store, avail *AvailabilityIndex, maxStores int, allowPartial bool) (*CombinationResult, error) {
	if maxStores < 1 {
		return nil, ErrInvalidInput{Field: "maxStores", Reason: "must be at least 1"}
	}
	if maxStores > s.config.MaxSubsetSize {
		return nil, ErrInvalidInput{Field: "maxStores", Reason: "exceeds the subset size bound"}
	}
	if len(stores) > s.config.MaxCatalogStores {
		return nil, ErrInvalidInput{Field: "stores", Reason: "catalog too large for combination search"}
	}

	// Fixed processing order regardless of how the caller ordered the catalog.
	sorted := sortStoresByID(stores)

	facts := make([]*storeFacts, len(sorted))
	for i, store := range sorted {
		facts[i] = s.buildFacts(items, store, avail)
	}

	var (
		best        *subsetEval
		bestPartial *subsetEval
		evaluated   int
	)

	indexes := make([]int, 0, maxStores)
	var walk func(start int)
	walk = func(start int) {
		if len(indexes) > 0 {
			eval := s.evaluateSubset(items, facts, indexes)
			evaluated++
			if eval.covered == len(items) {
				if best == nil || eval.totalCost < best.totalCost {
					best = eval
				}
			} else if bestPartial == nil ||
				eval.covered > bestPartial.covered ||
				(eval.covered == bestPartial.covered && eval.totalCost < bestPartial.totalCost) {
				bestPartial = eval
			}
		}
		if len(indexes) == maxStores {
			return
		}
		for i := start; i < len(facts); i++ {
			if ctx.Err() != nil {
				return
			}
			indexes = append(indexes, i)
			walk(i + 1)
			indexes = indexes[:len(indexes)-1]
		}
	}
	walk(0)
	s.metrics.RecordSubsetsEvaluated(evaluated)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chosen := best
	partial := false
	if chosen == nil {
		if !allowPartial || bestPartial == nil {
			return &CombinationResult{
				UnfulfilledItems: append([]Item(nil), items...),
				Partial:          true,
				SubsetsEvaluated: evaluated,
			}, nil
		}
		chosen = bestPartial
		partial = true
		s.logger.Debug().
			Int("covered", chosen.covered).
			Int("requested", len(items)).
			Msg("No full-coverage subset, returning best partial plan")
	}

	return s.buildResult(items, facts, chosen, partial, evaluated), nil
}

func (s *CombinationSearch) buildFacts(items []Item, store Store, avail *AvailabilityIndex) *storeFacts {
	multiplier, ok := avail.PriceMultiplier(store)
	if !ok {
		multiplier = s.costs.Multiplier(store)
	}
	f := &storeFacts{
		store:      store,
		multiplier: multiplier,
		itemCosts:  make([]int64, len(items)),
	}
	for i, item := range items {
		if avail.IsAvailable(item, store) {
			f.itemCosts[i] = s.costs.EstimateItemCost(item, multiplier)
		} else {
			f.itemCosts[i] = -1
		}
	}
	return f
}

type subsetEval struct {
	indexes    []int // positions into the facts slice
	assignment []int // per item: position into indexes, -1 when unfulfilled
	totalCost  int64
	covered    int
}

// evaluateSubset assigns each item to the cheapest member of the subset
// where it is available. Ties keep the lower store index, which is the
// lower store ID after the entry sort.
func (s *CombinationSearch) evaluateSubset(items []Item, facts []*storeFacts, indexes []int) *subsetEval {
	eval := &subsetEval{
		indexes:    append([]int(nil), indexes...),
		assignment: make([]int, len(items)),
	}
	for i := range items {
		eval.assignment[i] = -1
		bestCost := int64(-1)
		for pos, fi := range indexes {
			cost := facts[fi].itemCosts[i]
			if cost < 0 {
				continue
			}
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				eval.assignment[i] = pos
			}
		}
		if eval.assignment[i] >= 0 {
			eval.totalCost += bestCost
			eval.covered++
		}
	}
	return eval
}

func (s *CombinationSearch) buildResult(items []Item, facts []*storeFacts, eval *subsetEval, partial bool, evaluated int) *CombinationResult {
	result := &CombinationResult{
		TotalCost:        eval.totalCost,
		Partial:          partial,
		SubsetsEvaluated: evaluated,
	}

	perStore := make([][]Item, len(eval.indexes))
	for i, item := range items {
		pos := eval.assignment[i]
		if pos < 0 {
			result.UnfulfilledItems = append(result.UnfulfilledItems, item)
			continue
		}
		assigned := item
		assigned.EstimatedCost = facts[eval.indexes[pos]].itemCosts[i]
		perStore[pos] = append(perStore[pos], assigned)
	}

	for pos, fi := range eval.indexes {
		if len(perStore[pos]) == 0 {
			// A subset member that got nothing assigned adds no value or cost.
			continue
		}
		var subtotal int64
		for _, item := range perStore[pos] {
			subtotal += item.EstimatedCost
		}
		result.Stores = append(result.Stores, StoreRecommendation{
			Store:    facts[fi].store,
			Items:    perStore[pos],
			Subtotal: subtotal,
		})
	}
	return result
}
