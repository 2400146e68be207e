package optimizer

// filterOutcome is the result of applying budget/time constraints to a
// ranked recommendation list.
type filterOutcome struct {
	admitted         []StoreRecommendation
	unfulfilled      []Item
	totalCost        int64
	totalTimeMin     float64
	budgetRejections int
	timeRejections   int
}

// ConstraintFilter admits stores from a ranked list under the budget and
// travel-time ceilings using a running-total greedy rule. Items are
// assigned to the first admitted store that stocks them, so each item lands
// exactly once; a store whose remaining items would blow the budget is
// skipped, not truncated.
type ConstraintFilter struct {
	costs *CostModel
}

// NewConstraintFilter creates a constraint filter.
func NewConstraintFilter(costs *CostModel) *ConstraintFilter {
	return &ConstraintFilter{costs: costs}
}

// Apply walks the ranked recommendations in order. For each store it takes
// the still-unassigned items the store can supply, prices them, and admits
// the store when the running totals stay inside the constraints. Zero-valued
// constraints admit everything.
func (f *ConstraintFilter) Apply(ranked []StoreRecommendation, items []Item, avail *AvailabilityIndex, c Constraints) filterOutcome {
	outcome := filterOutcome{}
	assigned := make([]bool, len(items))

	for _, rec := range ranked {
		take := make([]Item, 0, len(items))
		takeIdx := make([]int, 0, len(items))
		for i, item := range items {
			if assigned[i] {
				continue
			}
			if avail.IsAvailable(item, rec.Store) {
				take = append(take, item)
				takeIdx = append(takeIdx, i)
			}
		}
		if len(take) == 0 {
			continue
		}

		multiplier := rec.multiplier(f.costs, avail)
		for i := range take {
			take[i].EstimatedCost = f.costs.EstimateItemCost(take[i], multiplier)
		}
		var subtotal int64
		for _, item := range take {
			subtotal += item.EstimatedCost
		}

		if c.MaxBudget > 0 && outcome.totalCost+subtotal > c.MaxBudget {
			outcome.budgetRejections++
			continue
		}
		if c.MaxTravelTimeMin > 0 && outcome.totalTimeMin+rec.TravelTimeMin > c.MaxTravelTimeMin {
			outcome.timeRejections++
			continue
		}

		admitted := rec
		admitted.Items = take
		admitted.Subtotal = subtotal
		outcome.admitted = append(outcome.admitted, admitted)
		outcome.totalCost += subtotal
		outcome.totalTimeMin += rec.TravelTimeMin
		for _, i := range takeIdx {
			assigned[i] = true
		}
	}

	for i, item := range items {
		if !assigned[i] {
			outcome.unfulfilled = append(outcome.unfulfilled, item)
		}
	}
	return outcome
}

// multiplier resolves the store's price multiplier: the inventory record
// wins when it specifies one, otherwise the cost model's name table.
func (r StoreRecommendation) multiplier(costs *CostModel, avail *AvailabilityIndex) float64 {
	if mult, ok := avail.PriceMultiplier(r.Store); ok {
		return mult
	}
	return costs.Multiplier(r.Store)
}
