package optimizer

import "fmt"

// Priority marks how important an item is to the shopper.
type Priority string

const (
	PriorityEssential Priority = "essential"
	PriorityOptional  Priority = "optional"
)

// PriceLevel is the caller-supplied price tier of a store.
type PriceLevel string

const (
	PriceLevelBudget  PriceLevel = "budget"
	PriceLevelMid     PriceLevel = "mid"
	PriceLevelPremium PriceLevel = "premium"
)

// StockLevel describes how well stocked an item is at a store.
type StockLevel string

const (
	StockHigh   StockLevel = "high"
	StockMedium StockLevel = "medium"
	StockLow    StockLevel = "low"
)

// Item is a single entry on the shopping list. Category is derived by the
// classifier when absent; EstimatedCost is filled in during planning.
type Item struct {
	Name          string   // Item name as entered by the user
	Quantity      int      // Requested quantity (must be > 0)
	Unit          string   // Free-form unit ("loaf", "pint", "kg")
	Category      string   // Category tag, derived if empty
	Priority      Priority // essential or optional
	EstimatedCost int64    // Estimated cost in pence at the assigned store
}

// Store is read-only reference data describing a candidate store.
// The optimizer never mutates it.
type Store struct {
	ID           string            // Stable store identifier
	Name         string            // Display name ("Aldi", "Tesco")
	Coordinates  *Location         // Optional geographic position
	PriceLevel   PriceLevel        // budget, mid or premium
	Rating       int               // 1-5, 0 when unknown
	OpeningHours string            // Free-form opening hours
	Metadata     map[string]string // Open-ended side channel for the caller
}

// StoreInventory is the per-store stocked-item record supplied by the caller.
// A store with no inventory record is treated as stocking everything.
type StoreInventory struct {
	StoreID         string                // Store this record belongs to
	AvailableItems  []string              // Stocked item names (fuzzy matched)
	PriceMultiplier float64               // Store-specific price scalar, 0 = use cost model table
	StockLevels     map[string]StockLevel // Optional per-item stock level
}

// TravelFact describes a single leg between two points.
// Computed on demand and memoized only for the duration of one plan.
type TravelFact struct {
	From        string  // Origin label ("origin" or a store ID)
	To          string  // Destination store ID
	DistanceM   int64   // Distance in metres (0 when unknown)
	DurationMin float64 // Travel time in minutes
	CostPence   int64   // Estimated travel cost in pence
	Fallback    bool    // True when the static fallback table supplied the leg
}

// ObjectiveWeights selects which objectives participate in recommendation
// scoring. A weight of zero disables the price or time term; preference,
// availability and rating terms are always applied.
type ObjectiveWeights struct {
	Price        float64
	Time         float64
	Preference   float64
	Availability float64
}

// DefaultWeights enables every objective.
func DefaultWeights() ObjectiveWeights {
	return ObjectiveWeights{Price: 1, Time: 1, Preference: 1, Availability: 1}
}

// Constraints bound a plan. Zero values mean "unconstrained" for that
// dimension.
type Constraints struct {
	MaxBudget        int64            // Maximum total cost in pence, 0 = no limit
	MaxTravelTimeMin float64          // Maximum combined travel time, 0 = no limit
	PreferredStores  []string         // Store IDs the user favours
	Weights          ObjectiveWeights // Objective gating for the scorer
}

func (c Constraints) prefers(storeID string) bool {
	for _, id := range c.PreferredStores {
		if id == storeID {
			return true
		}
	}
	return false
}

// StoreRecommendation is one store in a plan together with the items
// assigned to it.
type StoreRecommendation struct {
	Store         Store
	Items         []Item
	Subtotal      int64   // Sum of item costs at this store, in pence
	TravelTimeMin float64 // Travel time for the leg reaching this store
	PriorityScore int     // Scorer output, higher is better
}

// OptimizedShoppingList is the result of OptimizeShoppingList.
// Stores are ordered by descending priority score. Every input item appears
// exactly once across Stores or in UnfulfilledItems.
type OptimizedShoppingList struct {
	Items              []Item                // Classified input items
	Stores             []StoreRecommendation // Admitted stores, priority order
	TotalEstimatedCost int64                 // Always equals the sum of subtotals
	EstimatedTimeMin   float64               // Combined travel time of admitted stores
	UnfulfilledItems   []Item                // Items no admitted store could supply
	OverBudget         bool                  // True when the budget rejected fulfilment
	Suggestion         []StoreRecommendation // Unconstrained best effort when nothing was admitted
}

// CombinationResult is the result of FindCheapestCombination.
type CombinationResult struct {
	Stores           []StoreRecommendation // Chosen subset, store ID order
	TotalCost        int64                 // Sum of subtotals
	UnfulfilledItems []Item                // Items no store in the chosen subset could supply
	Partial          bool                  // True when no subset covered every item
	SubsetsEvaluated int                   // Number of subsets examined
}

// RoutePlan is the result of FindFastestRoute. Stops are in visit order;
// each stop's TravelTimeMin is the leg from the previous stop. Items may be
// served by more than one stop.
type RoutePlan struct {
	Stops            []StoreRecommendation
	TotalTimeMin     float64
	UnfulfilledItems []Item
}

// PlanRequest carries the inputs of one optimization call. All referenced
// data is caller-owned and is never mutated.
type PlanRequest struct {
	Items       []Item
	Stores      []Store
	Inventories []StoreInventory
	Origin      *Location // Start point for travel estimates, may be nil
	Constraints Constraints
}

// Validate checks the structural validity of the request. Business
// constraints (budget, travel time) never cause validation errors.
func (r *PlanRequest) Validate(maxItems, maxStores int) error {
	if len(r.Items) == 0 {
		return ErrInvalidInput{Field: "items", Reason: "must have at least one item"}
	}
	if maxItems > 0 && len(r.Items) > maxItems {
		return ErrInvalidInput{Field: "items", Reason: fmt.Sprintf("exceeds maximum of %d", maxItems)}
	}
	for i, item := range r.Items {
		if item.Name == "" {
			return ErrInvalidInput{Field: "items", Reason: fmt.Sprintf("item at index %d has empty name", i)}
		}
		if item.Quantity <= 0 {
			return ErrInvalidInput{Field: "items", Reason: fmt.Sprintf("item at index %d has non-positive quantity", i)}
		}
	}
	if len(r.Stores) == 0 {
		return ErrInvalidInput{Field: "stores", Reason: "must have at least one store"}
	}
	if maxStores > 0 && len(r.Stores) > maxStores {
		return ErrInvalidInput{Field: "stores", Reason: fmt.Sprintf("exceeds maximum of %d", maxStores)}
	}
	for i, store := range r.Stores {
		if store.ID == "" {
			return ErrInvalidInput{Field: "stores", Reason: fmt.Sprintf("store at index %d has empty id", i)}
		}
	}
	return nil
}

// ErrInvalidInput is the only error class surfaced to callers; everything
// else degrades to fallback behaviour.
type ErrInvalidInput struct {
	Field  string
	Reason string
}

func (e ErrInvalidInput) Error() string {
	return e.Field + ": " + e.Reason
}
