package optimizer

import (
	"math"
	"strings"
)

// CostModel estimates item prices from category base prices and per-store
// multipliers. Both tables are injected at construction so tests can
// substitute fixtures; money values are pence throughout.
type CostModel struct {
	basePrices  map[string]int64
	multipliers map[string]float64
}

// DefaultBasePrices returns the category base-price table in pence.
func DefaultBasePrices() map[string]int64 {
	return map[string]int64{
		CategoryMeat:      800,
		CategoryDairy:     250,
		CategoryProduce:   200,
		CategoryPantry:    150,
		CategoryFrozen:    300,
		CategoryBakery:    120,
		CategoryBeverages: 200,
		CategoryOther:     250,
	}
}

// DefaultMultipliers returns the known-store price multiplier table,
// keyed by lowercased store name. Unknown stores get 1.0.
func DefaultMultipliers() map[string]float64 {
	return map[string]float64{
		"aldi":        0.85,
		"lidl":        0.80,
		"asda":        0.90,
		"iceland":     0.90,
		"morrisons":   0.95,
		"tesco":       1.00,
		"sainsbury's": 1.10,
		"co-op":       1.15,
		"m&s":         1.25,
		"waitrose":    1.30,
	}
}

// NewCostModel creates a cost model. Nil tables fall back to the defaults.
func NewCostModel(basePrices map[string]int64, multipliers map[string]float64) *CostModel {
	if basePrices == nil {
		basePrices = DefaultBasePrices()
	}
	if multipliers == nil {
		multipliers = DefaultMultipliers()
	}
	return &CostModel{basePrices: basePrices, multipliers: multipliers}
}

// Multiplier returns the price multiplier for a store by name.
// Unknown stores get 1.0.
func (m *CostModel) Multiplier(store Store) float64 {
	if mult, ok := m.multipliers[strings.ToLower(strings.TrimSpace(store.Name))]; ok {
		return mult
	}
	return 1.0
}

// EstimateItemCost estimates the price of one list entry at a store with the
// given multiplier: category base price, scaled by max(1, quantity/2), then
// by the multiplier, rounded to the nearest penny.
func (m *CostModel) EstimateItemCost(item Item, multiplier float64) int64 {
	base, ok := m.basePrices[item.Category]
	if !ok {
		base = m.basePrices[CategoryOther]
	}
	scale := math.Max(1, float64(item.Quantity)/2)
	return int64(math.Round(float64(base) * scale * multiplier))
}

// EstimateSubtotal sums per-item costs for exactly the items assigned to
// the store.
func (m *CostModel) EstimateSubtotal(items []Item, multiplier float64) int64 {
	var total int64
	for _, item := range items {
		total += m.EstimateItemCost(item, multiplier)
	}
	return total
}
