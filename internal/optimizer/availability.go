package optimizer

import "github.com/lifeboard/shopping-service/internal/matching"

// AvailabilityIndex answers "can this store supply this item" for one
// optimization call. It is the sole fulfilment gate used by both cost
// estimation and combination search.
//
// A store without an inventory record is treated as stocking everything;
// that optimism is deliberate, so an incomplete catalog degrades to a
// best-guess plan instead of an empty one.
type AvailabilityIndex struct {
	byStore map[string]*storeStock
}

type storeStock struct {
	names      []string // normalized stocked item names
	multiplier float64  // 0 when the record did not specify one
	levels     map[string]StockLevel
}

// NewAvailabilityIndex builds the index from the caller-supplied inventory
// records. Built once per optimization call.
func NewAvailabilityIndex(inventories []StoreInventory) *AvailabilityIndex {
	ix := &AvailabilityIndex{byStore: make(map[string]*storeStock, len(inventories))}
	for _, inv := range inventories {
		stock := &storeStock{
			names:      make([]string, 0, len(inv.AvailableItems)),
			multiplier: inv.PriceMultiplier,
			levels:     make(map[string]StockLevel, len(inv.StockLevels)),
		}
		for _, name := range inv.AvailableItems {
			stock.names = append(stock.names, matching.NormalizeName(name))
		}
		for name, level := range inv.StockLevels {
			stock.levels[matching.NormalizeName(name)] = level
		}
		ix.byStore[inv.StoreID] = stock
	}
	return ix
}

// IsAvailable reports whether the store can supply the item. True when the
// store has no inventory record, or when the item name matches an inventory
// entry exactly or as a substring in either direction, case-insensitively.
func (ix *AvailabilityIndex) IsAvailable(item Item, store Store) bool {
	stock, ok := ix.byStore[store.ID]
	if !ok {
		return true
	}
	name := matching.NormalizeName(item.Name)
	for _, stocked := range stock.names {
		if name == stocked || matching.FuzzyContains(name, stocked) {
			return true
		}
	}
	return false
}

// ItemsAvailableAt filters items to those the store can supply.
func (ix *AvailabilityIndex) ItemsAvailableAt(items []Item, store Store) []Item {
	available := make([]Item, 0, len(items))
	for _, item := range items {
		if ix.IsAvailable(item, store) {
			available = append(available, item)
		}
	}
	return available
}

// PriceMultiplier returns the inventory-specified multiplier for a store,
// or false when the record is absent or did not set one.
func (ix *AvailabilityIndex) PriceMultiplier(store Store) (float64, bool) {
	stock, ok := ix.byStore[store.ID]
	if !ok || stock.multiplier <= 0 {
		return 0, false
	}
	return stock.multiplier, true
}

// StockLevel returns the recorded stock level of an item at a store, or
// false when unknown.
func (ix *AvailabilityIndex) StockLevel(item Item, store Store) (StockLevel, bool) {
	stock, ok := ix.byStore[store.ID]
	if !ok {
		return "", false
	}
	level, ok := stock.levels[matching.NormalizeName(item.Name)]
	return level, ok
}
