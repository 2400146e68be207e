package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testInventories() []StoreInventory {
	return []StoreInventory{
		{
			StoreID:         "store-1",
			AvailableItems:  []string{"Whole Milk", "White Bread", "Crème Fraîche"},
			PriceMultiplier: 0.9,
			StockLevels:     map[string]StockLevel{"whole milk": StockLow},
		},
		{
			StoreID:        "store-2",
			AvailableItems: []string{"milk"},
		},
	}
}

func TestIsAvailableExactAndFuzzy(t *testing.T) {
	idx := NewAvailabilityIndex(testInventories())
	s1 := Store{ID: "store-1"}
	s2 := Store{ID: "store-2"}

	assert.True(t, idx.IsAvailable(Item{Name: "Whole Milk"}, s1))
	assert.True(t, idx.IsAvailable(Item{Name: "whole milk"}, s1))
	// Substring matches in either direction.
	assert.True(t, idx.IsAvailable(Item{Name: "milk"}, s1))
	assert.True(t, idx.IsAvailable(Item{Name: "Whole Milk"}, s2))
	assert.False(t, idx.IsAvailable(Item{Name: "oat drink"}, s1))
	assert.False(t, idx.IsAvailable(Item{Name: "bread"}, s2))
}

func TestIsAvailableDiacritics(t *testing.T) {
	idx := NewAvailabilityIndex(testInventories())
	assert.True(t, idx.IsAvailable(Item{Name: "creme fraiche"}, Store{ID: "store-1"}))
}

func TestIsAvailableNoInventoryRecord(t *testing.T) {
	idx := NewAvailabilityIndex(testInventories())

	// Stores without an inventory record are assumed to stock everything.
	assert.True(t, idx.IsAvailable(Item{Name: "anything at all"}, Store{ID: "store-99"}))
}

func TestItemsAvailableAt(t *testing.T) {
	idx := NewAvailabilityIndex(testInventories())
	items := []Item{
		{Name: "milk", Quantity: 1},
		{Name: "bread", Quantity: 1},
		{Name: "caviar", Quantity: 1},
	}

	got := idx.ItemsAvailableAt(items, Store{ID: "store-1"})
	assert.Len(t, got, 2)
	assert.Equal(t, "milk", got[0].Name)
	assert.Equal(t, "bread", got[1].Name)

	assert.Len(t, idx.ItemsAvailableAt(items, Store{ID: "store-99"}), 3)
}

func TestPriceMultiplierLookup(t *testing.T) {
	idx := NewAvailabilityIndex(testInventories())

	mult, ok := idx.PriceMultiplier(Store{ID: "store-1"})
	assert.True(t, ok)
	assert.Equal(t, 0.9, mult)

	// Inventory present but no multiplier set.
	_, ok = idx.PriceMultiplier(Store{ID: "store-2"})
	assert.False(t, ok)

	_, ok = idx.PriceMultiplier(Store{ID: "store-99"})
	assert.False(t, ok)
}

func TestStockLevelLookup(t *testing.T) {
	idx := NewAvailabilityIndex(testInventories())

	level, ok := idx.StockLevel(Item{Name: "Whole Milk"}, Store{ID: "store-1"})
	assert.True(t, ok)
	assert.Equal(t, StockLow, level)

	_, ok = idx.StockLevel(Item{Name: "bread"}, Store{ID: "store-1"})
	assert.False(t, ok)

	_, ok = idx.StockLevel(Item{Name: "milk"}, Store{ID: "store-99"})
	assert.False(t, ok)
}
