package optimizer

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearch() *CombinationSearch {
	return NewCombinationSearch(NewCostModel(nil, nil), Defaults(), nil, zerolog.Nop())
}

func basketBreadMilk() []Item {
	return []Item{
		{Name: "bread", Quantity: 1, Category: CategoryBakery},
		{Name: "milk", Quantity: 1, Category: CategoryDairy},
	}
}

func TestFindCheapestSingleStoreWins(t *testing.T) {
	search := newTestSearch()
	stores := []Store{
		{ID: "s-aldi", Name: "Aldi"},
		{ID: "s-tesco", Name: "Tesco"},
	}
	avail := NewAvailabilityIndex(nil)

	result, err := search.FindCheapest(context.Background(), basketBreadMilk(), stores, avail, 3, true)
	require.NoError(t, err)

	// Both items are cheapest at Aldi (bread 102 + milk 213), so the
	// one-store subset beats any split.
	require.Len(t, result.Stores, 1)
	assert.Equal(t, "s-aldi", result.Stores[0].Store.ID)
	assert.Equal(t, int64(315), result.TotalCost)
	assert.Equal(t, int64(315), result.Stores[0].Subtotal)
	assert.False(t, result.Partial)
	assert.Empty(t, result.UnfulfilledItems)
}

func TestFindCheapestSplitsWhenCheaper(t *testing.T) {
	search := newTestSearch()
	stores := []Store{
		{ID: "s-aldi", Name: "Aldi"},
		{ID: "s-tesco", Name: "Tesco"},
	}
	// Aldi stocks only bread, so full coverage needs both stores.
	avail := NewAvailabilityIndex([]StoreInventory{
		{StoreID: "s-aldi", AvailableItems: []string{"bread"}},
		{StoreID: "s-tesco", AvailableItems: []string{"bread", "milk"}},
	})

	result, err := search.FindCheapest(context.Background(), basketBreadMilk(), stores, avail, 3, true)
	require.NoError(t, err)

	require.Len(t, result.Stores, 2)
	assert.Equal(t, "s-aldi", result.Stores[0].Store.ID)
	assert.Equal(t, "bread", result.Stores[0].Items[0].Name)
	assert.Equal(t, "s-tesco", result.Stores[1].Store.ID)
	assert.Equal(t, "milk", result.Stores[1].Items[0].Name)
	// bread at Aldi 102 + milk at Tesco 250.
	assert.Equal(t, int64(352), result.TotalCost)
	assert.False(t, result.Partial)
}

func TestFindCheapestSingleStoreMode(t *testing.T) {
	search := newTestSearch()
	stores := []Store{
		{ID: "s-aldi", Name: "Aldi"},
		{ID: "s-tesco", Name: "Tesco"},
		{ID: "s-waitrose", Name: "Waitrose"},
	}
	items := []Item{{Name: "chicken", Quantity: 1, Category: CategoryMeat}}

	result, err := search.FindCheapest(context.Background(), items, stores, NewAvailabilityIndex(nil), 1, true)
	require.NoError(t, err)

	require.Len(t, result.Stores, 1)
	assert.Equal(t, "s-aldi", result.Stores[0].Store.ID)
	// 800 * 0.85 = 680.
	assert.Equal(t, int64(680), result.TotalCost)
	assert.Equal(t, 3, result.SubsetsEvaluated)
}

func TestFindCheapestTieKeepsLowerStoreID(t *testing.T) {
	search := newTestSearch()
	// Both unknown names, multiplier 1.0 each: a perfect cost tie.
	stores := []Store{
		{ID: "s-b", Name: "Shop B"},
		{ID: "s-a", Name: "Shop A"},
	}
	items := []Item{{Name: "milk", Quantity: 1, Category: CategoryDairy}}

	result, err := search.FindCheapest(context.Background(), items, stores, NewAvailabilityIndex(nil), 2, true)
	require.NoError(t, err)
	require.Len(t, result.Stores, 1)
	assert.Equal(t, "s-a", result.Stores[0].Store.ID)
}

func TestFindCheapestInventoryMultiplierWins(t *testing.T) {
	search := newTestSearch()
	stores := []Store{{ID: "s-tesco", Name: "Tesco"}}
	avail := NewAvailabilityIndex([]StoreInventory{
		{StoreID: "s-tesco", AvailableItems: []string{"milk"}, PriceMultiplier: 0.5},
	})
	items := []Item{{Name: "milk", Quantity: 1, Category: CategoryDairy}}

	result, err := search.FindCheapest(context.Background(), items, stores, avail, 1, true)
	require.NoError(t, err)
	assert.Equal(t, int64(125), result.TotalCost)
}

func TestFindCheapestPartialPlan(t *testing.T) {
	search := newTestSearch()
	stores := []Store{
		{ID: "s-1", Name: "Shop One"},
		{ID: "s-2", Name: "Shop Two"},
	}
	// Nobody stocks milk.
	avail := NewAvailabilityIndex([]StoreInventory{
		{StoreID: "s-1", AvailableItems: []string{"bread"}},
		{StoreID: "s-2", AvailableItems: []string{"bread"}},
	})

	result, err := search.FindCheapest(context.Background(), basketBreadMilk(), stores, avail, 3, true)
	require.NoError(t, err)

	assert.True(t, result.Partial)
	require.Len(t, result.UnfulfilledItems, 1)
	assert.Equal(t, "milk", result.UnfulfilledItems[0].Name)
	require.Len(t, result.Stores, 1)
	assert.Equal(t, "bread", result.Stores[0].Items[0].Name)
}

func TestFindCheapestPartialDisallowed(t *testing.T) {
	search := newTestSearch()
	stores := []Store{{ID: "s-1", Name: "Shop One"}}
	avail := NewAvailabilityIndex([]StoreInventory{
		{StoreID: "s-1", AvailableItems: []string{}},
	})
	items := []Item{{Name: "milk", Quantity: 1, Category: CategoryDairy}}

	result, err := search.FindCheapest(context.Background(), items, stores, avail, 1, false)
	require.NoError(t, err)

	assert.Empty(t, result.Stores)
	assert.True(t, result.Partial)
	require.Len(t, result.UnfulfilledItems, 1)
}

func TestFindCheapestSubsetBounds(t *testing.T) {
	search := newTestSearch()
	stores := []Store{{ID: "s-1", Name: "Shop One"}}
	items := []Item{{Name: "milk", Quantity: 1, Category: CategoryDairy}}

	_, err := search.FindCheapest(context.Background(), items, stores, NewAvailabilityIndex(nil), 0, true)
	assert.Error(t, err)

	_, err = search.FindCheapest(context.Background(), items, stores, NewAvailabilityIndex(nil), 4, true)
	assert.Error(t, err)

	big := make([]Store, 21)
	for i := range big {
		big[i] = Store{ID: fmt.Sprintf("s-%02d", i), Name: "Shop"}
	}
	_, err = search.FindCheapest(context.Background(), items, big, NewAvailabilityIndex(nil), 3, true)
	assert.Error(t, err)
}

func TestFindCheapestSubsetCount(t *testing.T) {
	search := newTestSearch()
	stores := make([]Store, 4)
	for i := range stores {
		stores[i] = Store{ID: fmt.Sprintf("s-%d", i), Name: "Shop"}
	}
	items := []Item{{Name: "milk", Quantity: 1, Category: CategoryDairy}}

	result, err := search.FindCheapest(context.Background(), items, stores, NewAvailabilityIndex(nil), 3, true)
	require.NoError(t, err)

	// C(4,1) + C(4,2) + C(4,3) = 4 + 6 + 4.
	assert.Equal(t, 14, result.SubsetsEvaluated)
}

func TestFindCheapestDeterministicUnderReordering(t *testing.T) {
	search := newTestSearch()
	stores := []Store{
		{ID: "s-aldi", Name: "Aldi"},
		{ID: "s-lidl", Name: "Lidl"},
		{ID: "s-tesco", Name: "Tesco"},
	}
	reversed := []Store{stores[2], stores[0], stores[1]}
	avail := NewAvailabilityIndex([]StoreInventory{
		{StoreID: "s-aldi", AvailableItems: []string{"bread"}},
		{StoreID: "s-lidl", AvailableItems: []string{"milk"}},
		{StoreID: "s-tesco", AvailableItems: []string{"bread", "milk"}},
	})

	first, err := search.FindCheapest(context.Background(), basketBreadMilk(), stores, avail, 3, true)
	require.NoError(t, err)
	second, err := search.FindCheapest(context.Background(), basketBreadMilk(), reversed, avail, 3, true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFindCheapestCancelledContext(t *testing.T) {
	search := newTestSearch()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stores := []Store{{ID: "s-1", Name: "Shop One"}, {ID: "s-2", Name: "Shop Two"}}
	items := []Item{{Name: "milk", Quantity: 1, Category: CategoryDairy}}

	_, err := search.FindCheapest(ctx, items, stores, NewAvailabilityIndex(nil), 2, true)
	assert.ErrorIs(t, err, context.Canceled)
}
