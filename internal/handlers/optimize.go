package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lifeboard/shopping-service/internal/optimizer"
)

// ============================================================================
// Shopping Plan Endpoints
// ============================================================================

// ListItem represents one entry of the shopping list
type ListItem struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Unit     string `json:"unit,omitempty"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
}

// Location represents a geographic location
type Location struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
}

// StoreInput represents one candidate store
type StoreInput struct {
	ID           string            `json:"id" binding:"required"`
	Name         string            `json:"name" binding:"required"`
	Location     *Location         `json:"location,omitempty"`
	PriceLevel   string            `json:"priceLevel,omitempty"`
	Rating       int               `json:"rating,omitempty" binding:"min=0,max=5"`
	OpeningHours string            `json:"openingHours,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// InventoryInput represents the known stock of one store
type InventoryInput struct {
	StoreID         string            `json:"storeId" binding:"required"`
	AvailableItems  []string          `json:"availableItems"`
	PriceMultiplier float64           `json:"priceMultiplier,omitempty"`
	StockLevels     map[string]string `json:"stockLevels,omitempty"`
}

// ConstraintsInput bounds a plan; zero values mean unconstrained
type ConstraintsInput struct {
	MaxBudget        int64    `json:"maxBudget,omitempty" binding:"min=0"`
	MaxTravelTimeMin float64  `json:"maxTravelTimeMin,omitempty" binding:"min=0"`
	PreferredStores  []string `json:"preferredStores,omitempty"`
}

// PlanRequest represents a shopping plan request
type PlanRequest struct {
	Items       []*ListItem       `json:"items" binding:"required,min=1,max=100,dive"`
	Stores      []*StoreInput     `json:"stores" binding:"required,min=1,dive"`
	Inventories []*InventoryInput `json:"inventories,omitempty" binding:"omitempty,dive"`
	Origin      *Location         `json:"origin,omitempty"`
	Constraints *ConstraintsInput `json:"constraints,omitempty"`
}

// ItemResult contains the priced form of one list entry
type ItemResult struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	Category      string `json:"category"`
	Priority      string `json:"priority"`
	EstimatedCost int64  `json:"estimatedCost"`
}

// StoreResult represents one store in a plan with its assigned items
type StoreResult struct {
	StoreID       string        `json:"storeId"`
	StoreName     string        `json:"storeName"`
	Items         []*ItemResult `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	TravelTimeMin float64       `json:"travelTimeMin"`
	PriorityScore int           `json:"priorityScore,omitempty"`
}

// OptimizeResponse represents the ranked-plan result
type OptimizeResponse struct {
	Items              []*ItemResult  `json:"items"`
	Stores             []*StoreResult `json:"stores"`
	TotalEstimatedCost int64          `json:"totalEstimatedCost"`
	EstimatedTimeMin   float64        `json:"estimatedTimeMin"`
	UnfulfilledItems   []*ItemResult  `json:"unfulfilledItems,omitempty"`
	OverBudget         bool           `json:"overBudget"`
	Suggestion         []*StoreResult `json:"suggestion,omitempty"`
}

// CheapestResponse represents the cheapest store-combination result
type CheapestResponse struct {
	Stores           []*StoreResult `json:"stores"`
	TotalCost        int64          `json:"totalCost"`
	UnfulfilledItems []*ItemResult  `json:"unfulfilledItems,omitempty"`
	Partial          bool           `json:"partial"`
	SubsetsEvaluated int            `json:"subsetsEvaluated"`
}

// RouteResponse represents the travel-ordered route result
type RouteResponse struct {
	Stops            []*StoreResult `json:"stops"`
	TotalTimeMin     float64        `json:"totalTimeMin"`
	UnfulfilledItems []*ItemResult  `json:"unfulfilledItems,omitempty"`
}

// Global optimizer instance (initialized by the application)
var shoppingOptimizer *optimizer.ShoppingOptimizer

// InitOptimizer initializes the shopping optimizer instance.
// This should be called during application startup.
func InitOptimizer(o *optimizer.ShoppingOptimizer) {
	shoppingOptimizer = o
}

// OptimizePlan handles ranked shopping plan requests
// POST /internal/shopping/optimize
func OptimizePlan(c *gin.Context) {
	req, ok := bindPlanRequest(c)
	if !ok {
		return
	}

	result, err := shoppingOptimizer.OptimizeShoppingList(c.Request.Context(), req)
	if err != nil {
		writeOptimizerError(c, err)
		return
	}

	c.JSON(http.StatusOK, &OptimizeResponse{
		Items:              toItemResults(result.Items),
		Stores:             toStoreResults(result.Stores, true),
		TotalEstimatedCost: result.TotalEstimatedCost,
		EstimatedTimeMin:   result.EstimatedTimeMin,
		UnfulfilledItems:   toItemResults(result.UnfulfilledItems),
		OverBudget:         result.OverBudget,
		Suggestion:         toStoreResults(result.Suggestion, true),
	})
}

// CheapestCombination handles cheapest store-subset requests
// POST /internal/shopping/cheapest
func CheapestCombination(c *gin.Context) {
	req, ok := bindPlanRequest(c)
	if !ok {
		return
	}

	result, err := shoppingOptimizer.FindCheapestCombination(c.Request.Context(), req)
	if err != nil {
		writeOptimizerError(c, err)
		return
	}

	c.JSON(http.StatusOK, &CheapestResponse{
		Stores:           toStoreResults(result.Stores, false),
		TotalCost:        result.TotalCost,
		UnfulfilledItems: toItemResults(result.UnfulfilledItems),
		Partial:          result.Partial,
		SubsetsEvaluated: result.SubsetsEvaluated,
	})
}

// FastestRoute handles travel-ordered route requests
// POST /internal/shopping/route
func FastestRoute(c *gin.Context) {
	req, ok := bindPlanRequest(c)
	if !ok {
		return
	}

	plan, err := shoppingOptimizer.FindFastestRoute(c.Request.Context(), req)
	if err != nil {
		writeOptimizerError(c, err)
		return
	}

	c.JSON(http.StatusOK, &RouteResponse{
		Stops:            toStoreResults(plan.Stops, false),
		TotalTimeMin:     plan.TotalTimeMin,
		UnfulfilledItems: toItemResults(plan.UnfulfilledItems),
	})
}

func bindPlanRequest(c *gin.Context) (*optimizer.PlanRequest, bool) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if shoppingOptimizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Optimizer not initialized"})
		return nil, false
	}
	return toPlanRequest(&req), true
}

func writeOptimizerError(c *gin.Context, err error) {
	var invalid optimizer.ErrInvalidInput
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
		return
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Optimization timed out"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// toPlanRequest converts the wire request to the internal format
func toPlanRequest(req *PlanRequest) *optimizer.PlanRequest {
	items := make([]optimizer.Item, len(req.Items))
	for i, item := range req.Items {
		items[i] = optimizer.Item{
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
			Category: item.Category,
			Priority: optimizer.Priority(item.Priority),
		}
	}

	stores := make([]optimizer.Store, len(req.Stores))
	for i, store := range req.Stores {
		stores[i] = optimizer.Store{
			ID:           store.ID,
			Name:         store.Name,
			PriceLevel:   optimizer.PriceLevel(store.PriceLevel),
			Rating:       store.Rating,
			OpeningHours: store.OpeningHours,
			Metadata:     store.Metadata,
		}
		if store.Location != nil {
			stores[i].Coordinates = &optimizer.Location{
				Latitude:  store.Location.Latitude,
				Longitude: store.Location.Longitude,
			}
		}
	}

	inventories := make([]optimizer.StoreInventory, len(req.Inventories))
	for i, inv := range req.Inventories {
		levels := make(map[string]optimizer.StockLevel, len(inv.StockLevels))
		for name, level := range inv.StockLevels {
			levels[name] = optimizer.StockLevel(level)
		}
		inventories[i] = optimizer.StoreInventory{
			StoreID:         inv.StoreID,
			AvailableItems:  inv.AvailableItems,
			PriceMultiplier: inv.PriceMultiplier,
			StockLevels:     levels,
		}
	}

	out := &optimizer.PlanRequest{
		Items:       items,
		Stores:      stores,
		Inventories: inventories,
		Constraints: optimizer.Constraints{Weights: optimizer.DefaultWeights()},
	}
	if req.Origin != nil {
		out.Origin = &optimizer.Location{
			Latitude:  req.Origin.Latitude,
			Longitude: req.Origin.Longitude,
		}
	}
	if req.Constraints != nil {
		out.Constraints.MaxBudget = req.Constraints.MaxBudget
		out.Constraints.MaxTravelTimeMin = req.Constraints.MaxTravelTimeMin
		out.Constraints.PreferredStores = req.Constraints.PreferredStores
	}
	return out
}

func toItemResults(items []optimizer.Item) []*ItemResult {
	if len(items) == 0 {
		return nil
	}
	out := make([]*ItemResult, len(items))
	for i, item := range items {
		out[i] = &ItemResult{
			Name:          item.Name,
			Quantity:      item.Quantity,
			Category:      item.Category,
			Priority:      string(item.Priority),
			EstimatedCost: item.EstimatedCost,
		}
	}
	return out
}

func toStoreResults(recs []optimizer.StoreRecommendation, withScore bool) []*StoreResult {
	if len(recs) == 0 {
		return nil
	}
	out := make([]*StoreResult, len(recs))
	for i, rec := range recs {
		out[i] = &StoreResult{
			StoreID:       rec.Store.ID,
			StoreName:     rec.Store.Name,
			Items:         toItemResults(rec.Items),
			Subtotal:      rec.Subtotal,
			TravelTimeMin: rec.TravelTimeMin,
		}
		if withScore {
			out[i].PriorityScore = rec.PriorityScore
		}
	}
	return out
}
