package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeboard/shopping-service/internal/optimizer"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()

	InitOptimizer(optimizer.NewShoppingOptimizer(nil, nil, nil, nil, zerolog.Nop()))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/internal/shopping/optimize", OptimizePlan)
	router.POST("/internal/shopping/cheapest", CheapestCombination)
	router.POST("/internal/shopping/route", FastestRoute)
	router.GET("/health", HealthCheck)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testPlanRequest() PlanRequest {
	return PlanRequest{
		Items: []*ListItem{
			{Name: "bread", Quantity: 1},
			{Name: "milk", Quantity: 1},
		},
		Stores: []*StoreInput{
			{ID: "s-aldi", Name: "Aldi"},
			{ID: "s-tesco", Name: "Tesco"},
		},
	}
}

// TestOptimizePlanHappyPath tests the ranked-plan happy path.
func TestOptimizePlanHappyPath(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(t, router, "/internal/shopping/optimize", testPlanRequest())
	assert.Equal(t, http.StatusOK, w.Code)

	var response OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Stores, 1)
	assert.Equal(t, "s-aldi", response.Stores[0].StoreID)
	assert.Equal(t, "Aldi", response.Stores[0].StoreName)
	assert.Len(t, response.Stores[0].Items, 2)
	assert.Equal(t, int64(315), response.TotalEstimatedCost)
	assert.False(t, response.OverBudget)
	assert.Len(t, response.Items, 2)
	assert.Equal(t, "bakery", response.Items[0].Category)
}

// TestOptimizePlanOverBudget tests that an impossible budget returns a
// suggestion instead of an error.
func TestOptimizePlanOverBudget(t *testing.T) {
	router := setupRouter(t)

	req := testPlanRequest()
	req.Constraints = &ConstraintsInput{MaxBudget: 100}

	w := postJSON(t, router, "/internal/shopping/optimize", req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response OptimizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Empty(t, response.Stores)
	assert.True(t, response.OverBudget)
	assert.Len(t, response.UnfulfilledItems, 2)
	require.NotEmpty(t, response.Suggestion)
	assert.Equal(t, "s-aldi", response.Suggestion[0].StoreID)
}

// TestOptimizePlanBadRequest tests request binding validation.
func TestOptimizePlanBadRequest(t *testing.T) {
	router := setupRouter(t)

	cases := []struct {
		name string
		body any
	}{
		{"no items", PlanRequest{Stores: []*StoreInput{{ID: "s1", Name: "Shop"}}}},
		{"zero quantity", PlanRequest{
			Items:  []*ListItem{{Name: "milk", Quantity: 0}},
			Stores: []*StoreInput{{ID: "s1", Name: "Shop"}},
		}},
		{"no stores", PlanRequest{Items: []*ListItem{{Name: "milk", Quantity: 1}}}},
		{"not json", "plain text"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, router, "/internal/shopping/optimize", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

// TestCheapestCombinationHappyPath tests the cheapest-subset endpoint.
func TestCheapestCombinationHappyPath(t *testing.T) {
	router := setupRouter(t)

	w := postJSON(t, router, "/internal/shopping/cheapest", testPlanRequest())
	assert.Equal(t, http.StatusOK, w.Code)

	var response CheapestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Stores, 1)
	assert.Equal(t, "s-aldi", response.Stores[0].StoreID)
	assert.Equal(t, int64(315), response.TotalCost)
	assert.False(t, response.Partial)
	assert.Positive(t, response.SubsetsEvaluated)
}

// TestFastestRouteHappyPath tests the route endpoint.
func TestFastestRouteHappyPath(t *testing.T) {
	router := setupRouter(t)

	req := testPlanRequest()
	req.Inventories = []*InventoryInput{
		{StoreID: "s-aldi", AvailableItems: []string{"bread", "milk"}},
		{StoreID: "s-tesco", AvailableItems: []string{"milk"}},
	}

	w := postJSON(t, router, "/internal/shopping/route", req)
	assert.Equal(t, http.StatusOK, w.Code)

	var response RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	require.Len(t, response.Stops, 2)
	assert.Equal(t, "s-tesco", response.Stops[0].StoreID)
	assert.Equal(t, "s-aldi", response.Stops[1].StoreID)
	assert.Positive(t, response.TotalTimeMin)
	assert.Empty(t, response.UnfulfilledItems)
}

// TestOptimizerNotInitialized tests degraded behaviour before startup wiring.
func TestOptimizerNotInitialized(t *testing.T) {
	router := setupRouter(t)
	InitOptimizer(nil)
	t.Cleanup(func() {
		InitOptimizer(optimizer.NewShoppingOptimizer(nil, nil, nil, nil, zerolog.Nop()))
	})

	w := postJSON(t, router, "/internal/shopping/optimize", testPlanRequest())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// TestHealthCheck tests the health endpoint.
func TestHealthCheck(t *testing.T) {
	router := setupRouter(t)

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "ready", response.Optimizer)
}
