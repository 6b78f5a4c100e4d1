package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polica/planogram-service/internal/layout"
	"github.com/polica/planogram-service/internal/optimizer"
)

// newTestRouter builds a router with every planogram route registered.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/internal/planogram/optimize", Optimize)
	router.POST("/internal/planogram/optimize/bundles", OptimizeBundles)
	router.POST("/internal/planogram/optimize/batch", OptimizeBatch)
	router.GET("/internal/planogram/strategies", ListStrategies)
	router.GET("/internal/planogram/templates", ListTemplates)
	router.GET("/internal/planogram/runs", ListRuns)
	router.GET("/internal/planogram/runs/:runId", GetRun)
	router.GET("/health", HealthCheck)
	router.GET("/ready", ReadyCheck)
	return router
}

// testProducts returns a small accessory catalog spanning several categories.
func testProducts() []ProductPayload {
	return []ProductPayload{
		{ProductID: "acc-case-001", ProductName: "Clear Case", Category: "case", Width: 8, Height: 16, Depth: 1.5, AvgWeeklySales: 24, CurrentStock: 120, MinStock: 20, Price: 19.9, Profit: 8.5},
		{ProductID: "acc-cable-001", ProductName: "USB-C Cable 1m", Category: "cable", Width: 9, Height: 12, Depth: 2.5, AvgWeeklySales: 40, CurrentStock: 200, MinStock: 30, Price: 12.9, Profit: 6.1},
		{ProductID: "acc-charger-001", ProductName: "30W Wall Charger", Category: "charger", Width: 10, Height: 14, Depth: 4, AvgWeeklySales: 18, CurrentStock: 80, MinStock: 15, Price: 29.9, Profit: 11},
		{ProductID: "acc-audio-001", ProductName: "Wireless Earbuds", Category: "audio", Width: 12, Height: 18, Depth: 4, AvgWeeklySales: 31, CurrentStock: 60, MinStock: 10, Price: 79, Profit: 30},
	}
}

// postJSON marshals body and performs a POST against the router.
func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
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

// TestOptimizeTemplateHappyPath tests optimization against a built-in template.
func TestOptimizeTemplateHappyPath(t *testing.T) {
	InitEngine(optimizer.NewEngine(optimizer.Defaults()))
	router := newTestRouter()

	w := postJSON(t, router, "/internal/planogram/optimize", OptimizeRequest{
		Template: "express",
		Products: testProducts(),
		Strategy: "sales_velocity",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	// Assert on the wire keys, not the Go struct
	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, true, response["success"])
	assert.Equal(t, "sales_velocity", response["strategy"])
	assert.True(t, strings.HasPrefix(response["runId"].(string), "run_"))
	assert.NotEmpty(t, response["fingerprint"])
	assert.Equal(t, float64(4), response["productsPlaced"])

	shelves := response["shelves"].([]interface{})
	require.Len(t, shelves, 3)

	placed := 0
	for _, raw := range shelves {
		shelf := raw.(map[string]interface{})
		assert.NotEmpty(t, shelf["shelfId"])
		placed += len(shelf["placements"].([]interface{}))
	}
	assert.Equal(t, 4, placed)
}

// TestOptimizeInlineLayout tests optimization against an inline layout document.
func TestOptimizeInlineLayout(t *testing.T) {
	InitEngine(optimizer.NewEngine(optimizer.Defaults()))
	router := newTestRouter()

	doc := &layout.Document{
		StoreInfo: layout.StoreInfo{
			StoreType:            "standard",
			StoreName:            "Test Corner Store",
			TotalAreaSqm:         25,
			AccessoryAreaSqm:     6,
			CustomerFlow:         "medium",
			RestockFrequencyDays: 3,
		},
		Shelves: []layout.ShelfSpec{
			{ShelfID: "low", ShelfName: "Low Shelf", Width: 100, Height: 30, Depth: 40, YPosition: 40, ShelfType: "standard", EyeLevelScore: 0.3},
			{ShelfID: "eye", ShelfName: "Eye Shelf", Width: 100, Height: 30, Depth: 35, YPosition: 135, ShelfType: "premium", EyeLevelScore: 0.95},
		},
	}

	w := postJSON(t, router, "/internal/planogram/optimize", OptimizeRequest{
		Layout:   doc,
		Products: testProducts(),
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response OptimizeResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response.Success)
	assert.Equal(t, "Test Corner Store", response.StoreName)
	assert.Equal(t, "standard", response.StoreType)
	assert.Len(t, response.Shelves, 2)
	assert.Equal(t, len(testProducts()), response.ProductsTotal)
	assert.Greater(t, response.Metrics.TotalFacings, 0)
}

// TestOptimizeValidationErrors tests validation error responses.
func TestOptimizeValidationErrors(t *testing.T) {
	InitEngine(optimizer.NewEngine(optimizer.Defaults()))

	inline := &layout.Document{
		StoreInfo: layout.StoreInfo{StoreName: "Inline"},
		Shelves: []layout.ShelfSpec{
			{ShelfID: "s1", ShelfName: "Shelf", Width: 80, Height: 30, Depth: 40, YPosition: 100},
		},
	}

	tests := []struct {
		name       string
		reqBody    OptimizeRequest
		wantStatus int
	}{
		{
			name: "no products",
			reqBody: OptimizeRequest{
				Template: "express",
				Products: []ProductPayload{},
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "neither template nor layout",
			reqBody: OptimizeRequest{
				Products: testProducts(),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "both template and layout",
			reqBody: OptimizeRequest{
				Template: "express",
				Layout:   inline,
				Products: testProducts(),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown template",
			reqBody: OptimizeRequest{
				Template: "megastore",
				Products: testProducts(),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown strategy",
			reqBody: OptimizeRequest{
				Template: "express",
				Products: testProducts(),
				Strategy: "teleport",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown facing mode",
			reqBody: OptimizeRequest{
				Template:   "express",
				Products:   testProducts(),
				FacingMode: "sideways",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "product with zero width",
			reqBody: OptimizeRequest{
				Template: "express",
				Products: []ProductPayload{
					{ProductID: "acc-bad-001", ProductName: "Flat Thing", Width: 0, Height: 10, Depth: 2},
				},
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter()
			w := postJSON(t, router, "/internal/planogram/optimize", tt.reqBody)
			assert.Equal(t, tt.wantStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.NotEmpty(t, response["error"])
		})
	}
}

// TestOptimizeEngineUnavailable tests 503 when the engine is not initialized.
func TestOptimizeEngineUnavailable(t *testing.T) {
	InitEngine(nil)
	router := newTestRouter()

	w := postJSON(t, router, "/internal/planogram/optimize", OptimizeRequest{
		Template: "express",
		Products: testProducts(),
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// TestOptimizeBundlesHappyPath tests the bundle-aware optimization endpoint.
func TestOptimizeBundlesHappyPath(t *testing.T) {
	InitEngine(optimizer.NewEngine(optimizer.Defaults()))
	router := newTestRouter()

	w := postJSON(t, router, "/internal/planogram/optimize/bundles", OptimizeBundlesRequest{
		Template: "standard",
		Products: testProducts(),
		Bundles: []BundleGroup{
			{ProductIDs: []string{"acc-case-001", "acc-cable-001"}, Frequency: 12},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response OptimizeResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, response.Success)
	require.NotNil(t, response.Bundles)
	assert.Equal(t, 1, response.Bundles.Total)
	assert.Equal(t, 2, response.Bundles.ProductsInBundles)
}

// TestOptimizeBatchHappyPath tests the concurrent batch endpoint.
func TestOptimizeBatchHappyPath(t *testing.T) {
	InitEngine(optimizer.NewEngine(optimizer.Defaults()))
	router := newTestRouter()

	w := postJSON(t, router, "/internal/planogram/optimize/batch", BatchRequest{
		Jobs: []OptimizeRequest{
			{Template: "express", Products: testProducts()},
			{Template: "standard", Products: testProducts(), Strategy: "category_grouped"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response BatchResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(response.BatchID, "bat_"))
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, 2, response.Succeeded)
	assert.Equal(t, 0, response.Failed)

	require.Len(t, response.Items, 2)
	for i, item := range response.Items {
		assert.Equal(t, i, item.Index)
		require.NotNil(t, item.Result)
		assert.True(t, item.Result.Success)
		assert.Empty(t, item.Error)
	}
	assert.NotEqual(t, response.Items[0].Result.RunID, response.Items[1].Result.RunID)
}

// TestOptimizeBatchJobIndependence tests that a failing job does not fail the batch.
func TestOptimizeBatchJobIndependence(t *testing.T) {
	InitEngine(optimizer.NewEngine(optimizer.Defaults()))
	router := newTestRouter()

	w := postJSON(t, router, "/internal/planogram/optimize/batch", BatchRequest{
		Jobs: []OptimizeRequest{
			{Template: "express", Products: testProducts()},
			{Template: "express", Products: testProducts(), Strategy: "teleport"},
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response BatchResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, 1, response.Succeeded)
	assert.Equal(t, 1, response.Failed)
	require.Len(t, response.Items, 2)
	assert.NotNil(t, response.Items[0].Result)
	assert.Nil(t, response.Items[1].Result)
	assert.Contains(t, response.Items[1].Error, "strategy")
}

// TestListStrategiesEndpoint tests the strategy catalog endpoint.
func TestListStrategiesEndpoint(t *testing.T) {
	router := newTestRouter()

	req, err := http.NewRequest("GET", "/internal/planogram/strategies", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	strategies := response["strategies"].([]interface{})
	assert.Len(t, strategies, 5)
	assert.Equal(t, float64(5), response["count"])

	first := strategies[0].(map[string]interface{})
	assert.NotEmpty(t, first["name"])
	assert.NotEmpty(t, first["description"])
}

// TestListTemplatesEndpoint tests the template catalog endpoint.
func TestListTemplatesEndpoint(t *testing.T) {
	router := newTestRouter()

	req, err := http.NewRequest("GET", "/internal/planogram/templates", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	templates := response["templates"].([]interface{})
	require.Len(t, templates, 3)

	names := make([]string, 0, len(templates))
	for _, raw := range templates {
		names = append(names, raw.(map[string]interface{})["name"].(string))
	}
	assert.ElementsMatch(t, []string{"flagship", "standard", "express"}, names)
}

// TestRunsHistoryDisabled tests 503 when no database is configured.
func TestRunsHistoryDisabled(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{
		"/internal/planogram/runs",
		"/internal/planogram/runs/run_0000000000000000000000001",
	} {
		req, err := http.NewRequest("GET", path, nil)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Contains(t, response["error"], "Run history disabled")
	}
}

// TestHealthEndpoint tests the health endpoint without a database.
func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	req, err := http.NewRequest("GET", "/health", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "not configured", response.Database)
}

// TestReadyEndpoint tests readiness with and without an initialized engine.
func TestReadyEndpoint(t *testing.T) {
	router := newTestRouter()

	InitEngine(nil)
	req, err := http.NewRequest("GET", "/ready", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	InitEngine(optimizer.NewEngine(optimizer.Defaults()))
	req, err = http.NewRequest("GET", "/ready", nil)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
