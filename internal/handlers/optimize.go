package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/polica/planogram-service/internal/database"
	"github.com/polica/planogram-service/internal/layout"
	"github.com/polica/planogram-service/internal/optimizer"
	"github.com/polica/planogram-service/internal/pkg/runid"
	"github.com/polica/planogram-service/internal/planogram"
)

var (
	errNoLayout    = errors.New("either template or layout is required")
	errBothLayouts = errors.New("template and layout are mutually exclusive")
)

// ProductPayload represents one catalog entry submitted inline with a request
type ProductPayload struct {
	ProductID        string  `json:"productId" binding:"required" jsonschema:"required"`
	ProductName      string  `json:"productName" binding:"required" jsonschema:"required"`
	Series           string  `json:"series,omitempty"`
	Category         string  `json:"category,omitempty"`
	Subcategory      string  `json:"subcategory,omitempty"`
	Brand            string  `json:"brand,omitempty"`
	Color            string  `json:"color,omitempty"`
	Width            float64 `json:"width" binding:"required,gt=0" jsonschema:"required"`
	Height           float64 `json:"height" binding:"required,gt=0" jsonschema:"required"`
	Depth            float64 `json:"depth" binding:"required,gt=0" jsonschema:"required"`
	Weight           float64 `json:"weight,omitempty"`
	QtySoldLastWeek  int     `json:"qtySoldLastWeek,omitempty"`
	QtySoldLastMonth int     `json:"qtySoldLastMonth,omitempty"`
	AvgWeeklySales   float64 `json:"avgWeeklySales,omitempty"`
	TotalQty         int     `json:"totalQty,omitempty"`
	CurrentStock     int     `json:"currentStock,omitempty"`
	MinStock         int     `json:"minStock,omitempty"`
	MinFacings       int     `json:"minFacings,omitempty"`
	MaxFacings       int     `json:"maxFacings,omitempty"`
	Price            float64 `json:"price,omitempty"`
	Profit           float64 `json:"profit,omitempty"`
	LaunchDate       string  `json:"launchDate,omitempty"`
	Status           string  `json:"status,omitempty" jsonschema:"enum=active,enum=new,enum=discontinued,enum=seasonal"`
	AttachRate       float64 `json:"attachRate,omitempty"`
	BundleFrequency  int     `json:"bundleFrequency,omitempty"`
}

// OptimizeRequest represents a planogram optimization request. The store is
// given either as a built-in template name or as a full layout document, the
// same document the CLI reads from disk.
type OptimizeRequest struct {
	Template   string           `json:"template,omitempty" jsonschema:"enum=flagship,enum=standard,enum=express"`
	Layout     *layout.Document `json:"layout,omitempty"`
	Products   []ProductPayload `json:"products" binding:"required,min=1" jsonschema:"required"`
	Strategy   string           `json:"strategy,omitempty" jsonschema:"enum=sales_velocity,enum=category_grouped,enum=value_density,enum=profit_efficiency,enum=balanced"`
	FacingMode string           `json:"facingMode,omitempty" jsonschema:"enum=sales_based,enum=stock_based,enum=balanced"`
}

// BundleGroup names products observed to sell together
type BundleGroup struct {
	ProductIDs []string `json:"productIds" binding:"required,min=1" jsonschema:"required"`
	Frequency  int      `json:"frequency" binding:"min=0" jsonschema:"minimum=0"`
}

// OptimizeBundlesRequest represents a bundle-aware optimization request
type OptimizeBundlesRequest struct {
	Template   string           `json:"template,omitempty" jsonschema:"enum=flagship,enum=standard,enum=express"`
	Layout     *layout.Document `json:"layout,omitempty"`
	Products   []ProductPayload `json:"products" binding:"required,min=1" jsonschema:"required"`
	Bundles    []BundleGroup    `json:"bundles" binding:"required,min=1" jsonschema:"required"`
	FacingMode string           `json:"facingMode,omitempty" jsonschema:"enum=sales_based,enum=stock_based,enum=balanced"`
}

// PlacementResult represents one product span on a shelf
type PlacementResult struct {
	ProductID   string  `json:"productId" jsonschema:"required"`
	ProductName string  `json:"productName" jsonschema:"required"`
	Category    string  `json:"category"`
	Facings     int     `json:"facings" jsonschema:"required"`
	XStart      float64 `json:"xStart" jsonschema:"required"`
	XEnd        float64 `json:"xEnd" jsonschema:"required"`
}

// ShelfResult represents one populated shelf in the produced layout
type ShelfResult struct {
	ShelfID     string            `json:"shelfId" jsonschema:"required"`
	ShelfName   string            `json:"shelfName" jsonschema:"required"`
	ShelfType   string            `json:"shelfType"`
	EyeLevel    bool              `json:"eyeLevel"`
	Utilization float64           `json:"utilization" jsonschema:"required"`
	Placements  []PlacementResult `json:"placements"`
}

// RejectedResult represents one product the run could not place
type RejectedResult struct {
	ProductID   string `json:"productId" jsonschema:"required"`
	ProductName string `json:"productName" jsonschema:"required"`
	Reason      string `json:"reason" jsonschema:"required"`
}

// MetricsResult represents the aggregates over the produced layout
type MetricsResult struct {
	TotalShelves         int            `json:"totalShelves"`
	EyeLevelShelves      int            `json:"eyeLevelShelves"`
	PremiumShelves       int            `json:"premiumShelves"`
	AverageUtilization   float64        `json:"averageUtilization" jsonschema:"required"`
	TotalProducts        int            `json:"totalProducts"`
	TotalFacings         int            `json:"totalFacings"`
	ProfitDensity        float64        `json:"profitDensity"`
	QuantityDensity      float64        `json:"quantityDensity"`
	CategoryDistribution map[string]int `json:"categoryDistribution,omitempty"`
}

// BundleStatsResult summarizes bundle handling within a bundle run
type BundleStatsResult struct {
	Total             int     `json:"total"`
	Placed            int     `json:"placed"`
	Split             int     `json:"split"`
	ProductsInBundles int     `json:"productsInBundles"`
	Coverage          float64 `json:"coverage"`
	AverageSize       float64 `json:"averageSize"`
}

// ReorderLine represents one line of the restock report
type ReorderLine struct {
	ProductID        string  `json:"productId" jsonschema:"required"`
	ProductName      string  `json:"productName" jsonschema:"required"`
	CurrentStock     int     `json:"currentStock"`
	DaysOfStock      float64 `json:"daysOfStock"`
	RecommendedOrder int     `json:"recommendedOrder"`
	Priority         string  `json:"priority" jsonschema:"enum=urgent,enum=normal"`
}

// OptimizeResponse represents the outcome of one optimization run
type OptimizeResponse struct {
	RunID          string             `json:"runId" jsonschema:"required"`
	Success        bool               `json:"success" jsonschema:"required"`
	Strategy       string             `json:"strategy" jsonschema:"required"`
	StoreName      string             `json:"storeName" jsonschema:"required"`
	StoreType      string             `json:"storeType"`
	ProductsTotal  int                `json:"productsTotal" jsonschema:"required"`
	ProductsPlaced int                `json:"productsPlaced" jsonschema:"required"`
	Rejected       []RejectedResult   `json:"rejected,omitempty"`
	Shelves        []ShelfResult      `json:"shelves" jsonschema:"required"`
	Metrics        MetricsResult      `json:"metrics"`
	Bundles        *BundleStatsResult `json:"bundles,omitempty"`
	Reorder        []ReorderLine      `json:"reorder,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
	Fingerprint    string             `json:"fingerprint"`
	DurationMs     int64              `json:"durationMs"`
}

// Global engine instance (initialized by the application)
var engine *optimizer.Engine

// InitEngine initializes the allocation engine used by the handlers.
// This should be called during application startup.
func InitEngine(e *optimizer.Engine) {
	engine = e
}

// GetEngine returns the allocation engine instance
func GetEngine() *optimizer.Engine {
	return engine
}

// Optimize runs a shelf-space allocation for one store
// @Summary Optimize a planogram
// @Description Places the submitted products on the store's shelves using the selected strategy and returns the produced layout
// @Tags planogram
// @Accept json
// @Produce json
// @Param request body OptimizeRequest true "Optimization request"
// @Success 200 {object} OptimizeResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 503 {object} map[string]string "Engine not initialized"
// @Router /internal/planogram/optimize [post]
func Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Engine not initialized"})
		return
	}

	store, err := buildStore(req.Template, req.Layout)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := buildProducts(req.Products)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	optimizeReq := &optimizer.OptimizeRequest{
		Store:      store,
		Products:   products,
		Strategy:   optimizer.Strategy(req.Strategy),
		FacingMode: planogram.FacingMode(req.FacingMode),
	}

	result, err := engine.Optimize(c.Request.Context(), optimizeReq)
	if err != nil {
		status := http.StatusInternalServerError
		if isRequestError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	response := buildResponse(runid.New(), store, products, result)
	recordRun(c, optimizeReq, result, response)
	c.JSON(http.StatusOK, response)
}

// OptimizeBundles runs a bundle-aware allocation for one store
// @Summary Optimize a planogram with bundles
// @Description Places the submitted products keeping co-purchased bundles adjacent, splitting across neighboring shelves when needed
// @Tags planogram
// @Accept json
// @Produce json
// @Param request body OptimizeBundlesRequest true "Bundle optimization request"
// @Success 200 {object} OptimizeResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 503 {object} map[string]string "Engine not initialized"
// @Router /internal/planogram/optimize/bundles [post]
func OptimizeBundles(c *gin.Context) {
	var req OptimizeBundlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Engine not initialized"})
		return
	}

	store, err := buildStore(req.Template, req.Layout)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := buildProducts(req.Products)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bundles := make([]optimizer.BundleInput, len(req.Bundles))
	for i, b := range req.Bundles {
		bundles[i] = optimizer.BundleInput{
			ProductIDs: b.ProductIDs,
			Frequency:  b.Frequency,
		}
	}

	bundleReq := &optimizer.BundleRequest{
		Store:      store,
		Products:   products,
		Bundles:    bundles,
		FacingMode: planogram.FacingMode(req.FacingMode),
	}

	result, err := engine.OptimizeBundles(c.Request.Context(), bundleReq)
	if err != nil {
		status := http.StatusInternalServerError
		if isRequestError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	response := buildResponse(runid.New(), store, products, result)
	base := &optimizer.OptimizeRequest{Store: store, Products: products, FacingMode: bundleReq.FacingMode}
	recordRun(c, base, result, response)
	c.JSON(http.StatusOK, response)
}

// buildStore resolves the request's store: exactly one of template name or
// inline layout document must be present.
func buildStore(template string, doc *layout.Document) (*planogram.Store, error) {
	switch {
	case template != "" && doc != nil:
		return nil, errBothLayouts
	case template != "":
		return layout.Build(template)
	case doc != nil:
		return doc.Build()
	default:
		return nil, errNoLayout
	}
}

// buildProducts converts the inline payloads into validated domain products.
func buildProducts(payloads []ProductPayload) ([]*planogram.Product, error) {
	products := make([]*planogram.Product, 0, len(payloads))
	for _, p := range payloads {
		product, err := planogram.NewProduct(planogram.Product{
			ID:               p.ProductID,
			Name:             p.ProductName,
			Series:           p.Series,
			Category:         planogram.ParseCategory(p.Category),
			Subcategory:      p.Subcategory,
			Brand:            p.Brand,
			Color:            p.Color,
			Width:            p.Width,
			Height:           p.Height,
			Depth:            p.Depth,
			Weight:           p.Weight,
			QtySoldLastWeek:  p.QtySoldLastWeek,
			QtySoldLastMonth: p.QtySoldLastMonth,
			AvgWeeklySales:   p.AvgWeeklySales,
			TotalQty:         p.TotalQty,
			CurrentStock:     p.CurrentStock,
			MinStock:         p.MinStock,
			MinFacings:       p.MinFacings,
			MaxFacings:       p.MaxFacings,
			Price:            p.Price,
			Profit:           p.Profit,
			LaunchDate:       p.LaunchDate,
			Status:           planogram.ParseStatus(p.Status),
			AttachRate:       p.AttachRate,
			BundleFrequency:  p.BundleFrequency,
		})
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// buildResponse converts an engine result and the mutated store into the
// response document.
func buildResponse(runID string, store *planogram.Store, products []*planogram.Product, result *optimizer.Result) *OptimizeResponse {
	byID := make(map[string]*planogram.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	shelves := make([]ShelfResult, len(store.Shelves))
	for i, shelf := range store.Shelves {
		placements := make([]PlacementResult, len(shelf.Placements))
		for j, pl := range shelf.Placements {
			placements[j] = PlacementResult{
				ProductID: pl.ProductID,
				Facings:   pl.Facings,
				XStart:    pl.XStart,
				XEnd:      pl.XEnd,
			}
			if p, ok := byID[pl.ProductID]; ok {
				placements[j].ProductName = p.Name
				placements[j].Category = string(p.Category)
			}
		}
		shelves[i] = ShelfResult{
			ShelfID:     shelf.ID,
			ShelfName:   shelf.Name,
			ShelfType:   string(shelf.Type),
			EyeLevel:    shelf.IsEyeLevel,
			Utilization: result.Metrics.AverageUtilization,
			Placements:  placements,
		}
		for _, su := range result.Metrics.ShelfUtilization {
			if su.ShelfID == shelf.ID {
				shelves[i].Utilization = su.Utilization
				break
			}
		}
	}

	rejected := make([]RejectedResult, len(result.ProductsRejected))
	for i, r := range result.ProductsRejected {
		rejected[i] = RejectedResult{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			Reason:      r.Reason,
		}
	}

	categories := make(map[string]int, len(result.Metrics.CategoryDistribution))
	for cat, facings := range result.Metrics.CategoryDistribution {
		categories[string(cat)] = facings
	}

	reorder := make([]ReorderLine, 0)
	for _, item := range store.ReorderList(byID) {
		reorder = append(reorder, ReorderLine{
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			CurrentStock:     item.CurrentStock,
			DaysOfStock:      item.DaysOfStock,
			RecommendedOrder: item.RecommendedOrder,
			Priority:         string(item.Priority),
		})
	}

	response := &OptimizeResponse{
		RunID:          runID,
		Success:        result.Success,
		Strategy:       string(result.Strategy),
		StoreName:      result.StoreName,
		StoreType:      string(store.Type),
		ProductsTotal:  len(products),
		ProductsPlaced: result.ProductsPlaced,
		Rejected:       rejected,
		Shelves:        shelves,
		Metrics: MetricsResult{
			TotalShelves:         result.Metrics.TotalShelves,
			EyeLevelShelves:      result.Metrics.EyeLevelShelves,
			PremiumShelves:       result.Metrics.PremiumShelves,
			AverageUtilization:   result.Metrics.AverageUtilization,
			TotalProducts:        result.Metrics.TotalProducts,
			TotalFacings:         result.Metrics.TotalFacings,
			ProfitDensity:        result.Metrics.ProfitDensity,
			QuantityDensity:      result.Metrics.QuantityDensity,
			CategoryDistribution: categories,
		},
		Reorder:     reorder,
		Warnings:    result.Warnings,
		Fingerprint: result.Fingerprint,
		DurationMs:  result.Elapsed.Milliseconds(),
	}
	if result.Bundles != nil {
		response.Bundles = &BundleStatsResult{
			Total:             result.Bundles.Total,
			Placed:            result.Bundles.Placed,
			Split:             result.Bundles.Split,
			ProductsInBundles: result.Bundles.ProductsInBundles,
			Coverage:          result.Bundles.Coverage,
			AverageSize:       result.Bundles.AverageSize,
		}
	}
	return response
}

// recordRun persists the run when a database is configured. History is best
// effort: a failed insert logs a warning and never fails the request.
func recordRun(c *gin.Context, req *optimizer.OptimizeRequest, result *optimizer.Result, response *OptimizeResponse) {
	if database.Pool() == nil {
		return
	}

	doc, err := json.Marshal(response)
	if err != nil {
		log.Warn().Err(err).Str("run", response.RunID).Msg("Failed to serialize run result")
		return
	}
	body := string(doc)

	run := &database.Run{
		ID:               response.RunID,
		StoreName:        response.StoreName,
		StoreType:        response.StoreType,
		Strategy:         response.Strategy,
		FacingMode:       string(req.FacingMode),
		Fingerprint:      response.Fingerprint,
		RequestKey:       optimizer.RequestKey(req, result.Strategy),
		Success:          response.Success,
		ProductsTotal:    response.ProductsTotal,
		ProductsPlaced:   response.ProductsPlaced,
		ProductsRejected: len(response.Rejected),
		SpaceUtilization: response.Metrics.AverageUtilization,
		WarningCount:     len(response.Warnings),
		DurationMs:       response.DurationMs,
		Result:           &body,
		CreatedAt:        time.Now(),
	}

	if err := database.InsertRun(c.Request.Context(), run); err != nil {
		log.Warn().Err(err).Str("run", run.ID).Msg("Failed to record run")
	}
}

// isRequestError reports whether the engine rejected the request itself
// rather than failing during the run.
func isRequestError(err error) bool {
	var invalid optimizer.ErrInvalidRequest
	if errors.As(err, &invalid) {
		return true
	}
	var optErr *optimizer.OptimizationError
	if errors.As(err, &optErr) {
		return optErr.Stage == optimizer.StageFilter
	}
	return false
}
