package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/polica/planogram-service/internal/database"
)

// ListRunsRequest represents query parameters for listing allocation runs
type ListRunsRequest struct {
	StoreName string `form:"storeName" json:"storeName"`
	Strategy  string `form:"strategy" json:"strategy" jsonschema:"enum=sales_velocity,enum=category_grouped,enum=value_density,enum=profit_efficiency,enum=balanced"`
	Since     string `form:"since" json:"since"`
	Limit     int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100" jsonschema:"minimum=1,maximum=100"`
	Offset    int    `form:"offset" json:"offset" binding:"omitempty,min=0" jsonschema:"minimum=0"`
}

// RunSummary represents one recorded allocation run
type RunSummary struct {
	ID               string    `json:"id" jsonschema:"required"`
	StoreName        string    `json:"storeName" jsonschema:"required"`
	StoreType        string    `json:"storeType"`
	Strategy         string    `json:"strategy" jsonschema:"required"`
	FacingMode       string    `json:"facingMode"`
	Fingerprint      string    `json:"fingerprint"`
	Success          bool      `json:"success" jsonschema:"required"`
	ProductsTotal    int       `json:"productsTotal"`
	ProductsPlaced   int       `json:"productsPlaced"`
	ProductsRejected int       `json:"productsRejected"`
	SpaceUtilization float64   `json:"spaceUtilization"`
	WarningCount     int       `json:"warningCount"`
	DurationMs       int64     `json:"durationMs"`
	CreatedAt        time.Time `json:"createdAt" jsonschema:"required"`
}

// RunDetail is a recorded run including the stored result document
type RunDetail struct {
	RunSummary
	Result *string `json:"result"`
}

// ListRunsResponse represents the response for listing allocation runs
type ListRunsResponse struct {
	Runs  []RunSummary `json:"runs" jsonschema:"required"`
	Total int64        `json:"total" jsonschema:"required"`
}

func runSummary(run database.Run) RunSummary {
	return RunSummary{
		ID:               run.ID,
		StoreName:        run.StoreName,
		StoreType:        run.StoreType,
		Strategy:         run.Strategy,
		FacingMode:       run.FacingMode,
		Fingerprint:      run.Fingerprint,
		Success:          run.Success,
		ProductsTotal:    run.ProductsTotal,
		ProductsPlaced:   run.ProductsPlaced,
		ProductsRejected: run.ProductsRejected,
		SpaceUtilization: run.SpaceUtilization,
		WarningCount:     run.WarningCount,
		DurationMs:       run.DurationMs,
		CreatedAt:        run.CreatedAt,
	}
}

// ListRuns returns a paginated list of allocation runs with optional filters
// @Summary List allocation runs
// @Description Returns a paginated list of recorded allocation runs with optional store, strategy and time filters
// @Tags runs
// @Accept json
// @Produce json
// @Param storeName query string false "Filter by store name"
// @Param strategy query string false "Filter by strategy" Enums(sales_velocity, category_grouped, value_density, profit_efficiency, balanced)
// @Param since query string false "Only runs created at or after this time (RFC3339 format)"
// @Param limit query int false "Number of items to return" default(50) minimum(1) maximum(100)
// @Param offset query int false "Number of items to skip" default(0) minimum(0)
// @Success 200 {object} ListRunsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 503 {object} map[string]string "Run history disabled"
// @Router /internal/planogram/runs [get]
func ListRuns(c *gin.Context) {
	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if database.Pool() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history disabled: no database configured"})
		return
	}

	filter := database.RunFilter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.StoreName != "" {
		filter.StoreName = &req.StoreName
	}
	if req.Strategy != "" {
		filter.Strategy = &req.Strategy
	}
	if req.Since != "" {
		since, err := time.Parse(time.RFC3339, req.Since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since date format, use RFC3339"})
			return
		}
		filter.Since = &since
	}

	runs, total, err := database.ListRuns(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}

	summaries := make([]RunSummary, len(runs))
	for i, run := range runs {
		summaries[i] = runSummary(run)
	}

	c.JSON(http.StatusOK, ListRunsResponse{
		Runs:  summaries,
		Total: total,
	})
}

// GetRun returns a single allocation run by ID
// @Summary Get allocation run
// @Description Returns a single recorded run by its ID, including the stored result document
// @Tags runs
// @Accept json
// @Produce json
// @Param runId path string true "Run ID"
// @Success 200 {object} RunDetail
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 503 {object} map[string]string "Run history disabled"
// @Router /internal/planogram/runs/{runId} [get]
func GetRun(c *gin.Context) {
	runID := c.Param("runId")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "runId is required"})
		return
	}

	if database.Pool() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run history disabled: no database configured"})
		return
	}

	run, err := database.GetRunByID(c.Request.Context(), runID)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
		return
	}

	c.JSON(http.StatusOK, RunDetail{
		RunSummary: runSummary(*run),
		Result:     run.Result,
	})
}
