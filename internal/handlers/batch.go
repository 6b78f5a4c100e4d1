package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polica/planogram-service/internal/optimizer"
	"github.com/polica/planogram-service/internal/pkg/runid"
	"github.com/polica/planogram-service/internal/planogram"
)

// BatchRequest carries independent optimization jobs to run concurrently
type BatchRequest struct {
	Jobs []OptimizeRequest `json:"jobs" binding:"required,min=1" jsonschema:"required"`
}

// BatchItemResult is the outcome of one batch job
type BatchItemResult struct {
	Index  int               `json:"index" jsonschema:"required"`
	Result *OptimizeResponse `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// BatchResponse summarizes a concurrent batch run
type BatchResponse struct {
	BatchID   string            `json:"batchId" jsonschema:"required"`
	Total     int               `json:"total" jsonschema:"required"`
	Succeeded int               `json:"succeeded" jsonschema:"required"`
	Failed    int               `json:"failed" jsonschema:"required"`
	Items     []BatchItemResult `json:"items" jsonschema:"required"`
}

// OptimizeBatch runs several independent allocations concurrently
// @Summary Optimize planograms in batch
// @Description Runs every submitted job with bounded concurrency. Jobs fail independently; the response carries one item per job in submission order.
// @Tags planogram
// @Accept json
// @Produce json
// @Param request body BatchRequest true "Batch of optimization jobs"
// @Success 200 {object} BatchResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 503 {object} map[string]string "Engine not initialized"
// @Router /internal/planogram/optimize/batch [post]
func OptimizeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Engine not initialized"})
		return
	}

	jobs := make([]*optimizer.OptimizeRequest, len(req.Jobs))
	stores := make([]*planogram.Store, len(req.Jobs))
	catalogs := make([][]*planogram.Product, len(req.Jobs))
	for i, job := range req.Jobs {
		store, err := buildStore(job.Template, job.Layout)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("job %d: %v", i, err)})
			return
		}
		products, err := buildProducts(job.Products)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("job %d: %v", i, err)})
			return
		}
		stores[i] = store
		catalogs[i] = products
		jobs[i] = &optimizer.OptimizeRequest{
			Store:      store,
			Products:   products,
			Strategy:   optimizer.Strategy(job.Strategy),
			FacingMode: planogram.FacingMode(job.FacingMode),
		}
	}

	items, err := engine.OptimizeBatch(c.Request.Context(), jobs)
	if err != nil {
		status := http.StatusInternalServerError
		if isRequestError(err) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	response := BatchResponse{
		BatchID: runid.NewWithPrefix("bat"),
		Total:   len(items),
		Items:   make([]BatchItemResult, len(items)),
	}
	for i, item := range items {
		if item.Err != nil {
			response.Failed++
			response.Items[i] = BatchItemResult{Index: item.Index, Error: item.Err.Error()}
			continue
		}
		response.Succeeded++
		itemResponse := buildResponse(runid.New(), stores[i], catalogs[i], item.Result)
		recordRun(c, jobs[i], item.Result, itemResponse)
		response.Items[i] = BatchItemResult{Index: item.Index, Result: itemResponse}
	}

	c.JSON(http.StatusOK, response)
}
