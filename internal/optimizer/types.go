package optimizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/polica/planogram-service/internal/planogram"
)

// Strategy selects the placement algorithm for an allocation run.
type Strategy string

const (
	StrategySalesVelocity    Strategy = "sales_velocity"
	StrategyCategoryGrouped  Strategy = "category_grouped"
	StrategyValueDensity     Strategy = "value_density"
	StrategyProfitEfficiency Strategy = "profit_efficiency"
	StrategyBalanced         Strategy = "balanced"
)

// ParseStrategy maps a raw strategy name to a known Strategy.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategySalesVelocity, StrategyCategoryGrouped, StrategyValueDensity,
		StrategyProfitEfficiency, StrategyBalanced:
		return Strategy(s), true
	default:
		return "", false
	}
}

// StrategyInfo describes one strategy for discovery endpoints and the CLI.
type StrategyInfo struct {
	Name        Strategy `json:"name"`
	Description string   `json:"description"`
}

// Strategies returns the supported strategies in a stable order.
func Strategies() []StrategyInfo {
	return []StrategyInfo{
		{StrategySalesVelocity, "Fast movers claim eye-level space; placement order follows daily sales velocity"},
		{StrategyCategoryGrouped, "Categories ranked by revenue share different shelf tiers; products stay grouped"},
		{StrategyValueDensity, "Placement order follows profit potential per centimeter of shelf width"},
		{StrategyProfitEfficiency, "Placement order follows profit potential per centimeter of minimum footprint"},
		{StrategyBalanced, "Composite of sales, value, attach rate and novelty; default strategy"},
	}
}

// OptimizeRequest carries one allocation job: the store to fill and the
// candidate assortment. The engine mutates the store's placements; the
// products are never modified beyond their transient priority score.
type OptimizeRequest struct {
	Store      *planogram.Store      // Shelf fixture to fill
	Products   []*planogram.Product  // Candidate assortment
	Strategy   Strategy              // Placement strategy ("" = configured default)
	FacingMode planogram.FacingMode  // Facing calculator ("" = configured default)
}

// Validate validates the request and returns an error if invalid.
func (r *OptimizeRequest) Validate(maxProducts int) error {
	if r.Store == nil {
		return ErrInvalidRequest{Field: "store", Reason: "cannot be nil"}
	}
	if len(r.Products) < 1 {
		return ErrInvalidRequest{Field: "products", Reason: "must have at least one product"}
	}
	if len(r.Products) > maxProducts {
		return ErrInvalidRequest{Field: "products", Reason: "exceeds maximum allowed"}
	}
	for i, p := range r.Products {
		if p == nil {
			return ErrInvalidRequest{Field: "products", Reason: fmt.Sprintf("product at index %d is nil", i), Index: i}
		}
	}
	if r.Strategy != "" {
		if _, ok := ParseStrategy(string(r.Strategy)); !ok {
			return ErrInvalidRequest{Field: "strategy", Reason: "unknown strategy"}
		}
	}
	if r.FacingMode != "" {
		if _, ok := planogram.ParseFacingMode(string(r.FacingMode)); !ok {
			return ErrInvalidRequest{Field: "facing_mode", Reason: "unknown facing mode"}
		}
	}
	return nil
}

// BundleInput names a group of products observed to sell together.
// IDs are resolved against the run's product list; groups with fewer than
// two resolvable members are dropped.
type BundleInput struct {
	ProductIDs []string // Member SKU identifiers
	Frequency  int      // Observed co-purchase count, orders groups descending
}

// BundleRequest carries a bundle-aware allocation job. An empty bundle list
// falls back to the balanced strategy over all products.
type BundleRequest struct {
	Store      *planogram.Store
	Products   []*planogram.Product
	Bundles    []BundleInput
	FacingMode planogram.FacingMode // "" = configured default
}

// Validate validates the bundle request and returns an error if invalid.
func (r *BundleRequest) Validate(maxProducts int) error {
	base := OptimizeRequest{Store: r.Store, Products: r.Products, FacingMode: r.FacingMode}
	if err := base.Validate(maxProducts); err != nil {
		return err
	}
	for i, b := range r.Bundles {
		if len(b.ProductIDs) == 0 {
			return ErrInvalidRequest{Field: "bundles", Reason: fmt.Sprintf("bundle at index %d has no products", i), Index: i}
		}
		if b.Frequency < 0 {
			return ErrInvalidRequest{Field: "bundles", Reason: fmt.Sprintf("bundle at index %d has negative frequency", i), Index: i}
		}
	}
	return nil
}

// RejectedProduct records one product the run could not place.
type RejectedProduct struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Reason      string `json:"reason"`
}

// ResultMetrics extends the store snapshot with run-level aggregates.
type ResultMetrics struct {
	planogram.StoreMetrics
	CategoryDistribution map[planogram.Category]int `json:"category_distribution"` // Facings per category
	FacingsByProduct     map[string]int             `json:"facings_by_product"`
	ProfitDensity        float64                    `json:"profit_density"`   // Profit potential per cm of width consumed
	QuantityDensity      float64                    `json:"quantity_density"` // Unit potential per cm of width consumed
}

// BundleStats summarizes bundle handling within a bundle run.
type BundleStats struct {
	Total             int     `json:"total"`               // Resolved bundle groups
	Placed            int     `json:"placed"`              // Groups placed whole or split
	Split             int     `json:"split"`               // Groups split across adjacent shelves
	ProductsInBundles int     `json:"products_in_bundles"` // Members across all resolved groups
	Coverage          float64 `json:"coverage"`            // Placed bundle members / all placed products
	AverageSize       float64 `json:"average_size"`        // Members per resolved group
}

// Result is the outcome of one allocation run. The engine has already
// mutated the request's store; consumers must not mutate the result.
type Result struct {
	Success          bool              // At least one product was placed
	Strategy         Strategy          // Strategy that produced the layout
	StoreName        string            // Display name of the optimized store
	ProductsPlaced   int               // Count of placed products
	ProductsRejected []RejectedProduct // Products that could not be placed
	Warnings         []string          // Placement and advisory findings
	Metrics          ResultMetrics     // Aggregates over the final layout
	Bundles          *BundleStats      // Bundle runs only, nil otherwise
	Fingerprint      string            // Canonical hash of the final layout
	Elapsed          time.Duration     // Wall time of the run
}

// Stage identifies the phase of a run that produced an error.
type Stage string

const (
	StageFilter    Stage = "filter"
	StagePlacement Stage = "placement"
	StagePostOpt   Stage = "post_optimization"
	StageValidate  Stage = "validation"
)

// ErrNoProducts is returned when store rules filter out the whole assortment.
var ErrNoProducts = errors.New("no products remain after filtering")

// OptimizationError wraps a run failure with the stage that produced it.
type OptimizationError struct {
	Stage Stage
	Err   error
}

func (e *OptimizationError) Error() string {
	return fmt.Sprintf("optimization failed at %s: %v", e.Stage, e.Err)
}

func (e *OptimizationError) Unwrap() error { return e.Err }

// ErrInvalidRequest is returned when an allocation request is invalid.
type ErrInvalidRequest struct {
	Field  string
	Reason string
	Index  int
}

func (e ErrInvalidRequest) Error() string {
	return e.Field + ": " + e.Reason
}
