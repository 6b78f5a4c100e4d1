package optimizer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/polica/planogram-service/internal/planogram"
)

// Engine runs shelf-space allocation for stores. An Engine carries no
// per-run state and is safe for concurrent use; every run owns its request's
// Store exclusively for the duration of the call.
type Engine struct {
	config  *Config
	metrics *MetricsRecorder
	logger  zerolog.Logger
	cache   *ResultCache
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithLogger replaces the default component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics replaces the default metrics recorder.
func WithMetrics(metrics *MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = metrics }
}

// WithCache replaces the config-derived result cache.
func WithCache(cache *ResultCache) Option {
	return func(e *Engine) { e.cache = cache }
}

// NewEngine creates a new allocation engine.
func NewEngine(config *Config, opts ...Option) *Engine {
	e := &Engine{
		config:  config,
		metrics: NewMetricsRecorder(),
		logger:  log.With().Str("component", "allocation_engine").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil && config.CacheEntries > 0 {
		e.cache = NewResultCache(config.CacheTTL, config.CacheEntries)
	}
	return e
}

// Optimize runs the full allocation state machine over one request:
// reset, filter, priority sort, placement, post-optimization, validation.
// The request's store is mutated in place; the returned result summarizes it.
func (e *Engine) Optimize(ctx context.Context, req *OptimizeRequest) (*Result, error) {
	startTime := time.Now()

	if err := req.Validate(e.config.MaxProducts); err != nil {
		return nil, err
	}

	strategy := e.strategyFor(req.Strategy)

	var cacheKey string
	if e.cache != nil {
		cacheKey = RequestKey(req, strategy)
		if cached, ok := e.cache.Get(cacheKey, req.Store); ok {
			e.logger.Debug().
				Str("store", req.Store.Name).
				Str("strategy", string(strategy)).
				Msg("allocation served from cache")
			return cached, nil
		}
	}

	r := e.newRun(req.Store, strategy, req.FacingMode)
	r.logger.Info().
		Str("strategy", string(strategy)).
		Int("products", len(req.Products)).
		Msg("starting allocation run")

	result, err := r.execute(ctx, req.Products)
	elapsed := time.Since(startTime)
	e.metrics.RecordRun(string(strategy), elapsed, runOutcome(result, err))
	if err != nil {
		return nil, err
	}

	result.Elapsed = elapsed
	if e.cache != nil {
		e.cache.Put(cacheKey, result, req.Store)
	}
	r.logger.Info().
		Int("placed", result.ProductsPlaced).
		Int("rejected", len(result.ProductsRejected)).
		Dur("elapsed", elapsed).
		Msg("allocation run completed")
	return result, nil
}

// strategyFor resolves the effective strategy for a request.
func (e *Engine) strategyFor(s Strategy) Strategy {
	if s != "" {
		return s
	}
	parsed, ok := ParseStrategy(e.config.DefaultStrategy)
	if !ok {
		return StrategyBalanced
	}
	return parsed
}

func runOutcome(result *Result, err error) string {
	switch {
	case err != nil:
		return "error"
	case !result.Success:
		return "empty"
	default:
		return "success"
	}
}

// run is the mutable state of one allocation pass.
type run struct {
	engine   *Engine
	store    *planogram.Store
	strategy Strategy
	facing   planogram.FacingMode // request-level override, "" keeps strategy-native calculators
	gap      float64

	products []*planogram.Product          // filtered assortment in priority order
	byID     map[string]*planogram.Product // filtered assortment by SKU

	// shelfOf locates every placed product without scanning shelves. It is
	// updated on every placement, removal and move.
	shelfOf map[string]string

	rejected []RejectedProduct
	warnings []string

	// categoryShelves holds the tier assignments computed by the category
	// strategy; the balanced shelf ranking consults it when present.
	categoryShelves map[planogram.Category][]string

	logger zerolog.Logger
}

func (e *Engine) newRun(store *planogram.Store, strategy Strategy, facing planogram.FacingMode) *run {
	return &run{
		engine:   e,
		store:    store,
		strategy: strategy,
		facing:   facing,
		gap:      e.config.GapSize,
		shelfOf:  make(map[string]string),
		logger:   e.logger.With().Str("store", store.Name).Logger(),
	}
}

func (r *run) execute(ctx context.Context, products []*planogram.Product) (*Result, error) {
	r.engine.metrics.RecordAssortmentSize(len(products))
	r.store.Reset()

	filtered := r.store.FilterProducts(products)
	r.logger.Debug().
		Int("candidates", len(products)).
		Int("after_filter", len(filtered)).
		Msg("store rules applied")
	if len(filtered) == 0 {
		return nil, &OptimizationError{Stage: StageFilter, Err: ErrNoProducts}
	}

	r.products = filtered
	r.byID = make(map[string]*planogram.Product, len(filtered))
	for _, p := range filtered {
		r.byID[p.ID] = p
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.sortByPriority(r.products)

	switch r.strategy {
	case StrategySalesVelocity:
		r.placeBySalesVelocity()
	case StrategyCategoryGrouped:
		r.placeByCategory(r.products)
	case StrategyValueDensity:
		r.placeByValueDensity()
	case StrategyProfitEfficiency:
		r.placeByProfitEfficiency()
	default:
		r.placeBalanced()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.engine.config.PostOptimize {
		r.postOptimize()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.warnings = append(r.warnings, r.validate()...)

	return r.buildResult(), nil
}

// sortByPriority computes each product's strategy-independent priority from
// the store weight vector and orders the slice by it, descending. The sort is
// stable so equal priorities keep their input order.
func (r *run) sortByPriority(products []*planogram.Product) {
	w := r.store.Weights
	for _, p := range products {
		score := p.SalesVelocity*w.SalesVelocity + p.AttachRate*w.AttachRate
		if p.IsNew() {
			score += w.Novelty
		}
		p.PriorityScore = score
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].PriorityScore > products[j].PriorityScore
	})
}

// facings resolves the facing count for one placement: the request-level
// override wins, otherwise the strategy's native calculator applies.
func (r *run) facings(p *planogram.Product, native planogram.FacingMode) int {
	mode := r.facing
	if mode == "" {
		mode = native
	}
	return r.clampToStore(p, p.FacingsFor(mode))
}

// clampToStore applies the store-wide facing cap. The product's own minimum
// still wins over the cap so the facing-bounds invariant holds.
func (r *run) clampToStore(p *planogram.Product, n int) int {
	if limit := r.store.Rules.MaxFacingsPerProduct; limit > 0 && n > limit {
		n = limit
	}
	if n < p.MinFacings {
		n = p.MinFacings
	}
	return n
}

// place puts p on shelf at the desired facing count, falling back to the
// product's minimum when the desired count does not fit. Returns false when
// the shelf cannot take the product at all; the shelf is left unchanged.
func (r *run) place(shelf *planogram.Shelf, p *planogram.Product, facings int) bool {
	if shelf.CanFit(p, facings, r.gap) && shelf.AddPlacement(p, facings, r.gap) {
		r.track(p, shelf)
		return true
	}
	if facings > p.MinFacings {
		if shelf.CanFit(p, p.MinFacings, r.gap) && shelf.AddPlacement(p, p.MinFacings, r.gap) {
			r.engine.metrics.RecordFacingReduction()
			r.logger.Debug().
				Str("product", p.ID).
				Str("shelf", shelf.ID).
				Int("from", facings).
				Int("to", p.MinFacings).
				Msg("facings reduced to fit")
			r.track(p, shelf)
			return true
		}
	}
	return false
}

// placeAnywhere tries every shelf in store order.
func (r *run) placeAnywhere(p *planogram.Product, facings int) bool {
	for _, shelf := range r.store.Shelves {
		if r.place(shelf, p, facings) {
			return true
		}
	}
	return false
}

func (r *run) track(p *planogram.Product, shelf *planogram.Shelf) {
	r.shelfOf[p.ID] = shelf.ID
}

// reject moves p to the rejected list. Every rejection also surfaces as a
// warning so callers see per-item failures without scanning the list.
func (r *run) reject(p *planogram.Product, reason string) {
	r.rejected = append(r.rejected, RejectedProduct{
		ProductID:   p.ID,
		ProductName: p.Name,
		Reason:      reason,
	})
	r.warnings = append(r.warnings, fmt.Sprintf("could not place %s: %s", p.Name, reason))
}

// validate inspects the finished layout for advisory findings. Findings never
// fail the run.
func (r *run) validate() []string {
	var issues []string
	for _, shelf := range r.store.Shelves {
		util := shelf.Utilization(r.gap)
		if util < 20 && len(shelf.Placements) > 0 {
			issues = append(issues, fmt.Sprintf("shelf %s is underutilized (%.1f%%)", shelf.Name, util))
		}
	}
	if r.store.PlacementRules.CategoryGrouping {
		for _, shelf := range r.store.Shelves {
			categories := make(map[planogram.Category]bool)
			for _, pl := range shelf.Placements {
				if p, ok := r.byID[pl.ProductID]; ok {
					categories[p.Category] = true
				}
			}
			if len(categories) > 3 {
				issues = append(issues, fmt.Sprintf("shelf %s has too many categories (%d)", shelf.Name, len(categories)))
			}
		}
	}
	if minSKUs := r.store.Rules.MinSKUsPerCategory; minSKUs > 0 {
		placedPerCategory := make(map[planogram.Category]int)
		for id := range r.shelfOf {
			placedPerCategory[r.byID[id].Category]++
		}
		cats := make([]planogram.Category, 0, len(placedPerCategory))
		for cat := range placedPerCategory {
			cats = append(cats, cat)
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
		for _, cat := range cats {
			if placedPerCategory[cat] < minSKUs {
				issues = append(issues, fmt.Sprintf("category %s has only %d placed SKUs (minimum: %d)", cat, placedPerCategory[cat], minSKUs))
			}
		}
	}
	// Facing counts outside the product's bounds indicate an engine bug, not a
	// data problem.
	for _, shelf := range r.store.Shelves {
		for _, pl := range shelf.Placements {
			p, ok := r.byID[pl.ProductID]
			if !ok {
				continue
			}
			if pl.Facings < p.MinFacings || pl.Facings > p.MaxFacings {
				issues = append(issues, fmt.Sprintf("product %s placed with %d facings outside [%d,%d]",
					p.ID, pl.Facings, p.MinFacings, p.MaxFacings))
			}
		}
	}
	return issues
}

func (r *run) buildResult() *Result {
	metrics := r.collectMetrics()
	placed := len(r.shelfOf)
	r.engine.metrics.RecordPlacements(placed, len(r.rejected))
	r.engine.metrics.RecordUtilization(metrics.AverageUtilization)

	return &Result{
		Success:          placed > 0,
		Strategy:         r.strategy,
		StoreName:        r.store.Name,
		ProductsPlaced:   placed,
		ProductsRejected: r.rejected,
		Warnings:         r.warnings,
		Metrics:          metrics,
		Fingerprint:      Fingerprint(r.store, r.strategy),
	}
}

// collectMetrics aggregates the final layout: the store snapshot plus facing
// distribution and the profit/quantity density of the width actually consumed.
func (r *run) collectMetrics() ResultMetrics {
	metrics := ResultMetrics{
		StoreMetrics:         r.store.Metrics(r.gap),
		CategoryDistribution: make(map[planogram.Category]int),
		FacingsByProduct:     make(map[string]int),
	}

	totalProfit := 0.0
	totalQuantity := 0.0
	totalWidth := 0.0
	for _, shelf := range r.store.Shelves {
		for _, pl := range shelf.Placements {
			p, ok := r.byID[pl.ProductID]
			if !ok {
				continue
			}
			metrics.CategoryDistribution[p.Category] += pl.Facings
			metrics.FacingsByProduct[p.ID] = pl.Facings
			totalProfit += p.EffectiveValue * float64(p.TotalQty) * float64(pl.Facings)
			totalQuantity += float64(p.TotalQty) * float64(pl.Facings)
			totalWidth += pl.Width()
		}
	}
	if totalWidth > 0 {
		metrics.ProfitDensity = totalProfit / totalWidth
		metrics.QuantityDensity = totalQuantity / totalWidth
	}
	return metrics
}
