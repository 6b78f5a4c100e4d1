package optimizer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runDuration tracks the wall time of allocation runs by strategy.
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planogram_run_duration_seconds",
		Help:    "Time taken for an allocation run by strategy",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"strategy"})

	// runsTotal tracks completed runs by strategy and outcome.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planogram_runs_total",
		Help: "Total number of allocation runs by strategy and outcome",
	}, []string{"strategy", "outcome"}) // outcome: success, empty, error

	// assortmentSize tracks the distribution of request assortment sizes.
	assortmentSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planogram_assortment_size",
		Help:    "Number of candidate products in allocation requests",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500},
	})

	// productsPlaced tracks how many products each run placed.
	productsPlaced = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planogram_products_placed",
		Help:    "Number of products placed per run",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
	})

	// productsRejected tracks how many products each run rejected.
	productsRejected = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planogram_products_rejected",
		Help:    "Number of products rejected per run",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
	})

	// averageUtilization tracks the resulting shelf utilization per run.
	averageUtilization = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planogram_average_utilization_percent",
		Help:    "Average shelf utilization of completed runs",
		Buckets: []float64{10, 25, 40, 55, 70, 85, 95, 100},
	})

	// facingReductions counts placements that fell back to minimum facings.
	facingReductions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planogram_facing_reductions_total",
		Help: "Total number of placements that fell back to minimum facings",
	})

	// bumpOuts counts slower products displaced by faster ones.
	bumpOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planogram_bump_outs_total",
		Help: "Total number of placements displaced by higher-velocity products",
	})

	// balanceMoves counts products moved during shelf load balancing.
	balanceMoves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planogram_balance_moves_total",
		Help: "Total number of products moved between shelves during load balancing",
	})

	// bundlesPlaced counts bundle groups placed on a single shelf.
	bundlesPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planogram_bundles_placed_total",
		Help: "Total number of bundle groups placed whole",
	})

	// bundlesSplit counts bundle groups split across adjacent shelves.
	bundlesSplit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planogram_bundles_split_total",
		Help: "Total number of bundle groups split across adjacent shelves",
	})

	// bundlesRejected counts bundle groups that could not be placed.
	bundlesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planogram_bundles_rejected_total",
		Help: "Total number of bundle groups that could not be placed",
	})

	// batchSize tracks the number of jobs per batch request.
	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "planogram_batch_jobs",
		Help:    "Number of jobs in batch allocation requests",
		Buckets: []float64{1, 2, 4, 8, 16, 32},
	})

	// resultCacheHits counts runs served from the result cache.
	resultCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planogram_result_cache_hits_total",
		Help: "Total number of allocation results served from cache",
	})

	// resultCacheMisses counts cache lookups that required a fresh run.
	resultCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planogram_result_cache_misses_total",
		Help: "Total number of cache lookups that required a fresh run",
	})
)

// MetricsRecorder provides methods to record engine metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordRun records a completed run with its outcome.
func (m *MetricsRecorder) RecordRun(strategy string, duration time.Duration, outcome string) {
	runDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	runsTotal.WithLabelValues(strategy, outcome).Inc()
}

// RecordAssortmentSize records the size of a request's assortment.
func (m *MetricsRecorder) RecordAssortmentSize(size int) {
	assortmentSize.Observe(float64(size))
}

// RecordPlacements records the placed and rejected counts of a run.
func (m *MetricsRecorder) RecordPlacements(placed, rejected int) {
	productsPlaced.Observe(float64(placed))
	productsRejected.Observe(float64(rejected))
}

// RecordUtilization records the average shelf utilization of a run.
func (m *MetricsRecorder) RecordUtilization(pct float64) {
	averageUtilization.Observe(pct)
}

// RecordFacingReduction records a placement that fell back to minimum facings.
func (m *MetricsRecorder) RecordFacingReduction() {
	facingReductions.Inc()
}

// RecordBumpOut records a placement displaced by a higher-velocity product.
func (m *MetricsRecorder) RecordBumpOut() {
	bumpOuts.Inc()
}

// RecordBalanceMove records a product moved during load balancing.
func (m *MetricsRecorder) RecordBalanceMove() {
	balanceMoves.Inc()
}

// RecordBundleOutcome records how a resolved bundle group was handled.
func (m *MetricsRecorder) RecordBundleOutcome(placed, split bool) {
	switch {
	case split:
		bundlesSplit.Inc()
	case placed:
		bundlesPlaced.Inc()
	default:
		bundlesRejected.Inc()
	}
}

// RecordBatchSize records the number of jobs in a batch request.
func (m *MetricsRecorder) RecordBatchSize(size int) {
	batchSize.Observe(float64(size))
}

// RecordCacheHit records an allocation served from the result cache.
func (m *MetricsRecorder) RecordCacheHit() {
	resultCacheHits.Inc()
}

// RecordCacheMiss records a cache lookup that required a fresh run.
func (m *MetricsRecorder) RecordCacheMiss() {
	resultCacheMisses.Inc()
}
