package optimizer

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/polica/planogram-service/internal/planogram"
)

// BatchItem is the outcome of one job in a batch run. Jobs fail
// independently; Err is set instead of Result when the job's own validation
// or run failed.
type BatchItem struct {
	Index  int     // Position of the job in the request
	Result *Result // Set on success
	Err    error   // Set on failure
}

// OptimizeBatch runs independent allocation jobs concurrently, at most
// BatchConcurrency at a time. The returned slice is in job order and always
// has one item per job; a failed job never fails the batch.
//
// Jobs must not share a Store: each run mutates its store in place.
func (e *Engine) OptimizeBatch(ctx context.Context, reqs []*OptimizeRequest) ([]BatchItem, error) {
	if len(reqs) == 0 {
		return nil, ErrInvalidRequest{Field: "requests", Reason: "must contain at least one job"}
	}
	if len(reqs) > e.config.MaxBatchJobs {
		return nil, ErrInvalidRequest{
			Field:  "requests",
			Reason: fmt.Sprintf("cannot exceed %d jobs", e.config.MaxBatchJobs),
		}
	}
	stores := make(map[*planogram.Store]int, len(reqs))
	for i, req := range reqs {
		if req == nil || req.Store == nil {
			continue // Surfaces as a per-job validation error below.
		}
		if first, seen := stores[req.Store]; seen {
			return nil, ErrInvalidRequest{
				Field:  "requests",
				Reason: fmt.Sprintf("shares a store with job %d", first),
				Index:  i,
			}
		}
		stores[req.Store] = i
	}

	e.metrics.RecordBatchSize(len(reqs))
	e.logger.Info().Int("jobs", len(reqs)).Msg("starting batch allocation")

	items := make([]BatchItem, len(reqs))
	sem := semaphore.NewWeighted(int64(e.config.BatchConcurrency))
	var wg sync.WaitGroup

	for i, req := range reqs {
		if req == nil {
			items[i] = BatchItem{Index: i, Err: ErrInvalidRequest{Field: "request", Reason: "cannot be nil", Index: i}}
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			items[i] = BatchItem{Index: i, Err: err}
			continue
		}

		wg.Add(1)
		go func(idx int, job *OptimizeRequest) {
			defer sem.Release(1)
			defer wg.Done()

			result, err := e.Optimize(ctx, job)
			items[idx] = BatchItem{Index: idx, Result: result, Err: err}
		}(i, req)
	}
	wg.Wait()

	succeeded := 0
	for _, item := range items {
		if item.Err == nil {
			succeeded++
		}
	}
	e.logger.Info().
		Int("jobs", len(reqs)).
		Int("succeeded", succeeded).
		Msg("batch allocation completed")
	return items, nil
}
