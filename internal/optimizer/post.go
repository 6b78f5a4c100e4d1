package optimizer

import (
	"sort"

	"github.com/polica/planogram-service/internal/planogram"
)

const (
	// overUtilizedPct marks a shelf as a donor for load balancing.
	overUtilizedPct = 85.0
	// underUtilizedPct marks a non-empty shelf as a receiver.
	underUtilizedPct = 40.0
)

// postOptimize smooths the raw placement result: crowded shelves shed items
// to quiet ones, every shelf is repacked with uniform gaps, and products of
// the same category and series end up side by side.
func (r *run) postOptimize() {
	r.balanceShelfLoads()
	for _, shelf := range r.store.Shelves {
		shelf.Reflow(r.gap)
	}
	r.groupSimilar()
}

// balanceShelfLoads moves placements from shelves above overUtilizedPct to
// shelves below underUtilizedPct until no beneficial move remains. Donors
// shed their lowest-velocity placements first; moves keep the existing
// facing count and only happen when the receiver can fit the product as-is.
// A product moves at most once so thresholds crossed by a move cannot
// bounce it back.
func (r *run) balanceShelfLoads() {
	moved := make(map[string]bool)
	for {
		if !r.balanceOneMove(moved) {
			return
		}
	}
}

func (r *run) balanceOneMove(moved map[string]bool) bool {
	for _, donor := range r.store.Shelves {
		if donor.Utilization(r.gap) <= overUtilizedPct {
			continue
		}

		var candidates []planogram.Placement
		for _, pl := range donor.Placements {
			if _, ok := r.byID[pl.ProductID]; ok && !moved[pl.ProductID] {
				candidates = append(candidates, pl)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := r.byID[candidates[i].ProductID], r.byID[candidates[j].ProductID]
			if a.SalesVelocity != b.SalesVelocity {
				return a.SalesVelocity < b.SalesVelocity
			}
			return a.ID < b.ID
		})

		for _, pl := range candidates {
			p := r.byID[pl.ProductID]
			for _, receiver := range r.store.Shelves {
				if receiver == donor || receiver.Utilization(r.gap) >= underUtilizedPct {
					continue
				}
				if !receiver.CanFit(p, pl.Facings, r.gap) {
					continue
				}
				donor.RemovePlacement(p.ID)
				if !receiver.AddPlacement(p, pl.Facings, r.gap) {
					// The donor slot is still free, so the restore cannot fail.
					donor.PlaceAt(p, pl.Facings, pl.XStart)
					continue
				}
				moved[p.ID] = true
				r.shelfOf[p.ID] = receiver.ID
				r.engine.metrics.RecordBalanceMove()
				r.logger.Debug().
					Str("product", p.ID).
					Str("from", donor.ID).
					Str("to", receiver.ID).
					Msg("placement moved to balance shelf load")
				return true
			}
		}
	}
	return false
}

// groupSimilar reorders each shelf so placements sharing a category sit
// together, series runs within a category, and repacks the shelf in the new
// order.
func (r *run) groupSimilar() {
	for _, shelf := range r.store.Shelves {
		if len(shelf.Placements) < 2 {
			continue
		}

		key := func(pl planogram.Placement) (planogram.Category, string) {
			if p, ok := r.byID[pl.ProductID]; ok {
				return p.Category, p.Series
			}
			return "", ""
		}
		sort.SliceStable(shelf.Placements, func(i, j int) bool {
			ci, si := key(shelf.Placements[i])
			cj, sj := key(shelf.Placements[j])
			if ci != cj {
				return ci < cj
			}
			return si < sj
		})

		x := r.gap
		for i := range shelf.Placements {
			width := shelf.Placements[i].Width()
			shelf.Placements[i].XStart = x
			shelf.Placements[i].XEnd = x + width
			x += width + r.gap
		}
	}
}
