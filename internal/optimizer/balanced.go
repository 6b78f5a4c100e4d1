package optimizer

import (
	"math"
	"sort"

	"github.com/polica/planogram-service/internal/planogram"
)

// The balanced composite normalizes its two open-ended signals against fixed
// scales before weighting: monthly quantity saturates at 300 units and
// per-unit value at 50. Attach rate and novelty are already in [0,1].
const (
	balancedQtyScale   = 300.0
	balancedValueScale = 50.0

	compositeSalesWeight   = 0.3
	compositeValueWeight   = 0.4
	compositeAttachWeight  = 0.2
	compositeNoveltyWeight = 0.1
)

// placeBalanced scores products on a composite of sales, value, attach rate
// and novelty, then matches each to the shelf that suits it best. Stores
// that require category grouping delegate to the category strategy after
// the composite ordering.
func (r *run) placeBalanced() {
	type scored struct {
		product   *planogram.Product
		composite float64
	}
	list := make([]scored, 0, len(r.products))
	for _, p := range r.products {
		salesScore := math.Min(float64(p.TotalQty)/balancedQtyScale, 1)
		valueScore := math.Min(p.EffectiveValue/balancedValueScale, 1)
		novelty := 0.0
		if p.IsNew() {
			novelty = 1
		}
		composite := salesScore*compositeSalesWeight +
			valueScore*compositeValueWeight +
			p.AttachRate*compositeAttachWeight +
			novelty*compositeNoveltyWeight
		list = append(list, scored{product: p, composite: composite})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].composite > list[j].composite
	})

	ordered := make([]*planogram.Product, len(list))
	for i, s := range list {
		ordered[i] = s.product
	}

	if r.store.PlacementRules.CategoryGrouping {
		r.placeByCategory(ordered)
		return
	}

	for _, p := range ordered {
		facings := r.facings(p, planogram.FacingBalanced)
		placed := false

		if best := r.bestShelfFor(p); best != nil && r.place(best, p, facings) {
			placed = true
		}
		if !placed {
			placed = r.placeAnywhere(p, facings)
		}
		if !placed {
			r.reject(p, "no shelf space available")
		}
	}
}

// bestShelfFor ranks shelves for one product: the shelf's placement score,
// consistency with any category tier assignment, how well the product fills
// the shelf height, and a crowding penalty. Ties keep the lowest shelf.
func (r *run) bestShelfFor(p *planogram.Product) *planogram.Shelf {
	var best *planogram.Shelf
	bestScore := math.Inf(-1)

	for _, shelf := range r.store.Shelves {
		score := shelf.PlacementScore(p)

		if assigned, ok := r.categoryShelves[p.Category]; ok {
			for _, id := range assigned {
				if id == shelf.ID {
					score += 0.3
					break
				}
			}
		}

		if ratio := p.Height / shelf.Height; ratio >= 0.6 && ratio <= 0.8 {
			score += 0.2
		}

		score -= shelf.Utilization(r.gap) / 100 * 0.3

		if score > bestScore {
			bestScore = score
			best = shelf
		}
	}
	return best
}
