package optimizer

import (
	"sort"

	"github.com/polica/planogram-service/internal/planogram"
)

const (
	highValueProfit    = 30.0 // per-unit profit above which value placement widens facings
	highMarginProfit   = 40.0 // per-unit profit granting up to four facings
	mediumMarginProfit = 20.0 // per-unit profit granting up to three facings
	highEfficiency     = 50.0 // profit-per-cm score above which eye level is attempted first
)

// placeByValueDensity orders products by profit potential per centimeter of
// width and walks shelves from the best eye-level score down, so dense
// earners take the most visible space.
func (r *run) placeByValueDensity() {
	type scored struct {
		product *planogram.Product
		density float64
	}
	list := make([]scored, 0, len(r.products))
	for _, p := range r.products {
		density := 0.0
		if p.Width > 0 {
			density = p.EffectiveValue * float64(p.TotalQty) / p.Width
		}
		list = append(list, scored{product: p, density: density})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].density > list[j].density
	})

	shelves := make([]*planogram.Shelf, len(r.store.Shelves))
	copy(shelves, r.store.Shelves)
	sort.SliceStable(shelves, func(i, j int) bool {
		return shelves[i].EyeLevelScore > shelves[j].EyeLevelScore
	})

	for _, s := range list {
		p := s.product
		var facings int
		if p.Profit > highValueProfit {
			facings = r.clampToStore(p, min(p.MaxFacings, 3))
		} else {
			facings = r.facings(p, planogram.FacingBalanced)
		}

		placed := false
		for _, shelf := range shelves {
			if r.place(shelf, p, facings) {
				placed = true
				break
			}
		}
		if !placed {
			r.reject(p, "no shelf space available")
		}
	}
}

// placeByProfitEfficiency orders products by profit potential per centimeter
// of minimum footprint. High-efficiency products try eye level first; the
// rest spread toward the emptiest shelves.
func (r *run) placeByProfitEfficiency() {
	type scored struct {
		product    *planogram.Product
		efficiency float64
	}
	list := make([]scored, 0, len(r.products))
	for _, p := range r.products {
		efficiency := 0.0
		if footprint := p.Width * float64(p.MinFacings); footprint > 0 {
			efficiency = p.EffectiveValue * float64(p.TotalQty) / footprint
		}
		list = append(list, scored{product: p, efficiency: efficiency})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].efficiency > list[j].efficiency
	})

	var eyeLevel []*planogram.Shelf
	for _, shelf := range r.store.Shelves {
		if shelf.EyeLevelScore >= eyeLevelPreference {
			eyeLevel = append(eyeLevel, shelf)
		}
	}

	for _, s := range list {
		p := s.product
		var facings int
		switch {
		case p.Profit > highMarginProfit:
			facings = r.clampToStore(p, min(p.MaxFacings, 4))
		case p.Profit > mediumMarginProfit:
			facings = r.clampToStore(p, min(p.MaxFacings, 3))
		default:
			facings = r.facings(p, planogram.FacingBalanced)
		}

		placed := false
		if s.efficiency > highEfficiency {
			for _, shelf := range eyeLevel {
				if r.place(shelf, p, facings) {
					placed = true
					break
				}
			}
		}
		if !placed {
			for _, shelf := range r.shelvesByUtilization() {
				if r.place(shelf, p, facings) {
					placed = true
					break
				}
			}
		}
		if !placed {
			r.reject(p, "no shelf space available")
		}
	}
}

// shelvesByUtilization returns the store's shelves ordered emptiest first,
// reflecting placements made so far in the run.
func (r *run) shelvesByUtilization() []*planogram.Shelf {
	shelves := make([]*planogram.Shelf, len(r.store.Shelves))
	copy(shelves, r.store.Shelves)
	sort.SliceStable(shelves, func(i, j int) bool {
		return shelves[i].Utilization(r.gap) < shelves[j].Utilization(r.gap)
	})
	return shelves
}
