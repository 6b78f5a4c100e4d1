package optimizer

import (
	"fmt"
	"sort"

	"github.com/polica/planogram-service/internal/planogram"
)

const (
	// highVelocityThreshold is the daily sales rate above which a product
	// claims eye-level space first.
	highVelocityThreshold = 10.0

	// eyeLevelPreference is the eye-level score cutoff for preferred shelf
	// scans in the velocity and efficiency strategies.
	eyeLevelPreference = 0.7
)

// placeBySalesVelocity orders the assortment by daily sales velocity and
// gives fast movers first claim on eye-level space. Products that fit nowhere
// may displace an already-placed product with strictly lower velocity.
func (r *run) placeBySalesVelocity() {
	products := make([]*planogram.Product, len(r.products))
	copy(products, r.products)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].SalesVelocity > products[j].SalesVelocity
	})

	var eyeLevel, others []*planogram.Shelf
	for _, shelf := range r.store.Shelves {
		if shelf.EyeLevelScore >= eyeLevelPreference {
			eyeLevel = append(eyeLevel, shelf)
		} else {
			others = append(others, shelf)
		}
	}
	fallback := append(append([]*planogram.Shelf{}, others...), eyeLevel...)

	for _, p := range products {
		facings := r.facings(p, planogram.FacingSales)
		placed := false

		if p.SalesVelocity > highVelocityThreshold {
			for _, shelf := range eyeLevel {
				if r.place(shelf, p, facings) {
					placed = true
					break
				}
			}
		}
		if !placed {
			for _, shelf := range fallback {
				if r.place(shelf, p, facings) {
					placed = true
					break
				}
			}
		}
		if !placed {
			placed = r.bumpOut(p, facings)
		}
		if !placed {
			r.reject(p, fmt.Sprintf("no shelf space available (sales: %.1f/day)", p.SalesVelocity))
		}
	}
}

// bumpOut tries to make room for p by displacing a placed product with
// strictly lower sales velocity, lowest first. A candidate is removed, p is
// tried in the freed slot, and the candidate is restored to its exact
// position when p still does not fit. On success the displaced product gets
// one regular pass over all shelves before being rejected, so a product is
// never displaced by one of equal or lower velocity.
func (r *run) bumpOut(p *planogram.Product, facings int) bool {
	type candidate struct {
		shelf   *planogram.Shelf
		pl      planogram.Placement
		product *planogram.Product
	}

	var candidates []candidate
	for _, shelf := range r.store.Shelves {
		for _, pl := range shelf.Placements {
			placed, ok := r.byID[pl.ProductID]
			if !ok || placed.SalesVelocity >= p.SalesVelocity {
				continue
			}
			candidates = append(candidates, candidate{shelf: shelf, pl: pl, product: placed})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.product.SalesVelocity != b.product.SalesVelocity {
			return a.product.SalesVelocity < b.product.SalesVelocity
		}
		return a.product.ID < b.product.ID
	})

	for _, c := range candidates {
		c.shelf.RemovePlacement(c.product.ID)
		delete(r.shelfOf, c.product.ID)

		if r.placeInSlot(c.shelf, p, facings, c.pl) {
			r.engine.metrics.RecordBumpOut()
			r.logger.Debug().
				Str("product", p.ID).
				Str("displaced", c.product.ID).
				Str("shelf", c.shelf.ID).
				Msg("placed by displacing a slower product")

			if !r.placeAnywhere(c.product, c.pl.Facings) {
				r.reject(c.product, fmt.Sprintf("displaced by higher-velocity product %s", p.Name))
			}
			return true
		}

		// The slot is still free, so the exact restore cannot fail.
		c.shelf.PlaceAt(c.product, c.pl.Facings, c.pl.XStart)
		r.shelfOf[c.product.ID] = c.shelf.ID
	}
	return false
}

// placeInSlot tries p in a just-freed slot, preferring the slot's exact
// position and falling back to the end of the shelf, at the desired facing
// count and then the product's minimum.
func (r *run) placeInSlot(shelf *planogram.Shelf, p *planogram.Product, facings int, slot planogram.Placement) bool {
	if shelf.CanFit(p, facings, r.gap) &&
		(shelf.PlaceAt(p, facings, slot.XStart) || shelf.AddPlacement(p, facings, r.gap)) {
		r.track(p, shelf)
		return true
	}
	if facings > p.MinFacings && shelf.CanFit(p, p.MinFacings, r.gap) &&
		(shelf.PlaceAt(p, p.MinFacings, slot.XStart) || shelf.AddPlacement(p, p.MinFacings, r.gap)) {
		r.engine.metrics.RecordFacingReduction()
		r.track(p, shelf)
		return true
	}
	return false
}
