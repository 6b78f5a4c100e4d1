package optimizer

import (
	"fmt"
	"sort"

	"github.com/polica/planogram-service/internal/planogram"
)

// categoryMidTier is the eye-level score floor of the middle shelf tier.
const categoryMidTier = 0.4

// placeByCategory groups the assortment by category, ranks categories by
// revenue contribution and rotates them through shelf tiers so stronger
// categories land at better heights. Products never leave their assigned
// tier; a full tier rejects the remainder of its categories.
func (r *run) placeByCategory(products []*planogram.Product) {
	groups := make(map[planogram.Category][]*planogram.Product)
	var order []planogram.Category
	for _, p := range products {
		if _, ok := groups[p.Category]; !ok {
			order = append(order, p.Category)
		}
		groups[p.Category] = append(groups[p.Category], p)
	}

	type rankedCategory struct {
		category planogram.Category
		value    float64
	}
	ranked := make([]rankedCategory, 0, len(order))
	for _, category := range order {
		value := 0.0
		for _, p := range groups[category] {
			value += p.Price * p.SalesVelocity
		}
		ranked = append(ranked, rankedCategory{category: category, value: value})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].value > ranked[j].value
	})

	tiers := r.shelfTiers()
	r.categoryShelves = make(map[planogram.Category][]string, len(ranked))
	for i, rc := range ranked {
		r.categoryShelves[rc.category] = tiers[i%len(tiers)]
	}

	for _, rc := range ranked {
		group := groups[rc.category]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].SalesVelocity > group[j].SalesVelocity
		})

		for _, p := range group {
			facings := r.facings(p, planogram.FacingBalanced)
			placed := false
			for _, shelfID := range r.categoryShelves[p.Category] {
				if r.place(r.store.ShelfByID(shelfID), p, facings) {
					placed = true
					break
				}
			}
			if !placed {
				r.reject(p, fmt.Sprintf("assigned shelf tier for category %s is full", p.Category))
			}
		}
	}
}

// shelfTiers splits the store's shelves into eye, middle and low tiers by
// eye-level score. Tiers may be empty; the rotation still spans all three so
// category ranks map to consistent heights.
func (r *run) shelfTiers() [3][]string {
	var tiers [3][]string
	for _, shelf := range r.store.Shelves {
		switch {
		case shelf.IsEyeLevel:
			tiers[0] = append(tiers[0], shelf.ID)
		case shelf.EyeLevelScore >= categoryMidTier:
			tiers[1] = append(tiers[1], shelf.ID)
		default:
			tiers[2] = append(tiers[2], shelf.ID)
		}
	}
	return tiers
}
