package layout

import (
	"fmt"

	"github.com/polica/planogram-service/internal/planogram"
)

// Template describes one built-in store layout.
type Template struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Shelves         int    `json:"shelves"`
	MinSKUs         int    `json:"min_skus"`
	MaxSKUs         int    `json:"max_skus"`
	PremiumRequired bool   `json:"premium_required"`
}

// Names returns the list of built-in store template names.
func Names() []string {
	return []string{
		"flagship",
		"standard",
		"express",
	}
}

// IsTemplate checks if a template name is known.
func IsTemplate(name string) bool {
	known := make(map[string]bool, len(Names()))
	for _, n := range Names() {
		known[n] = true
	}
	return known[name]
}

// Templates returns the built-in templates in registry order.
func Templates() []Template {
	return []Template{
		{
			Name:            "flagship",
			Description:     "Full-range flagship wall with premium eye-level bays",
			Shelves:         6,
			MinSKUs:         150,
			MaxSKUs:         500,
			PremiumRequired: true,
		},
		{
			Name:        "standard",
			Description: "Core accessory assortment for neighborhood stores",
			Shelves:     5,
			MinSKUs:     50,
			MaxSKUs:     150,
		},
		{
			Name:        "express",
			Description: "Bestseller-only lineup for transit and kiosk formats",
			Shelves:     3,
			MinSKUs:     20,
			MaxSKUs:     50,
		},
	}
}

// Build returns a populated store for the named template.
func Build(name string) (*planogram.Store, error) {
	switch name {
	case "flagship":
		return buildFlagship()
	case "standard":
		return buildStandard()
	case "express":
		return buildExpress()
	default:
		return nil, fmt.Errorf("unknown store template %q", name)
	}
}

// shelfSpec is one shelf line of a template table.
type shelfSpec struct {
	id     string
	name   string
	width  float64
	height float64
	depth  float64
	y      float64
	typ    planogram.ShelfType
	eye    float64
}

func buildShelves(specs []shelfSpec) ([]*planogram.Shelf, error) {
	shelves := make([]*planogram.Shelf, 0, len(specs))
	for _, s := range specs {
		shelf, err := planogram.NewShelf(planogram.Shelf{
			ID:            s.id,
			Name:          s.name,
			Width:         s.width,
			Height:        s.height,
			Depth:         s.depth,
			Y:             s.y,
			Type:          s.typ,
			EyeLevelScore: s.eye,
		})
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, shelf)
	}
	return shelves, nil
}

func buildFlagship() (*planogram.Store, error) {
	shelves, err := buildShelves([]shelfSpec{
		{"base", "Base Shelf", 180, 40, 45, 20, planogram.ShelfStorage, 0.1},
		{"lower", "Lower Shelf", 180, 30, 40, 65, planogram.ShelfStandard, 0.35},
		{"middle", "Middle Shelf", 180, 30, 40, 100, planogram.ShelfStandard, 0.6},
		{"eye", "Eye Level Shelf", 180, 30, 35, 135, planogram.ShelfPremium, 0.95},
		{"upper", "Upper Premium Shelf", 180, 30, 35, 170, planogram.ShelfPremium, 0.8},
		{"top", "Top Shelf", 180, 25, 40, 205, planogram.ShelfStandard, 0.4},
	})
	if err != nil {
		return nil, err
	}
	return planogram.NewStore(planogram.Store{
		Type:                 planogram.StoreFlagship,
		Name:                 "Flagship Store Template",
		TotalAreaSqm:         80,
		AccessoryAreaSqm:     20,
		CustomerFlow:         planogram.FlowHigh,
		RestockFrequencyDays: 2,
		Shelves:              shelves,
		Rules: planogram.Rules{
			MinSKUsPerCategory: 3,
		},
		PlacementRules: planogram.PlacementRules{CategoryGrouping: true},
		Weights: planogram.Weights{
			SalesVelocity: 0.3,
			AttachRate:    0.2,
			Profitability: 0.3,
			Novelty:       0.2,
		},
	})
}

func buildStandard() (*planogram.Store, error) {
	shelves, err := buildShelves([]shelfSpec{
		{"bottom", "Bottom Shelf", 150, 35, 40, 20, planogram.ShelfStandard, 0.2},
		{"lower", "Lower Shelf", 150, 30, 40, 60, planogram.ShelfStandard, 0.4},
		{"middle", "Middle Shelf", 150, 30, 40, 95, planogram.ShelfStandard, 0.6},
		{"eye", "Eye Level Shelf", 150, 30, 35, 130, planogram.ShelfPremium, 0.9},
		{"top", "Top Shelf", 150, 25, 35, 165, planogram.ShelfStandard, 0.5},
	})
	if err != nil {
		return nil, err
	}
	return planogram.NewStore(planogram.Store{
		Type:                 planogram.StoreStandard,
		Name:                 "Standard Store Template",
		TotalAreaSqm:         30,
		AccessoryAreaSqm:     8,
		CustomerFlow:         planogram.FlowMedium,
		RestockFrequencyDays: 3,
		Shelves:              shelves,
		Rules: planogram.Rules{
			MinSKUsPerCategory: 2,
			FilterBySalesRank:  true,
			MaxRankIncluded:    150,
		},
		PlacementRules: planogram.PlacementRules{CategoryGrouping: true},
		Weights: planogram.Weights{
			SalesVelocity: 0.4,
			AttachRate:    0.3,
			Novelty:       0.3,
		},
	})
}

func buildExpress() (*planogram.Store, error) {
	shelves, err := buildShelves([]shelfSpec{
		{"bottom", "Bottom Shelf", 120, 35, 40, 20, planogram.ShelfStandard, 0.2},
		{"middle", "Middle Shelf", 120, 30, 40, 60, planogram.ShelfStandard, 0.5},
		{"eye", "Eye Level Shelf", 120, 30, 35, 95, planogram.ShelfPremium, 0.9},
	})
	if err != nil {
		return nil, err
	}
	return planogram.NewStore(planogram.Store{
		Type:                 planogram.StoreExpress,
		Name:                 "Express Store Template",
		TotalAreaSqm:         12,
		AccessoryAreaSqm:     4,
		CustomerFlow:         planogram.FlowHigh,
		RestockFrequencyDays: 2,
		Shelves:              shelves,
		Rules: planogram.Rules{
			OnlyBestsellers: true,
			MaxSKUsTotal:    50,
		},
		Weights: planogram.Weights{
			SalesVelocity: 0.5,
			AttachRate:    0.3,
			Novelty:       0.2,
		},
	})
}
