package layout

import (
	"encoding/json"
	"fmt"

	"github.com/polica/planogram-service/internal/planogram"
)

// Document is the JSON store layout accepted from files and API requests.
// The shape follows the store template export format: a store_info header,
// a shelf list and optional rule and weight blocks.
type Document struct {
	StoreInfo  StoreInfo    `json:"store_info"`
	Shelves    []ShelfSpec  `json:"shelves"`
	Placement  *RulesSpec   `json:"placement_rules,omitempty"`
	ProductMix *MixSpec     `json:"product_mix_rules,omitempty"`
	Weights    *WeightsSpec `json:"optimization_weights,omitempty"`
}

// StoreInfo is the store header block of a layout document.
type StoreInfo struct {
	StoreType            string  `json:"store_type"`
	StoreName            string  `json:"store_name"`
	TotalAreaSqm         float64 `json:"total_area_sqm"`
	AccessoryAreaSqm     float64 `json:"accessory_area_sqm"`
	CustomerFlow         string  `json:"customer_flow"`
	RestockFrequencyDays int     `json:"restock_frequency_days"`
}

// ShelfSpec is one shelf line of a layout document.
type ShelfSpec struct {
	ShelfID       FlexID  `json:"shelf_id"`
	ShelfName     string  `json:"shelf_name"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Depth         float64 `json:"depth"`
	YPosition     float64 `json:"y_position"`
	ShelfType     string  `json:"shelf_type"`
	EyeLevelScore float64 `json:"eye_level_score"`
}

// RulesSpec is the placement rules block.
type RulesSpec struct {
	CategoryGrouping bool `json:"category_grouping"`
}

// MixSpec is the product mix rules block.
type MixSpec struct {
	MinSKUsPerCategory   int     `json:"min_skus_per_category"`
	MaxSKUsPerCategory   int     `json:"max_skus_per_category"`
	MinWeeklySales       float64 `json:"min_weekly_sales"`
	MaxFacingsPerProduct int     `json:"max_facings_per_product"`
	OnlyBestsellers      bool    `json:"only_bestsellers"`
	MaxSKUsTotal         int     `json:"max_skus_total"`
	FilterBySalesRank    bool    `json:"filter_by_sales_rank"`
	MaxRankIncluded      int     `json:"max_rank_included"`
}

// WeightsSpec is the optimization weights block.
type WeightsSpec struct {
	SalesVelocity      float64 `json:"sales_velocity"`
	AttachRate         float64 `json:"attach_rate"`
	Profitability      float64 `json:"profitability"`
	NewProductPriority float64 `json:"new_product_priority"`
}

// FlexID accepts both string and numeric shelf identifiers. Template exports
// use numeric ids, hand-written layouts usually use slugs.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("shelf_id must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

// Decode parses a layout document and builds the store it describes.
func Decode(data []byte) (*planogram.Store, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid layout document: %w", err)
	}
	return doc.Build()
}

// Build constructs a validated store from the document.
func (d *Document) Build() (*planogram.Store, error) {
	if len(d.Shelves) == 0 {
		return nil, fmt.Errorf("layout defines no shelves")
	}

	shelves := make([]*planogram.Shelf, 0, len(d.Shelves))
	for i, spec := range d.Shelves {
		id := string(spec.ShelfID)
		if id == "" {
			id = fmt.Sprintf("shelf-%d", i)
		}
		shelf, err := planogram.NewShelf(planogram.Shelf{
			ID:            id,
			Name:          spec.ShelfName,
			Width:         spec.Width,
			Height:        spec.Height,
			Depth:         spec.Depth,
			Y:             spec.YPosition,
			Type:          planogram.ParseShelfType(spec.ShelfType),
			EyeLevelScore: spec.EyeLevelScore,
		})
		if err != nil {
			return nil, fmt.Errorf("shelf %d: %w", i, err)
		}
		shelves = append(shelves, shelf)
	}

	store := planogram.Store{
		Type:                 planogram.ParseStoreType(d.StoreInfo.StoreType),
		Name:                 d.StoreInfo.StoreName,
		TotalAreaSqm:         d.StoreInfo.TotalAreaSqm,
		AccessoryAreaSqm:     d.StoreInfo.AccessoryAreaSqm,
		CustomerFlow:         parseFlow(d.StoreInfo.CustomerFlow),
		RestockFrequencyDays: d.StoreInfo.RestockFrequencyDays,
		Shelves:              shelves,
	}
	if d.Placement != nil {
		store.PlacementRules = planogram.PlacementRules{
			CategoryGrouping: d.Placement.CategoryGrouping,
		}
	}
	if d.ProductMix != nil {
		store.Rules = planogram.Rules{
			MinSKUsPerCategory:   d.ProductMix.MinSKUsPerCategory,
			MaxSKUsPerCategory:   d.ProductMix.MaxSKUsPerCategory,
			MinWeeklySales:       d.ProductMix.MinWeeklySales,
			MaxFacingsPerProduct: d.ProductMix.MaxFacingsPerProduct,
			OnlyBestsellers:      d.ProductMix.OnlyBestsellers,
			MaxSKUsTotal:         d.ProductMix.MaxSKUsTotal,
			FilterBySalesRank:    d.ProductMix.FilterBySalesRank,
			MaxRankIncluded:      d.ProductMix.MaxRankIncluded,
		}
	}
	if d.Weights != nil {
		store.Weights = planogram.Weights{
			SalesVelocity: d.Weights.SalesVelocity,
			AttachRate:    d.Weights.AttachRate,
			Profitability: d.Weights.Profitability,
			Novelty:       d.Weights.NewProductPriority,
		}
	}

	return planogram.NewStore(store)
}

// parseFlow maps a raw flow string to a known CustomerFlow. Unknown values
// are left empty so store construction applies its default.
func parseFlow(s string) planogram.CustomerFlow {
	switch planogram.CustomerFlow(s) {
	case planogram.FlowHigh, planogram.FlowMedium, planogram.FlowLow:
		return planogram.CustomerFlow(s)
	default:
		return ""
	}
}
