package planogram

import (
	"fmt"
	"sort"
)

// StoreType describes the retail format of a store.
type StoreType string

const (
	StoreFlagship StoreType = "flagship"
	StoreStandard StoreType = "standard"
	StoreExpress  StoreType = "express"
)

// ParseStoreType maps a raw store type string to a known StoreType.
// Unknown or empty values map to StoreStandard.
func ParseStoreType(s string) StoreType {
	switch StoreType(s) {
	case StoreFlagship, StoreExpress:
		return StoreType(s)
	default:
		return StoreStandard
	}
}

// CustomerFlow describes the expected foot traffic of a store.
type CustomerFlow string

const (
	FlowHigh   CustomerFlow = "high"
	FlowMedium CustomerFlow = "medium"
	FlowLow    CustomerFlow = "low"
)

// Rules govern which products a store accepts before placement begins.
// A zero value disables the corresponding rule.
type Rules struct {
	MinSKUsPerCategory   int     // Per-category floor enforced during filtering
	MaxSKUsPerCategory   int     // Per-category cap; 0 means uncapped
	MinWeeklySales       float64 // Products below this weekly-sales cutoff are dropped
	MaxFacingsPerProduct int     // Store-wide facing cap applied on top of product maxima
	OnlyBestsellers      bool    // Express stores: keep only the top sellers
	MaxSKUsTotal         int     // Bestseller truncation size (defaults to 30)
	FilterBySalesRank    bool    // Standard stores: keep only the top-ranked sellers
	MaxRankIncluded      int     // Sales-rank truncation size (defaults to 20)
}

// PlacementRules tune how products are arranged once accepted.
type PlacementRules struct {
	CategoryGrouping bool // Keep categories together and limit per-shelf category mixing
}

// Weights is the store's optimization weight vector: the relative importance
// of each scoring signal. The zero value is replaced by DefaultWeights at
// store construction.
type Weights struct {
	SalesVelocity float64 // Weight of the daily sales velocity signal
	AttachRate    float64 // Weight of the co-purchase attach rate
	Profitability float64 // Weight of the profit/value signal (balanced strategy)
	Novelty       float64 // Weight of the new-product boost
}

// DefaultWeights returns the standard weight vector.
func DefaultWeights() Weights {
	return Weights{
		SalesVelocity: 0.3,
		AttachRate:    0.3,
		Profitability: 0.4,
		Novelty:       0.2,
	}
}

// isZero reports whether no weight was provided at all.
func (w Weights) isZero() bool {
	return w.SalesVelocity == 0 && w.AttachRate == 0 && w.Profitability == 0 && w.Novelty == 0
}

// avgProductWidth is the assumed accessory width used for capacity estimates.
const avgProductWidth = 8.0

// Store is an ordered collection of shelves plus the rules and weights that
// govern one allocation run. Construct stores with NewStore; shelves are kept
// sorted bottom-to-top by their vertical position.
type Store struct {
	Type                 StoreType    // Retail format
	Name                 string       // Display name
	TotalAreaSqm         float64      // Full store footprint
	AccessoryAreaSqm     float64      // Footprint of the accessory section
	CustomerFlow         CustomerFlow // Expected foot traffic
	RestockFrequencyDays int          // Days between restock deliveries

	Shelves []*Shelf // Sorted by Y ascending

	Rules          Rules          // Product filtering rules
	PlacementRules PlacementRules // Arrangement rules
	Weights        Weights        // Optimization weight vector

	// Derived at construction
	TotalShelfArea    float64 // Sum of shelf areas
	EstimatedCapacity int     // Rough SKU capacity at the average accessory width
}

// NewStore validates s, sorts its shelves bottom-to-top and computes the
// derived figures. Rule defaults that depend on enabled flags are resolved
// here so later passes never re-check them.
func NewStore(s Store) (*Store, error) {
	if s.Name == "" {
		return nil, ErrInvalidStore{Field: "name", Reason: "cannot be empty"}
	}
	if s.Type == "" {
		s.Type = StoreStandard
	}
	if s.CustomerFlow == "" {
		s.CustomerFlow = FlowMedium
	}

	seen := make(map[string]bool, len(s.Shelves))
	for _, shelf := range s.Shelves {
		if seen[shelf.ID] {
			return nil, ErrInvalidStore{Field: "shelves", Reason: fmt.Sprintf("duplicate shelf id %q", shelf.ID)}
		}
		seen[shelf.ID] = true
	}
	sort.SliceStable(s.Shelves, func(i, j int) bool {
		return s.Shelves[i].Y < s.Shelves[j].Y
	})

	if s.Rules.OnlyBestsellers && s.Rules.MaxSKUsTotal == 0 {
		s.Rules.MaxSKUsTotal = 30
	}
	if s.Rules.FilterBySalesRank && s.Rules.MaxRankIncluded == 0 {
		s.Rules.MaxRankIncluded = 20
	}
	if s.Weights.isZero() {
		s.Weights = DefaultWeights()
	}

	totalWidth := 0.0
	for _, shelf := range s.Shelves {
		s.TotalShelfArea += shelf.Area
		totalWidth += shelf.Width
	}
	s.EstimatedCapacity = int(totalWidth / avgProductWidth)

	return &s, nil
}

// Reset clears every shelf's placements. Called at the start of each
// allocation run; the engine never appends to stale state.
func (st *Store) Reset() {
	for _, shelf := range st.Shelves {
		shelf.Placements = nil
	}
}

// ShelfByID returns the shelf with the given identifier.
func (st *Store) ShelfByID(id string) *Shelf {
	for _, shelf := range st.Shelves {
		if shelf.ID == id {
			return shelf
		}
	}
	return nil
}

// EyeLevelShelves returns the shelves at prime visibility, bottom-to-top.
func (st *Store) EyeLevelShelves() []*Shelf {
	var out []*Shelf
	for _, shelf := range st.Shelves {
		if shelf.IsEyeLevel {
			out = append(out, shelf)
		}
	}
	return out
}

// PremiumShelves returns the premium and promotional shelves, bottom-to-top.
func (st *Store) PremiumShelves() []*Shelf {
	var out []*Shelf
	for _, shelf := range st.Shelves {
		if shelf.IsPremium {
			out = append(out, shelf)
		}
	}
	return out
}

// FilterProducts applies the store rules to the candidate list: format
// truncation (express/standard), the minimum weekly-sales cutoff and the
// per-category limits. The input slice is not modified; relative input order
// is preserved except where a rule mandates a sales ranking.
func (st *Store) FilterProducts(products []*Product) []*Product {
	filtered := make([]*Product, len(products))
	copy(filtered, products)

	switch st.Type {
	case StoreExpress:
		if st.Rules.OnlyBestsellers {
			filtered = topBySales(filtered, st.Rules.MaxSKUsTotal)
		}
	case StoreStandard:
		if st.Rules.FilterBySalesRank {
			filtered = topBySales(filtered, st.Rules.MaxRankIncluded)
		}
	}

	if st.Rules.MinWeeklySales > 0 {
		kept := filtered[:0]
		for _, p := range filtered {
			if p.AvgWeeklySales >= st.Rules.MinWeeklySales {
				kept = append(kept, p)
			}
		}
		filtered = kept
	}

	if st.Rules.MinSKUsPerCategory > 0 {
		filtered = st.applyCategoryLimits(filtered)
	}

	return filtered
}

// topBySales returns the n best sellers, ranked by weekly sales with input
// order as the tie-breaker.
func topBySales(products []*Product, n int) []*Product {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].AvgWeeklySales > products[j].AvgWeeklySales
	})
	if len(products) > n {
		products = products[:n]
	}
	return products
}

// applyCategoryLimits keeps between MinSKUsPerCategory and MaxSKUsPerCategory
// products per category, preferring the better sellers. Categories are
// processed in first-appearance order so runs stay deterministic.
func (st *Store) applyCategoryLimits(products []*Product) []*Product {
	maxPer := st.Rules.MaxSKUsPerCategory
	if maxPer == 0 {
		maxPer = len(products)
	}

	var order []Category
	byCategory := make(map[Category][]*Product)
	for _, p := range products {
		if _, ok := byCategory[p.Category]; !ok {
			order = append(order, p.Category)
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	result := make([]*Product, 0, len(products))
	for _, cat := range order {
		group := byCategory[cat]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].AvgWeeklySales > group[j].AvgWeeklySales
		})
		take := maxPer
		if take > len(group) {
			take = len(group)
		}
		if take < st.Rules.MinSKUsPerCategory {
			take = st.Rules.MinSKUsPerCategory
			if take > len(group) {
				take = len(group)
			}
		}
		result = append(result, group[:take]...)
	}
	return result
}

// ShelfUtilization is one shelf's line in a store metrics snapshot.
type ShelfUtilization struct {
	ShelfID     string  `json:"shelf_id"`
	ShelfName   string  `json:"shelf_name"`
	Utilization float64 `json:"utilization"`
	Products    int     `json:"products"`
	Facings     int     `json:"facings"`
}

// StoreMetrics is a point-in-time summary of the store's shelf state.
type StoreMetrics struct {
	TotalShelves       int                `json:"total_shelves"`
	TotalShelfArea     float64            `json:"total_shelf_area"`
	EyeLevelShelves    int                `json:"eye_level_shelves"`
	PremiumShelves     int                `json:"premium_shelves"`
	AverageUtilization float64            `json:"average_utilization"`
	TotalProducts      int                `json:"total_products"`
	TotalFacings       int                `json:"total_facings"`
	ShelfUtilization   []ShelfUtilization `json:"shelf_utilization"`
}

// Metrics computes the current store metrics under the given gap size.
func (st *Store) Metrics(gapSize float64) StoreMetrics {
	m := StoreMetrics{
		TotalShelves:    len(st.Shelves),
		TotalShelfArea:  st.TotalShelfArea,
		EyeLevelShelves: len(st.EyeLevelShelves()),
		PremiumShelves:  len(st.PremiumShelves()),
	}

	totalUtil := 0.0
	for _, shelf := range st.Shelves {
		util := shelf.Utilization(gapSize)
		totalUtil += util
		facings := 0
		for _, pl := range shelf.Placements {
			facings += pl.Facings
		}
		m.TotalProducts += len(shelf.Placements)
		m.TotalFacings += facings
		m.ShelfUtilization = append(m.ShelfUtilization, ShelfUtilization{
			ShelfID:     shelf.ID,
			ShelfName:   shelf.Name,
			Utilization: util,
			Products:    len(shelf.Placements),
			Facings:     facings,
		})
	}
	if len(st.Shelves) > 0 {
		m.AverageUtilization = totalUtil / float64(len(st.Shelves))
	}
	return m
}

// Validate inspects the populated planogram and returns advisory findings.
// Findings never invalidate a run; they surface merchandising concerns.
func (st *Store) Validate(products map[string]*Product, gapSize float64) []string {
	var issues []string

	for _, shelf := range st.Shelves {
		util := shelf.Utilization(gapSize)
		if util < 30 {
			issues = append(issues, fmt.Sprintf("shelf %s is underutilized (%.1f%%)", shelf.Name, util))
		} else if util > 95 {
			issues = append(issues, fmt.Sprintf("shelf %s is overcrowded (%.1f%%)", shelf.Name, util))
		}
	}

	var eyeLevelPrices []float64
	for _, shelf := range st.EyeLevelShelves() {
		for _, pl := range shelf.Placements {
			if p, ok := products[pl.ProductID]; ok {
				eyeLevelPrices = append(eyeLevelPrices, p.Price)
			}
		}
	}
	if len(eyeLevelPrices) > 0 && len(products) > 0 {
		eyeAvg := 0.0
		for _, price := range eyeLevelPrices {
			eyeAvg += price
		}
		eyeAvg /= float64(len(eyeLevelPrices))
		allAvg := 0.0
		for _, p := range products {
			allAvg += p.Price
		}
		allAvg /= float64(len(products))
		if eyeAvg < allAvg {
			issues = append(issues, "eye level shelves have below-average priced items")
		}
	}

	categoryCounts := make(map[Category]int)
	for _, shelf := range st.Shelves {
		shelfCategories := make(map[Category]bool)
		for _, pl := range shelf.Placements {
			if p, ok := products[pl.ProductID]; ok {
				shelfCategories[p.Category] = true
				categoryCounts[p.Category]++
			}
		}
		if st.PlacementRules.CategoryGrouping && len(shelfCategories) > 4 {
			issues = append(issues, fmt.Sprintf("shelf %s has too many categories (%d)", shelf.Name, len(shelfCategories)))
		}
	}

	if st.Rules.MinSKUsPerCategory > 0 {
		cats := make([]Category, 0, len(categoryCounts))
		for cat := range categoryCounts {
			cats = append(cats, cat)
		}
		sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
		for _, cat := range cats {
			if categoryCounts[cat] < st.Rules.MinSKUsPerCategory {
				issues = append(issues, fmt.Sprintf("category %s has only %d SKUs (minimum: %d)",
					cat, categoryCounts[cat], st.Rules.MinSKUsPerCategory))
			}
		}
	}

	for _, shelf := range st.Shelves {
		for _, pl := range shelf.Placements {
			p, ok := products[pl.ProductID]
			if !ok {
				continue
			}
			if pl.Facings < p.MinFacings {
				issues = append(issues, fmt.Sprintf("product %s has insufficient facings", p.Name))
			} else if pl.Facings > p.MaxFacings {
				issues = append(issues, fmt.Sprintf("product %s has too many facings", p.Name))
			}
		}
	}

	return issues
}

// ReorderPriority ranks how urgently a product needs restocking.
type ReorderPriority string

const (
	ReorderUrgent ReorderPriority = "urgent"
	ReorderNormal ReorderPriority = "normal"
)

// ReorderItem is one line of the restock report.
type ReorderItem struct {
	ProductID        string          `json:"product_id"`
	ProductName      string          `json:"product_name"`
	CurrentStock     int             `json:"current_stock"`
	DaysOfStock      float64         `json:"days_of_stock"`
	RecommendedOrder int             `json:"recommended_order"`
	Priority         ReorderPriority `json:"priority"`
}

// ReorderList reports placed products whose stock will not last until the
// restock after next, urgent lines first, then by days of stock remaining.
func (st *Store) ReorderList(products map[string]*Product) []ReorderItem {
	var items []ReorderItem
	for _, shelf := range st.Shelves {
		for _, pl := range shelf.Placements {
			p, ok := products[pl.ProductID]
			if !ok {
				continue
			}
			if p.StockDays >= float64(st.RestockFrequencyDays)*1.5 {
				continue
			}
			priority := ReorderNormal
			if p.StockDays < float64(st.RestockFrequencyDays) {
				priority = ReorderUrgent
			}
			items = append(items, ReorderItem{
				ProductID:        p.ID,
				ProductName:      p.Name,
				CurrentStock:     p.CurrentStock,
				DaysOfStock:      p.StockDays,
				RecommendedOrder: int(p.SalesVelocity * float64(st.RestockFrequencyDays) * 2),
				Priority:         priority,
			})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if (a.Priority == ReorderUrgent) != (b.Priority == ReorderUrgent) {
			return a.Priority == ReorderUrgent
		}
		if a.DaysOfStock != b.DaysOfStock {
			return a.DaysOfStock < b.DaysOfStock
		}
		return a.ProductID < b.ProductID
	})
	return items
}

// ErrInvalidStore is returned when a store fails construction-time validation.
type ErrInvalidStore struct {
	Field  string
	Reason string
}

func (e ErrInvalidStore) Error() string {
	return "store: " + e.Field + ": " + e.Reason
}
