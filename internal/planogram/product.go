package planogram

import "fmt"

// Category classifies an accessory SKU into one of the fixed merchandising groups.
type Category string

const (
	CategoryCase            Category = "case"
	CategoryCable           Category = "cable"
	CategoryAdapter         Category = "adapter"
	CategoryScreenProtector Category = "screen_protector"
	CategoryCharger         Category = "charger"
	CategoryMount           Category = "mount"
	CategoryAudio           Category = "audio"
	CategoryKeyboard        Category = "keyboard"
	CategoryMouse           Category = "mouse"
	CategoryPencil          Category = "pencil"
	CategoryWatchBand       Category = "watch_band"
	CategoryOther           Category = "other"
)

// ParseCategory maps a raw category string to a known Category.
// Unknown values map to CategoryOther.
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryCase, CategoryCable, CategoryAdapter, CategoryScreenProtector,
		CategoryCharger, CategoryMount, CategoryAudio, CategoryKeyboard,
		CategoryMouse, CategoryPencil, CategoryWatchBand:
		return Category(s)
	default:
		return CategoryOther
	}
}

// Status describes the lifecycle state of a product.
type Status string

const (
	StatusActive       Status = "active"
	StatusDiscontinued Status = "discontinued"
	StatusSeasonal     Status = "seasonal"
	StatusNew          Status = "new"
)

// ParseStatus maps a raw status string to a known Status.
// Unknown or empty values map to StatusActive.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusDiscontinued, StatusSeasonal, StatusNew:
		return Status(s)
	default:
		return StatusActive
	}
}

// FacingMode selects which facing calculator FacingsFor uses.
type FacingMode string

const (
	FacingSales    FacingMode = "sales_based" // facings follow daily sales velocity
	FacingStock    FacingMode = "stock_based" // facings follow stock cover
	FacingBalanced FacingMode = "balanced"    // average of the sales and stock calculators
)

// ParseFacingMode maps a raw mode string to a known FacingMode. Unlike the
// catalog parsers it rejects unknown values, since modes arrive as request
// parameters rather than dirty source data.
func ParseFacingMode(s string) (FacingMode, bool) {
	switch FacingMode(s) {
	case FacingSales, FacingStock, FacingBalanced:
		return FacingMode(s), true
	default:
		return "", false
	}
}

// Product is one SKU in the catalog together with its derived scoring signals.
// Construct products with NewProduct so optional fields are defaulted and the
// derived fields are populated exactly once; scoring code never re-checks
// presence of optional data.
type Product struct {
	// Identity
	ID          string   // SKU identifier
	Name        string   // Display name
	Series      string   // Core device tag (e.g. the phone generation it fits)
	Category    Category // Merchandising category
	Subcategory string   // Free-form refinement of Category
	Brand       string   // Manufacturer
	Color       string   // Variant color

	// Dimensions
	Width  float64 // cm, single facing
	Height float64 // cm
	Depth  float64 // cm
	Weight float64 // grams

	// Sales signals
	QtySoldLastWeek  int     // Units sold in the last week
	QtySoldLastMonth int     // Units sold in the last month
	AvgWeeklySales   float64 // Rolling weekly sales average
	TotalQty         int     // Raw total-quantity signal; backfilled when absent
	CurrentStock     int     // Units on hand
	MinStock         int     // Reorder floor

	// Display constraints
	MinFacings int // Minimum adjacent display slots (>= 1)
	MaxFacings int // Maximum adjacent display slots (>= MinFacings)

	// Commercial attributes
	Price      float64 // Retail price; 0 when unknown
	Profit     float64 // Profit per unit; 0 when unknown
	LaunchDate string  // ISO date string, informational only
	Status     Status  // Lifecycle state

	// Co-purchase enrichment, defaulted to zero when absent
	AttachRate      float64 // Probability of co-purchase with the core device, [0,1]
	BundleFrequency int     // Co-purchase observation count

	// Derived at construction
	SalesVelocity  float64 // Units per day (AvgWeeklySales / 7)
	StockDays      float64 // Days of supply at current velocity; 999 when velocity is 0
	NeedsRestock   bool    // CurrentStock <= MinStock
	EffectiveValue float64 // Profit when known, otherwise Price

	// Transient, overwritten by the engine at the start of every run
	PriorityScore float64 // Strategy-independent priority used for the placement order
}

// stockDaysCeiling is reported when a product has no measurable velocity.
const stockDaysCeiling = 999

// NewProduct validates p, applies defaults for the optional fields and
// computes the derived signals. The returned product is safe to score
// without any further presence checks.
func NewProduct(p Product) (*Product, error) {
	if p.ID == "" {
		return nil, ErrInvalidProduct{ID: p.ID, Field: "id", Reason: "cannot be empty"}
	}
	if p.Width <= 0 {
		return nil, ErrInvalidProduct{ID: p.ID, Field: "width", Reason: "must be positive"}
	}
	if p.Height <= 0 {
		return nil, ErrInvalidProduct{ID: p.ID, Field: "height", Reason: "must be positive"}
	}
	if p.Depth <= 0 {
		return nil, ErrInvalidProduct{ID: p.ID, Field: "depth", Reason: "must be positive"}
	}
	if p.AttachRate < 0 || p.AttachRate > 1 {
		return nil, ErrInvalidProduct{ID: p.ID, Field: "attach_rate", Reason: "must be between 0 and 1"}
	}

	if p.Category == "" {
		p.Category = CategoryOther
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.MinFacings < 1 {
		p.MinFacings = 1
	}
	if p.MaxFacings < 1 {
		p.MaxFacings = p.MinFacings
	}
	if p.MinFacings > p.MaxFacings {
		return nil, ErrInvalidProduct{ID: p.ID, Field: "min_facings", Reason: "cannot exceed max_facings"}
	}
	if p.Price < 0 {
		p.Price = 0
	}
	if p.Profit < 0 {
		p.Profit = 0
	}
	if p.TotalQty == 0 {
		// Fall back to the strongest available sales signal.
		if p.QtySoldLastMonth > 0 {
			p.TotalQty = p.QtySoldLastMonth
		} else {
			p.TotalQty = int(p.AvgWeeklySales * 4)
		}
	}

	p.SalesVelocity = p.AvgWeeklySales / 7
	if p.SalesVelocity > 0 {
		p.StockDays = float64(p.CurrentStock) / p.SalesVelocity
	} else {
		p.StockDays = stockDaysCeiling
	}
	p.NeedsRestock = p.CurrentStock <= p.MinStock
	p.EffectiveValue = p.Profit
	if p.EffectiveValue == 0 {
		p.EffectiveValue = p.Price
	}

	return &p, nil
}

// FacingsFor returns the facing count the given calculator recommends,
// clamped to [MinFacings, MaxFacings].
func (p *Product) FacingsFor(mode FacingMode) int {
	switch mode {
	case FacingSales:
		return p.clampFacings(int(p.SalesVelocity/10) + 1)
	case FacingStock:
		if p.NeedsRestock {
			return p.MinFacings
		}
		stockRatio := 0.0
		if p.MinStock > 0 {
			stockRatio = float64(p.CurrentStock) / float64(p.MinStock*3)
		}
		return p.clampFacings(int(stockRatio*3) + 1)
	default: // FacingBalanced
		salesFacings := int(p.SalesVelocity/10) + 1
		stockFacings := 0
		if p.MinStock > 0 {
			stockFacings = p.CurrentStock / p.MinStock
		}
		return p.clampFacings((salesFacings + stockFacings) / 2)
	}
}

func (p *Product) clampFacings(n int) int {
	if n < p.MinFacings {
		return p.MinFacings
	}
	if n > p.MaxFacings {
		return p.MaxFacings
	}
	return n
}

// IsNew reports whether the product is in its launch window.
func (p *Product) IsNew() bool {
	return p.Status == StatusNew
}

// ErrInvalidProduct is returned when a product fails construction-time validation.
type ErrInvalidProduct struct {
	ID     string
	Field  string
	Reason string
}

func (e ErrInvalidProduct) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("product: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("product %s: %s: %s", e.ID, e.Field, e.Reason)
}
