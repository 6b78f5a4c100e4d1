package planogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewProductDerivedFields verifies that the derived signals are computed
// once at construction.
func TestNewProductDerivedFields(t *testing.T) {
	p, err := NewProduct(Product{
		ID:             "ACC-001",
		Name:           "Clear Case",
		Category:       CategoryCase,
		Width:          8,
		Height:         16,
		Depth:          2,
		AvgWeeklySales: 70,
		CurrentStock:   50,
		MinStock:       10,
		MinFacings:     1,
		MaxFacings:     4,
		Price:          29.9,
	})
	require.NoError(t, err)

	assert.InDelta(t, 10.0, p.SalesVelocity, 1e-9) // 70 / 7
	assert.InDelta(t, 5.0, p.StockDays, 1e-9)      // 50 / 10
	assert.False(t, p.NeedsRestock)
	assert.InDelta(t, 29.9, p.EffectiveValue, 1e-9) // no profit, price fallback
	assert.Equal(t, 280, p.TotalQty)                // backfilled from weekly sales
}

// TestNewProductStockDaysCeiling verifies the no-velocity fallback.
func TestNewProductStockDaysCeiling(t *testing.T) {
	p, err := NewProduct(Product{
		ID:           "ACC-002",
		Width:        5,
		Height:       10,
		Depth:        2,
		CurrentStock: 3,
		MinStock:     5,
	})
	require.NoError(t, err)

	assert.InDelta(t, 999, p.StockDays, 1e-9)
	assert.True(t, p.NeedsRestock)
}

// TestNewProductOptionalDefaults verifies that optional fields are resolved
// exactly once at construction.
func TestNewProductOptionalDefaults(t *testing.T) {
	p, err := NewProduct(Product{
		ID:               "ACC-003",
		Width:            5,
		Height:           10,
		Depth:            2,
		QtySoldLastMonth: 120,
		Profit:           12.5,
	})
	require.NoError(t, err)

	assert.Equal(t, CategoryOther, p.Category)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, 1, p.MinFacings)
	assert.Equal(t, 1, p.MaxFacings)
	assert.Equal(t, 120, p.TotalQty) // last-month signal preferred over weekly estimate
	assert.InDelta(t, 12.5, p.EffectiveValue, 1e-9)
	assert.Zero(t, p.AttachRate)
	assert.Zero(t, p.BundleFrequency)
}

// TestNewProductValidation verifies the construction-time invariants.
func TestNewProductValidation(t *testing.T) {
	base := Product{ID: "ACC-010", Width: 5, Height: 10, Depth: 2}

	tests := []struct {
		name   string
		mutate func(p *Product)
		field  string
	}{
		{
			name:   "empty id",
			mutate: func(p *Product) { p.ID = "" },
			field:  "id",
		},
		{
			name:   "zero width",
			mutate: func(p *Product) { p.Width = 0 },
			field:  "width",
		},
		{
			name:   "negative height",
			mutate: func(p *Product) { p.Height = -1 },
			field:  "height",
		},
		{
			name:   "zero depth",
			mutate: func(p *Product) { p.Depth = 0 },
			field:  "depth",
		},
		{
			name:   "attach rate above one",
			mutate: func(p *Product) { p.AttachRate = 1.2 },
			field:  "attach_rate",
		},
		{
			name:   "min facings above max",
			mutate: func(p *Product) { p.MinFacings = 4; p.MaxFacings = 2 },
			field:  "min_facings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := NewProduct(p)
			require.Error(t, err)
			var invalid ErrInvalidProduct
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

// TestFacingsFor verifies the three facing calculators and their clamping.
func TestFacingsFor(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		mode    FacingMode
		want    int
	}{
		{
			name: "sales based follows velocity tiers",
			product: Product{
				ID: "p", Width: 5, Height: 10, Depth: 2,
				AvgWeeklySales: 140, // velocity 20/day
				MinFacings:     1, MaxFacings: 6,
			},
			mode: FacingSales,
			want: 3, // 20/10 + 1
		},
		{
			name: "sales based clamps to max",
			product: Product{
				ID: "p", Width: 5, Height: 10, Depth: 2,
				AvgWeeklySales: 700, // velocity 100/day
				MinFacings:     1, MaxFacings: 4,
			},
			mode: FacingSales,
			want: 4,
		},
		{
			name: "stock based drops to minimum when restocking",
			product: Product{
				ID: "p", Width: 5, Height: 10, Depth: 2,
				CurrentStock: 5, MinStock: 10,
				MinFacings: 2, MaxFacings: 6,
			},
			mode: FacingStock,
			want: 2,
		},
		{
			name: "stock based scales with cover",
			product: Product{
				ID: "p", Width: 5, Height: 10, Depth: 2,
				CurrentStock: 90, MinStock: 10,
				MinFacings: 1, MaxFacings: 6,
			},
			mode: FacingStock,
			want: 6, // ratio 3 -> 10 facings, clamped
		},
		{
			name: "balanced averages sales and stock",
			product: Product{
				ID: "p", Width: 5, Height: 10, Depth: 2,
				AvgWeeklySales: 140, // sales facings 3
				CurrentStock:   50, MinStock: 10, // stock facings 5
				MinFacings: 1, MaxFacings: 6,
			},
			mode: FacingBalanced,
			want: 4, // (3 + 5) / 2
		},
		{
			name: "balanced respects minimum",
			product: Product{
				ID: "p", Width: 5, Height: 10, Depth: 2,
				MinFacings: 2, MaxFacings: 5,
			},
			mode: FacingBalanced,
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProduct(tt.product)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.FacingsFor(tt.mode))
		})
	}
}

// TestParseCategory verifies known categories round-trip and unknowns fall
// back to other.
func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryCase, ParseCategory("case"))
	assert.Equal(t, CategoryWatchBand, ParseCategory("watch_band"))
	assert.Equal(t, CategoryOther, ParseCategory("gadget"))
	assert.Equal(t, CategoryOther, ParseCategory(""))
}

// TestParseStatus verifies unknown statuses fall back to active.
func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusNew, ParseStatus("new"))
	assert.Equal(t, StatusDiscontinued, ParseStatus("discontinued"))
	assert.Equal(t, StatusActive, ParseStatus("retired"))
	assert.Equal(t, StatusActive, ParseStatus(""))
}
