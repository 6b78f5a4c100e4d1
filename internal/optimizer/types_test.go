package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polica/planogram-service/internal/planogram"
)

// TestParseStrategy accepts the five placement strategies and rejects
// everything else, including the internal bundle label.
func TestParseStrategy(t *testing.T) {
	for _, info := range Strategies() {
		parsed, ok := ParseStrategy(string(info.Name))
		assert.True(t, ok, "strategy %s", info.Name)
		assert.Equal(t, info.Name, parsed)
		assert.NotEmpty(t, info.Description)
	}

	for _, raw := range []string{"", "BALANCED", "bundle", "velocity"} {
		_, ok := ParseStrategy(raw)
		assert.False(t, ok, "raw %q", raw)
	}
}

// TestStrategiesStableOrder: discovery output keeps a fixed order with the
// default strategy last.
func TestStrategiesStableOrder(t *testing.T) {
	infos := Strategies()
	require.Len(t, infos, 5)
	assert.Equal(t, StrategySalesVelocity, infos[0].Name)
	assert.Equal(t, StrategyBalanced, infos[4].Name)
}

// TestBundleRequestValidate covers the bundle-specific checks on top of the
// base request validation.
func TestBundleRequestValidate(t *testing.T) {
	valid := func(t *testing.T) *BundleRequest {
		t.Helper()
		shelf := testShelf(t, planogram.Shelf{ID: "s1", Name: "Shelf 1"})
		return &BundleRequest{
			Store: testStoreWith(t, shelf),
			Products: []*planogram.Product{
				testProduct(t, planogram.Product{ID: "a", Name: "A", MinFacings: 1, MaxFacings: 1}),
				testProduct(t, planogram.Product{ID: "b", Name: "B", MinFacings: 1, MaxFacings: 1}),
			},
			Bundles: []BundleInput{{ProductIDs: []string{"a", "b"}, Frequency: 3}},
		}
	}

	require.NoError(t, valid(t).Validate(100))

	tests := []struct {
		name   string
		mutate func(*BundleRequest)
		field  string
		index  int
	}{
		{"nil store", func(r *BundleRequest) { r.Store = nil }, "store", 0},
		{"no products", func(r *BundleRequest) { r.Products = nil }, "products", 0},
		{"empty bundle", func(r *BundleRequest) { r.Bundles[0].ProductIDs = nil }, "bundles", 0},
		{"negative frequency", func(r *BundleRequest) { r.Bundles[0].Frequency = -1 }, "bundles", 0},
		{
			"second bundle empty",
			func(r *BundleRequest) { r.Bundles = append(r.Bundles, BundleInput{}) },
			"bundles", 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid(t)
			tt.mutate(req)

			err := req.Validate(100)
			require.Error(t, err)
			var invalid ErrInvalidRequest
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
			assert.Equal(t, tt.index, invalid.Index)
		})
	}
}

// TestOptimizationErrorUnwrap: stage errors expose the cause to errors.Is.
func TestOptimizationErrorUnwrap(t *testing.T) {
	err := &OptimizationError{Stage: StageFilter, Err: ErrNoProducts}
	assert.ErrorIs(t, err, ErrNoProducts)
	assert.Contains(t, err.Error(), "filter")
}
