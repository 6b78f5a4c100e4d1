package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polica/planogram-service/internal/planogram"
)

// TestRegistryIsConsistent verifies the template names, descriptions and the
// built stores agree with each other.
func TestRegistryIsConsistent(t *testing.T) {
	names := Names()
	require.Len(t, names, 3)

	templates := Templates()
	require.Len(t, templates, len(names))

	for i, tpl := range templates {
		assert.Equal(t, names[i], tpl.Name)
		assert.True(t, IsTemplate(tpl.Name))

		store, err := Build(tpl.Name)
		require.NoError(t, err)
		assert.Len(t, store.Shelves, tpl.Shelves, tpl.Name)
		if tpl.PremiumRequired {
			assert.NotEmpty(t, store.PremiumShelves(), tpl.Name)
		}
	}

	assert.False(t, IsTemplate("warehouse"))
	assert.False(t, IsTemplate(""))
}

// TestBuildTemplates verifies the shape and rules of each built-in template.
func TestBuildTemplates(t *testing.T) {
	t.Run("flagship", func(t *testing.T) {
		store, err := Build("flagship")
		require.NoError(t, err)

		assert.Equal(t, planogram.StoreFlagship, store.Type)
		require.Len(t, store.Shelves, 6)
		assert.Equal(t, "base", store.Shelves[0].ID)
		assert.Equal(t, "top", store.Shelves[5].ID)
		assert.Len(t, store.EyeLevelShelves(), 2)
		assert.Len(t, store.PremiumShelves(), 2)
		assert.Equal(t, 3, store.Rules.MinSKUsPerCategory)
		assert.True(t, store.PlacementRules.CategoryGrouping)
		assert.Equal(t, 135, store.EstimatedCapacity)
	})

	t.Run("standard", func(t *testing.T) {
		store, err := Build("standard")
		require.NoError(t, err)

		assert.Equal(t, planogram.StoreStandard, store.Type)
		require.Len(t, store.Shelves, 5)
		assert.True(t, store.Rules.FilterBySalesRank)
		assert.Equal(t, 150, store.Rules.MaxRankIncluded)
		assert.Equal(t, 2, store.Rules.MinSKUsPerCategory)
		assert.Equal(t, planogram.Weights{SalesVelocity: 0.4, AttachRate: 0.3, Novelty: 0.3}, store.Weights)
		assert.Equal(t, 3, store.RestockFrequencyDays)
	})

	t.Run("express", func(t *testing.T) {
		store, err := Build("express")
		require.NoError(t, err)

		assert.Equal(t, planogram.StoreExpress, store.Type)
		require.Len(t, store.Shelves, 3)
		assert.True(t, store.Rules.OnlyBestsellers)
		assert.Equal(t, 50, store.Rules.MaxSKUsTotal)
		assert.False(t, store.PlacementRules.CategoryGrouping)
		assert.Equal(t, planogram.FlowHigh, store.CustomerFlow)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Build("warehouse")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown store template")
	})
}

// TestShelvesClimbBottomToTop verifies every template orders its shelves by
// vertical position with eye level scores peaking near eye height.
func TestShelvesClimbBottomToTop(t *testing.T) {
	for _, name := range Names() {
		store, err := Build(name)
		require.NoError(t, err)

		for i := 1; i < len(store.Shelves); i++ {
			assert.Greater(t, store.Shelves[i].Y, store.Shelves[i-1].Y, name)
		}
		require.NotEmpty(t, store.EyeLevelShelves(), name)
		assert.GreaterOrEqual(t, store.EyeLevelShelves()[0].EyeLevelScore, 0.8, name)
	}
}

// layoutDoc is the template export format produced by the original planning
// tool: numeric shelf ids and snake_case blocks.
const layoutDoc = `{
	"store_info": {
		"store_type": "standard",
		"store_name": "Mall Kiosk 7",
		"total_area_sqm": 30,
		"accessory_area_sqm": 8,
		"customer_flow": "medium",
		"restock_frequency_days": 3
	},
	"shelves": [
		{"shelf_id": 0, "shelf_name": "Bottom Shelf", "width": 150, "height": 35, "depth": 40, "y_position": 20, "shelf_type": "standard", "eye_level_score": 0.2},
		{"shelf_id": 1, "shelf_name": "Middle Shelf", "width": 150, "height": 30, "depth": 40, "y_position": 60, "shelf_type": "standard", "eye_level_score": 0.5},
		{"shelf_id": "eye", "shelf_name": "Eye Level Shelf", "width": 150, "height": 30, "depth": 35, "y_position": 95, "shelf_type": "premium", "eye_level_score": 0.9}
	],
	"placement_rules": {"category_grouping": true, "min_facings_multiplier": 1.0},
	"product_mix_rules": {"min_skus_per_category": 2, "max_skus_total": 50},
	"optimization_weights": {"sales_velocity": 0.4, "attach_rate": 0.3, "new_product_priority": 0.3}
}`

// TestDecodeLayoutDocument verifies a full layout document round-trips into a
// populated store, including numeric shelf ids and the novelty weight alias.
func TestDecodeLayoutDocument(t *testing.T) {
	store, err := Decode([]byte(layoutDoc))
	require.NoError(t, err)

	assert.Equal(t, "Mall Kiosk 7", store.Name)
	assert.Equal(t, planogram.StoreStandard, store.Type)
	assert.Equal(t, planogram.FlowMedium, store.CustomerFlow)
	assert.Equal(t, 3, store.RestockFrequencyDays)
	assert.InDelta(t, 30.0, store.TotalAreaSqm, 1e-9)

	require.Len(t, store.Shelves, 3)
	assert.Equal(t, "0", store.Shelves[0].ID)
	assert.Equal(t, "1", store.Shelves[1].ID)
	assert.Equal(t, "eye", store.Shelves[2].ID)
	assert.True(t, store.Shelves[2].IsEyeLevel)
	assert.True(t, store.Shelves[2].IsPremium)

	assert.True(t, store.PlacementRules.CategoryGrouping)
	assert.Equal(t, 2, store.Rules.MinSKUsPerCategory)
	assert.Equal(t, 50, store.Rules.MaxSKUsTotal)
	assert.Equal(t, planogram.Weights{SalesVelocity: 0.4, AttachRate: 0.3, Novelty: 0.3}, store.Weights)
}

// TestDecodeLayoutDefaults verifies omitted blocks leave store construction
// defaults in place.
func TestDecodeLayoutDefaults(t *testing.T) {
	store, err := Decode([]byte(`{
		"store_info": {"store_name": "Bare"},
		"shelves": [
			{"shelf_name": "Only", "width": 100, "height": 30, "depth": 30, "y_position": 90, "eye_level_score": 0.5}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, planogram.StoreStandard, store.Type)
	assert.Equal(t, planogram.FlowMedium, store.CustomerFlow)
	assert.Equal(t, planogram.DefaultWeights(), store.Weights)
	require.Len(t, store.Shelves, 1)
	assert.Equal(t, "shelf-0", store.Shelves[0].ID)
	assert.Equal(t, planogram.ShelfStandard, store.Shelves[0].Type)
}

// TestDecodeLayoutErrors verifies malformed documents are rejected with
// located errors.
func TestDecodeLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "invalid json",
			doc:     `{"store_info":`,
			wantErr: "invalid layout document",
		},
		{
			name:    "no shelves",
			doc:     `{"store_info": {"store_name": "Empty"}, "shelves": []}`,
			wantErr: "no shelves",
		},
		{
			name:    "bad shelf dimensions",
			doc:     `{"store_info": {"store_name": "Bad"}, "shelves": [{"shelf_id": "a", "width": 0, "height": 30, "depth": 30}]}`,
			wantErr: "shelf 0",
		},
		{
			name:    "missing store name",
			doc:     `{"shelves": [{"shelf_id": "a", "width": 100, "height": 30, "depth": 30}]}`,
			wantErr: "name",
		},
		{
			name:    "boolean shelf id",
			doc:     `{"store_info": {"store_name": "X"}, "shelves": [{"shelf_id": true, "width": 100, "height": 30, "depth": 30}]}`,
			wantErr: "shelf_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
