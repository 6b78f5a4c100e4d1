package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polica/planogram-service/internal/planogram"
)

// TestDetectFormat verifies extension mapping is case-insensitive and
// unknown extensions are rejected.
func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{"catalog.csv", FormatCSV, true},
		{"export.TSV", FormatCSV, true},
		{"dump.txt", FormatCSV, true},
		{"plan.xlsx", FormatXLSX, true},
		{"legacy.XLS", FormatXLSX, true},
		{"products.json", FormatJSON, true},
		{"README.md", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := DetectFormat(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParseJSONCatalog verifies both accepted document shapes and the
// field vocabulary.
func TestParseJSONCatalog(t *testing.T) {
	bare := `[
		{"product_id": "p1", "product_name": "Clear Case", "category": "case",
		 "width": 7.5, "height": 15, "depth": 1.5,
		 "qty_sold_last_month": 90, "avg_weekly_sales": 21, "attach_rate": 0.32},
		{"product_id": "p2", "product_name": "USB-C Cable", "category": "cable",
		 "width": 4, "height": 10, "depth": 2, "status": "new"}
	]`

	result, err := Parse([]byte(bare), FormatJSON)
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Empty(t, result.Warnings)

	p1 := result.Products[0]
	assert.Equal(t, planogram.CategoryCase, p1.Category)
	assert.Equal(t, 90, p1.TotalQty) // backfilled from the monthly figure
	assert.InDelta(t, 3.0, p1.SalesVelocity, 1e-9)
	assert.InDelta(t, 0.32, p1.AttachRate, 1e-9)
	assert.Equal(t, planogram.StatusNew, result.Products[1].Status)

	wrapped := `{"products": [{"product_id": "p1", "product_name": "X", "width": 5, "height": 10, "depth": 3}]}`
	result, err = Parse([]byte(wrapped), FormatJSON)
	require.NoError(t, err)
	assert.Len(t, result.Products, 1)

	_, err = Parse([]byte(`{"catalog": 1}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog document")
}

// TestJSONDuplicatesKeepFirst verifies duplicate ids warn and keep the
// earliest entry.
func TestJSONDuplicatesKeepFirst(t *testing.T) {
	doc := `[
		{"product_id": "p1", "product_name": "First", "width": 5, "height": 10, "depth": 3},
		{"product_id": "p1", "product_name": "Second", "width": 6, "height": 11, "depth": 4},
		{"product_id": "p2", "product_name": "Other", "width": 5, "height": 10, "depth": 3}
	]`

	result, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)

	require.Len(t, result.Products, 2)
	assert.Equal(t, "First", result.Products[0].Name)
	assert.Equal(t, "p2", result.Products[1].ID)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 2, result.Warnings[0].Row)
	assert.Contains(t, result.Warnings[0].Message, "first seen on row 1")
}

// TestFormatEquivalence verifies the same catalog loads identically from CSV
// and JSON sources.
func TestFormatEquivalence(t *testing.T) {
	csv := "product_id,product_name,series,category,width,height,depth," +
		"avg_weekly_sales,qty_sold_last_month,current_stock,min_stock,min_facings,max_facings,price,profit,attach_rate,status\n" +
		"CASE-1,Clear Case,iPhone 15,case,7.5,15,1.5,21,90,40,10,1,4,29.99,12.5,0.32,active\n" +
		"CABLE-1,USB-C Cable,,cable,4,10,2,35,150,80,20,2,6,19.99,8,0.45,new\n"

	json := `[
		{"product_id": "CASE-1", "product_name": "Clear Case", "series": "iPhone 15", "category": "case",
		 "width": 7.5, "height": 15, "depth": 1.5, "avg_weekly_sales": 21, "qty_sold_last_month": 90,
		 "current_stock": 40, "min_stock": 10, "min_facings": 1, "max_facings": 4,
		 "price": 29.99, "profit": 12.5, "attach_rate": 0.32, "status": "active"},
		{"product_id": "CABLE-1", "product_name": "USB-C Cable", "category": "cable",
		 "width": 4, "height": 10, "depth": 2, "avg_weekly_sales": 35, "qty_sold_last_month": 150,
		 "current_stock": 80, "min_stock": 20, "min_facings": 2, "max_facings": 6,
		 "price": 19.99, "profit": 8, "attach_rate": 0.45, "status": "new"}
	]`

	fromCSV, err := Parse([]byte(csv), FormatCSV)
	require.NoError(t, err)
	fromJSON, err := Parse([]byte(json), FormatJSON)
	require.NoError(t, err)

	require.Empty(t, fromCSV.Warnings)
	require.Empty(t, fromJSON.Warnings)
	assert.Equal(t, fromCSV.Products, fromJSON.Products)
}

// TestLoadReadsFiles verifies the file entry point dispatches by extension.
func TestLoadReadsFiles(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "catalog.csv")
	content := "product_id,product_name,width,height,depth\np1,Case,5,10,3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	result, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, result.Products, 1)

	_, err = Load(filepath.Join(dir, "catalog.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported catalog format")

	_, err = Load(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
}
