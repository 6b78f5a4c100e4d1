package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polica/planogram-service/internal/planogram"
)

// TestDetectDelimiter verifies the sniffer prefers the separator with the
// steadiest per-line counts.
func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		text string
		want rune
	}{
		{"comma", "name,price,qty\nCase,100,5", ','},
		{"semicolon", "name;price;qty\nCase;100;5", ';'},
		{"tab", "name\tprice\tqty\nCase\t100\t5", '\t'},
		{"pipe", "name|price|qty\nCase|100|5", '|'},
		{"comma inside values", "name;price\nSuper, duper;100", ';'},
		{"empty input", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.text))
		})
	}
}

// TestSplitQuoted verifies quoted fields keep their delimiters and escaped
// quotes.
func TestSplitQuoted(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted delimiter", `"x, y",z`, []string{"x, y", "z"}},
		{"escaped quote", `"he said ""hi""",ok`, []string{`he said "hi"`, "ok"}},
		{"unterminated quote", `"abc,def`, []string{"abc,def"}},
		{"trailing empty field", "a,b,", []string{"a", "b", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitQuoted(tt.line, ','))
		})
	}
}

// TestDetectEncoding verifies the charset sniffer separates UTF-8 from the
// two Central European single-byte encodings.
func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Encoding
	}{
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, EncodingUTF8},
		{"plain ascii", []byte("product_id,name"), EncodingUTF8},
		{"utf8 diacritics", []byte("košulja"), EncodingUTF8},
		{"cp1250 caron bytes", []byte{'K', 'o', 0x9A, 'u', 'l', 'j', 'a'}, EncodingWindows1250},
		{"iso-8859-2 caron bytes", []byte{'K', 'o', 0xB9, 'u', 'l', 'j', 'a', ' ', 0xA9, 0xAE}, EncodingISO88592},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEncoding(tt.data))
		})
	}
}

// TestDecodeText verifies single-byte decoding and the valid-UTF-8
// passthrough guard.
func TestDecodeText(t *testing.T) {
	got, err := DecodeText([]byte{0x8A}, EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, "Š", got)

	got, err = DecodeText([]byte{0xA9}, EncodingISO88592)
	require.NoError(t, err)
	assert.Equal(t, "Š", got)

	// Valid UTF-8 must never be re-decoded, whatever the caller claims.
	got, err = DecodeText([]byte("š"), EncodingWindows1250)
	require.NoError(t, err)
	assert.Equal(t, "š", got)

	got, err = DecodeText([]byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

// TestParseCSVCatalog verifies header aliasing, quoted fields and European
// decimals on the happy path.
func TestParseCSVCatalog(t *testing.T) {
	csv := "Product ID,Name,category,width,height,depth,price,avg_weekly_sales,status\n" +
		`CASE-001,"Clear Case, MagSafe",case,"7,5",15,1.2,"29,99",14,active` + "\n"

	result, err := Parse([]byte(csv), FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1, result.Rows)

	p := result.Products[0]
	assert.Equal(t, "CASE-001", p.ID)
	assert.Equal(t, "Clear Case, MagSafe", p.Name)
	assert.Equal(t, planogram.CategoryCase, p.Category)
	assert.InDelta(t, 7.5, p.Width, 1e-9)
	assert.InDelta(t, 1.2, p.Depth, 1e-9)
	assert.InDelta(t, 29.99, p.Price, 1e-9)
	assert.Equal(t, planogram.StatusActive, p.Status)
	assert.InDelta(t, 2.0, p.SalesVelocity, 1e-9)
	assert.Equal(t, 56, p.TotalQty) // 14 weekly * 4, no monthly figure
}

// TestParseCSVSkipsBadRows verifies every malformed line is reported with its
// file line number and excluded, not repaired.
func TestParseCSVSkipsBadRows(t *testing.T) {
	csv := "product_id,product_name,width,height,depth\n" +
		"p1,Good,5,10,3\n" +
		"p2,BadWidth,abc,10,3\n" +
		",NoID,5,10,3\n" +
		"p1,Dup,5,10,3\n" +
		"p4,NegWidth,-5,10,3\n"

	result, err := Parse([]byte(csv), FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Rows)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Good", result.Products[0].Name)

	require.Len(t, result.Warnings, 4)
	assert.Equal(t, 3, result.Warnings[0].Row)
	assert.Contains(t, result.Warnings[0].Message, `invalid width "abc"`)
	assert.Equal(t, 4, result.Warnings[1].Row)
	assert.Contains(t, result.Warnings[1].Message, "missing product_id")
	assert.Equal(t, 5, result.Warnings[2].Row)
	assert.Contains(t, result.Warnings[2].Message, `duplicate product id "p1"`)
	assert.Contains(t, result.Warnings[2].Message, "first seen on row 2")
	assert.Equal(t, 6, result.Warnings[3].Row)
	assert.Contains(t, result.Warnings[3].Message, "width")
}

// TestParseCSVRequiresColumns verifies a catalog without the dimension
// columns fails outright.
func TestParseCSVRequiresColumns(t *testing.T) {
	_, err := Parse([]byte("product_id,product_name,width,height\np1,X,5,10\n"), FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "depth"`)
}

// TestParseCSVWindows1250 verifies legacy single-byte exports decode before
// parsing.
func TestParseCSVWindows1250(t *testing.T) {
	data := []byte("product_id,product_name,width,height,depth\np1,Slu")
	data = append(data, 0x9A) // š in Windows-1250
	data = append(data, []byte("alice,5,10,3\n")...)

	result, err := Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Slušalice", result.Products[0].Name)
}

// TestParseCSVSemicolonEuropean verifies the semicolon-and-decimal-comma
// convention common to European exports.
func TestParseCSVSemicolonEuropean(t *testing.T) {
	csv := "product_id;product_name;width;height;depth;price\n" +
		"p1;Punjač;8,5;12;3,2;24,99\n"

	result, err := Parse([]byte(csv), FormatCSV)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	p := result.Products[0]
	assert.Equal(t, "Punjač", p.Name)
	assert.InDelta(t, 8.5, p.Width, 1e-9)
	assert.InDelta(t, 3.2, p.Depth, 1e-9)
	assert.InDelta(t, 24.99, p.Price, 1e-9)
}

// TestParseNumber verifies separator handling across conventions.
func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12.5", 12.5, false},
		{"12,5", 12.5, false},
		{"1.234,56", 1234.56, false},
		{"1,234.56", 1234.56, false},
		{"€29.99", 29.99, false},
		{"1 250", 1250, false},
		{"", 0, true},
		{"n/a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
