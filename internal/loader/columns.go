package loader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// requiredColumns must resolve for a tabular catalog to parse at all.
var requiredColumns = []string{"product_id", "product_name", "width", "height", "depth"}

// headerAliases maps common header variants to canonical field names.
var headerAliases = map[string]string{
	"id":           "product_id",
	"sku":          "product_id",
	"sifra":        "product_id",
	"name":         "product_name",
	"naziv":        "product_name",
	"weekly_sales": "avg_weekly_sales",
	"stock":        "current_stock",
	"cijena":       "price",
}

// normalizeHeader folds a header cell to a canonical key: lower case,
// diacritics folded, separator runs collapsed to single underscores.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.Map(func(r rune) rune {
		switch r {
		case 'š':
			return 's'
		case 'č', 'ć':
			return 'c'
		case 'ž':
			return 'z'
		case 'đ':
			return 'd'
		default:
			return r
		}
	}, h)
	parts := strings.FieldsFunc(h, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(parts, "_")
}

// resolveColumns maps header cells to canonical field indices. Duplicate
// headers keep the first occurrence; missing required columns are fatal.
func resolveColumns(headers []string) (map[string]int, error) {
	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if canonical, ok := headerAliases[key]; ok {
			log.Debug().Str("header", h).Str("field", canonical).Msg("Header alias match")
			key = canonical
		}
		if key == "" {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}

	for _, field := range requiredColumns {
		if _, ok := cols[field]; !ok {
			return nil, fmt.Errorf("catalog is missing required column %q", field)
		}
	}
	return cols, nil
}

// mapFields converts one raw row into a productDoc. Any unparseable value
// rejects the whole row; values are never repaired.
func mapFields(fields []string, cols map[string]int, number int) (*productDoc, []Warning) {
	var warns []Warning

	get := func(field string) string {
		idx, ok := cols[field]
		if !ok || idx >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[idx])
	}
	getFloat := func(field string) float64 {
		raw := get(field)
		if raw == "" {
			return 0
		}
		v, err := parseNumber(raw)
		if err != nil {
			warns = append(warns, Warning{Row: number, Message: fmt.Sprintf("invalid %s %q, skipping row", field, raw)})
			return 0
		}
		return v
	}
	getInt := func(field string) int {
		raw := get(field)
		if raw == "" {
			return 0
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			warns = append(warns, Warning{Row: number, Message: fmt.Sprintf("invalid %s %q, skipping row", field, raw)})
			return 0
		}
		return v
	}

	doc := &productDoc{
		ProductID:        get("product_id"),
		ProductName:      get("product_name"),
		Series:           get("series"),
		Category:         get("category"),
		Subcategory:      get("subcategory"),
		Brand:            get("brand"),
		Color:            get("color"),
		Width:            getFloat("width"),
		Height:           getFloat("height"),
		Depth:            getFloat("depth"),
		Weight:           getFloat("weight"),
		QtySoldLastWeek:  getInt("qty_sold_last_week"),
		QtySoldLastMonth: getInt("qty_sold_last_month"),
		AvgWeeklySales:   getFloat("avg_weekly_sales"),
		TotalQty:         getInt("total_qty"),
		CurrentStock:     getInt("current_stock"),
		MinStock:         getInt("min_stock"),
		MinFacings:       getInt("min_facings"),
		MaxFacings:       getInt("max_facings"),
		Price:            getFloat("price"),
		Profit:           getFloat("profit"),
		LaunchDate:       get("launch_date"),
		Status:           get("status"),
		AttachRate:       getFloat("attach_rate"),
		BundleFrequency:  getInt("bundle_frequency"),
	}

	if doc.ProductID == "" {
		warns = append(warns, Warning{Row: number, Message: "missing product_id, skipping row"})
	}
	if doc.ProductName == "" {
		warns = append(warns, Warning{Row: number, Message: "missing product_name, skipping row"})
	}

	if len(warns) > 0 {
		return nil, warns
	}
	return doc, nil
}

// parseNumber reads a decimal accepting both European and US separator
// conventions plus stray currency marks.
func parseNumber(value string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '€', '$', '£', ' ', ' ':
			return -1
		}
		return r
	}, strings.TrimSpace(value))
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric value")
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastComma > lastDot:
		// European convention, comma is the decimal separator
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case lastDot > lastComma:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	return strconv.ParseFloat(cleaned, 64)
}

// isEmptyRow reports whether every cell of a row is blank.
func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
