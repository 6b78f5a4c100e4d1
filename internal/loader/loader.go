package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/polica/planogram-service/internal/planogram"
)

// Format identifies a catalog file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DetectFormat maps a file name to a catalog format by its extension.
func DetectFormat(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, true
	case ".xlsx", ".xls":
		return FormatXLSX, true
	case ".json":
		return FormatJSON, true
	default:
		return "", false
	}
}

// Options tune catalog parsing. The zero value auto-detects everything.
type Options struct {
	Encoding  Encoding // Source encoding for CSV; empty auto-detects
	Delimiter rune     // CSV field delimiter; 0 auto-detects
}

// Warning is one advisory finding raised while loading a catalog. Bad rows
// are reported and skipped, never silently repaired.
type Warning struct {
	Row     int    `json:"row,omitempty"` // 1-based source row; 0 when not row-scoped
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Row > 0 {
		return fmt.Sprintf("row %d: %s", w.Row, w.Message)
	}
	return w.Message
}

// Result is a loaded catalog: the products that survived validation plus the
// findings for everything that did not.
type Result struct {
	Products []*planogram.Product
	Warnings []Warning
	Rows     int // Data rows seen in the source, empty rows excluded
}

func (r *Result) warnf(row int, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Warning{Row: row, Message: fmt.Sprintf(format, args...)})
}

// Load reads the catalog file at path, picking the reader by file extension.
func Load(path string) (*Result, error) {
	return LoadWith(path, Options{})
}

// LoadWith reads the catalog file at path with explicit parse options.
func LoadWith(path string, opts Options) (*Result, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseWith(data, format, opts)
}

// Parse parses catalog bytes in the given format.
func Parse(data []byte, format Format) (*Result, error) {
	return ParseWith(data, format, Options{})
}

// ParseWith parses catalog bytes with explicit parse options.
func ParseWith(data []byte, format Format, opts Options) (*Result, error) {
	var (
		rows []row
		err  error
	)
	switch format {
	case FormatCSV:
		rows, err = parseCSV(data, opts)
	case FormatXLSX:
		rows, err = parseXLSX(data)
	case FormatJSON:
		rows, err = parseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	if err != nil {
		return nil, err
	}

	result := build(rows)
	log.Debug().
		Str("format", string(format)).
		Int("rows", result.Rows).
		Int("products", len(result.Products)).
		Int("warnings", len(result.Warnings)).
		Msg("Catalog loaded")
	return result, nil
}

// productDoc is one catalog line in the source field vocabulary. All readers
// normalize into this shape before product construction.
type productDoc struct {
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	Series           string  `json:"series"`
	Category         string  `json:"category"`
	Subcategory      string  `json:"subcategory"`
	Brand            string  `json:"brand"`
	Color            string  `json:"color"`
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	Depth            float64 `json:"depth"`
	Weight           float64 `json:"weight"`
	QtySoldLastWeek  int     `json:"qty_sold_last_week"`
	QtySoldLastMonth int     `json:"qty_sold_last_month"`
	AvgWeeklySales   float64 `json:"avg_weekly_sales"`
	TotalQty         int     `json:"total_qty"`
	CurrentStock     int     `json:"current_stock"`
	MinStock         int     `json:"min_stock"`
	MinFacings       int     `json:"min_facings"`
	MaxFacings       int     `json:"max_facings"`
	Price            float64 `json:"price"`
	Profit           float64 `json:"profit"`
	LaunchDate       string  `json:"launch_date"`
	Status           string  `json:"status"`
	AttachRate       float64 `json:"attach_rate"`
	BundleFrequency  int     `json:"bundle_frequency"`
}

// row pairs a parsed document with its 1-based source position. A nil doc
// marks a row the reader already rejected; its warnings ride along.
type row struct {
	number   int
	doc      *productDoc
	warnings []Warning
}

// build converts parsed documents into validated products. Duplicate ids keep
// the first occurrence; construction failures skip the row with a warning.
func build(rows []row) *Result {
	result := &Result{Rows: len(rows)}
	seen := make(map[string]int, len(rows))

	for _, r := range rows {
		result.Warnings = append(result.Warnings, r.warnings...)
		if r.doc == nil {
			continue
		}

		if first, dup := seen[r.doc.ProductID]; dup {
			result.warnf(r.number, "duplicate product id %q (first seen on row %d), skipping", r.doc.ProductID, first)
			continue
		}

		product, err := planogram.NewProduct(planogram.Product{
			ID:               r.doc.ProductID,
			Name:             r.doc.ProductName,
			Series:           r.doc.Series,
			Category:         planogram.ParseCategory(r.doc.Category),
			Subcategory:      r.doc.Subcategory,
			Brand:            r.doc.Brand,
			Color:            r.doc.Color,
			Width:            r.doc.Width,
			Height:           r.doc.Height,
			Depth:            r.doc.Depth,
			Weight:           r.doc.Weight,
			QtySoldLastWeek:  r.doc.QtySoldLastWeek,
			QtySoldLastMonth: r.doc.QtySoldLastMonth,
			AvgWeeklySales:   r.doc.AvgWeeklySales,
			TotalQty:         r.doc.TotalQty,
			CurrentStock:     r.doc.CurrentStock,
			MinStock:         r.doc.MinStock,
			MinFacings:       r.doc.MinFacings,
			MaxFacings:       r.doc.MaxFacings,
			Price:            r.doc.Price,
			Profit:           r.doc.Profit,
			LaunchDate:       r.doc.LaunchDate,
			Status:           planogram.ParseStatus(r.doc.Status),
			AttachRate:       r.doc.AttachRate,
			BundleFrequency:  r.doc.BundleFrequency,
		})
		if err != nil {
			result.warnf(r.number, "%s, skipping", err)
			continue
		}

		seen[product.ID] = r.number
		result.Products = append(result.Products, product)
	}
	return result
}
