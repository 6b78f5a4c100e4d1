package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/polica/planogram-service/internal/layout"
	"github.com/polica/planogram-service/internal/loader"
	"github.com/polica/planogram-service/internal/optimizer"
	"github.com/polica/planogram-service/internal/planogram"
)

var (
	optimizeProducts string
	optimizeTemplate string
	optimizeLayout   string
	optimizeStrategy string
	optimizeBundles  string
	optimizeGap      float64
	optimizeJSON     bool
)

// optimizeCmd represents the optimize command
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run shelf-space allocation for a product catalog",
	Long: `Run the allocation engine over a product catalog and a store. The catalog
is read from a CSV, XLSX, or JSON file; the store comes from a built-in
template (flagship, standard, express) or a custom layout JSON file. The
resulting planogram is printed shelf by shelf, bottom to top.

Bad catalog rows are skipped with warnings, never repaired.`,
	Example: `  planogram optimize --products catalog.csv --template standard
  planogram optimize --products catalog.xlsx --layout store.json --strategy value_density
  planogram optimize --products catalog.json --template express --bundles bundles.json --json`,
	RunE: runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVar(&optimizeProducts, "products", "", "Catalog file: CSV, XLSX, or JSON (required)")
	optimizeCmd.Flags().StringVar(&optimizeTemplate, "template", "", "Built-in store template: flagship, standard, or express")
	optimizeCmd.Flags().StringVar(&optimizeLayout, "layout", "", "Custom store layout JSON file")
	optimizeCmd.Flags().StringVar(&optimizeStrategy, "strategy", "", "Placement strategy (defaults to the configured strategy)")
	optimizeCmd.Flags().StringVar(&optimizeBundles, "bundles", "", "Bundle groups JSON file for bundle-aware allocation")
	optimizeCmd.Flags().Float64Var(&optimizeGap, "gap", 0, "Gap charged around placements in cm (overrides config)")
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "Print the full result as JSON")
	optimizeCmd.MarkFlagRequired("products")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	if (optimizeTemplate == "") == (optimizeLayout == "") {
		return fmt.Errorf("exactly one of --template or --layout is required")
	}
	if optimizeStrategy != "" {
		if _, ok := optimizer.ParseStrategy(optimizeStrategy); !ok {
			return fmt.Errorf("unknown strategy: %s\nValid strategies: %s", optimizeStrategy, strings.Join(strategyNames(), ", "))
		}
	}

	// Load the catalog
	logger.Info().Str("file", optimizeProducts).Msg("Loading catalog")
	catalog, err := loader.Load(optimizeProducts)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(catalog.Products) == 0 {
		return fmt.Errorf("no valid products in %s (%d rows, %d warnings)", optimizeProducts, catalog.Rows, len(catalog.Warnings))
	}
	logger.Info().
		Int("rows", catalog.Rows).
		Int("products", len(catalog.Products)).
		Int("warnings", len(catalog.Warnings)).
		Msg("Catalog loaded")

	// Build the store
	store, err := loadStore()
	if err != nil {
		return err
	}

	// Configure the engine; flags win over config file
	engineCfg := *optimizer.Defaults()
	if cfg != nil {
		engineCfg = cfg.Engine
	}
	if cmd.Flags().Changed("gap") {
		engineCfg.GapSize = optimizeGap
	}
	if err := engineCfg.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}

	engineLogger := logger.With().Str("component", "optimizer").Logger()
	engine := optimizer.NewEngine(&engineCfg, optimizer.WithLogger(engineLogger))

	ctx := context.Background()
	var result *optimizer.Result

	if optimizeBundles != "" {
		bundles, err := loadBundles(optimizeBundles)
		if err != nil {
			return err
		}
		logger.Info().Int("bundles", len(bundles)).Msg("Running bundle-aware allocation")
		result, err = engine.OptimizeBundles(ctx, &optimizer.BundleRequest{
			Store:    store,
			Products: catalog.Products,
			Bundles:  bundles,
		})
		if err != nil {
			return fmt.Errorf("optimization failed: %w", err)
		}
	} else {
		result, err = engine.Optimize(ctx, &optimizer.OptimizeRequest{
			Store:    store,
			Products: catalog.Products,
			Strategy: optimizer.Strategy(optimizeStrategy),
		})
		if err != nil {
			return fmt.Errorf("optimization failed: %w", err)
		}
	}

	if optimizeJSON {
		return outputAllocationJSON(store, catalog, result)
	}
	outputAllocationTable(store, catalog, result)
	return nil
}

// loadStore builds the store from the template or layout flag.
func loadStore() (*planogram.Store, error) {
	if optimizeTemplate != "" {
		if !layout.IsTemplate(optimizeTemplate) {
			return nil, fmt.Errorf("unknown template: %s\nValid templates: %s", optimizeTemplate, strings.Join(layout.Names(), ", "))
		}
		return layout.Build(optimizeTemplate)
	}

	data, err := os.ReadFile(optimizeLayout)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	store, err := layout.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("invalid layout file: %w", err)
	}
	return store, nil
}

// bundleDoc is one bundle group line of a bundles file.
type bundleDoc struct {
	ProductIDs []string `json:"product_ids"`
	Frequency  int      `json:"frequency"`
}

// loadBundles reads a JSON array of bundle groups.
func loadBundles(path string) ([]optimizer.BundleInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundles file: %w", err)
	}

	var docs []bundleDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("invalid bundles file: %w", err)
	}

	bundles := make([]optimizer.BundleInput, len(docs))
	for i, d := range docs {
		bundles[i] = optimizer.BundleInput{ProductIDs: d.ProductIDs, Frequency: d.Frequency}
	}
	return bundles, nil
}

func strategyNames() []string {
	infos := optimizer.Strategies()
	names := make([]string, len(infos))
	for i, s := range infos {
		names[i] = string(s.Name)
	}
	return names
}

// allocationDoc is the machine-readable rendition of one allocation run.
type allocationDoc struct {
	Store          string                      `json:"store"`
	StoreType      string                      `json:"store_type"`
	Strategy       string                      `json:"strategy"`
	Success        bool                        `json:"success"`
	ProductsTotal  int                         `json:"products_total"`
	ProductsPlaced int                         `json:"products_placed"`
	Rejected       []optimizer.RejectedProduct `json:"rejected,omitempty"`
	Shelves        []shelfDoc                  `json:"shelves"`
	Metrics        optimizer.ResultMetrics     `json:"metrics"`
	Bundles        *optimizer.BundleStats      `json:"bundles,omitempty"`
	Warnings       []string                    `json:"warnings,omitempty"`
	Fingerprint    string                      `json:"fingerprint"`
	ElapsedMs      int64                       `json:"elapsed_ms"`
}

type shelfDoc struct {
	ShelfID     string         `json:"shelf_id"`
	ShelfName   string         `json:"shelf_name"`
	ShelfType   string         `json:"shelf_type"`
	EyeLevel    bool           `json:"eye_level"`
	Utilization float64        `json:"utilization"`
	Placements  []placementDoc `json:"placements"`
}

type placementDoc struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Facings     int     `json:"facings"`
	XStart      float64 `json:"x_start"`
	XEnd        float64 `json:"x_end"`
}

func buildAllocationDoc(store *planogram.Store, catalog *loader.Result, result *optimizer.Result) allocationDoc {
	byID := make(map[string]*planogram.Product, len(catalog.Products))
	for _, p := range catalog.Products {
		byID[p.ID] = p
	}

	shelves := make([]shelfDoc, len(store.Shelves))
	for i, shelf := range store.Shelves {
		placements := make([]placementDoc, len(shelf.Placements))
		for j, pl := range shelf.Placements {
			placements[j] = placementDoc{
				ProductID: pl.ProductID,
				Facings:   pl.Facings,
				XStart:    pl.XStart,
				XEnd:      pl.XEnd,
			}
			if p, ok := byID[pl.ProductID]; ok {
				placements[j].ProductName = p.Name
				placements[j].Category = string(p.Category)
			}
		}
		shelves[i] = shelfDoc{
			ShelfID:    shelf.ID,
			ShelfName:  shelf.Name,
			ShelfType:  string(shelf.Type),
			EyeLevel:   shelf.IsEyeLevel,
			Placements: placements,
		}
		for _, su := range result.Metrics.ShelfUtilization {
			if su.ShelfID == shelf.ID {
				shelves[i].Utilization = su.Utilization
				break
			}
		}
	}

	return allocationDoc{
		Store:          store.Name,
		StoreType:      string(store.Type),
		Strategy:       string(result.Strategy),
		Success:        result.Success,
		ProductsTotal:  len(catalog.Products),
		ProductsPlaced: result.ProductsPlaced,
		Rejected:       result.ProductsRejected,
		Shelves:        shelves,
		Metrics:        result.Metrics,
		Bundles:        result.Bundles,
		Warnings:       result.Warnings,
		Fingerprint:    result.Fingerprint,
		ElapsedMs:      result.Elapsed.Milliseconds(),
	}
}

func outputAllocationJSON(store *planogram.Store, catalog *loader.Result, result *optimizer.Result) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildAllocationDoc(store, catalog, result))
}

func outputAllocationTable(store *planogram.Store, catalog *loader.Result, result *optimizer.Result) {
	fmt.Printf("\nAllocation for %s (%s)\n", store.Name, store.Type)
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Metric\tValue\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Strategy\t%s\n", result.Strategy)
	fmt.Fprintf(w, "Products Placed\t%d of %d\n", result.ProductsPlaced, len(catalog.Products))
	fmt.Fprintf(w, "Total Facings\t%d\n", result.Metrics.TotalFacings)
	fmt.Fprintf(w, "Average Utilization\t%.1f%%\n", result.Metrics.AverageUtilization)
	fmt.Fprintf(w, "Profit Density\t%.2f/cm\n", result.Metrics.ProfitDensity)
	fmt.Fprintf(w, "Fingerprint\t%s\n", result.Fingerprint)
	fmt.Fprintf(w, "Elapsed\t%s\n", result.Elapsed)
	w.Flush()

	// Shelves print bottom to top, the order they are racked
	fmt.Printf("\nShelf Layout:\n")
	fmt.Println(strings.Repeat("-", 60))

	w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SHELF\tTYPE\tEYE\tUTIL\tPRODUCTS\tFACINGS")
	fmt.Fprintln(w, "-----\t----\t---\t----\t--------\t-------")
	for _, shelf := range store.Shelves {
		eye := ""
		if shelf.IsEyeLevel {
			eye = "*"
		}
		util := 0.0
		facings := 0
		for _, su := range result.Metrics.ShelfUtilization {
			if su.ShelfID == shelf.ID {
				util = su.Utilization
				facings = su.Facings
				break
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f%%\t%d\t%d\n", shelf.Name, shelf.Type, eye, util, len(shelf.Placements), facings)
	}
	w.Flush()

	if result.Bundles != nil {
		fmt.Printf("\nBundles: %d groups, %d placed (%d split), coverage %.0f%%\n",
			result.Bundles.Total, result.Bundles.Placed, result.Bundles.Split, result.Bundles.Coverage*100)
	}

	if len(result.ProductsRejected) > 0 {
		fmt.Printf("\nRejected Products (%d):\n", len(result.ProductsRejected))
		fmt.Println(strings.Repeat("-", 60))
		for i, r := range result.ProductsRejected {
			if i >= 10 {
				fmt.Printf("... and %d more\n", len(result.ProductsRejected)-10)
				break
			}
			fmt.Printf("%s (%s): %s\n", r.ProductName, r.ProductID, r.Reason)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		fmt.Println(strings.Repeat("-", 60))
		for i, warning := range result.Warnings {
			if i >= 10 {
				fmt.Printf("... and %d more\n", len(result.Warnings)-10)
				break
			}
			fmt.Println(warning)
		}
	}
}
