package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/polica/planogram-service/internal/layout"
)

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List built-in store templates",
	Long: `List the built-in store templates available to the optimize command.
Each template describes a store format with its shelf count and SKU range.`,
	Example: `  planogram templates`,
	RunE:    runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tSHELVES\tSKU RANGE\tPREMIUM\tDESCRIPTION")
	fmt.Fprintln(w, "----\t-------\t---------\t-------\t-----------")

	for _, t := range layout.Templates() {
		premium := "no"
		if t.PremiumRequired {
			premium = "yes"
		}
		fmt.Fprintf(w, "%s\t%d\t%d-%d\t%s\t%s\n", t.Name, t.Shelves, t.MinSKUs, t.MaxSKUs, premium, t.Description)
	}

	return w.Flush()
}
