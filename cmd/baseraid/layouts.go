package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/baseraid/internal/catalog"
	"github.com/vovakirdan/baseraid/internal/layout"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List available defender bases",
	Long:  `Shows every defender base the server can host battles against.`,
	Run:   runLayouts,
}

func runLayouts(_ *cobra.Command, _ []string) {
	cat, err := catalog.Load(flagCatalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	lib, err := layout.Load(flagLayoutDir, cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading layouts: %v\n", err)
		os.Exit(1)
	}

	bases := lib.All()
	if len(bases) == 0 {
		fmt.Println("No layouts available.")
		return
	}

	fmt.Println("Available layouts:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, b := range bases {
		if len(b.ID) > maxIDLen {
			maxIDLen = len(b.ID)
		}
	}

	// Print header
	fmt.Printf("  %-*s  %-9s  %-17s  %s\n", maxIDLen, "ID", "Buildings", "Food/Wood/Gold", "Name")
	fmt.Printf("  %-*s  %-9s  %-17s  %s\n", maxIDLen, "--", "---------", "--------------", "----")

	// Print bases
	for _, b := range bases {
		resources := fmt.Sprintf("%d/%d/%d", b.Resources.Food, b.Resources.Wood, b.Resources.Gold)
		fmt.Printf("  %-*s  %-9d  %-17s  %s\n", maxIDLen, b.ID, len(b.Buildings), resources, b.Name)
	}

	fmt.Println()
	fmt.Println("Run 'baseraid simulate --layout <id>' to raid a base.")
}
