package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/baseraid/internal/storage"
)

var (
	flagReportsAttacker string
	flagReportsLayout   string
	flagReportsLimit    int
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Show recorded battle reports",
	Long: `Display battle reports from the local database, newest first.

Examples:
  baseraid reports
  baseraid reports --attacker alice
  baseraid reports --layout riverside
  baseraid reports --limit 5`,
	Run: runReports,
}

func init() {
	reportsCmd.Flags().StringVar(&flagReportsAttacker, "attacker", "", "Only show battles by this attacker")
	reportsCmd.Flags().StringVar(&flagReportsLayout, "layout", "", "Also show the best raid against this base")
	reportsCmd.Flags().IntVar(&flagReportsLimit, "limit", 10, "Maximum number of reports to show")
}

func runReports(_ *cobra.Command, _ []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening reports database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var entries []storage.ReportEntry
	if flagReportsAttacker != "" {
		entries, err = store.AttackerReports(flagReportsAttacker, flagReportsLimit)
	} else {
		entries, err = store.RecentReports(flagReportsLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving reports: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No battles recorded yet.")
		fmt.Println()
		fmt.Println("Run 'baseraid simulate --save' to record the first raid!")
		return
	}

	// Print header
	fmt.Printf("  %-16s  %-12s  %-12s  %-4s  %-5s  %-14s  %s\n",
		"Date", "Attacker", "Layout", "Dest", "Stars", "Reason", "Loot")
	fmt.Printf("  %-16s  %-12s  %-12s  %-4s  %-5s  %-14s  %s\n",
		"----", "--------", "------", "----", "-----", "------", "----")

	// Print reports
	for _, e := range entries {
		dateStr := e.CreatedAt.Format("2006-01-02 15:04")
		loot := fmt.Sprintf("%d/%d/%d", e.Loot.Food, e.Loot.Wood, e.Loot.Gold)
		fmt.Printf("  %-16s  %-12s  %-12s  %-4s  %-5s  %-14s  %s\n",
			dateStr, e.AttackerID, e.LayoutID,
			fmt.Sprintf("%d%%", e.DestructionPercent), starBar(e.Stars), e.EndReason, loot)
	}

	if flagReportsLayout != "" {
		best, err := store.BestRaid(flagReportsLayout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving best raid: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		if best == nil {
			fmt.Printf("No raids recorded against %s yet.\n", flagReportsLayout)
			return
		}
		fmt.Printf("Best raid on %s: %d%% (%s) by %s\n",
			flagReportsLayout, best.DestructionPercent, starBar(best.Stars), best.AttackerID)
	}
}
