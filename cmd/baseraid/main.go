// baseraid is a server-authoritative battle simulator for base raids.
//
// Usage:
//
//	baseraid serve              - Start the websocket battle server
//	baseraid simulate           - Run a headless battle in the terminal
//	baseraid layouts            - List available defender bases
//	baseraid reports            - Show recorded battle reports
//
// Global flags:
//
//	--catalog <path>    - Custom stat catalog YAML (default: embedded)
//	--layouts <dir>     - Directory of base layout files (default: embedded)
//	--db <path>         - Reports database path (default: ~/.baseraid/reports.db)
//	--log-level <level> - Log verbosity: debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagCatalog   string
	flagLayoutDir string
	flagDBPath    string
	flagLogLevel  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "baseraid",
	Short: "Base raid battle simulator",
	Long: `baseraid simulates raids on player-built bases.

The attacker brings a troop plan, deploys units into the deploy zone at
the edge of the defender's grid, and watches them fight on their own.
The server runs the whole battle and hands back destruction, stars and
loot; clients only ever see authoritative state.

Available commands:
  serve     - Host battles over websockets
  simulate  - Run one battle headless and print the outcome
  layouts   - Show the defender bases on offer
  reports   - Show recorded battle reports

Examples:
  baseraid serve --addr :8420
  baseraid simulate --layout riverside --troops warrior:6,ram:2
  baseraid layouts
  baseraid reports --attacker alice`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Path to a custom stat catalog YAML")
	rootCmd.PersistentFlags().StringVar(&flagLayoutDir, "layouts", "", "Directory of base layout YAML files")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.baseraid/reports.db", "Path to reports database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(layoutsCmd)
	rootCmd.AddCommand(reportsCmd)
}
