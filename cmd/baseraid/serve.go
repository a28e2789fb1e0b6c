package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/baseraid/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the websocket battle server",
	Long: `Start the battle server.

Each websocket connection on /battle is one raid: the attacker deploys
troops into the deploy zone, starts the battle, and receives
authoritative state frames until the battle resolves. Finished battles
are written to the reports database.

Endpoints:
  GET /battle?layout=<id>&attacker=<id>&troops=<plan>  - open a battle session
  GET /layouts                                         - list defender bases
  GET /healthz                                         - liveness probe

The troop plan is kind:count pairs, for example "warrior:4,archer:2".

Examples:
  baseraid serve
  baseraid serve --addr :9000
  baseraid serve --layouts ./bases --catalog ./catalog.yaml`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8420", "HTTP listen address (host:port)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := server.Config{
		Address:     flagAddr,
		CatalogPath: flagCatalog,
		LayoutDir:   flagLayoutDir,
		DBPath:      flagDBPath,
		LogLevel:    flagLogLevel,
	}

	srv, err := server.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting battle server on %s\n", cfg.Address)
	fmt.Println("Open a battle with: ws://localhost:8420/battle?layout=riverside&troops=warrior:4")
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
