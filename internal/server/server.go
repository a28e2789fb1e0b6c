package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/baseraid/internal/catalog"
	"github.com/vovakirdan/baseraid/internal/layout"
	"github.com/vovakirdan/baseraid/internal/storage"
)

// Config holds configuration for the battle server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":8420").
	Address string

	// CatalogPath optionally points at a custom stat catalog.
	CatalogPath string

	// LayoutDir optionally points at a directory of base layout files.
	// If empty, the embedded starter bases are served.
	LayoutDir string

	// DBPath is the path to the battle reports database.
	DBPath string

	// GracePeriod overrides how long finished sessions linger.
	GracePeriod time.Duration

	// LogLevel sets the logger verbosity: debug, info, warn, error.
	LogLevel string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address: ":8420",
		DBPath:  "~/.baseraid/reports.db",
	}
}

// Server hosts the battle hub over HTTP.
type Server struct {
	config  Config
	httpSrv *http.Server
	hub     *Hub
	store   *storage.Store
	logger  *log.Logger
}

// New loads the catalog and layouts and wires up the battle server.
func New(cfg Config) (*Server, error) {
	level := log.InfoLevel
	if cfg.LogLevel != "" {
		parsed, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("bad log level %q: %w", cfg.LogLevel, err)
		}
		level = parsed
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "baseraid",
		Level:           level,
	})

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load catalog: %w", err)
	}

	lib, err := layout.Load(cfg.LayoutDir, cat)
	if err != nil {
		return nil, fmt.Errorf("cannot load layouts: %w", err)
	}
	logger.Info("layouts ready", "count", len(lib.IDs()), "ids", lib.IDs())

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open reports database", "error", err)
		// Continue without storage
	}

	hub := NewHub(cat, lib, logger)
	if store != nil {
		hub.SetReportSaver(store)
	}
	if cfg.GracePeriod > 0 {
		hub.SetGracePeriod(cfg.GracePeriod)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/battle", hub.HandleBattle)
	mux.HandleFunc("/layouts", hub.HandleLayouts)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // Health probes don't read errors
		w.Write([]byte("ok"))
	})

	return &Server{
		config: cfg,
		httpSrv: &http.Server{
			Addr:              cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		hub:    hub,
		store:  store,
		logger: logger,
	}, nil
}

// Hub returns the battle hub, mainly for tests and the simulate command.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}

// ListenAndServe starts the server and blocks until shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting battle server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server and every running battle.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.hub.StopAll()

	if s.store != nil {
		s.store.Close()
	}

	return s.httpSrv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v any, logger *log.Logger) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write json response", "error", err)
	}
}
