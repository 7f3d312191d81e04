package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"atsresume/internal/server"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command, starting the JSON API server over
// the ingestion orchestrator and search engine.
func NewServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Start a JSON REST API exposing resume ingestion, retry, and search
over HTTP: POST /api/ingest, POST /api/retry/{id}, POST /api/search, and
GET /health.

Example:
  ats serve --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config: server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config: server.port)")

	return cmd
}

func runServe(ctx context.Context, host string, port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	serverCfg := cfg.Server
	if host != "" {
		serverCfg.Host = host
	}
	if port != 0 {
		serverCfg.Port = port
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	orch, err := buildOrchestrator(cfg, db)
	if err != nil {
		return fmt.Errorf("building orchestrator: %w", err)
	}
	engine := buildSearchEngine(cfg, db)

	srv := server.New(orch, engine, db, serverCfg)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sig:
		shutdownCtx, cancel := context.WithTimeout(ctx, serverCfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
