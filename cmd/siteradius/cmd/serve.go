package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/siteradius/siteradius/internal/pipeline"
	"github.com/siteradius/siteradius/internal/server"
	"github.com/siteradius/siteradius/internal/store"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP task API",
	Long: `Start the HTTP server exposing the analysis task API:

  POST /analyze          Submit a site for analysis
  GET  /task/{taskID}    Poll task status and progress
  GET  /results/{taskID} Fetch a completed analysis
  GET  /health           Health check

Example:
  siteradius serve --addr :8000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	st, err := store.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create results store: %w", err)
	}

	p, err := pipeline.New(cfg, st)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s\n", addr)
	return server.New(p, st).Serve(ctx, addr)
}
