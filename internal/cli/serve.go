package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/workflow-hub/internal/analytics"
	"github.com/khanglvm/workflow-hub/internal/api"
	"github.com/khanglvm/workflow-hub/internal/mcp"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start the workflow-hub MCP server using stdio transport.

This server exposes 3 tools to AI clients:
  • workflow_search - Relevance-ranked search with match explanations
  • workflow_get    - Full record of one workflow
  • workflow_list   - Recent workflows, newest first`,
		Example: `  # Run directly
  workflow-hub serve

  # Add to Claude Code
  claude mcp add workflow-hub -- workflow-hub serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	return cmd
}

// shutdownGrace bounds how long serve waits for an in-flight request after
// a signal.
const shutdownGrace = 5 * time.Second

// runServe starts the MCP server with stdio transport and signal handling.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(cmd *cobra.Command) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	svc, err := rt.searchService()
	if err != nil {
		return err
	}

	tracker := newTracker(rt)
	defer tracker.Stop()

	server := mcp.NewServer(svc, rt.store, tracker, &rt.logger)
	server.SetIO(cmd.InOrStdin(), cmd.OutOrStdout())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		cleanupHistory(ctx, rt)
	}()
	defer func() {
		cancel()
		<-cleanupDone
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run(ctx)
	}()

	select {
	case sig := <-sigChan:
		rt.logger.Info().Str("signal", sig.String()).Msg("shutting down MCP server")
		cancel()
		// Run only notices cancellation between lines, so a reader blocked
		// on stdin is abandoned after the grace period.
		select {
		case <-errChan:
		case <-time.After(shutdownGrace):
			rt.logger.Warn().Dur("grace", shutdownGrace).Msg("MCP server still reading stdin at shutdown")
		}
		return nil

	case err := <-errChan:
		// Run returned because stdin closed or failed.
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// NewServeHTTPCmd creates the 'serve-http' command for the JSON API.
func NewServeHTTPCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-http",
		Short: "Run the HTTP search API",
		Long: `Start the workflow search HTTP API.

Endpoints:
  POST /api/v1/workflows/search  Relevance-ranked search
  GET  /api/v1/workflows/{id}    Full record of one workflow
  GET  /healthz                  Liveness check
  GET  /metrics                  Prometheus metrics`,
		Example: `  workflow-hub serve-http
  workflow-hub serve-http --addr 127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeHTTP(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")

	return cmd
}

func runServeHTTP(cmd *cobra.Command, addr string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if addr == "" {
		addr = rt.cfg.HTTP.Addr
	}

	svc, err := rt.searchService()
	if err != nil {
		return err
	}

	tracker := newTracker(rt)
	defer tracker.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanupDone := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		cleanupHistory(ctx, rt)
	}()
	defer func() {
		stop()
		<-cleanupDone
	}()

	handler := api.NewSearchHandler(svc, rt.store, tracker, &rt.logger)
	return api.Serve(ctx, addr, api.NewHTTPHandler(handler, rt.cfg.HTTP.AllowedOrigins), &rt.logger)
}

// newTracker returns a background analytics tracker, disabled when
// analytics are turned off in config.
func newTracker(rt *runtime) *analytics.Tracker {
	var recorder analytics.Recorder
	if rt.cfg.Analytics.Enabled {
		recorder = rt.store
	}
	return analytics.NewTracker(recorder, &rt.logger)
}

// cleanupHistory applies the search history retention policy once at
// startup and then daily until ctx is done.
func cleanupHistory(ctx context.Context, rt *runtime) {
	if !rt.cfg.Analytics.Enabled || rt.cfg.Analytics.RetentionDays <= 0 {
		return
	}
	retention := time.Duration(rt.cfg.Analytics.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		if err := rt.store.Cleanup(retention); err != nil {
			rt.logger.Warn().Err(err).Msg("search history cleanup failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
