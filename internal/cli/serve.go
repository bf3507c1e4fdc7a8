package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ppiankov/vitalscan/internal/pipeline"
	"github.com/ppiankov/vitalscan/internal/server"
	"github.com/spf13/cobra"
)

var listenAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the normalization API and results endpoint",
	Long: `Serve starts an HTTP server that:
- POST /api/normalize   normalizes a raw report in the request body
- POST /api/assess      submits a questionnaire and keeps the result in a session
- GET  /results         returns the session's canonical report
- GET  /healthz         liveness check

Example:
  vitalscan serve
  vitalscan serve --addr :9090 --upstream http://scorer:5000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&upstreamURL, "upstream", "", "scoring service base URL (default from config)")
	serveCmd.Flags().BoolVar(&clampRisks, "clamp-risks", false, "clamp per-condition risks into 0-100")
	addHTTPFlags(serveCmd)
	addLLMFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}
	if upstreamURL != "" {
		cfg.Upstream.BaseURL = upstreamURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "✓ Listening on %s (upstream %s)\n", cfg.Server.Addr, cfg.Upstream.BaseURL)

	srv := server.New(cfg, pipeline.NewPipeline(cfg))
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
