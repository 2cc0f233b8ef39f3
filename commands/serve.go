package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/penwyp/go-habit-timeline/internal/config"
	"github.com/penwyp/go-habit-timeline/internal/metrics"
	"github.com/penwyp/go-habit-timeline/internal/server"
)

var (
	serveHost    string
	servePort    int
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve compiled timelines over HTTP",
	Long: `Starts an HTTP server exposing compiled timelines as JSON.

Endpoints:
  GET /health                          source reachability
  GET /timeline?date=YYYY-MM-DD        compiled 24-hour model
  GET /breakdown?date=YYYY-MM-DD       per-category totals
  GET /analytics/daily?days=N&end=D    per-date category minutes
  GET /metrics                         Prometheus metrics (with --metrics)`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	defaults := config.Default()
	serveCmd.Flags().StringVar(&serveHost, "host", defaults.Server.Host,
		"Listen host")
	serveCmd.Flags().IntVar(&servePort, "port", defaults.Server.Port,
		"Listen port")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", defaults.Server.Metrics,
		"Expose Prometheus metrics on /metrics")
}

func runServe(cmd *cobra.Command, args []string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a, err := bootstrap(cmd, metrics.New(reg))
	if err != nil {
		return err
	}
	defer a.close()

	opts := server.Options{
		Addr:           a.cfg.Addr(),
		ReadTimeout:    a.cfg.Server.ReadTimeout,
		WriteTimeout:   a.cfg.Server.WriteTimeout,
		RequestTimeout: a.cfg.APITimeout + 5*time.Second,
		Source:         a.src,
		Recorder:       a.recorder,
		Today:          a.today,
	}
	if a.cfg.Server.Metrics {
		opts.Gatherer = reg
	}

	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.refreshSnapshot(ctx)
	return srv.ListenAndServe(ctx)
}
