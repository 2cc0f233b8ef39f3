// Package server exposes compiled timelines over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/metrics"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const (
	defaultRequestTimeout = 10 * time.Second
	serverName            = "go-habit-timeline"
)

// Options configures a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RequestTimeout bounds source calls made while serving one request.
	RequestTimeout time.Duration

	Source   source.Source
	Recorder metrics.Recorder
	// Gatherer backs /metrics; the route is not registered when nil.
	Gatherer prometheus.Gatherer

	Today func() string
}

// Server serves the timeline, breakdown and analytics endpoints.
type Server struct {
	opts   Options
	server *fasthttp.Server
}

// New builds a server from opts.
func New(opts Options) (*Server, error) {
	if opts.Source == nil {
		return nil, errors.New("server needs a source")
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.Noop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.Today == nil {
		opts.Today = util.Today
	}

	s := &Server{opts: opts}
	s.server = &fasthttp.Server{
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		Name:         serverName,
	}
	return s, nil
}

// Handler returns the routed request handler.
func (s *Server) Handler() fasthttp.RequestHandler {
	r := router.New()

	r.GET("/health", s.instrument("/health", s.handleHealth))
	r.GET("/timeline", s.instrument("/timeline", s.handleTimeline))
	r.GET("/breakdown", s.instrument("/breakdown", s.handleBreakdown))
	r.GET("/analytics/daily", s.instrument("/analytics/daily", s.handleDailyAnalytics))

	if s.opts.Gatherer != nil {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
		r.GET("/metrics", metricsHandler)
	}

	return r.Handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		util.LogInfo("Server started", util.F("address", s.opts.Addr), util.F("source", s.opts.Source.Name()))
		errCh <- s.server.ListenAndServe(s.opts.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
		util.LogInfo("Server shutting down")
		return s.server.Shutdown()
	}
}
