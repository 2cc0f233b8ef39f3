package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/penwyp/go-habit-timeline/internal/core/analytics"
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const maxAnalyticsDays = constants.HeatmapWindowDays

var errInvalidParam = errors.New("invalid parameter")

// BreakdownResponse is the body of /breakdown.
type BreakdownResponse struct {
	Date          string                    `json:"date"`
	TotalDuration int                       `json:"totalDuration"`
	Categories    []timeline.BreakdownEntry `json:"categories"`
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	reqCtx, cancel := s.requestContext(ctx)
	defer cancel()

	payload := map[string]any{
		"source":    s.opts.Source.Name(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"today":     s.opts.Today(),
	}
	if _, err := s.opts.Source.Categories(reqCtx); err != nil {
		payload["error"] = err.Error()
		respondJSON(ctx, fasthttp.StatusServiceUnavailable, Envelope{Status: "error", Code: "DEGRADED", Data: payload})
		return
	}
	respondSuccess(ctx, payload)
}

func (s *Server) handleTimeline(ctx *fasthttp.RequestCtx) {
	m, err := s.compile(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, m)
}

func (s *Server) handleBreakdown(ctx *fasthttp.RequestCtx) {
	m, err := s.compile(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, BreakdownResponse{
		Date:          m.Date,
		TotalDuration: m.TotalDuration,
		Categories:    m.SortedBreakdown(),
	})
}

func (s *Server) handleDailyAnalytics(ctx *fasthttp.RequestCtx) {
	days, err := intArg(ctx, "days", constants.DefaultDailyWindowDays)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if days < 1 || days > maxAnalyticsDays {
		respondError(ctx, fmt.Errorf("%w: days must be between 1 and %d", errInvalidParam, maxAnalyticsDays))
		return
	}
	end, err := dateArg(ctx, "end", s.opts.Today())
	if err != nil {
		respondError(ctx, err)
		return
	}

	dates, err := analytics.Window(end, days)
	if err != nil {
		respondError(ctx, err)
		return
	}

	reqCtx, cancel := s.requestContext(ctx)
	defer cancel()

	activities, err := s.opts.Source.Activities(reqCtx, source.Between(dates[0], end))
	if err != nil {
		respondError(ctx, err)
		return
	}
	points, err := analytics.Daily(activities, end, days)
	if err != nil {
		respondError(ctx, err)
		return
	}
	respondSuccess(ctx, points)
}

// compile loads and compiles the date named by the request.
func (s *Server) compile(ctx *fasthttp.RequestCtx) (*timeline.Model, error) {
	date, err := dateArg(ctx, "date", s.opts.Today())
	if err != nil {
		return nil, err
	}

	reqCtx, cancel := s.requestContext(ctx)
	defer cancel()

	return s.compileDate(reqCtx, date)
}

func (s *Server) compileDate(ctx context.Context, date string) (*timeline.Model, error) {
	activities, err := s.opts.Source.Activities(ctx, source.ForDate(date))
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	categories, err := s.opts.Source.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	start := time.Now()
	m := timeline.Compile(activities, categories, date)
	s.opts.Recorder.ObserveCompile(time.Since(start), len(activities))

	util.LogDebug("Compiled timeline", util.F("date", date), util.F("activities", len(activities)))
	return m, nil
}

func dateArg(ctx *fasthttp.RequestCtx, name, fallback string) (string, error) {
	value := string(ctx.QueryArgs().Peek(name))
	if value == "" {
		return fallback, nil
	}
	if _, err := model.ParseDate(value); err != nil {
		return "", err
	}
	return value, nil
}

func intArg(ctx *fasthttp.RequestCtx, name string, fallback int) (int, error) {
	value := string(ctx.QueryArgs().Peek(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", errInvalidParam, name, value)
	}
	return n, nil
}
