// Package analyzer runs one-shot reports: it loads data from a source,
// compiles it and writes the formatted result.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/core/analytics"
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/metrics"
	"github.com/penwyp/go-habit-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

type Config struct {
	Date         string
	OutputFormat string
	Color        bool
	AllHours     bool
	Out          io.Writer
}

// AnalyticsConfig selects the multi-day report.
type AnalyticsConfig struct {
	End          string
	Days         int
	CategoryID   string
	Heatmap      bool
	// Remote asks the dashboard's analytics endpoints instead of computing
	// locally. The server picks the window end itself.
	Remote       bool
	OutputFormat string
	Out          io.Writer
}

// RemoteAnalytics is served by sources that expose the dashboard's
// precomputed analytics.
type RemoteAnalytics interface {
	DailyAnalytics(ctx context.Context, days int) ([]analytics.DailyPoint, error)
	Summary(ctx context.Context) (*analytics.Summary, error)
	CategoryAnalytics(ctx context.Context, categoryID string, days int) ([]analytics.DatePoint, error)
}

var ErrNoRemoteAnalytics = errors.New("source has no remote analytics")

type Analyzer struct {
	src      source.Source
	recorder metrics.Recorder
}

func New(src source.Source, recorder metrics.Recorder) *Analyzer {
	if recorder == nil {
		recorder = metrics.Noop()
	}
	return &Analyzer{src: src, recorder: recorder}
}

// Compile loads date from the source and compiles it.
func (a *Analyzer) Compile(ctx context.Context, date string) (*timeline.Model, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, err
	}

	// Phase 1: load the day's activities
	loadStart := time.Now()
	activities, err := a.src.Activities(ctx, source.ForDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	categories, err := a.src.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	loadDuration := time.Since(loadStart)
	util.LogDebug(fmt.Sprintf("Phase 1 - Load duration: %v, %d activities, %d categories", loadDuration, len(activities), len(categories)))

	// Phase 2: compile
	compileStart := time.Now()
	m := timeline.Compile(activities, categories, date)
	compileDuration := time.Since(compileStart)
	a.recorder.ObserveCompile(compileDuration, len(activities))
	util.LogDebug(fmt.Sprintf("Phase 2 - Compile duration: %v, placed %d of %d minutes", compileDuration, m.PlacedMinutes, m.TotalDuration))

	if len(m.Rejected) > 0 {
		util.LogWarn("Activities without a valid start time", util.F("date", date), util.F("ids", m.Rejected))
	}
	return m, nil
}

// Run compiles config.Date and writes it in the configured format.
func (a *Analyzer) Run(ctx context.Context, config Config) error {
	startTime := time.Now()
	util.LogInfo("Compiling timeline", util.F("date", config.Date), util.F("source", a.src.Name()))

	out := config.Out
	if out == nil {
		out = os.Stdout
	}
	f, err := formatter.New(config.OutputFormat, out, formatter.Options{Color: config.Color, AllHours: config.AllHours})
	if err != nil {
		return err
	}

	m, err := a.Compile(ctx, config.Date)
	if err != nil {
		return err
	}

	// Phase 3: format and output
	outputStart := time.Now()
	err = f.Format(m)
	util.LogDebug(fmt.Sprintf("Phase 3 - Formatting and output duration: %v", time.Since(outputStart)))
	util.LogDebug(fmt.Sprintf("Total duration: %v", time.Since(startTime)))
	return err
}

// RunAnalytics builds the multi-day report from the source's activities.
func (a *Analyzer) RunAnalytics(ctx context.Context, config AnalyticsConfig) error {
	if config.Days <= 0 {
		config.Days = constants.DefaultDailyWindowDays
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}

	build := a.BuildAnalytics
	if config.Remote {
		build = a.FetchAnalytics
	}
	report, err := build(ctx, config)
	if err != nil {
		return err
	}
	return formatter.WriteAnalytics(config.Out, config.OutputFormat, report)
}

// BuildAnalytics loads the widest window needed once and derives every view from it.
func (a *Analyzer) BuildAnalytics(ctx context.Context, config AnalyticsConfig) (*formatter.AnalyticsReport, error) {
	span := max(config.Days, constants.SummaryWindowDays)
	if config.CategoryID != "" {
		span = max(span, constants.CategoryWindowDays)
	}
	if config.Heatmap {
		span = max(span, constants.HeatmapWindowDays)
	}

	dates, err := analytics.Window(config.End, span)
	if err != nil {
		return nil, err
	}

	loadStart := time.Now()
	activities, err := a.src.Activities(ctx, source.Between(dates[0], config.End))
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	util.LogDebug(fmt.Sprintf("Loaded %d activities for %s..%s in %v", len(activities), dates[0], config.End, time.Since(loadStart)))

	report := &formatter.AnalyticsReport{}
	if report.Daily, err = analytics.Daily(activities, config.End, config.Days); err != nil {
		return nil, err
	}
	if report.Summary, err = analytics.Summarize(activities, config.End, constants.SummaryWindowDays); err != nil {
		return nil, err
	}

	if config.CategoryID != "" {
		report.Category = config.CategoryID
		if categories, err := a.src.Categories(ctx); err == nil {
			if c, ok := model.FindCategory(categories, config.CategoryID); ok {
				report.Category = c.Name
			}
		}
		if report.Series, err = analytics.CategorySeries(activities, config.CategoryID, config.End, constants.CategoryWindowDays); err != nil {
			return nil, err
		}
	}

	if config.Heatmap {
		if report.Heatmap, err = analytics.Heatmap(activities, config.End, constants.HeatmapWindowDays); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// FetchAnalytics builds the report from the dashboard's analytics endpoints.
// The heatmap has no endpoint and is still derived from activities.
func (a *Analyzer) FetchAnalytics(ctx context.Context, config AnalyticsConfig) (*formatter.AnalyticsReport, error) {
	remote, ok := source.As[RemoteAnalytics](a.src)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRemoteAnalytics, a.src.Name())
	}

	report := &formatter.AnalyticsReport{}
	var err error
	if report.Daily, err = remote.DailyAnalytics(ctx, config.Days); err != nil {
		return nil, fmt.Errorf("failed to fetch daily analytics: %w", err)
	}
	if report.Summary, err = remote.Summary(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch summary: %w", err)
	}
	if config.CategoryID != "" {
		report.Category = config.CategoryID
		if report.Series, err = remote.CategoryAnalytics(ctx, config.CategoryID, constants.CategoryWindowDays); err != nil {
			return nil, fmt.Errorf("failed to fetch category analytics: %w", err)
		}
	}

	if config.Heatmap {
		local, err := a.BuildAnalytics(ctx, AnalyticsConfig{End: config.End, Days: 1, Heatmap: true})
		if err != nil {
			return nil, err
		}
		report.Heatmap = local.Heatmap
	}
	return report, nil
}
