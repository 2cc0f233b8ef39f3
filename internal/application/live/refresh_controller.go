package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/metrics"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

// StatsProvider is implemented by sources that know the user's progression.
type StatsProvider interface {
	Stats(ctx context.Context) (*model.UserStats, error)
}

// Result is one compiled refresh.
type Result struct {
	Model *timeline.Model
	Stats *model.UserStats
}

// RefreshController loads a day from the source and compiles it. Refreshes
// are serialised so a slow load never overlaps the next one.
type RefreshController struct {
	src      source.Source
	stats    StatsProvider
	recorder metrics.Recorder

	refreshMutex sync.Mutex
}

// NewRefreshController creates a controller over src. Progression stats are
// fetched when any source in the decorator chain provides them.
func NewRefreshController(src source.Source, recorder metrics.Recorder) *RefreshController {
	if recorder == nil {
		recorder = metrics.Noop()
	}
	rc := &RefreshController{src: src, recorder: recorder}
	if sp, ok := source.As[StatsProvider](src); ok {
		rc.stats = sp
	}
	return rc
}

// Refresh compiles date from fresh source data.
func (rc *RefreshController) Refresh(ctx context.Context, date string) (*Result, error) {
	rc.refreshMutex.Lock()
	defer rc.refreshMutex.Unlock()

	activities, err := rc.src.Activities(ctx, source.ForDate(date))
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	categories, err := rc.src.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	start := time.Now()
	m := timeline.Compile(activities, categories, date)
	rc.recorder.ObserveCompile(time.Since(start), len(activities))

	util.LogDebug("Compiled timeline",
		util.F("date", date),
		util.F("activities", len(activities)),
		util.F("placed", m.PlacedMinutes),
		util.F("rejected", len(m.Rejected)))

	result := &Result{Model: m}
	if rc.stats != nil {
		stats, err := rc.stats.Stats(ctx)
		if err != nil {
			util.LogDebugf("Stats unavailable: %v", err)
		} else {
			result.Stats = stats
		}
	}
	return result, nil
}
