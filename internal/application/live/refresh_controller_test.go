package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	activities []model.Activity
	categories []model.Category
	err        error
	calls      int
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Activities(_ context.Context, q source.Query) ([]model.Activity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return source.Filter(s.activities, q), nil
}

func (s *fakeSource) Categories(_ context.Context) ([]model.Category, error) {
	return s.categories, nil
}

type statsSource struct {
	*fakeSource
	stats *model.UserStats
	err   error
}

func (s *statsSource) Stats(_ context.Context) (*model.UserStats, error) {
	return s.stats, s.err
}

type recordingRecorder struct {
	compiles   int
	activities int
}

func (r *recordingRecorder) IncRequests(string, int)                     {}
func (r *recordingRecorder) ObserveRequestDuration(string, time.Duration) {}
func (r *recordingRecorder) IncCacheHits(string)                          {}
func (r *recordingRecorder) IncCacheMisses(string)                        {}
func (r *recordingRecorder) ObserveCompile(_ time.Duration, n int) {
	r.compiles++
	r.activities += n
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		activities: []model.Activity{
			{ID: "a1", CategoryID: "study", CategoryName: "Study", Date: "2024-03-10", StartTime: "09:45", Duration: 30},
			{ID: "a2", CategoryID: "gym", CategoryName: "Gym", Date: "2024-03-11", StartTime: "18:00", Duration: 60},
		},
		categories: model.DefaultCategories(),
	}
}

func TestRefreshController_Refresh(t *testing.T) {
	rec := &recordingRecorder{}
	rc := NewRefreshController(newFakeSource(), rec)

	result, err := rc.Refresh(context.Background(), "2024-03-10")
	require.NoError(t, err)

	m := result.Model
	assert.Equal(t, "2024-03-10", m.Date)
	assert.Equal(t, 30, m.TotalDuration)
	assert.Equal(t, 15, m.Hours[9].TotalMinutes)
	assert.Equal(t, 15, m.Hours[10].TotalMinutes)
	assert.Nil(t, result.Stats)

	assert.Equal(t, 1, rec.compiles)
	assert.Equal(t, 1, rec.activities)
}

func TestRefreshController_Stats(t *testing.T) {
	src := &statsSource{fakeSource: newFakeSource(), stats: &model.UserStats{Level: 4}}
	rc := NewRefreshController(src, nil)

	result, err := rc.Refresh(context.Background(), "2024-03-11")
	require.NoError(t, err)
	require.NotNil(t, result.Stats)
	assert.Equal(t, 4, result.Stats.Level)

	src.err = errors.New("stats down")
	result, err = rc.Refresh(context.Background(), "2024-03-11")
	require.NoError(t, err)
	assert.Nil(t, result.Stats)
	assert.Equal(t, 60, result.Model.TotalDuration)
}

func TestRefreshController_SourceError(t *testing.T) {
	src := newFakeSource()
	src.err = source.ErrUnavailable
	rc := NewRefreshController(src, nil)

	_, err := rc.Refresh(context.Background(), "2024-03-10")
	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrUnavailable)
}
