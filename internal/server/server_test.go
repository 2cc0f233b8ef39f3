package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/metrics"
)

type memorySource struct {
	activities []model.Activity
	categories []model.Category
	err        error
}

func (s *memorySource) Name() string { return "memory" }

func (s *memorySource) Activities(_ context.Context, q source.Query) ([]model.Activity, error) {
	if s.err != nil {
		return nil, s.err
	}
	return source.Filter(s.activities, q), nil
}

func (s *memorySource) Categories(_ context.Context) ([]model.Category, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

func newMemorySource() *memorySource {
	return &memorySource{
		activities: []model.Activity{
			{ID: "a1", CategoryID: "1", CategoryName: "Study", Date: "2024-03-10", StartTime: "09:45", Duration: 30},
			{ID: "a2", CategoryID: "3", CategoryName: "Gym", Date: "2024-03-10", StartTime: "18:00", Duration: 60},
			{ID: "a3", CategoryID: "1", CategoryName: "Study", Date: "2024-03-08", StartTime: "20:00", Duration: 45},
			{ID: "a4", CategoryID: "1", CategoryName: "Study", Date: "2024-02-01", StartTime: "20:00", Duration: 45},
		},
		categories: model.DefaultCategories(),
	}
}

func newTestServer(t *testing.T, src source.Source, gatherer prometheus.Gatherer, rec metrics.Recorder) *Server {
	t.Helper()
	s, err := New(Options{
		Source:   src,
		Recorder: rec,
		Gatherer: gatherer,
		Today:    func() string { return "2024-03-10" },
	})
	require.NoError(t, err)
	return s
}

type response struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func serve(t *testing.T, s *Server, uri string, headers ...string) (*fasthttp.RequestCtx, response) {
	t.Helper()
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(uri)
	for i := 0; i+1 < len(headers); i += 2 {
		ctx.Request.Header.Set(headers[i], headers[i+1])
	}

	s.Handler()(&ctx)

	var resp response
	if strings.HasPrefix(string(ctx.Response.Header.ContentType()), "application/json") {
		require.NoError(t, sonic.Unmarshal(ctx.Response.Body(), &resp))
	}
	return &ctx, resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, newMemorySource(), nil, nil)
	ctx, resp := serve(t, s, "/health")

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "success", resp.Status)
	assert.Contains(t, string(resp.Data), `"source":"memory"`)
	assert.NotEmpty(t, ctx.Response.Header.Peek(headerRequestID))
}

func TestHealthDegraded(t *testing.T) {
	src := newMemorySource()
	src.err = source.ErrUnavailable
	s := newTestServer(t, src, nil, nil)

	ctx, resp := serve(t, s, "/health")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Equal(t, "DEGRADED", resp.Code)
}

func TestTimeline(t *testing.T) {
	s := newTestServer(t, newMemorySource(), nil, nil)

	tests := []struct {
		name       string
		uri        string
		wantStatus int
		wantDate   string
		wantTotal  int
	}{
		{"defaults to today", "/timeline", fasthttp.StatusOK, "2024-03-10", 90},
		{"explicit date", "/timeline?date=2024-03-08", fasthttp.StatusOK, "2024-03-08", 45},
		{"empty day", "/timeline?date=2024-03-09", fasthttp.StatusOK, "2024-03-09", 0},
		{"bad date", "/timeline?date=03-10-2024", fasthttp.StatusBadRequest, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, resp := serve(t, s, tt.uri)
			require.Equal(t, tt.wantStatus, ctx.Response.StatusCode())
			if tt.wantStatus != fasthttp.StatusOK {
				assert.Equal(t, codeInvalid, resp.Code)
				return
			}

			var m struct {
				Date          string `json:"date"`
				TotalDuration int    `json:"totalDuration"`
				Hours         []struct {
					TotalMinutes int `json:"totalMinutes"`
				} `json:"hours"`
			}
			require.NoError(t, sonic.Unmarshal(resp.Data, &m))
			assert.Equal(t, tt.wantDate, m.Date)
			assert.Equal(t, tt.wantTotal, m.TotalDuration)
			assert.Len(t, m.Hours, 24)
		})
	}
}

func TestBreakdown(t *testing.T) {
	s := newTestServer(t, newMemorySource(), nil, nil)
	ctx, resp := serve(t, s, "/breakdown?date=2024-03-10")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var body BreakdownResponse
	require.NoError(t, sonic.Unmarshal(resp.Data, &body))
	assert.Equal(t, 90, body.TotalDuration)
	require.Len(t, body.Categories, 2)
	assert.Equal(t, "Gym", body.Categories[0].Name)
	assert.Equal(t, 60, body.Categories[0].Duration)
	assert.Equal(t, "Study", body.Categories[1].Name)
}

func TestDailyAnalytics(t *testing.T) {
	s := newTestServer(t, newMemorySource(), nil, nil)
	ctx, resp := serve(t, s, "/analytics/daily?days=3&end=2024-03-10")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var points []struct {
		Date       string         `json:"date"`
		Categories map[string]int `json:"categories"`
		Total      int            `json:"total"`
	}
	require.NoError(t, sonic.Unmarshal(resp.Data, &points))
	require.Len(t, points, 3)
	assert.Equal(t, "2024-03-08", points[0].Date)
	assert.Equal(t, 45, points[0].Categories["Study"])
	assert.Equal(t, 0, points[1].Total)
	assert.Equal(t, 90, points[2].Total)
}

func TestDailyAnalyticsValidation(t *testing.T) {
	s := newTestServer(t, newMemorySource(), nil, nil)

	for _, uri := range []string{
		"/analytics/daily?days=0",
		"/analytics/daily?days=400",
		"/analytics/daily?days=abc",
		"/analytics/daily?end=yesterday",
	} {
		t.Run(uri, func(t *testing.T) {
			ctx, resp := serve(t, s, uri)
			assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
			assert.Equal(t, codeInvalid, resp.Code)
		})
	}
}

func TestSourceUnavailable(t *testing.T) {
	src := newMemorySource()
	src.err = source.ErrUnavailable
	s := newTestServer(t, src, nil, nil)

	ctx, resp := serve(t, s, "/timeline")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
	assert.Equal(t, codeUnavailable, resp.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t, newMemorySource(), nil, nil)
	ctx, _ := serve(t, s, "/timeline", headerRequestID, "req-42")
	assert.Equal(t, "req-42", string(ctx.Response.Header.Peek(headerRequestID)))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	s := newTestServer(t, newMemorySource(), reg, rec)

	serve(t, s, "/timeline?date=2024-03-10")
	serve(t, s, "/timeline?date=bad")

	ctx, _ := serve(t, s, "/metrics")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, "habit_timeline_requests_total")
	assert.Contains(t, body, "habit_timeline_compile_duration_seconds")
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, newMemorySource(), nil, nil)
	ctx, _ := serve(t, s, "/metrics")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestNewRequiresSource(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	s, err := New(Options{Addr: "127.0.0.1:0", Source: newMemorySource()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
