package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, mux *http.ServeMux) *APIClient {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewAPIClient(server.URL+"/api/", time.Second)
}

func TestAPIClient_Activities(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/activities", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, activitiesJSON)
	})
	client := newTestAPI(t, mux)

	activities, err := client.Activities(context.Background(), Query{CategoryID: "study", StartDate: "2024-01-15", EndDate: "2024-01-15"})
	require.NoError(t, err)
	assert.Len(t, activities, 3)
	assert.Equal(t, "category_id=study&end_date=2024-01-15&start_date=2024-01-15", gotQuery)

	_, err = client.Activities(context.Background(), Query{StartDate: "2024-01-15"})
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestAPIClient_Categories(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, categoriesJSON)
	})
	client := newTestAPI(t, mux)

	categories, err := client.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Study", categories[0].Name)
}

func TestAPIClient_AddActivity(t *testing.T) {
	var body map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/activities", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(data, &body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"id":"srv-1","category_id":"gym","category_name":"Gym","date":"2024-01-15","start_time":"07:00","duration":30,"created_at":"2024-01-15T07:31:00Z"}`)
	})
	client := newTestAPI(t, mux)

	created, err := client.AddActivity(context.Background(), model.Activity{
		ID: "ignored", CategoryID: "gym", CategoryName: "Gym", Date: "2024-01-15", StartTime: "07:00", Duration: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", created.ID)
	assert.NotContains(t, body, "id")
	assert.Equal(t, "Gym", body["category_name"])
	assert.Equal(t, float64(30), body["duration"])
}

func TestAPIClient_Errors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/activities/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			http.Error(w, `{"detail":"Activity not found"}`, http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"message":"Activity deleted"}`)
	})
	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /api/badges", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	})
	client := newTestAPI(t, mux)
	ctx := context.Background()

	assert.NoError(t, client.DeleteActivity(ctx, "a1"))
	assert.ErrorIs(t, client.DeleteActivity(ctx, "missing"), ErrNotFound)

	_, err := client.Stats(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = client.Badges(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "400")
}

func TestAPIClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewAPIClient(url, time.Second).Categories(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAPIClient_StatsAndBadges(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"user_stats","level":3,"xp":120,"total_activities":14,"current_streak":4,"longest_streak":9}`)
	})
	mux.HandleFunc("GET /api/badges", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":"b1","name":"First Step","description":"Log one activity","icon":"Star","is_earned":true,"earned_date":"2024-01-02"}]`)
	})
	client := newTestAPI(t, mux)

	stats, err := client.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Level)
	assert.Equal(t, 4, stats.CurrentStreak)

	badges, err := client.Badges(context.Background())
	require.NoError(t, err)
	require.Len(t, badges, 1)
	assert.True(t, badges[0].IsEarned)
}

func TestAPIClient_Analytics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/analytics/daily", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("days"))
		_, _ = io.WriteString(w, `[{"date":"2024-01-15","Study":40,"Gym":45},{"date":"2024-01-14"}]`)
	})
	mux.HandleFunc("GET /api/analytics/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"category_totals":{"Study":65,"Gym":45},"total_activities":3}`)
	})
	mux.HandleFunc("GET /api/analytics/category/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "study", r.PathValue("id"))
		_, _ = io.WriteString(w, `[{"date":"2024-01-15","duration":40}]`)
	})
	client := newTestAPI(t, mux)
	ctx := context.Background()

	daily, err := client.DailyAnalytics(ctx, 2)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, "2024-01-14", daily[0].Date)
	assert.Empty(t, daily[0].Categories)
	assert.Equal(t, 85, daily[1].Total)
	assert.Equal(t, 40, daily[1].Categories["Study"])

	summary, err := client.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 110, summary.TotalMinutes)
	assert.Equal(t, 3, summary.TotalActivities)

	series, err := client.CategoryAnalytics(ctx, "study", 30)
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Equal(t, 40, series[0].Duration)
}
