package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-habit-timeline/internal/core/analytics"
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const DefaultAPIURL = "http://localhost:8001/api"

// APIClient talks to the dashboard REST API.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for baseURL. A zero timeout uses the default.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = constants.DefaultAPITimeout
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *APIClient) Name() string { return model.SourceAPI }

// BaseURL returns the API root the client was created with.
func (c *APIClient) BaseURL() string { return c.baseURL }

func (c *APIClient) Activities(ctx context.Context, q Query) ([]model.Activity, error) {
	params := url.Values{}
	if q.CategoryID != "" {
		params.Set("category_id", q.CategoryID)
	}
	if q.StartDate != "" && q.EndDate != "" {
		params.Set("start_date", q.StartDate)
		params.Set("end_date", q.EndDate)
	}

	var activities []model.Activity
	if err := c.do(ctx, http.MethodGet, "/activities", params, nil, &activities); err != nil {
		return nil, err
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	return activities, nil
}

func (c *APIClient) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

// activityCreate is the body accepted by POST /activities.
type activityCreate struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	Duration     int    `json:"duration"`
	Notes        string `json:"notes,omitempty"`
}

// AddActivity creates the activity; the server assigns ID and creation time.
func (c *APIClient) AddActivity(ctx context.Context, a model.Activity) (model.Activity, error) {
	body := activityCreate{
		CategoryID:   a.CategoryID,
		CategoryName: a.CategoryName,
		Date:         a.Date,
		StartTime:    a.StartTime,
		Duration:     a.Duration,
		Notes:        a.Notes,
	}
	var created model.Activity
	if err := c.do(ctx, http.MethodPost, "/activities", nil, body, &created); err != nil {
		return model.Activity{}, err
	}
	return created, nil
}

// DeleteActivity removes one activity by ID.
func (c *APIClient) DeleteActivity(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/activities/"+url.PathEscape(id), nil, nil, nil)
}

func (c *APIClient) Stats(ctx context.Context) (*model.UserStats, error) {
	var stats model.UserStats
	if err := c.do(ctx, http.MethodGet, "/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *APIClient) Badges(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	if err := c.do(ctx, http.MethodGet, "/badges", nil, nil, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

// DailyAnalytics fetches GET /analytics/daily. The server returns one flat
// object per date whose keys other than "date" are category names.
func (c *APIClient) DailyAnalytics(ctx context.Context, days int) ([]analytics.DailyPoint, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	var raw []map[string]any
	if err := c.do(ctx, http.MethodGet, "/analytics/daily", params, nil, &raw); err != nil {
		return nil, err
	}

	points := make([]analytics.DailyPoint, 0, len(raw))
	for _, row := range raw {
		p := analytics.DailyPoint{Categories: map[string]int{}}
		for k, v := range row {
			if k == "date" {
				p.Date, _ = v.(string)
				continue
			}
			minutes := toInt(v)
			p.Categories[k] = minutes
			p.Total += minutes
		}
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

// Summary fetches GET /analytics/summary.
func (c *APIClient) Summary(ctx context.Context) (*analytics.Summary, error) {
	var s analytics.Summary
	if err := c.do(ctx, http.MethodGet, "/analytics/summary", nil, nil, &s); err != nil {
		return nil, err
	}
	if s.CategoryTotals == nil {
		s.CategoryTotals = map[string]int{}
	}
	if s.TotalMinutes == 0 {
		for _, m := range s.CategoryTotals {
			s.TotalMinutes += m
		}
	}
	return &s, nil
}

// CategoryAnalytics fetches GET /analytics/category/{id}.
func (c *APIClient) CategoryAnalytics(ctx context.Context, categoryID string, days int) ([]analytics.DatePoint, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	var series []analytics.DatePoint
	if err := c.do(ctx, http.MethodGet, "/analytics/category/"+url.PathEscape(categoryID), params, nil, &series); err != nil {
		return nil, err
	}
	return series, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}

// do performs one request. Transport failures and 5xx responses wrap
// ErrUnavailable; 404 wraps ErrNotFound.
func (c *APIClient) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	util.LogDebugf("%s %s -> %d (%v)", method, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s %s returned status %d", ErrUnavailable, method, path, resp.StatusCode)
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}
