package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the counter samples of family name whose labels include want.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			matched := 0
			for _, l := range m.GetLabel() {
				if v, ok := want[l.GetName()]; ok && v == l.GetValue() {
					matched++
				}
			}
			if matched == len(want) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncRequests("/timeline", 200)
	m.IncRequests("/timeline", 204)
	m.IncRequests("/timeline", 400)
	m.IncCacheHits("activities")
	m.IncCacheMisses("activities")
	m.IncCacheMisses("categories")
	m.ObserveRequestDuration("/timeline", 5*time.Millisecond)
	m.ObserveCompile(time.Millisecond, 12)

	assert.Equal(t, 2.0, counterValue(t, reg, "habit_timeline_requests_total", map[string]string{"endpoint": "/timeline", "status": "2xx"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "habit_timeline_requests_total", map[string]string{"status": "4xx"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "habit_timeline_cache_hits_total", map[string]string{"kind": "activities"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "habit_timeline_cache_misses_total", nil))
	assert.Equal(t, 12.0, counterValue(t, reg, "habit_timeline_compiled_activities_total", nil))
}

func TestHTTPStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{101, "1xx"},
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
		})
	}
}

func TestNoop(t *testing.T) {
	r := Noop()
	assert.NotPanics(t, func() {
		r.IncRequests("/", 200)
		r.IncCacheHits("x")
		r.ObserveCompile(time.Second, 1)
	})
}
