package util

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "local timezone", timezone: "Local"},
		{name: "UTC timezone", timezone: "UTC"},
		{name: "valid timezone Asia/Shanghai", timezone: "Asia/Shanghai"},
		{name: "empty timezone defaults to Local", timezone: ""},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeTimeProvider(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timezone")
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, GetTimeProvider())
			}
		})
	}
}

func TestGetTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	provider := GetTimeProvider()
	assert.NotNil(t, provider)
	assert.Same(t, provider, GetTimeProvider())
}

func TestTimeProvider_Today(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("Asia/Shanghai"))

	// 20:30 UTC is already the next morning in Shanghai.
	provider.SetClock(func() time.Time {
		return time.Date(2024, 3, 15, 20, 30, 0, 0, time.UTC)
	})
	assert.Equal(t, "2024-03-16", provider.Today())

	require.NoError(t, provider.SetTimezone("UTC"))
	assert.Equal(t, "2024-03-15", provider.Today())
}

func TestTimeProvider_Now(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	before := time.Now().UTC()
	now := provider.Now()
	after := time.Now().UTC()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
	assert.Equal(t, "UTC", now.Location().String())
}

func TestTimeProvider_Format(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	testTime := time.Date(2024, 3, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name     string
		layout   string
		expected string
	}{
		{name: "RFC3339", layout: time.RFC3339, expected: "2024-03-15T14:30:45Z"},
		{name: "date only", layout: "2006-01-02", expected: "2024-03-15"},
		{name: "clock", layout: "15:04", expected: "14:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, provider.Format(testTime, tt.layout))
		})
	}
}

func TestTimeProvider_TimezoneConversions(t *testing.T) {
	provider := &TimeProvider{}
	testTime := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		timezone     string
		expectedHour int
	}{
		{"UTC", 12},
		{"Asia/Shanghai", 20},
		{"America/New_York", 8},
		{"Asia/Tokyo", 21},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			require.NoError(t, provider.SetTimezone(tt.timezone))
			assert.Equal(t, tt.expectedHour, provider.In(testTime).Hour())
		})
	}
}

func TestTimeProvider_Concurrency(t *testing.T) {
	provider := &TimeProvider{}
	require.NoError(t, provider.SetTimezone("UTC"))

	var wg sync.WaitGroup
	timezones := []string{"UTC", "Asia/Shanghai", "America/New_York", "Europe/London"}
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = provider.Now()
			_ = provider.Today()
		}()
		go func(idx int) {
			defer wg.Done()
			assert.NoError(t, provider.SetTimezone(timezones[idx%len(timezones)]))
		}(i)
	}
	wg.Wait()
}
