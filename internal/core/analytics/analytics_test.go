package analytics

import (
	"testing"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logged(date, categoryID, name string, duration int) model.Activity {
	return model.Activity{
		ID:           date + "-" + categoryID,
		CategoryID:   categoryID,
		CategoryName: name,
		Date:         date,
		StartTime:    "10:00",
		Duration:     duration,
	}
}

func TestWindow(t *testing.T) {
	dates, err := Window("2024-03-02", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-29", "2024-03-01", "2024-03-02"}, dates)

	dates, err = Window("2024-03-02", 0)
	require.NoError(t, err)
	assert.Empty(t, dates)

	_, err = Window("yesterday", 3)
	assert.ErrorIs(t, err, model.ErrInvalidDate)
}

func TestDaily(t *testing.T) {
	activities := []model.Activity{
		logged("2024-03-01", "study", "Study", 40),
		logged("2024-03-01", "study", "Study", 20),
		logged("2024-03-01", "gym", "Gym", 30),
		logged("2024-03-03", "gym", "Gym", 15),
		logged("2024-02-20", "gym", "Gym", 99), // outside window
	}

	points, err := Daily(activities, "2024-03-03", 3)
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, "2024-03-01", points[0].Date)
	assert.Equal(t, map[string]int{"Study": 60, "Gym": 30}, points[0].Categories)
	assert.Equal(t, 90, points[0].Total)

	assert.Equal(t, "2024-03-02", points[1].Date)
	assert.Empty(t, points[1].Categories)
	assert.Zero(t, points[1].Total)

	assert.Equal(t, map[string]int{"Gym": 15}, points[2].Categories)
}

func TestSummarize(t *testing.T) {
	activities := []model.Activity{
		logged("2024-03-01", "study", "Study", 40),
		logged("2024-03-02", "study", "Study", 20),
		logged("2024-03-02", "gym", "Gym", 90),
		logged("2024-03-02", "gym", "Gym", 0),
		logged("2024-01-01", "gym", "Gym", 500),
	}

	s, err := Summarize(activities, "2024-03-02", 30)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-02", s.From)
	assert.Equal(t, "2024-03-02", s.To)
	assert.Equal(t, 4, s.TotalActivities)
	assert.Equal(t, 150, s.TotalMinutes)
	assert.Equal(t, map[string]int{"Study": 60, "Gym": 90}, s.CategoryTotals)

	shares := s.Shares()
	require.Len(t, shares, 2)
	assert.Equal(t, "Gym", shares[0].Name)
	assert.InDelta(t, 60.0, shares[0].Percent, 0.001)
	assert.Equal(t, "Study", shares[1].Name)
}

func TestCategorySeries(t *testing.T) {
	activities := []model.Activity{
		logged("2024-03-01", "study", "Study", 40),
		logged("2024-03-01", "study", "Study (old name)", 5),
		logged("2024-03-02", "gym", "Gym", 90),
	}

	series, err := CategorySeries(activities, "study", "2024-03-02", 2)
	require.NoError(t, err)
	assert.Equal(t, []DatePoint{
		{Date: "2024-03-01", Duration: 45},
		{Date: "2024-03-02", Duration: 0},
	}, series)
}

func TestHeatmap(t *testing.T) {
	var activities []model.Activity
	for i := 0; i < 5; i++ {
		activities = append(activities, logged("2024-03-02", "gym", "Gym", 10))
	}
	activities = append(activities, logged("2024-03-01", "gym", "Gym", 10))

	cells, err := Heatmap(activities, "2024-03-02", 3)
	require.NoError(t, err)
	assert.Equal(t, []HeatmapCell{
		{Date: "2024-02-29", Count: 0, Intensity: 0},
		{Date: "2024-03-01", Count: 1, Intensity: 1},
		{Date: "2024-03-02", Count: 5, Intensity: 4},
	}, cells)
}

func TestIntensity(t *testing.T) {
	expected := map[int]int{0: 0, 1: 1, 2: 2, 3: 3, 4: 3, 5: 4, 12: 4}
	for count, want := range expected {
		assert.Equal(t, want, Intensity(count), "count %d", count)
	}
}
