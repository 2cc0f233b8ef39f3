package analytics

import "github.com/penwyp/go-habit-timeline/internal/core/model"

// HeatmapCell is one calendar day of the activity heatmap.
type HeatmapCell struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Intensity int    `json:"intensity"`
}

// Intensity maps a day's activity count onto the 0-4 color scale.
func Intensity(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count == 2:
		return 2
	case count <= 4:
		return 3
	default:
		return 4
	}
}

// Heatmap counts activities per day for the window ending at end.
func Heatmap(activities []model.Activity, end string, days int) ([]HeatmapCell, error) {
	dates, err := Window(end, days)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, a := range activities {
		counts[a.Date]++
	}

	cells := make([]HeatmapCell, len(dates))
	for i, d := range dates {
		cells[i] = HeatmapCell{Date: d, Count: counts[d], Intensity: Intensity(counts[d])}
	}
	return cells, nil
}
