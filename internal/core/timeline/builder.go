package timeline

import (
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
)

// Compile builds the hour-by-hour model of date from the full activity and
// category lists. Activities logged on other dates are ignored and input
// order is kept inside every bucket. The inputs are never modified, so
// Compile is safe to call concurrently on shared slices.
func Compile(activities []model.Activity, categories []model.Category, date string) *Model {
	m := &Model{
		Date:      date,
		Hours:     make([]HourBucket, constants.HoursPerDay),
		Breakdown: make(map[string]CategoryTotal),
	}
	for hour := range m.Hours {
		m.Hours[hour] = HourBucket{Hour: hour, Segments: []Segment{}}
	}

	colors := make(map[string]string, len(categories))
	for _, c := range categories {
		colors[c.ID] = c.Color
	}

	for _, activity := range activities {
		if activity.Date != date {
			continue
		}

		duration := activity.Duration
		if duration < 0 {
			duration = 0
		}

		m.TotalDuration += duration
		m.addToBreakdown(activity, duration, categories)

		startHour, startMinute, err := activity.Clock()
		if err != nil {
			m.Rejected = append(m.Rejected, activity.ID)
			continue
		}

		placed := m.place(activity, duration, startHour, startMinute, colors[activity.CategoryID])
		m.PlacedMinutes += placed
		m.Truncated += duration - placed
	}

	return m
}

// place splits one activity across consecutive hour buckets starting at
// hour:minute and returns the number of minutes placed before midnight.
func (m *Model) place(activity model.Activity, duration, hour, minute int, color string) int {
	remaining := duration
	for remaining > 0 && hour < constants.HoursPerDay {
		take := min(remaining, constants.MinutesPerHour-minute)

		bucket := &m.Hours[hour]
		bucket.Segments = append(bucket.Segments, Segment{
			ActivityID:        activity.ID,
			CategoryName:      activity.CategoryName,
			Color:             color,
			Notes:             activity.Notes,
			MinutesInHour:     take,
			StartMinuteInHour: minute,
		})
		bucket.TotalMinutes += take

		remaining -= take
		hour++
		minute = 0
	}
	return duration - remaining
}

// addToBreakdown sums duration under the activity's category name. The
// entry's color is fixed by the first activity carrying that name.
func (m *Model) addToBreakdown(activity model.Activity, duration int, categories []model.Category) {
	total, seen := m.Breakdown[activity.CategoryName]
	if !seen {
		total.Color = lookupColor(activity, categories)
	}
	total.Duration += duration
	m.Breakdown[activity.CategoryName] = total
}

func lookupColor(activity model.Activity, categories []model.Category) string {
	if c, ok := model.FindCategory(categories, activity.CategoryID); ok {
		return c.Color
	}
	if c, ok := model.FindCategoryByName(categories, activity.CategoryName); ok {
		return c.Color
	}
	return ""
}
