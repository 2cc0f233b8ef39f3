package timeline

import (
	"fmt"

	"github.com/penwyp/go-habit-timeline/internal/core/constants"
)

// FormatHour renders an hour of the day as a 12-hour clock label ("12 AM", "1 PM").
func FormatHour(hour int) string {
	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour > 12:
		display = hour - 12
	}
	return fmt.Sprintf("%d %s", display, period)
}

// Percentage returns part as a share of total in percent; 0 when total is 0.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// FormatPercentage renders Percentage rounded to a whole number ("42%").
func FormatPercentage(part, total int) string {
	return fmt.Sprintf("%.0f%%", Percentage(part, total))
}

// FormatHours renders minutes as hours with one decimal ("1.5").
func FormatHours(minutes int) string {
	return fmt.Sprintf("%.1f", float64(minutes)/constants.MinutesPerHour)
}

// SegmentXP is the experience shown next to a segment.
func SegmentXP(s Segment) int {
	return s.MinutesInHour * constants.XPPerMinute
}
