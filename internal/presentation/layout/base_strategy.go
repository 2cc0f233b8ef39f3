package layout

import (
	"strings"

	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const (
	cellFilled = "█"
	cellEmpty  = "·"
)

// BaseStrategy provides common functionality for all layout strategies
type BaseStrategy struct{}

// SeparatorLine creates a separator line of the given width.
func (b *BaseStrategy) SeparatorLine(width int) string {
	return strings.Repeat("─", max(width, 0))
}

// BoxHeader draws title centered in a three-line box.
func (b *BaseStrategy) BoxHeader(title string, width int) []string {
	inner := max(width-2, util.GetDisplayWidth(title))
	return []string{
		"┌" + strings.Repeat("─", inner) + "┐",
		"│" + util.CenterText(title, inner) + "│",
		"└" + strings.Repeat("─", inner) + "┘",
	}
}

// HourBar draws one bucket as width cells, one cell per 60/width minutes.
// Each segment fills the cells its minutes cover; later segments draw over
// earlier ones where activities overlap.
func (b *BaseStrategy) HourBar(bucket timeline.HourBucket, width int, color bool) string {
	if width <= 0 {
		return ""
	}

	cells := make([]string, width)
	for i := range cells {
		cells[i] = cellEmpty
	}

	for _, seg := range bucket.Segments {
		if seg.MinutesInHour <= 0 {
			continue
		}
		from := seg.StartMinuteInHour * width / constants.MinutesPerHour
		to := (seg.StartMinuteInHour + seg.MinutesInHour) * width / constants.MinutesPerHour
		if to <= from {
			to = from + 1
		}
		to = min(to, width)

		cell := cellFilled
		if color {
			cell = util.Colorize(cellFilled, seg.Color)
		}
		for i := from; i < to; i++ {
			cells[i] = cell
		}
	}
	return strings.Join(cells, "")
}

// SegmentLabels lists the categories in a bucket, merging repeats.
func (b *BaseStrategy) SegmentLabels(bucket timeline.HourBucket) string {
	seen := make(map[string]int)
	var names []string
	for _, seg := range bucket.Segments {
		if _, ok := seen[seg.CategoryName]; !ok {
			names = append(names, seg.CategoryName)
		}
		seen[seg.CategoryName] += seg.MinutesInHour
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+util.FormatMinutes(seen[name]))
	}
	return strings.Join(parts, ", ")
}
