package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const summaryBarWidth = 20

// SummaryFormatter prints a short report of the day: totals and the category breakdown.
type SummaryFormatter struct {
	w    io.Writer
	opts Options
}

func NewSummaryFormatter(w io.Writer, opts Options) *SummaryFormatter {
	return &SummaryFormatter{w: w, opts: opts}
}

func (f *SummaryFormatter) Format(m *timeline.Model) error {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(f.w, rule)
	fmt.Fprintln(f.w, "Daily Habit Summary")
	fmt.Fprintln(f.w, rule)
	fmt.Fprintln(f.w)
	fmt.Fprintf(f.w, "Date: %s\n\n", m.Date)

	if m.IsEmpty() {
		fmt.Fprintln(f.w, "No activities logged.")
		fmt.Fprintln(f.w)
		fmt.Fprintln(f.w, rule)
		return nil
	}

	fmt.Fprintln(f.w, "Time:")
	fmt.Fprintf(f.w, "  Logged:        %s\n", util.FormatMinutes(m.TotalDuration))
	fmt.Fprintf(f.w, "  On this day:   %s\n", util.FormatMinutes(m.PlacedMinutes))
	if m.Truncated > 0 {
		fmt.Fprintf(f.w, "  Past midnight: %s\n", util.FormatMinutes(m.Truncated))
	}
	fmt.Fprintf(f.w, "  Active hours:  %d\n", len(m.ActiveHours()))
	fmt.Fprintf(f.w, "  XP earned:     %s\n", util.FormatThousands(m.PlacedMinutes*constants.XPPerMinute))
	fmt.Fprintln(f.w)

	entries := m.SortedBreakdown()
	nameWidth := 0
	for _, e := range entries {
		nameWidth = max(nameWidth, util.GetDisplayWidth(e.Name))
	}

	fmt.Fprintln(f.w, "Categories:")
	fmt.Fprintln(f.w, strings.Repeat("-", 60))
	for _, e := range entries {
		bar := util.CreateProgressBar(timeline.Percentage(e.Duration, m.TotalDuration), summaryBarWidth)
		if f.opts.Color {
			bar = util.Colorize(bar, e.Color)
		}
		fmt.Fprintf(f.w, "  %s %s %7s %4s\n",
			util.PadRight(e.Name, nameWidth),
			bar,
			util.FormatMinutes(e.Duration),
			timeline.FormatPercentage(e.Duration, m.TotalDuration))
	}

	if len(m.Rejected) > 0 {
		fmt.Fprintln(f.w)
		fmt.Fprintf(f.w, "Skipped (invalid start time): %s\n", strings.Join(m.Rejected, ", "))
	}

	fmt.Fprintln(f.w)
	fmt.Fprintln(f.w, rule)
	return nil
}
