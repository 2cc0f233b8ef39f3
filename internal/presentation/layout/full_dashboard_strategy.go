package layout

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const (
	fullHeaderLines = 4
	fullFooterLines = 4
	hourLabelWidth  = 5
	minutesWidth    = 8
	breakdownBar    = 20
)

// FullLayoutStrategy draws the hour grid, the category breakdown and a key help footer.
type FullLayoutStrategy struct {
	BaseStrategy
}

func (s *FullLayoutStrategy) GetName() string {
	return "Full Timeline"
}

func (s *FullLayoutStrategy) Render(w io.Writer, view *View, sizer *Sizer) error {
	var buf bytes.Buffer
	width := sizer.ContentWidth()
	m := view.Model

	for _, line := range s.BoxHeader(s.title(view), width) {
		buf.WriteString(line + "\n")
	}

	if view.Warning != "" {
		fmt.Fprintf(&buf, "%s\n", s.paint(view, util.ColorYellow, "! "+view.Warning))
	}

	if m == nil {
		buf.WriteString("Loading...\n")
		_, err := w.Write(buf.Bytes())
		return err
	}

	breakdown := m.SortedBreakdown()
	reserved := fullHeaderLines + fullFooterLines + len(breakdown) + 2
	hours := m.Hours
	if sizer.BodyLines(reserved, 0) < constants.HoursPerDay {
		hours = m.ActiveHours()
	}

	if len(hours) == 0 {
		fmt.Fprintf(&buf, "\n  %s\n\n", s.muted(view, "Nothing logged on this day."))
	} else {
		s.renderHours(&buf, view, hours, width)
	}

	buf.WriteString(s.SeparatorLine(width) + "\n")
	s.renderBreakdown(&buf, view, breakdown)
	s.renderTotals(&buf, view)
	s.renderFooter(&buf, view)

	_, err := w.Write(buf.Bytes())
	return err
}

func (s *FullLayoutStrategy) title(view *View) string {
	if view.Model == nil {
		return "Habit Timeline"
	}
	title := "Habit Timeline · " + view.Model.Date
	if d, err := model.ParseDate(view.Model.Date); err == nil {
		title = "Habit Timeline · " + d.Format("Mon, Jan 2 2006")
	}
	if view.IsToday() {
		title += " (today)"
	}
	return title
}

func (s *FullLayoutStrategy) renderHours(buf *bytes.Buffer, view *View, hours []timeline.HourBucket, width int) {
	sizer := NewSizer(width, 0)
	barWidth := max(width-hourLabelWidth-minutesWidth-6, 12)

	for _, bucket := range hours {
		label := sizer.PadString(timeline.FormatHour(bucket.Hour), hourLabelWidth, false)
		minutes := ""
		if bucket.TotalMinutes > 0 {
			minutes = util.FormatMinutes(bucket.TotalMinutes)
		}
		fmt.Fprintf(buf, "%s │%s│ %s\n",
			label,
			s.HourBar(bucket, barWidth, view.Color),
			sizer.PadString(minutes, minutesWidth, false))
	}
}

func (s *FullLayoutStrategy) renderBreakdown(buf *bytes.Buffer, view *View, breakdown []timeline.BreakdownEntry) {
	if len(breakdown) == 0 {
		return
	}

	nameWidth := 0
	for _, e := range breakdown {
		nameWidth = max(nameWidth, util.GetDisplayWidth(e.Name))
	}

	sizer := NewSizer(0, 0)
	total := view.Model.TotalDuration
	for _, e := range breakdown {
		marker := "■"
		if view.Color {
			marker = util.Colorize(marker, e.Color)
		}
		fmt.Fprintf(buf, " %s %s %s %s %s\n",
			marker,
			sizer.PadString(e.Name, nameWidth, true),
			util.CreateProgressBar(timeline.Percentage(e.Duration, total), breakdownBar),
			sizer.PadString(util.FormatMinutes(e.Duration), minutesWidth, false),
			sizer.PadString(timeline.FormatPercentage(e.Duration, total), 4, false))
	}
}

func (s *FullLayoutStrategy) renderTotals(buf *bytes.Buffer, view *View) {
	m := view.Model
	parts := []string{util.FormatMinutes(m.TotalDuration) + " logged"}
	if m.Truncated > 0 {
		parts = append(parts, util.FormatMinutes(m.Truncated)+" past midnight")
	}
	if len(m.Rejected) > 0 {
		parts = append(parts, fmt.Sprintf("%d without a valid start time", len(m.Rejected)))
	}
	parts = append(parts, fmt.Sprintf("%s XP", util.FormatThousands(m.PlacedMinutes*constants.XPPerMinute)))
	fmt.Fprintf(buf, " Total: %s\n", strings.Join(parts, " · "))

	if view.Stats != nil {
		fmt.Fprintf(buf, " %s %s  streak %d days\n",
			view.Stats.FormatLevel(),
			util.CreateProgressBar(view.Stats.LevelProgress(), 10),
			view.Stats.CurrentStreak)
	}
}

func (s *FullLayoutStrategy) renderFooter(buf *bytes.Buffer, view *View) {
	status := "source " + view.Source
	if !view.LastRefresh.IsZero() {
		status = "updated " + util.GetTimeProvider().Format(view.LastRefresh, "15:04:05") + " · " + status
	}
	fmt.Fprintf(buf, "\n %s\n", s.muted(view, "[n/→] next  [p/←] prev  [t] today  [q] quit  · "+status))
}

func (s *FullLayoutStrategy) paint(view *View, color, text string) string {
	if !view.Color {
		return text
	}
	return color + text + util.ColorReset
}

func (s *FullLayoutStrategy) muted(view *View, text string) string {
	if !view.Color {
		return text
	}
	return util.FormatMuted(text)
}
