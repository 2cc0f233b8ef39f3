package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

const maxActivityWidth = 60

type TableFormatter struct {
	w    io.Writer
	opts Options
}

func NewTableFormatter(w io.Writer, opts Options) *TableFormatter {
	return &TableFormatter{w: w, opts: opts}
}

func (f *TableFormatter) Format(m *timeline.Model) error {
	fmt.Fprintf(f.w, "Timeline for %s\n", m.Date)

	if m.IsEmpty() {
		fmt.Fprintln(f.w, "No activities logged.")
		return nil
	}

	f.printTable(
		[]string{"Hour", "Activities", "Minutes", "XP"},
		f.hourRows(m),
		[]string{"Total", "", strconv.Itoa(m.PlacedMinutes), util.FormatThousands(m.PlacedMinutes * constants.XPPerMinute)},
	)

	fmt.Fprintln(f.w)
	f.printTable(
		[]string{"Category", "Minutes", "Hours", "Share"},
		f.breakdownRows(m),
		[]string{"Total", strconv.Itoa(m.TotalDuration), timeline.FormatHours(m.TotalDuration), "100%"},
	)

	f.printNotes(m)
	return nil
}

func (f *TableFormatter) hourRows(m *timeline.Model) [][]string {
	buckets := m.Hours
	if !f.opts.AllHours {
		buckets = m.ActiveHours()
	}

	rows := make([][]string, 0, len(buckets))
	for _, bucket := range buckets {
		labels := make([]string, 0, len(bucket.Segments))
		xp := 0
		for _, seg := range bucket.Segments {
			labels = append(labels, f.segmentLabel(bucket.Hour, seg))
			xp += timeline.SegmentXP(seg)
		}
		rows = append(rows, []string{
			timeline.FormatHour(bucket.Hour),
			util.Truncate(strings.Join(labels, ", "), maxActivityWidth),
			strconv.Itoa(bucket.TotalMinutes),
			util.FormatThousands(xp),
		})
	}
	return rows
}

// segmentLabel renders "09:15-09:45 Study".
func (f *TableFormatter) segmentLabel(hour int, seg timeline.Segment) string {
	end := seg.StartMinuteInHour + seg.MinutesInHour
	endHour, endMinute := hour+end/constants.MinutesPerHour, end%constants.MinutesPerHour
	return fmt.Sprintf("%02d:%02d-%02d:%02d %s", hour, seg.StartMinuteInHour, endHour, endMinute, seg.CategoryName)
}

func (f *TableFormatter) breakdownRows(m *timeline.Model) [][]string {
	entries := m.SortedBreakdown()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name
		if f.opts.Color && e.Color != "" {
			name = util.Swatch(e.Color, 1) + " " + name
		}
		rows = append(rows, []string{
			name,
			strconv.Itoa(e.Duration),
			timeline.FormatHours(e.Duration),
			timeline.FormatPercentage(e.Duration, m.TotalDuration),
		})
	}
	return rows
}

func (f *TableFormatter) printNotes(m *timeline.Model) {
	if m.Truncated > 0 {
		fmt.Fprintf(f.w, "\nNote: %s ran past midnight and is not shown on this day.\n", util.FormatMinutes(m.Truncated))
	}
	if len(m.Rejected) > 0 {
		fmt.Fprintf(f.w, "Note: %d activities have no valid start time: %s\n", len(m.Rejected), strings.Join(m.Rejected, ", "))
	}
}

func (f *TableFormatter) printTable(headers []string, rows [][]string, total []string) {
	widths := f.calculateColumnWidths(headers, rows, total)

	f.printBorder(widths, "top")
	f.printRow(headers, widths)
	f.printBorder(widths, "middle")
	for _, row := range rows {
		f.printRow(row, widths)
	}
	f.printBorder(widths, "middle")
	f.printRow(total, widths)
	f.printBorder(widths, "bottom")
}

// calculateColumnWidths determines the display width of each column.
func (f *TableFormatter) calculateColumnWidths(headers []string, rows [][]string, total []string) []int {
	widths := make([]int, len(headers))
	measure := func(values []string) {
		for i, v := range values {
			widths[i] = max(widths[i], util.GetDisplayWidth(stripANSI(v)))
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}
	measure(total)
	return widths
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	fmt.Fprintln(f.w, b.String())
}

// printRow left-aligns the first two columns and right-aligns the rest.
func (f *TableFormatter) printRow(values []string, widths []int) {
	var b strings.Builder
	b.WriteString("│")
	for i, value := range values {
		pad := widths[i] - util.GetDisplayWidth(stripANSI(value))
		cell := value + strings.Repeat(" ", max(pad, 0))
		if i >= 2 {
			cell = strings.Repeat(" ", max(pad, 0)) + value
		}
		b.WriteString(" " + cell + " │")
	}
	fmt.Fprintln(f.w, b.String())
}

// stripANSI drops escape sequences so colored cells measure correctly.
func stripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\033':
			inEscape = true
		case inEscape && r == 'm':
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}
	return b.String()
}
