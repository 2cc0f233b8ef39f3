package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/penwyp/go-habit-timeline/internal/core/analytics"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

var heatGlyphs = []string{"·", "░", "▒", "▓", "█"}

// AnalyticsReport bundles the multi-day views printed by the analytics command.
type AnalyticsReport struct {
	Daily    []analytics.DailyPoint  `json:"daily"`
	Summary  *analytics.Summary      `json:"summary,omitempty"`
	Category string                  `json:"category,omitempty"`
	Series   []analytics.DatePoint   `json:"categorySeries,omitempty"`
	Heatmap  []analytics.HeatmapCell `json:"heatmap,omitempty"`
}

// WriteAnalytics renders r as json, csv or text. The summary output is the
// text report without the daily table.
func WriteAnalytics(w io.Writer, output string, r *AnalyticsReport) error {
	switch output {
	case model.OutputJSON:
		return writeJSON(w, r)
	case model.OutputCSV:
		return writeAnalyticsCSV(w, r)
	case model.OutputTable, model.OutputSummary, "":
		if output != model.OutputSummary {
			writeDailyTable(w, r.Daily)
		}
		writeSummary(w, r.Summary)
		writeSeries(w, r.Category, r.Series)
		writeHeatmap(w, r.Heatmap)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
}

// categoryColumns is the sorted union of category names across points.
func categoryColumns(points []analytics.DailyPoint) []string {
	set := make(map[string]struct{})
	for _, p := range points {
		for name := range p.Categories {
			set[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeDailyTable(w io.Writer, points []analytics.DailyPoint) {
	if len(points) == 0 {
		return
	}
	columns := categoryColumns(points)

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = max(util.GetDisplayWidth(c), 5)
	}

	var b strings.Builder
	b.WriteString(util.PadRight("Date", 10))
	for i, c := range columns {
		b.WriteString("  " + util.PadRight(c, widths[i]))
	}
	b.WriteString("  Total")
	fmt.Fprintln(w, b.String())

	for _, p := range points {
		b.Reset()
		b.WriteString(p.Date)
		for i, c := range columns {
			b.WriteString(fmt.Sprintf("  %*d", widths[i], p.Categories[c]))
		}
		b.WriteString(fmt.Sprintf("  %5d", p.Total))
		fmt.Fprintln(w, b.String())
	}
	fmt.Fprintln(w)
}

func writeSummary(w io.Writer, s *analytics.Summary) {
	if s == nil {
		return
	}
	fmt.Fprintf(w, "Summary %s to %s: %d activities, %s\n", s.From, s.To, s.TotalActivities, util.FormatMinutes(s.TotalMinutes))

	shares := s.Shares()
	nameWidth := 0
	for _, sh := range shares {
		nameWidth = max(nameWidth, util.GetDisplayWidth(sh.Name))
	}
	for _, sh := range shares {
		fmt.Fprintf(w, "  %s %s %7s %3.0f%%\n",
			util.PadRight(sh.Name, nameWidth),
			util.CreateProgressBar(sh.Percent, summaryBarWidth),
			util.FormatMinutes(sh.Minutes),
			sh.Percent)
	}
	fmt.Fprintln(w)
}

func writeSeries(w io.Writer, category string, series []analytics.DatePoint) {
	if category == "" {
		return
	}
	total, active := 0, 0
	for _, p := range series {
		total += p.Duration
		if p.Duration > 0 {
			active++
		}
	}
	fmt.Fprintf(w, "Category %s: %s over %d active days\n", category, util.FormatMinutes(total), active)
	for _, p := range series {
		if p.Duration > 0 {
			fmt.Fprintf(w, "  %s %6s\n", p.Date, util.FormatMinutes(p.Duration))
		}
	}
	fmt.Fprintln(w)
}

// writeHeatmap prints one line per week, oldest first.
func writeHeatmap(w io.Writer, cells []analytics.HeatmapCell) {
	if len(cells) == 0 {
		return
	}
	fmt.Fprintf(w, "Activity heatmap (%s to %s)\n", cells[0].Date, cells[len(cells)-1].Date)
	for start := 0; start < len(cells); start += 7 {
		end := min(start+7, len(cells))
		var b strings.Builder
		for _, c := range cells[start:end] {
			b.WriteString(heatGlyphs[max(0, min(c.Intensity, len(heatGlyphs)-1))])
		}
		fmt.Fprintf(w, "  %s %s\n", cells[start].Date, b.String())
	}
	fmt.Fprintf(w, "  less %s more\n\n", strings.Join(heatGlyphs, ""))
}

func writeAnalyticsCSV(w io.Writer, r *AnalyticsReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Category", "Minutes"}); err != nil {
		return err
	}

	columns := categoryColumns(r.Daily)
	for _, p := range r.Daily {
		for _, c := range columns {
			if p.Categories[c] == 0 {
				continue
			}
			if err := cw.Write([]string{p.Date, c, strconv.Itoa(p.Categories[c])}); err != nil {
				return err
			}
		}
	}
	for _, p := range r.Series {
		if err := cw.Write([]string{p.Date, r.Category, strconv.Itoa(p.Duration)}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
