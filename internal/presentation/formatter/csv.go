package formatter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
)

const (
	rowSegment  = "segment"
	rowCategory = "category"
)

// CSVFormatter writes one row per segment followed by one row per category
// total. The first column tells the two kinds apart.
type CSVFormatter struct {
	w io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{w: w}
}

func (f *CSVFormatter) Format(m *timeline.Model) error {
	w := csv.NewWriter(f.w)

	headers := []string{
		"Kind", "Date", "Hour", "Activity ID", "Category",
		"Start Minute", "Minutes", "Color", "Notes",
	}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, bucket := range m.Hours {
		for _, seg := range bucket.Segments {
			record := []string{
				rowSegment,
				m.Date,
				strconv.Itoa(bucket.Hour),
				seg.ActivityID,
				seg.CategoryName,
				strconv.Itoa(seg.StartMinuteInHour),
				strconv.Itoa(seg.MinutesInHour),
				seg.Color,
				seg.Notes,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}

	for _, entry := range m.SortedBreakdown() {
		record := []string{
			rowCategory,
			m.Date,
			"",
			"",
			entry.Name,
			"",
			strconv.Itoa(entry.Duration),
			entry.Color,
			"",
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
