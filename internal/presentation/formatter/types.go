package formatter

import (
	"fmt"
	"io"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/core/timeline"
)

// Formatter renders a compiled day.
type Formatter interface {
	Format(m *timeline.Model) error
}

// Options tune the human-readable formats.
type Options struct {
	// Color paints category swatches with ANSI escapes.
	Color bool
	// AllHours lists empty hours in the table instead of skipping them.
	AllHours bool
}

// New returns the formatter for an output name.
func New(output string, w io.Writer, opts Options) (Formatter, error) {
	switch output {
	case model.OutputTable, "":
		return NewTableFormatter(w, opts), nil
	case model.OutputJSON:
		return NewJSONFormatter(w), nil
	case model.OutputCSV:
		return NewCSVFormatter(w), nil
	case model.OutputSummary:
		return NewSummaryFormatter(w, opts), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", output)
	}
}
