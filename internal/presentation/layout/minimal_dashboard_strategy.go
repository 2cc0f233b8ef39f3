package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-habit-timeline/internal/util"
)

const minimalCategories = 3

// MinimalLayoutStrategy prints a single status line, suitable for tmux or a status bar.
type MinimalLayoutStrategy struct {
	BaseStrategy
}

func (s *MinimalLayoutStrategy) GetName() string {
	return "Minimal Timeline"
}

func (s *MinimalLayoutStrategy) Render(w io.Writer, view *View, sizer *Sizer) error {
	m := view.Model
	if m == nil {
		_, err := fmt.Fprintln(w, "Habits: loading...")
		return err
	}

	parts := []string{"Habits " + m.Date, util.FormatMinutes(m.TotalDuration)}

	breakdown := m.SortedBreakdown()
	var top []string
	for i, e := range breakdown {
		if i == minimalCategories {
			top = append(top, fmt.Sprintf("+%d", len(breakdown)-minimalCategories))
			break
		}
		top = append(top, e.Name+" "+util.FormatMinutes(e.Duration))
	}
	if len(top) > 0 {
		parts = append(parts, strings.Join(top, ", "))
	}
	if view.Stats != nil {
		parts = append(parts, fmt.Sprintf("Lv %d", view.Stats.Level))
	}
	if view.Warning != "" {
		parts = append(parts, "! "+view.Warning)
	}

	line := strings.Join(parts, " | ")
	if sizer != nil && sizer.Width > 0 {
		line = util.Truncate(line, sizer.Width)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
