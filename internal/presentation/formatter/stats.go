package formatter

import (
	"fmt"
	"io"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

// StatsReport is the progression data from the dashboard.
type StatsReport struct {
	Stats  *model.UserStats `json:"stats"`
	Badges []model.Badge    `json:"badges"`
}

// WriteStats renders r as json or text.
func WriteStats(w io.Writer, output string, r *StatsReport) error {
	if output == model.OutputJSON {
		return writeJSON(w, r)
	}

	if s := r.Stats; s != nil {
		fmt.Fprintln(w, util.FormatOverviewTitle("Progress"))
		fmt.Fprintf(w, "  %s %s\n", s.FormatLevel(), util.CreateProgressBar(s.LevelProgress(), 20))
		fmt.Fprintf(w, "  Activities: %s\n", util.FormatThousands(s.TotalActivities))
		fmt.Fprintf(w, "  Streak:     %d days (longest %d)\n", s.CurrentStreak, s.LongestStreak)
		if s.LastActivityDate != "" {
			fmt.Fprintf(w, "  Last logged: %s\n", s.LastActivityDate)
		}
		fmt.Fprintln(w)
	}

	earned := 0
	for _, b := range r.Badges {
		if b.IsEarned {
			earned++
		}
	}
	fmt.Fprintln(w, util.FormatOverviewTitle(fmt.Sprintf("Badges %d/%d", earned, len(r.Badges))))
	for _, b := range r.Badges {
		mark := "[ ]"
		suffix := ""
		if b.IsEarned {
			mark = "[x]"
			if b.EarnedDate != "" {
				suffix = " (" + b.EarnedDate + ")"
			}
		}
		fmt.Fprintf(w, "  %s %s - %s%s\n", mark, b.Name, b.Description, suffix)
	}
	return nil
}
