package commands

import (
	"github.com/spf13/cobra"

	"github.com/penwyp/go-habit-timeline/internal/analyzer"
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
)

var (
	analyticsDays     int
	analyticsEnd      string
	analyticsCategory string
	analyticsHeatmap  bool
	analyticsRemote   bool
	analyticsOutput   string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Per-day category minutes, 30-day summary and drill-downs",
	Long: `Computes analytics from the source's activities:

- daily: minutes per category for the last --days dates, oldest first
- summary: category totals and activity count over the last 30 days
- category: per-date minutes of one category (--category ID)
- heatmap: activity counts of the last 365 days as intensity levels (--heatmap)

Windows end at --end (default today), inclusive. With --remote the daily,
summary and category views come from the dashboard's analytics endpoints
(API source only), whose windows end on the server's today.`,
	RunE: runAnalytics,
}

func init() {
	rootCmd.AddCommand(analyticsCmd)

	analyticsCmd.Flags().IntVar(&analyticsDays, "days", constants.DefaultDailyWindowDays,
		"Number of days in the daily breakdown")
	analyticsCmd.Flags().StringVar(&analyticsEnd, "end", "",
		"Last date of every window, YYYY-MM-DD (default today)")
	analyticsCmd.Flags().StringVar(&analyticsCategory, "category", "",
		"Category ID to drill into")
	analyticsCmd.Flags().BoolVar(&analyticsHeatmap, "heatmap", false,
		"Include the 365-day activity heatmap")
	analyticsCmd.Flags().BoolVar(&analyticsRemote, "remote", false,
		"Use the dashboard's analytics endpoints")
	analyticsCmd.Flags().StringVarP(&analyticsOutput, "output", "o", model.OutputTable,
		"Output format (table, json, csv, summary)")
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd, analyzer.NewCacheStats())
	if err != nil {
		return err
	}
	defer a.close()

	end := analyticsEnd
	if end == "" {
		end = a.today()
	}
	if _, err := model.ParseDate(end); err != nil {
		return err
	}

	an := analyzer.New(a.src, a.recorder)
	if err := an.RunAnalytics(cmd.Context(), analyzer.AnalyticsConfig{
		End:          end,
		Days:         analyticsDays,
		CategoryID:   analyticsCategory,
		Heatmap:      analyticsHeatmap,
		Remote:       analyticsRemote,
		OutputFormat: a.cfg.Output,
		Out:          cmd.OutOrStdout(),
	}); err != nil {
		return err
	}

	a.refreshSnapshot(cmd.Context())
	return nil
}
