package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-habit-timeline/internal/analyzer"
	"github.com/penwyp/go-habit-timeline/internal/application/live"
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/presentation/layout"
)

var (
	liveDate    string
	liveRefresh string
	liveLayout  string
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Full-screen timeline that follows your data",
	Long: `Shows the timeline of one day full-screen and recompiles it whenever the
data changes: on file events for the local data directory, or every
--refresh interval for the API source.

Keys:
  n, →   next day
  p, ←   previous day
  t      today
  l      toggle full/minimal layout
  r      refresh now
  q      quit (also Esc, Ctrl+C)`,
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().StringVar(&liveDate, "date", "",
		"First date shown, YYYY-MM-DD (default today)")
	liveCmd.Flags().StringVar(&liveRefresh, "refresh", constants.DefaultRefreshInterval.String(),
		"Refresh interval (e.g., 10s, 1m)")
	liveCmd.Flags().StringVar(&liveLayout, "layout", layout.StyleFull,
		"Layout (full, minimal)")
}

func runLive(cmd *cobra.Command, args []string) error {
	if liveLayout != layout.StyleFull && liveLayout != layout.StyleMinimal {
		return fmt.Errorf("invalid layout '%s': must be either '%s' or '%s'",
			liveLayout, layout.StyleFull, layout.StyleMinimal)
	}

	stats := analyzer.NewCacheStats()
	a, err := bootstrap(cmd, stats)
	if err != nil {
		return err
	}
	defer a.close()

	var watchDirs []string
	if a.cfg.Source == model.SourceFile && !offline {
		watchDirs = []string{a.cfg.DataDir}
	}

	orchestrator, err := live.NewOrchestrator(&live.Config{
		Source:          a.src,
		Recorder:        a.recorder,
		Date:            liveDate,
		Layout:          liveLayout,
		Color:           !noColor,
		WatchDirs:       watchDirs,
		RefreshInterval: a.cfg.RefreshInterval,
		Out:             cmd.OutOrStdout(),
		Today:           a.today,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = orchestrator.Run(ctx)
	a.refreshSnapshot(context.Background())
	stats.PrintFinalStats()
	return err
}
