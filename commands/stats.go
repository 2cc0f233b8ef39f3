package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/presentation/formatter"
)

var statsOutput string

var errNeedsAPI = errors.New("needs the api source")

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show level, XP, streaks and badges",
	Long: `Prints the progress the dashboard tracks: level and XP, activity count,
current and longest streak, and which badges are earned. Requires --source api.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "table",
		"Output format (table, json)")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	client, ok := source.As[*source.APIClient](a.src)
	if !ok {
		return fmt.Errorf("stats %w (got %s)", errNeedsAPI, a.src.Name())
	}

	stats, err := client.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	badges, err := client.Badges(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load badges: %w", err)
	}

	return formatter.WriteStats(cmd.OutOrStdout(), a.cfg.Output, &formatter.StatsReport{Stats: stats, Badges: badges})
}
