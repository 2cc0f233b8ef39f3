package commands

import (
	"github.com/spf13/cobra"

	"github.com/penwyp/go-habit-timeline/internal/analyzer"
	"github.com/penwyp/go-habit-timeline/internal/config"
	"github.com/penwyp/go-habit-timeline/internal/core/constants"
)

var (
	// Config and logging
	configFile string
	debug      bool

	// Data source
	sourceName string
	dataDir    string
	apiURL     string
	offline    bool
	cacheTTL   string
	logLevel   string

	// Output related
	outputFormat string
	timezone     string
	date         string
	allHours     bool
	noColor      bool

	rootCmd = &cobra.Command{
		Use:   "go-habit-timeline [flags]",
		Short: "Hour-by-hour timeline of the habits you logged",
		Long: `go-habit-timeline compiles the activities logged on the habit dashboard into a
24-hour timeline with per-category totals.

Activities are read from a local data directory (activities.json and
categories.json) or from the dashboard REST API.

Examples:
  go-habit-timeline                                   # Today's timeline from the local data directory
  go-habit-timeline --date 2024-03-10                 # A specific day
  go-habit-timeline --source api -o json              # Fetch from the API, print JSON
  go-habit-timeline -o csv --all-hours > day.csv      # Every hour as CSV
  go-habit-timeline --source api --offline            # Use the last saved snapshot`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTimeline,
	}
)

func init() {
	defaults := config.Default()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Config file (default ~/.go-habit-timeline/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")

	rootCmd.PersistentFlags().StringVar(&sourceName, "source", defaults.Source,
		"Data source (file, api)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", defaults.DataDir,
		"Local data directory for the file source")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaults.APIURL,
		"Dashboard API base URL")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false,
		"Use the last saved snapshot instead of the source")
	rootCmd.PersistentFlags().StringVar(&cacheTTL, "cache-ttl", constants.DefaultCacheTTL.String(),
		"How long source responses are cached (0 disables)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", defaults.Timezone,
		"Timezone used for today (e.g., Asia/Shanghai, UTC)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaults.LogLevel,
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored output")

	rootCmd.Flags().StringVar(&date, "date", "",
		"Date to compile, YYYY-MM-DD (default today)")
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", defaults.Output,
		"Output format (table, json, csv, summary)")
	rootCmd.Flags().BoolVar(&allHours, "all-hours", false,
		"List empty hours in table output")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	a, err := bootstrap(cmd, analyzer.NewCacheStats())
	if err != nil {
		return err
	}
	defer a.close()

	day := date
	if day == "" {
		day = a.today()
	}

	an := analyzer.New(a.src, a.recorder)
	err = an.Run(cmd.Context(), analyzer.Config{
		Date:         day,
		OutputFormat: a.cfg.Output,
		Color:        useColor(cmd),
		AllHours:     allHours,
		Out:          cmd.OutOrStdout(),
	})
	if stats, ok := a.recorder.(*analyzer.CacheStats); ok {
		stats.PrintFinalStats()
	}
	if err != nil {
		return err
	}

	a.refreshSnapshot(cmd.Context())
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}
