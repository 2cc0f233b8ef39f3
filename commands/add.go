package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-habit-timeline/internal/core/model"
	"github.com/penwyp/go-habit-timeline/internal/data/source"
	"github.com/penwyp/go-habit-timeline/internal/util"
)

var errUnknownCategory = errors.New("unknown category")

var (
	addCategory string
	addDate     string
	addStart    string
	addDuration int
	addNotes    string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Log an activity",
	Long: `Validates and records one activity. With the API source it is posted to
the dashboard; with the file source it is appended to activities.json under a
new ID. An empty data directory is seeded with the default categories.

Examples:
  go-habit-timeline add --category study --start 09:30 --duration 45
  go-habit-timeline add --category Gym --date 2024-03-10 --start 18:00 --duration 60 --notes "legs"`,
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addCategory, "category", "",
		"Category ID or name")
	addCmd.Flags().StringVar(&addDate, "date", "",
		"Date, YYYY-MM-DD (default today)")
	addCmd.Flags().StringVar(&addStart, "start", "",
		"Start time, HH:MM (24-hour)")
	addCmd.Flags().IntVar(&addDuration, "duration", 0,
		"Duration in minutes")
	addCmd.Flags().StringVar(&addNotes, "notes", "",
		"Optional notes")

	_ = addCmd.MarkFlagRequired("category")
	_ = addCmd.MarkFlagRequired("start")
	_ = addCmd.MarkFlagRequired("duration")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if offline {
		return fmt.Errorf("add needs a live source: %w", source.ErrReadOnly)
	}

	a, err := bootstrap(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	categories, err := a.src.Categories(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		categories = model.DefaultCategories()
	}
	category, err := resolveCategory(categories, addCategory)
	if err != nil {
		return err
	}

	day := addDate
	if day == "" {
		day = a.today()
	}

	activity := model.Activity{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Date:         day,
		StartTime:    addStart,
		Duration:     addDuration,
		Notes:        addNotes,
	}
	if err := activity.Validate(); err != nil {
		return err
	}

	w, ok := a.src.(source.Writer)
	if !ok {
		return source.ErrReadOnly
	}
	created, err := w.AddActivity(cmd.Context(), activity)
	if err != nil {
		return fmt.Errorf("failed to add activity: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s for %s (%s)\n",
		created.CategoryName, created.Date, created.StartTime,
		util.FormatMinutes(created.Duration), created.ID)

	a.refreshSnapshot(cmd.Context())
	return nil
}

// resolveCategory matches ref against category IDs first, then names
// case-insensitively.
func resolveCategory(categories []model.Category, ref string) (model.Category, error) {
	if c, ok := model.FindCategory(categories, ref); ok {
		return c, nil
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.ID)
	}
	return model.Category{}, fmt.Errorf("%w %q (known: %s)",
		errUnknownCategory, ref, strings.Join(names, ", "))
}
