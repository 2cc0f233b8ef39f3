package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-habit-timeline/internal/data/source"
)

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a logged activity",
	Long:  `Deletes one activity on the dashboard by ID. Requires --source api.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	if offline {
		return fmt.Errorf("rm needs a live source: %w", source.ErrReadOnly)
	}

	a, err := bootstrap(cmd, nil)
	if err != nil {
		return err
	}
	defer a.close()

	client, ok := source.As[*source.APIClient](a.src)
	if !ok {
		return fmt.Errorf("rm %w (got %s)", errNeedsAPI, a.src.Name())
	}
	if err := client.DeleteActivity(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete activity %s: %w", args[0], err)
	}
	if inv, ok := source.As[interface{ Invalidate() }](a.src); ok {
		inv.Invalidate()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	a.refreshSnapshot(cmd.Context())
	return nil
}
