package cli

import (
	"fmt"

	"github.com/alexanderramin/opsched/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats ASSIGNEE",
		Short: "Show an assignee's on-time statistics",
		Long: `Show how many of an assignee's steps, tasks and checklist occurrences were
completed on or before their due date. Items excused by an approved objection are
counted separately and left out of the rate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := app.Scoring.OnTime(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOnTime(score.Assignee, []formatter.KindStats{
				{Kind: "steps", Stats: score.Steps},
				{Kind: "tasks", Stats: score.Tasks},
				{Kind: "checklists", Stats: score.Checklists},
			}, score.Total))
			return nil
		},
	}
}
