package cli

import (
	"fmt"

	"github.com/alexanderramin/opsched/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Complete, date or resume workflow steps",
	}

	cmd.AddCommand(
		newStepCompleteCmd(app),
		newStepSupplyCmd(app),
		newStepResumeCmd(app),
	)

	return cmd
}

func newStepCompleteCmd(app *App) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "complete STEP",
		Short: "Record a step's completion and replan its successors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveStepID(ctx, app, args[0])
			if err != nil {
				return err
			}
			when, err := parseDateFlag("at", at, app.today())
			if err != nil {
				return err
			}
			change, err := app.Projects.CompleteStep(ctx, id, when)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed step %s on %s\n", formatter.ShortID(id), formatter.DateOrDash(&when))
			printChanged(cmd, app, withoutStep(change.Changed, id))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Completion date (YYYY-MM-DD, defaults to today)")
	return cmd
}

func newStepSupplyCmd(app *App) *cobra.Command {
	var due string

	cmd := &cobra.Command{
		Use:   "supply STEP",
		Short: "Supply the due date of an ask-on-completion step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveStepID(ctx, app, args[0])
			if err != nil {
				return err
			}
			dueDate, err := parseDateFlag("due", due, app.today())
			if err != nil {
				return err
			}
			change, err := app.Projects.SupplyDueDate(ctx, id, dueDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Step %s is due %s\n", formatter.ShortID(id), formatter.DateOrDash(&dueDate))
			printChanged(cmd, app, withoutStep(change.Changed, id))
			return nil
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newStepResumeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume STEP",
		Short: "Lift a hold and replan from today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveStepID(ctx, app, args[0])
			if err != nil {
				return err
			}
			change, err := app.Projects.ResumeStep(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resumed step %s\n", formatter.ShortID(id))
			printChanged(cmd, app, change.Changed)
			return nil
		},
	}
}
