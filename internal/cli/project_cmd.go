package cli

import (
	"fmt"

	"github.com/alexanderramin/opsched/internal/cli/formatter"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Start and inspect workflow projects",
	}

	cmd.AddCommand(
		newProjectStartCmd(app),
		newProjectListCmd(app),
		newProjectShowCmd(app),
	)

	return cmd
}

func newProjectStartCmd(app *App) *cobra.Command {
	var templateRef, name, start string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a project from a workflow template",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			templateID, err := resolveWorkflowTemplateID(ctx, app, templateRef)
			if err != nil {
				return err
			}
			startDate, err := parseDateFlag("start", start, app.today())
			if err != nil {
				return err
			}

			p, err := app.Projects.StartProject(ctx, templateID, name, startDate)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started project %s [%s]\n\n", p.Name, formatter.ShortID(p.ID))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSteps(p.Steps, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateRef, "template", "t", "", "Workflow template ID, prefix or name")
	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to the template name)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func newProjectListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Projects.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjectList(projects))
			return nil
		},
	}
}

func newProjectShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: "Show a project's step chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveProjectID(ctx, app, args[0])
			if err != nil {
				return err
			}
			p, err := app.Projects.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProject(p, app.today()))
			return nil
		},
	}
}

// printChanged reports the steps whose schedule moved after a change.
func printChanged(cmd *cobra.Command, app *App, changed []domain.WorkflowStep) {
	if len(changed) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No other steps moved."))
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d step(s) rescheduled:\n", len(changed))
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSteps(changed, app.today()))
}

func withoutStep(steps []domain.WorkflowStep, id string) []domain.WorkflowStep {
	out := make([]domain.WorkflowStep, 0, len(steps))
	for _, s := range steps {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}
