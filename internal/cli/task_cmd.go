package cli

import (
	"fmt"

	"github.com/alexanderramin/opsched/internal/cli/formatter"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/importer"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage standalone tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskCompleteCmd(app),
		newTaskResumeCmd(app),
		newTaskImportCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var title, assignee, due string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDateFlag("due", due, app.today())
			if err != nil {
				return err
			}
			t := &domain.Task{Title: title, AssignedTo: assignee, DueDate: dueDate}
			if err := app.Tasks.Create(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s [%s] due %s\n",
				t.Title, formatter.ShortID(t.ID), formatter.DateOrDash(&t.DueDate))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Person responsible")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("assignee")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var assignee string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally for one assignee",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := app.Tasks.List(cmd.Context(), assignee)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTasks(tasks, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVar(&assignee, "assignee", "", "Only tasks assigned to this person")
	return cmd
}

func newTaskCompleteCmd(app *App) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "complete TASK",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			when, err := parseDateFlag("at", at, app.today())
			if err != nil {
				return err
			}
			t, err := app.Tasks.Complete(ctx, id, when)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed task %s on %s\n", t.Title, formatter.DateOrDash(t.CompletedAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Completion date (YYYY-MM-DD, defaults to today)")
	return cmd
}

func newTaskResumeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume TASK",
		Short: "Lift a hold on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveTaskID(ctx, app, args[0])
			if err != nil {
				return err
			}
			t, err := app.Tasks.Resume(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resumed task %s\n", t.Title)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTasks([]*domain.Task{t}, app.today()))
			return nil
		},
	}
}

func newTaskImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import tasks from a JSON file",
		Long: `Import tasks from a JSON file. Either every task is stored or none is.

  {"defaults": {"assigned_to": "kim"},
   "tasks": [{"title": "Renew lease", "due_date": "2024-05-01"}]}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.LoadImportSchema(args[0])
			if err != nil {
				return err
			}
			if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", e)
				}
				return fmt.Errorf("import file has %d error(s)", len(errs))
			}
			tasks, err := importer.Convert(schema, app.today())
			if err != nil {
				return err
			}
			if err := app.Tasks.CreateBatch(cmd.Context(), tasks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s)\n", len(tasks))
			return nil
		},
	}
}
