package cli

import (
	"fmt"

	"github.com/alexanderramin/opsched/internal/cli/formatter"
	"github.com/alexanderramin/opsched/internal/template"
	"github.com/spf13/cobra"
)

func newWorkflowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage workflow templates",
	}

	cmd.AddCommand(
		newWorkflowCreateCmd(app),
		newWorkflowListCmd(app),
		newWorkflowExportCmd(app),
	)

	return cmd
}

func newWorkflowCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create FILE...",
		Short: "Create workflow templates from YAML/JSON template files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				schema, err := template.LoadSchema(path)
				if err != nil {
					return err
				}
				if err := joinErrors(template.ValidateSchema(schema)); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				tmpl, err := template.WorkflowTemplate(schema)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := app.Workflows.CreateTemplate(cmd.Context(), tmpl); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created workflow %s [%s] with %d steps\n",
					tmpl.Name, formatter.ShortID(tmpl.ID), len(tmpl.Steps))
			}
			return nil
		},
	}
	return cmd
}

func newWorkflowListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List workflow templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := app.Workflows.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No workflow templates found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkflowTemplates(templates))
			return nil
		},
	}
}

func newWorkflowExportCmd(app *App) *cobra.Command {
	format := newEnumFlag(string(template.FormatYAML), string(template.FormatYAML), string(template.FormatJSON))

	cmd := &cobra.Command{
		Use:   "export TEMPLATE",
		Short: "Print a workflow template as a template file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveWorkflowTemplateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			tmpl, err := app.Workflows.GetTemplate(ctx, id)
			if err != nil {
				return err
			}
			data, err := template.Encode(template.FromWorkflow(tmpl), template.Format(format.String()))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().Var(format, "format", "yaml or json")
	return cmd
}
