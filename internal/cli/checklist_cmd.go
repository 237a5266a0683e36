package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/opsched/internal/cli/formatter"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/template"
	"github.com/spf13/cobra"
)

func newChecklistCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Manage recurring checklists",
	}

	cmd.AddCommand(
		newChecklistCreateCmd(app),
		newChecklistListCmd(app),
		newChecklistOccurrencesCmd(app),
		newChecklistAssignedCmd(app),
		newChecklistShowCmd(app),
		newChecklistCheckCmd(app, true),
		newChecklistCheckCmd(app, false),
		newChecklistExportCmd(app),
	)

	return cmd
}

func newChecklistCreateCmd(app *App) *cobra.Command {
	var (
		file, name, assignee, frequency, start, end string
		weekly                                      []string
		monthly                                     []int
		items                                       []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a checklist template and materialize its occurrences",
		Long: `Create a checklist template either from a YAML/JSON template file (--file)
or from flags. Every occurrence in the template's date range is created at once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				tmpl *domain.ChecklistTemplate
				err  error
			)
			if file != "" {
				tmpl, err = checklistFromFile(file)
			} else {
				tmpl, err = checklistFromFlags(name, assignee, frequency, start, end, weekly, monthly, items)
			}
			if err != nil {
				return err
			}

			occs, err := app.Checklists.CreateTemplate(cmd.Context(), tmpl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created checklist %s [%s] with %d occurrences\n",
				tmpl.Name, formatter.ShortID(tmpl.ID), len(occs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Template file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&name, "name", "", "Checklist name")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Person responsible for every occurrence")
	cmd.Flags().StringVar(&frequency, "frequency", "", "daily, weekly or monthly")
	cmd.Flags().StringSliceVar(&weekly, "days", nil, "Weekdays for weekly checklists (mon,thu or 1,4)")
	cmd.Flags().IntSliceVar(&monthly, "dates", nil, "Days of month for monthly checklists (1-31)")
	cmd.Flags().StringVar(&start, "start", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "Last day of the range (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&items, "item", nil, "Item label; repeat for each item, \"label: description\" adds a description")
	cmd.MarkFlagsMutuallyExclusive("file", "name")

	return cmd
}

func checklistFromFile(path string) (*domain.ChecklistTemplate, error) {
	schema, err := template.LoadSchema(path)
	if err != nil {
		return nil, err
	}
	if err := joinErrors(template.ValidateSchema(schema)); err != nil {
		return nil, err
	}
	return template.ChecklistTemplate(schema)
}

func checklistFromFlags(name, assignee, frequency, start, end string, weekly []string, monthly []int, items []string) (*domain.ChecklistTemplate, error) {
	schema := &template.TemplateSchema{
		Kind:       template.KindChecklist,
		Name:       name,
		AssignedTo: assignee,
		Recurrence: &template.RecurrenceConfig{
			Frequency:    frequency,
			WeeklyDays:   weekly,
			MonthlyDates: monthly,
			Start:        start,
			End:          end,
		},
	}
	for _, it := range items {
		label, desc, _ := strings.Cut(it, ":")
		schema.Items = append(schema.Items, template.ItemConfig{Label: strings.TrimSpace(label), Description: strings.TrimSpace(desc)})
	}
	if err := joinErrors(template.ValidateSchema(schema)); err != nil {
		return nil, err
	}
	return template.ChecklistTemplate(schema)
}

func newChecklistListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List checklist templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := app.Checklists.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No checklists found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatChecklistTemplates(templates))
			return nil
		},
	}
}

func newChecklistOccurrencesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "occurrences TEMPLATE",
		Short: "List the occurrences of a checklist template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveChecklistTemplateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			occs, err := app.Checklists.ListOccurrences(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOccurrences(occs, app.today()))
			return nil
		},
	}
}

func newChecklistAssignedCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "assigned ASSIGNEE",
		Short: "List checklist occurrences assigned to someone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := optionalDateFlag("from", from)
			if err != nil {
				return err
			}
			toDate, err := optionalDateFlag("to", to)
			if err != nil {
				return err
			}
			occs, err := app.Checklists.ListAssigned(cmd.Context(), args[0], fromDate, toDate)
			if err != nil {
				return err
			}
			if len(occs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing assigned.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOccurrences(occs, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Earliest due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Latest due date (YYYY-MM-DD)")
	return cmd
}

func newChecklistShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show OCCURRENCE",
		Short: "Show one occurrence with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOccurrenceID(ctx, app, args[0])
			if err != nil {
				return err
			}
			occ, err := app.Checklists.GetOccurrence(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOccurrence(occ))
			return nil
		},
	}
}

func newChecklistCheckCmd(app *App, check bool) *cobra.Command {
	use, short := "check", "Check an item of an occurrence"
	if !check {
		use, short = "uncheck", "Uncheck an item of an occurrence"
	}

	return &cobra.Command{
		Use:   use + " OCCURRENCE POSITION",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveOccurrenceID(ctx, app, args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}

			var occ *domain.ChecklistOccurrence
			if check {
				occ, err = app.Checklists.CheckItem(ctx, id, pos)
			} else {
				occ, err = app.Checklists.UncheckItem(ctx, id, pos)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOccurrence(occ))
			return nil
		},
	}
}

func newChecklistExportCmd(app *App) *cobra.Command {
	format := newEnumFlag(string(template.FormatYAML), string(template.FormatYAML), string(template.FormatJSON))

	cmd := &cobra.Command{
		Use:   "export TEMPLATE",
		Short: "Print a checklist template as a template file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveChecklistTemplateID(ctx, app, args[0])
			if err != nil {
				return err
			}
			tmpl, err := app.Checklists.GetTemplate(ctx, id)
			if err != nil {
				return err
			}
			data, err := template.Encode(template.FromChecklist(tmpl), template.Format(format.String()))
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

// joinErrors folds a validation error list into one error, or nil.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("template is invalid:")
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return fmt.Errorf("%s", b.String())
}
