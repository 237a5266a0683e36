package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/opsched/internal/cli/formatter"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/spf13/cobra"
)

func newObjectionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "objection",
		Aliases: []string{"obj"},
		Short:   "Raise and respond to objections against steps and tasks",
	}

	cmd.AddCommand(
		newObjectionRaiseCmd(app),
		newObjectionRespondCmd(app),
		newObjectionPendingCmd(app),
		newObjectionListCmd(app),
		newObjectionShowCmd(app),
	)

	return cmd
}

func newObjectionRaiseCmd(app *App) *cobra.Command {
	var date, by, remarks string
	typ := newEnumFlag("", string(domain.ObjectionDateChange), string(domain.ObjectionHold), string(domain.ObjectionTerminate))

	cmd := &cobra.Command{
		Use:   "raise TARGET",
		Short: "Object to a step or task: request a new date, a hold or termination",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			targetID, err := resolveTargetID(ctx, app, args[0])
			if err != nil {
				return err
			}
			requested, err := optionalDateFlag("date", date)
			if err != nil {
				return err
			}

			o, err := app.Objections.Raise(ctx, scheduler.RaiseRequest{
				TargetID:      targetID,
				Type:          domain.ObjectionType(typ.String()),
				RequestedDate: requested,
				Remarks:       remarks,
				RequestedBy:   by,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Raised %s objection %s\n", o.Type, formatter.ShortID(o.ID))
			return nil
		},
	}

	cmd.Flags().Var(typ, "type", "date_change, hold or terminate")
	cmd.Flags().StringVar(&date, "date", "", "Requested due date for date_change (YYYY-MM-DD)")
	cmd.Flags().StringVar(&by, "by", "", "Who raises the objection")
	cmd.Flags().StringVar(&remarks, "remarks", "", "Reason for the objection")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("by")

	return cmd
}

func newObjectionRespondCmd(app *App) *cobra.Command {
	var (
		approve, reject bool
		by, remarks     string
		noImpact        bool
	)

	cmd := &cobra.Command{
		Use:   "respond OBJECTION",
		Short: "Approve or reject a pending objection",
		Long: `Approve or reject a pending objection. An approval is applied to its target
in the same transaction. Without --approve or --reject, an interactive prompt is
shown when running in a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveObjectionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			o, err := app.Objections.GetByID(ctx, id)
			if err != nil {
				return err
			}

			in := &responseInput{Approve: approve, By: by, Remarks: remarks, Impact: !noImpact}
			if !approve && !reject {
				if !app.interactive() {
					return errors.New("one of --approve or --reject is required")
				}
				prompt := app.prompt
				if prompt == nil {
					prompt = promptResponse
				}
				if in, err = prompt(o); err != nil {
					return err
				}
			}
			if in.By == "" {
				return errors.New("--by is required")
			}

			res, err := app.Objections.Respond(ctx, id, in.request(o))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Objection %s %s\n", formatter.ShortID(id), formatter.ObjectionStatus(res.Objection.Status))
			if res.Project != nil {
				printChanged(cmd, app, res.ChangedSteps)
			}
			if res.Task != nil {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTasks([]*domain.Task{res.Task}, app.today()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&approve, "approve", false, "Approve the objection")
	cmd.Flags().BoolVar(&reject, "reject", false, "Reject the objection")
	cmd.Flags().StringVar(&by, "by", "", "Who responds")
	cmd.Flags().StringVar(&remarks, "remarks", "", "Response remarks")
	cmd.Flags().BoolVar(&noImpact, "no-impact", false, "Excuse an approved date change from on-time scoring")
	cmd.MarkFlagsMutuallyExclusive("approve", "reject")

	return cmd
}

func newObjectionPendingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List objections awaiting a response",
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := app.Objections.ListPending(cmd.Context())
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending objections.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatObjections(pending))
			return nil
		},
	}
}

func newObjectionListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list TARGET",
		Short: "Show the objection history of a step or task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			targetID, err := resolveTargetID(ctx, app, args[0])
			if err != nil {
				return err
			}
			objs, err := app.Objections.ListByTarget(ctx, targetID)
			if err != nil {
				return err
			}
			if len(objs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No objections found.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatObjections(objs))
			return nil
		},
	}
}

func newObjectionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show OBJECTION",
		Short: "Show one objection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveObjectionID(ctx, app, args[0])
			if err != nil {
				return err
			}
			o, err := app.Objections.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatObjection(o))
			return nil
		},
	}
}
