package cli

import (
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Checklists service.ChecklistService
	Workflows  service.WorkflowService
	Projects   service.ProjectService
	Tasks      service.TaskService
	Objections service.ObjectionService
	Scoring    service.ScoringService

	Log zerolog.Logger

	// IsInteractive reports whether prompts may be shown. Nil means never.
	IsInteractive func() bool
	// Now is the clock used for default dates. Nil means time.Now.
	Now func() time.Time

	// prompt collects an objection response interactively; tests replace it.
	prompt func(o *domain.Objection) (*responseInput, error)
}

func (a *App) today() time.Time {
	if a.Now != nil {
		return domain.Day(a.Now())
	}
	return domain.Day(time.Now().UTC())
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "opsched" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "opsched",
		Short:         "Recurring checklists, step workflows and objection-driven rescheduling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(app.Log.WithContext(cmd.Context()))
		},
	}

	root.AddCommand(
		newChecklistCmd(app),
		newWorkflowCmd(app),
		newProjectCmd(app),
		newStepCmd(app),
		newTaskCmd(app),
		newObjectionCmd(app),
		newStatsCmd(app),
	)

	return root
}
