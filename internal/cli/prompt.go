package cli

import (
	"fmt"

	"github.com/alexanderramin/opsched/internal/cli/formatter"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// responseInput is a responder's decision before it becomes a RespondRequest.
type responseInput struct {
	Approve bool
	By      string
	Remarks string
	// Impact is only recorded for approved date changes.
	Impact bool
}

func (in *responseInput) request(o *domain.Objection) scheduler.RespondRequest {
	req := scheduler.RespondRequest{
		Status:          domain.ObjectionRejected,
		RespondedBy:     in.By,
		ApprovalRemarks: in.Remarks,
	}
	if in.Approve {
		req.Status = domain.ObjectionApproved
		if o.Type == domain.ObjectionDateChange {
			impact := in.Impact
			req.ImpactScoring = &impact
		}
	}
	return req
}

func opschedHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// responseForm builds the approve/reject form for o, writing into in.
func responseForm(o *domain.Objection, in *responseInput) *huh.Form {
	decision := huh.NewSelect[bool]().
		Title("Decision").
		Description(formatter.FormatObjection(o)).
		Options(
			huh.NewOption("Approve", true),
			huh.NewOption("Reject", false),
		).
		Value(&in.Approve)

	groups := []*huh.Group{
		huh.NewGroup(
			decision,
			huh.NewInput().
				Title("Responded by").
				Value(&in.By).
				Validate(requiredText("responder")),
			huh.NewInput().
				Title("Remarks").
				Placeholder("optional").
				Value(&in.Remarks),
		),
	}
	if o.Type == domain.ObjectionDateChange {
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title("Count the new date toward on-time scoring?").
				Affirmative("Yes").
				Negative("No, excuse it").
				Value(&in.Impact),
		).WithHideFunc(func() bool { return !in.Approve }))
	}

	return huh.NewForm(groups...).WithTheme(opschedHuhTheme()).WithShowHelp(false)
}

func promptResponse(o *domain.Objection) (*responseInput, error) {
	in := &responseInput{Approve: true, Impact: true}
	if err := responseForm(o, in).Run(); err != nil {
		return nil, fmt.Errorf("response prompt: %w", err)
	}
	return in, nil
}

func requiredText(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
