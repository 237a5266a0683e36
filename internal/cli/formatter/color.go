package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// StepState returns a colored label for where a step stands in its chain.
func StepState(s domain.WorkflowStep) string {
	switch {
	case s.IsTerminated:
		return StyleDim.Render("✖ terminated")
	case s.IsOnHold:
		return StyleYellow.Render("‖ on hold")
	case s.IsCompleted():
		return StyleGreen.Render("✔ done")
	case s.PlannedDueDate == nil:
		return StyleBlue.Render("? awaiting date")
	default:
		return StyleFg.Render("● open")
	}
}

// TaskState mirrors StepState for standalone tasks.
func TaskState(t *domain.Task) string {
	switch {
	case t.IsTerminated:
		return StyleDim.Render("✖ terminated")
	case t.IsOnHold:
		return StyleYellow.Render("‖ on hold")
	case t.CompletedAt != nil:
		return StyleGreen.Render("✔ done")
	default:
		return StyleFg.Render("● open")
	}
}

func ObjectionStatus(s domain.ObjectionStatus) string {
	switch s {
	case domain.ObjectionApproved:
		return StyleGreen.Render("approved")
	case domain.ObjectionRejected:
		return StyleRed.Render("rejected")
	default:
		return StyleYellow.Render("pending")
	}
}

func OccurrenceStatus(s domain.OccurrenceStatus) string {
	if s == domain.OccurrenceCompleted {
		return StyleGreen.Render("✔ completed")
	}
	return StyleFg.Render("● pending")
}
