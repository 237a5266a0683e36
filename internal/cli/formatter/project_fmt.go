package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// FormatProjectList renders one row per project with its progress.
func FormatProjectList(projects []*domain.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		done := 0
		for i := range p.Steps {
			if p.Steps[i].IsCompleted() {
				done++
			}
		}
		rows = append(rows, []string{
			ShortID(p.ID),
			Bold(p.Name),
			p.StartDate.Format(domain.DateLayout),
			fmt.Sprintf("%d/%d", done, len(p.Steps)),
			Dim("v" + strconv.Itoa(p.Version)),
		})
	}
	return RenderTable([]string{"ID", "NAME", "START", "STEPS", "VERSION"}, rows)
}

// FormatProject renders a project header and its full step chain.
func FormatProject(p *domain.Project, today time.Time) string {
	var b strings.Builder
	b.WriteString(Header(p.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s   %s %s   %s %d\n\n",
		Dim("id"), p.ID, Dim("start"), p.StartDate.Format(domain.DateLayout), Dim("version"), p.Version)
	b.WriteString(FormatSteps(p.Steps, today))
	return b.String()
}

// FormatSteps renders a step table. Open due dates are colored by urgency.
func FormatSteps(steps []domain.WorkflowStep, today time.Time) string {
	rows := make([][]string, 0, len(steps))
	for _, s := range steps {
		due := DateOrDash(s.PlannedDueDate)
		if s.PlannedDueDate != nil && !s.IsCompleted() && s.IsActive() {
			due = DueStyled(*s.PlannedDueDate, today)
		}
		if s.DueOverridden {
			due += Dim(" *")
		}
		rows = append(rows, []string{
			strconv.Itoa(s.StepIndex),
			ShortID(s.ID),
			s.What,
			s.Who,
			Dim(s.Duration.String()),
			due,
			DateOrDash(s.ActualCompletionDate),
			StepState(s),
		})
	}
	return RenderTable([]string{"#", "ID", "WHAT", "WHO", "DURATION", "DUE", "DONE", "STATE"}, rows)
}

// FormatWorkflowTemplates lists stored workflow templates.
func FormatWorkflowTemplates(templates []*domain.WorkflowTemplate) string {
	rows := make([][]string, 0, len(templates))
	for _, t := range templates {
		var chain []string
		for _, s := range t.Steps {
			chain = append(chain, s.What)
		}
		rows = append(rows, []string{ShortID(t.ID), Bold(t.Name), strconv.Itoa(len(t.Steps)), Dim(strings.Join(chain, " → "))})
	}
	return RenderTable([]string{"ID", "NAME", "STEPS", "CHAIN"}, rows)
}
