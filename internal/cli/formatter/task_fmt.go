package formatter

import (
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

func FormatTasks(tasks []*domain.Task, today time.Time) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		due := t.DueDate.Format(domain.DateLayout)
		if t.CompletedAt == nil && !t.IsOnHold && !t.IsTerminated {
			due = DueStyled(t.DueDate, today)
		}
		rows = append(rows, []string{ShortID(t.ID), t.Title, t.AssignedTo, due, DateOrDash(t.CompletedAt), TaskState(t)})
	}
	return RenderTable([]string{"ID", "TITLE", "ASSIGNEE", "DUE", "DONE", "STATE"}, rows)
}
