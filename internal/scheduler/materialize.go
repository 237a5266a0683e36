package scheduler

import (
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/google/uuid"
)

// MaterializeOccurrence builds one checklist occurrence for the given due date.
// Every item starts unchecked and keeps its template position.
func MaterializeOccurrence(templateID, assignedTo string, due time.Time, items []domain.ChecklistItemSpec, now time.Time) domain.ChecklistOccurrence {
	occ := domain.ChecklistOccurrence{
		ID:         uuid.New().String(),
		TemplateID: templateID,
		AssignedTo: assignedTo,
		DueDate:    domain.Day(due),
		Status:     domain.OccurrencePending,
		Items:      make([]domain.OccurrenceItem, len(items)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, it := range items {
		occ.Items[i] = domain.OccurrenceItem{
			Position:    i,
			Label:       it.Label,
			Description: it.Description,
		}
	}
	return occ
}

// MaterializeTemplate expands the template's recurrence pattern and
// materializes one occurrence per date.
func MaterializeTemplate(t *domain.ChecklistTemplate, policy Policy, now time.Time) ([]domain.ChecklistOccurrence, error) {
	dates, err := ExpandRecurrence(t.Pattern, policy)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChecklistOccurrence, 0, len(dates))
	for _, d := range dates {
		out = append(out, MaterializeOccurrence(t.ID, t.AssignedTo, d, t.Items, now))
	}
	return out, nil
}
