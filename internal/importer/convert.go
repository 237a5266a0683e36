package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/google/uuid"
)

// Convert transforms a validated ImportSchema into tasks ready for
// persistence. Call ValidateImportSchema first; Convert assumes the schema is
// valid but still reports unparsable dates.
func Convert(schema *ImportSchema, now time.Time) ([]*domain.Task, error) {
	defaultAssignee := ""
	if schema.Defaults != nil {
		defaultAssignee = schema.Defaults.AssignedTo
	}

	tasks := make([]*domain.Task, 0, len(schema.Tasks))
	for i, ti := range schema.Tasks {
		due, err := domain.ParseDate(ti.DueDate)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: parsing due_date: %w", i, err)
		}

		t := &domain.Task{
			ID:         uuid.New().String(),
			Title:      ti.Title,
			AssignedTo: ti.assignee(defaultAssignee),
			DueDate:    due,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if ti.CompletedAt != nil {
			done, err := domain.ParseDate(*ti.CompletedAt)
			if err != nil {
				return nil, fmt.Errorf("tasks[%d]: parsing completed_at: %w", i, err)
			}
			t.CompletedAt = &done
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
