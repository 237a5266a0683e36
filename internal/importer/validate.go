package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/opsched/internal/domain"
)

// ValidateImportSchema checks the import schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	if len(schema.Tasks) == 0 {
		errs = append(errs, fmt.Errorf("tasks: at least one task is required"))
	}

	defaultAssignee := ""
	if schema.Defaults != nil {
		defaultAssignee = schema.Defaults.AssignedTo
	}

	refs := make(map[string]bool)
	for i, ti := range schema.Tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)

		if ti.Ref != "" {
			if refs[ti.Ref] {
				errs = append(errs, fmt.Errorf("%s.ref: duplicate ref %q", prefix, ti.Ref))
			}
			refs[ti.Ref] = true
		}
		if strings.TrimSpace(ti.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if ti.assignee(defaultAssignee) == "" {
			errs = append(errs, fmt.Errorf("%s.assigned_to is required (no default set)", prefix))
		}
		if ti.DueDate == "" {
			errs = append(errs, fmt.Errorf("%s.due_date is required", prefix))
		} else if _, err := domain.ParseDate(ti.DueDate); err != nil {
			errs = append(errs, fmt.Errorf("%s.due_date: invalid date format %q (expected YYYY-MM-DD)", prefix, ti.DueDate))
		}
		if ti.CompletedAt != nil {
			if _, err := domain.ParseDate(*ti.CompletedAt); err != nil {
				errs = append(errs, fmt.Errorf("%s.completed_at: invalid date format %q (expected YYYY-MM-DD)", prefix, *ti.CompletedAt))
			}
		}
	}

	return errs
}
