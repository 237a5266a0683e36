package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// ValidateSchema checks a parsed template file and returns every problem it
// finds rather than stopping at the first.
func ValidateSchema(s *TemplateSchema) []error {
	var errs []error

	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	}

	switch s.Kind {
	case KindChecklist:
		errs = append(errs, validateChecklist(s)...)
	case KindWorkflow:
		errs = append(errs, validateWorkflow(s)...)
	case "":
		errs = append(errs, fmt.Errorf("kind is required (checklist or workflow)"))
	default:
		errs = append(errs, fmt.Errorf("kind: invalid value %q", s.Kind))
	}
	return errs
}

func validateChecklist(s *TemplateSchema) []error {
	var errs []error

	if s.AssignedTo == "" {
		errs = append(errs, fmt.Errorf("assigned_to is required"))
	}
	if len(s.Steps) > 0 {
		errs = append(errs, fmt.Errorf("steps: not allowed on a checklist template"))
	}
	for i, it := range s.Items {
		if strings.TrimSpace(it.Label) == "" {
			errs = append(errs, fmt.Errorf("items[%d].label is required", i))
		}
	}

	r := s.Recurrence
	if r == nil {
		return append(errs, fmt.Errorf("recurrence is required"))
	}
	if !domain.ValidFrequencies[r.Frequency] {
		errs = append(errs, fmt.Errorf("recurrence.frequency: invalid value %q", r.Frequency))
	}

	start, startErr := validateDate("recurrence.start", r.Start)
	end, endErr := validateDate("recurrence.end", r.End)
	errs = append(errs, startErr...)
	errs = append(errs, endErr...)
	if len(startErr) == 0 && len(endErr) == 0 && start.After(end) {
		errs = append(errs, fmt.Errorf("recurrence.end %q must not be before start %q", r.End, r.Start))
	}

	switch domain.Frequency(r.Frequency) {
	case domain.FrequencyWeekly:
		if len(r.WeeklyDays) == 0 {
			errs = append(errs, fmt.Errorf("recurrence.weekly_days is required for weekly"))
		}
		for i, d := range r.WeeklyDays {
			if _, err := ParseWeekday(d); err != nil {
				errs = append(errs, fmt.Errorf("recurrence.weekly_days[%d]: %w", i, err))
			}
		}
	case domain.FrequencyMonthly:
		if len(r.MonthlyDates) == 0 {
			errs = append(errs, fmt.Errorf("recurrence.monthly_dates is required for monthly"))
		}
		for i, d := range r.MonthlyDates {
			if d < 1 || d > 31 {
				errs = append(errs, fmt.Errorf("recurrence.monthly_dates[%d]: %d outside 1..31", i, d))
			}
		}
	}
	return errs
}

func validateWorkflow(s *TemplateSchema) []error {
	var errs []error

	if s.Recurrence != nil || len(s.Items) > 0 {
		errs = append(errs, fmt.Errorf("recurrence and items are not allowed on a workflow template"))
	}
	if len(s.Steps) == 0 {
		errs = append(errs, fmt.Errorf("steps: at least one step is required"))
	}
	for i, st := range s.Steps {
		prefix := fmt.Sprintf("steps[%d]", i)
		if strings.TrimSpace(st.What) == "" {
			errs = append(errs, fmt.Errorf("%s.what is required", prefix))
		}
		if strings.TrimSpace(st.Who) == "" {
			errs = append(errs, fmt.Errorf("%s.who is required", prefix))
		}
		if _, err := ParseDuration(st.Duration); err != nil {
			errs = append(errs, fmt.Errorf("%s.duration: %w", prefix, err))
		}
	}
	return errs
}

func validateDate(field, value string) (time.Time, []error) {
	if value == "" {
		return time.Time{}, []error{fmt.Errorf("%s is required", field)}
	}
	t, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, []error{fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, value)}
	}
	return t, nil
}
