package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts an English weekday name or abbreviation, or a number
// 0-6 with Sunday as 0.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdayNames[s]; ok {
		return d, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 6 {
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
	return time.Weekday(n), nil
}

// ParseDuration reads the textual form produced by DurationSpec.String:
// "fixed+3d", "dependent+0d" or "ask_on_completion". The "+Nd" suffix may be
// omitted for an offset of zero.
func ParseDuration(s string) (domain.DurationSpec, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return domain.DurationSpec{}, errors.New("duration is required")
	}
	if s == string(domain.DurationAskOnCompletion) {
		return domain.AskOnCompletion(), nil
	}

	kind, offset, hasOffset := strings.Cut(s, "+")
	days := 0
	if hasOffset {
		n, err := strconv.Atoi(strings.TrimSuffix(offset, "d"))
		if err != nil {
			return domain.DurationSpec{}, fmt.Errorf("invalid offset in %q", s)
		}
		days = n
	}

	spec := domain.DurationSpec{Kind: domain.DurationKind(kind), OffsetDays: days}
	if spec.Kind == domain.DurationAskOnCompletion && hasOffset {
		return domain.DurationSpec{}, fmt.Errorf("%s takes no offset", domain.DurationAskOnCompletion)
	}
	if err := spec.Validate(); err != nil {
		return domain.DurationSpec{}, err
	}
	return spec, nil
}

// ChecklistTemplate converts a validated checklist schema. The returned
// template has no ID; the checklist service assigns one on creation.
func ChecklistTemplate(s *TemplateSchema) (*domain.ChecklistTemplate, error) {
	if s.Kind != KindChecklist {
		return nil, fmt.Errorf("template %q is a %s template, not a checklist", s.Name, s.Kind)
	}
	if s.Recurrence == nil {
		return nil, errors.New("recurrence is required")
	}
	r := s.Recurrence

	start, err := domain.ParseDate(r.Start)
	if err != nil {
		return nil, fmt.Errorf("parsing recurrence.start: %w", err)
	}
	end, err := domain.ParseDate(r.End)
	if err != nil {
		return nil, fmt.Errorf("parsing recurrence.end: %w", err)
	}

	pattern := domain.RecurrencePattern{
		Frequency:    domain.Frequency(r.Frequency),
		MonthlyDates: append([]int(nil), r.MonthlyDates...),
		Start:        start,
		End:          end,
	}
	for _, d := range r.WeeklyDays {
		wd, err := ParseWeekday(d)
		if err != nil {
			return nil, err
		}
		pattern.WeeklyDays = append(pattern.WeeklyDays, wd)
	}

	items := make([]domain.ChecklistItemSpec, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, domain.ChecklistItemSpec{Label: it.Label, Description: it.Description})
	}

	return &domain.ChecklistTemplate{
		Name:       s.Name,
		AssignedTo: s.AssignedTo,
		Pattern:    pattern,
		Items:      items,
	}, nil
}

// WorkflowTemplate converts a validated workflow schema.
func WorkflowTemplate(s *TemplateSchema) (*domain.WorkflowTemplate, error) {
	if s.Kind != KindWorkflow {
		return nil, fmt.Errorf("template %q is a %s template, not a workflow", s.Name, s.Kind)
	}
	steps := make([]domain.StepSpec, 0, len(s.Steps))
	for i, st := range s.Steps {
		d, err := ParseDuration(st.Duration)
		if err != nil {
			return nil, fmt.Errorf("steps[%d].duration: %w", i, err)
		}
		steps = append(steps, domain.StepSpec{What: st.What, Who: st.Who, How: st.How, Duration: d})
	}
	return &domain.WorkflowTemplate{Name: s.Name, Steps: steps}, nil
}

// FromChecklist renders a stored checklist template back into file form.
func FromChecklist(t *domain.ChecklistTemplate) *TemplateSchema {
	r := &RecurrenceConfig{
		Frequency:    string(t.Pattern.Frequency),
		MonthlyDates: append([]int(nil), t.Pattern.MonthlyDates...),
		Start:        t.Pattern.Start.Format(domain.DateLayout),
		End:          t.Pattern.End.Format(domain.DateLayout),
	}
	for _, d := range t.Pattern.WeeklyDays {
		r.WeeklyDays = append(r.WeeklyDays, strings.ToLower(d.String()[:3]))
	}
	s := &TemplateSchema{Kind: KindChecklist, Name: t.Name, AssignedTo: t.AssignedTo, Recurrence: r}
	for _, it := range t.Items {
		s.Items = append(s.Items, ItemConfig{Label: it.Label, Description: it.Description})
	}
	return s
}

// FromWorkflow renders a stored workflow template back into file form.
func FromWorkflow(t *domain.WorkflowTemplate) *TemplateSchema {
	s := &TemplateSchema{Kind: KindWorkflow, Name: t.Name}
	for _, st := range t.Steps {
		s.Steps = append(s.Steps, StepConfig{What: st.What, Who: st.Who, How: st.How, Duration: st.Duration.String()})
	}
	return s
}
