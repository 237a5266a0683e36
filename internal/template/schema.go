// Package template reads checklist and workflow template files written in
// YAML or JSON and turns them into domain templates.
package template

// Kind values accepted in a template file.
const (
	KindChecklist = "checklist"
	KindWorkflow  = "workflow"
)

// TemplateSchema is the top-level structure of a template file. Kind selects
// which of the remaining sections are read.
type TemplateSchema struct {
	Kind        string `yaml:"kind" json:"kind"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Checklist templates.
	AssignedTo string            `yaml:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	Recurrence *RecurrenceConfig `yaml:"recurrence,omitempty" json:"recurrence,omitempty"`
	Items      []ItemConfig      `yaml:"items,omitempty" json:"items,omitempty"`

	// Workflow templates.
	Steps []StepConfig `yaml:"steps,omitempty" json:"steps,omitempty"`
}

type RecurrenceConfig struct {
	Frequency string `yaml:"frequency" json:"frequency"`
	// WeeklyDays holds weekday names ("mon", "monday") or numbers 0-6 with
	// Sunday as 0.
	WeeklyDays   []string `yaml:"weekly_days,omitempty" json:"weekly_days,omitempty"`
	MonthlyDates []int    `yaml:"monthly_dates,omitempty" json:"monthly_dates,omitempty"`
	Start        string   `yaml:"start" json:"start"`
	End          string   `yaml:"end" json:"end"`
}

type ItemConfig struct {
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type StepConfig struct {
	What string `yaml:"what" json:"what"`
	Who  string `yaml:"who" json:"who"`
	How  string `yaml:"how,omitempty" json:"how,omitempty"`
	// Duration is "fixed+Nd", "dependent+Nd" or "ask_on_completion".
	Duration string `yaml:"duration" json:"duration"`
}
