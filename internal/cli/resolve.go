package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
)

// resolvePrefix finds the single ID that equals input or starts with it.
func resolvePrefix(kind, input string, ids []string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}
	var matches []string
	for _, id := range ids {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

func resolveProjectID(ctx context.Context, app *App, input string) (string, error) {
	projects, err := app.Projects.List(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return resolvePrefix("project", input, ids)
}

func resolveStepID(ctx context.Context, app *App, input string) (string, error) {
	projects, err := app.Projects.List(ctx)
	if err != nil {
		return "", err
	}
	var ids []string
	for _, p := range projects {
		for _, s := range p.Steps {
			ids = append(ids, s.ID)
		}
	}
	return resolvePrefix("step", input, ids)
}

func resolveTaskID(ctx context.Context, app *App, input string) (string, error) {
	tasks, err := app.Tasks.List(ctx, "")
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return resolvePrefix("task", input, ids)
}

// resolveTargetID accepts a step or task ID (or unique prefix of either).
func resolveTargetID(ctx context.Context, app *App, input string) (string, error) {
	if id, err := resolveStepID(ctx, app, input); err == nil {
		return id, nil
	}
	return resolveTaskID(ctx, app, input)
}

func resolveWorkflowTemplateID(ctx context.Context, app *App, input string) (string, error) {
	templates, err := app.Workflows.ListTemplates(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
		if strings.EqualFold(t.Name, input) {
			return t.ID, nil
		}
	}
	return resolvePrefix("workflow template", input, ids)
}

func resolveChecklistTemplateID(ctx context.Context, app *App, input string) (string, error) {
	templates, err := app.Checklists.ListTemplates(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(templates))
	for _, t := range templates {
		ids = append(ids, t.ID)
	}
	return resolvePrefix("checklist template", input, ids)
}

// resolveOccurrenceID searches the occurrences of every checklist template.
func resolveOccurrenceID(ctx context.Context, app *App, input string) (string, error) {
	templates, err := app.Checklists.ListTemplates(ctx)
	if err != nil {
		return "", err
	}
	var ids []string
	for _, t := range templates {
		occs, err := app.Checklists.ListOccurrences(ctx, t.ID)
		if err != nil {
			return "", err
		}
		for _, o := range occs {
			ids = append(ids, o.ID)
		}
	}
	return resolvePrefix("occurrence", input, ids)
}

// resolveObjectionID searches pending objections by prefix; a full ID of a
// responded objection is accepted as is.
func resolveObjectionID(ctx context.Context, app *App, input string) (string, error) {
	if _, err := app.Objections.GetByID(ctx, input); err == nil {
		return input, nil
	}
	pending, err := app.Objections.ListPending(ctx)
	if err != nil {
		return "", err
	}
	ids := make([]string, 0, len(pending))
	for _, o := range pending {
		ids = append(ids, o.ID)
	}
	return resolvePrefix("objection", input, ids)
}

// parseDateFlag parses a YYYY-MM-DD flag value. Empty yields def.
func parseDateFlag(name, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q (expected YYYY-MM-DD)", name, value)
	}
	return d, nil
}

// optionalDateFlag is parseDateFlag for bounds that may stay unset.
func optionalDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := parseDateFlag(name, value, time.Time{})
	if err != nil {
		return nil, err
	}
	return &d, nil
}
