package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/repository"
	"github.com/alexanderramin/opsched/internal/scheduler"
)

type scoringService struct {
	projects    repository.ProjectRepo
	tasks       repository.TaskRepo
	occurrences repository.OccurrenceRepo
	objections  repository.ObjectionRepo
	observer    UseCaseObserver
}

func NewScoringService(
	projects repository.ProjectRepo,
	tasks repository.TaskRepo,
	occurrences repository.OccurrenceRepo,
	objections repository.ObjectionRepo,
	observers ...UseCaseObserver,
) ScoringService {
	return &scoringService{
		projects:    projects,
		tasks:       tasks,
		occurrences: occurrences,
		objections:  objections,
		observer:    useCaseObserverOrNoop(observers),
	}
}

// OnTime scores every step, task and checklist occurrence assigned to
// assignee. Steps and tasks carry their current due date, so an approved
// date change is scored against the new date unless it excused the item.
func (s *scoringService) OnTime(ctx context.Context, assignee string) (score *AssigneeScore, err error) {
	startedAt := time.Now()
	fields := map[string]any{"assignee": assignee}
	defer observe(ctx, s.observer, "score-on-time", startedAt, fields, &err)

	if assignee == "" {
		return nil, fmt.Errorf("assignee is required")
	}

	steps, err := s.projects.ListStepsByAssignee(ctx, assignee)
	if err != nil {
		return nil, err
	}
	stepOutcomes := make([]scheduler.Outcome, 0, len(steps))
	for i := range steps {
		st := &steps[i]
		excused, err := s.excused(ctx, st.ID)
		if err != nil {
			return nil, err
		}
		stepOutcomes = append(stepOutcomes, scheduler.Outcome{
			ItemID:      st.ID,
			DueDate:     st.PlannedDueDate,
			CompletedAt: st.ActualCompletionDate,
			Excused:     excused,
		})
	}

	tasks, err := s.tasks.List(ctx, assignee)
	if err != nil {
		return nil, err
	}
	taskOutcomes := make([]scheduler.Outcome, 0, len(tasks))
	for _, t := range tasks {
		excused, err := s.excused(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		due := t.DueDate
		taskOutcomes = append(taskOutcomes, scheduler.Outcome{
			ItemID:      t.ID,
			DueDate:     &due,
			CompletedAt: t.CompletedAt,
			Excused:     excused,
		})
	}

	occs, err := s.occurrences.ListByAssignee(ctx, assignee, nil, nil)
	if err != nil {
		return nil, err
	}
	occOutcomes := make([]scheduler.Outcome, 0, len(occs))
	for _, o := range occs {
		due := o.DueDate
		var completed *time.Time
		if o.Status == domain.OccurrenceCompleted {
			completed = o.CompletedAt
		}
		occOutcomes = append(occOutcomes, scheduler.Outcome{ItemID: o.ID, DueDate: &due, CompletedAt: completed})
	}

	all := make([]scheduler.Outcome, 0, len(stepOutcomes)+len(taskOutcomes)+len(occOutcomes))
	all = append(all, stepOutcomes...)
	all = append(all, taskOutcomes...)
	all = append(all, occOutcomes...)

	score = &AssigneeScore{
		Assignee:   assignee,
		Steps:      scheduler.ScoreOnTime(stepOutcomes),
		Tasks:      scheduler.ScoreOnTime(taskOutcomes),
		Checklists: scheduler.ScoreOnTime(occOutcomes),
		Total:      scheduler.ScoreOnTime(all),
	}
	fields["scored"] = score.Total.Denominator()
	return score, nil
}

func (s *scoringService) excused(ctx context.Context, targetID string) (bool, error) {
	history, err := s.objections.ListByTarget(ctx, targetID)
	if err != nil {
		return false, err
	}
	return scheduler.Excused(history), nil
}
