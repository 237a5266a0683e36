package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/repository"
	"github.com/alexanderramin/opsched/internal/scheduler"
)

type objectionService struct {
	objections repository.ObjectionRepo
	projects   repository.ProjectRepo
	tasks      repository.TaskRepo
	uow        db.UnitOfWork
	sched      Scheduling
	observer   UseCaseObserver
	now        func() time.Time
}

func NewObjectionService(
	objections repository.ObjectionRepo,
	projects repository.ProjectRepo,
	tasks repository.TaskRepo,
	uow db.UnitOfWork,
	sched Scheduling,
	observers ...UseCaseObserver,
) ObjectionService {
	return &objectionService{
		objections: objections,
		projects:   projects,
		tasks:      tasks,
		uow:        uow,
		sched:      sched,
		observer:   useCaseObserverOrNoop(observers),
		now:        utcNow,
	}
}

// Raise records a pending objection against a workflow step or a task. The
// pending check and the insert share one transaction; the database's
// one-pending index rejects a racing second insert.
func (s *objectionService) Raise(ctx context.Context, req scheduler.RaiseRequest) (o *domain.Objection, err error) {
	startedAt := time.Now()
	fields := map[string]any{"target_id": req.TargetID, "type": string(req.Type)}
	defer observe(ctx, s.observer, "raise-objection", startedAt, fields, &err)

	now := s.now()
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		target, err := loadTarget(ctx, tx, req.TargetID)
		if err != nil {
			return err
		}
		objections := repository.NewSQLiteObjectionRepo(tx)
		pending, err := objections.GetPendingByTarget(ctx, target.ID)
		if err != nil {
			return err
		}
		o, err = scheduler.RaiseObjection(req, target, pending, now)
		if err != nil {
			return err
		}
		return objections.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	fields["objection_id"] = o.ID
	return o, nil
}

// Respond approves or rejects a pending objection and applies an approval to
// its target. The response and the reschedule commit together or not at all.
func (s *objectionService) Respond(ctx context.Context, objectionID string, resp scheduler.RespondRequest) (res *Resolution, err error) {
	startedAt := time.Now()
	fields := map[string]any{"objection_id": objectionID, "status": string(resp.Status)}
	defer observe(ctx, s.observer, "respond-objection", startedAt, fields, &err)

	o, err := s.objections.GetByID(ctx, objectionID)
	if err != nil {
		return nil, err
	}
	fields["target_id"] = o.TargetID

	switch o.TargetKind {
	case domain.TargetStep:
		res, err = s.respondStep(ctx, o, resp)
	case domain.TargetTask:
		res, err = s.respondTask(ctx, o, resp)
	default:
		err = fmt.Errorf("objection %s has unknown target kind %q", o.ID, o.TargetKind)
	}
	if err != nil {
		return nil, err
	}
	fields["changed"] = len(res.ChangedSteps)
	return res, nil
}

func (s *objectionService) respondStep(ctx context.Context, o *domain.Objection, resp scheduler.RespondRequest) (*Resolution, error) {
	projectID, err := projectOfStep(ctx, s.projects, o.TargetID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var responded *domain.Objection
	change, err := updateChain(ctx, s.uow, s.sched, projectID, now, func(ctx context.Context, tx db.DBTX, p *domain.Project) ([]domain.WorkflowStep, []int, error) {
		var err error
		responded, err = respondInTx(ctx, tx, o.ID, resp, now)
		if err != nil {
			return nil, nil, err
		}
		return scheduler.ResolveStep(p, responded, s.sched.Policy)
	})
	if err != nil {
		return nil, err
	}
	return &Resolution{Objection: responded, Project: change.Project, ChangedSteps: change.Changed}, nil
}

func (s *objectionService) respondTask(ctx context.Context, o *domain.Objection, resp scheduler.RespondRequest) (*Resolution, error) {
	unlock := scheduleLocks.Lock(o.TargetID)
	defer unlock()

	now := s.now()
	res := &Resolution{}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		responded, err := respondInTx(ctx, tx, o.ID, resp, now)
		if err != nil {
			return err
		}
		tasks := repository.NewSQLiteTaskRepo(tx)
		t, err := tasks.GetByID(ctx, o.TargetID)
		if err != nil {
			return err
		}
		updated, changed, err := scheduler.ResolveTask(t, responded, now)
		if err != nil {
			return err
		}
		if changed {
			if err := tasks.Update(ctx, updated); err != nil {
				return err
			}
		}
		res.Objection = responded
		res.Task = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *objectionService) GetByID(ctx context.Context, id string) (*domain.Objection, error) {
	return s.objections.GetByID(ctx, id)
}

func (s *objectionService) ListByTarget(ctx context.Context, targetID string) ([]*domain.Objection, error) {
	return s.objections.ListByTarget(ctx, targetID)
}

func (s *objectionService) ListPending(ctx context.Context) ([]*domain.Objection, error) {
	return s.objections.ListPending(ctx)
}

// respondInTx re-reads the objection inside the transaction so a response
// that raced ours is seen, then stores the response.
func respondInTx(ctx context.Context, tx db.DBTX, objectionID string, resp scheduler.RespondRequest, now time.Time) (*domain.Objection, error) {
	objections := repository.NewSQLiteObjectionRepo(tx)
	current, err := objections.GetByID(ctx, objectionID)
	if err != nil {
		return nil, err
	}
	responded, err := scheduler.RespondObjection(current, resp, now)
	if err != nil {
		return nil, err
	}
	if err := objections.Respond(ctx, responded); err != nil {
		return nil, err
	}
	return responded, nil
}

// loadTarget resolves targetID to a workflow step or, failing that, a task.
func loadTarget(ctx context.Context, tx db.DBTX, targetID string) (scheduler.ObjectionTarget, error) {
	p, err := repository.NewSQLiteProjectRepo(tx).GetByStepID(ctx, targetID)
	switch {
	case err == nil:
		pos, err := p.StepPosition(targetID)
		if err != nil {
			return scheduler.ObjectionTarget{}, err
		}
		return scheduler.StepTarget(&p.Steps[pos]), nil
	case !errors.Is(err, repository.ErrNotFound):
		return scheduler.ObjectionTarget{}, err
	}

	t, err := repository.NewSQLiteTaskRepo(tx).GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return scheduler.ObjectionTarget{}, fmt.Errorf("objection target %s: %w", targetID, repository.ErrNotFound)
		}
		return scheduler.ObjectionTarget{}, err
	}
	return scheduler.TaskTarget(t), nil
}
