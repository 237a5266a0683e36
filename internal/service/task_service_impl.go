package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/repository"
	"github.com/google/uuid"
)

type taskService struct {
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewTaskService(tasks repository.TaskRepo, uow db.UnitOfWork, observers ...UseCaseObserver) TaskService {
	return &taskService{tasks: tasks, uow: uow, observer: useCaseObserverOrNoop(observers), now: utcNow}
}

func (s *taskService) Create(ctx context.Context, t *domain.Task) error {
	if err := s.prepare(t, s.now()); err != nil {
		return err
	}
	return s.tasks.Create(ctx, t)
}

func (s *taskService) CreateBatch(ctx context.Context, batch []*domain.Task) (err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "create-task-batch", startedAt, map[string]any{"count": len(batch)}, &err)

	now := s.now()
	for _, t := range batch {
		if err := s.prepare(t, now); err != nil {
			return err
		}
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		for _, t := range batch {
			if err := tasks.Create(ctx, t); err != nil {
				return fmt.Errorf("creating task %q: %w", t.Title, err)
			}
		}
		return nil
	})
}

// prepare validates t and fills in its identity and timestamps.
func (s *taskService) prepare(t *domain.Task, now time.Time) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title is required")
	}
	if t.DueDate.IsZero() {
		return fmt.Errorf("task %q needs a due date", t.Title)
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	t.DueDate = domain.Day(t.DueDate)
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *taskService) List(ctx context.Context, assignee string) ([]*domain.Task, error) {
	return s.tasks.List(ctx, assignee)
}

func (s *taskService) Complete(ctx context.Context, id string, at time.Time) (*domain.Task, error) {
	return s.mutate(ctx, id, func(t *domain.Task, now time.Time) error {
		if err := t.Complete(at); err != nil {
			return err
		}
		t.UpdatedAt = now
		return nil
	})
}

func (s *taskService) Resume(ctx context.Context, id string) (out *domain.Task, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "resume-task", startedAt, map[string]any{"task_id": id}, &err)

	return s.mutate(ctx, id, func(t *domain.Task, now time.Time) error {
		return t.Resume(now)
	})
}

// mutate applies fn to the stored task under its schedule lock and persists
// the result in one transaction.
func (s *taskService) mutate(ctx context.Context, id string, fn func(t *domain.Task, now time.Time) error) (*domain.Task, error) {
	unlock := scheduleLocks.Lock(id)
	defer unlock()

	var out *domain.Task
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		t, err := tasks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(t, s.now()); err != nil {
			return err
		}
		if err := tasks.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
