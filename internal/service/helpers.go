package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/repository"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/rs/zerolog"
)

// Scheduling carries the policy knobs the services apply to every planner
// call.
type Scheduling struct {
	Policy scheduler.Policy
	// MaxAttempts bounds how often a step chain write is retried after
	// losing a version race. Values below 1 mean a single attempt.
	MaxAttempts int
}

func DefaultScheduling() Scheduling {
	return Scheduling{Policy: scheduler.DefaultPolicy(), MaxAttempts: 3}
}

func (s Scheduling) attempts() int {
	if s.MaxAttempts < 1 {
		return 1
	}
	return s.MaxAttempts
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// keyedMutex hands out one mutex per key. Entries are dropped once nobody
// holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock func.
func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// scheduleLocks serializes step chain and task writes within the process.
// Keys are project IDs for steps and task IDs for tasks.
var scheduleLocks = newKeyedMutex()

// chainMutation computes a new step chain for p. It runs inside the write
// transaction and may use tx for further writes. A nil or empty changed set
// skips the project save.
type chainMutation func(ctx context.Context, tx db.DBTX, p *domain.Project) (steps []domain.WorkflowStep, changed []int, err error)

// updateChain applies mutate to the stored project inside one transaction and
// saves the result with a version check. A lost version race is retried from
// a fresh read up to sched.MaxAttempts times.
func updateChain(ctx context.Context, uow db.UnitOfWork, sched Scheduling, projectID string, now time.Time, mutate chainMutation) (*StepChange, error) {
	unlock := scheduleLocks.Lock(projectID)
	defer unlock()

	log := zerolog.Ctx(ctx)
	var change *StepChange
	var err error
	for attempt := 1; attempt <= sched.attempts(); attempt++ {
		change = nil
		err = uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			projects := repository.NewSQLiteProjectRepo(tx)
			p, err := projects.GetByID(ctx, projectID)
			if err != nil {
				return err
			}
			steps, changed, err := mutate(ctx, tx, p)
			if err != nil {
				return err
			}

			c := &StepChange{Project: p}
			if len(changed) > 0 {
				p.Steps = steps
				p.UpdatedAt = now
				if err := projects.SaveSteps(ctx, p); err != nil {
					return err
				}
				for _, i := range changed {
					c.Changed = append(c.Changed, steps[i])
				}
			}
			change = c
			return nil
		})
		if !errors.Is(err, repository.ErrStaleVersion) {
			break
		}
		log.Debug().Str("project_id", projectID).Int("attempt", attempt).Msg("step chain write lost a version race")
	}
	if err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, fmt.Errorf("updating project %s after %d attempts: %w", projectID, sched.attempts(), err)
		}
		return nil, err
	}
	return change, nil
}

// projectOfStep returns the ID of the project that owns stepID.
func projectOfStep(ctx context.Context, projects repository.ProjectRepo, stepID string) (string, error) {
	p, err := projects.GetByStepID(ctx, stepID)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}
