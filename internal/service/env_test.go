package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/repository"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/alexanderramin/opsched/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testEnv wires every service against one in-memory database and a fixed
// clock.
type testEnv struct {
	db    *sql.DB
	uow   db.UnitOfWork
	sched Scheduling

	checklistTemplates *repository.SQLiteChecklistTemplateRepo
	occurrenceRepo     *repository.SQLiteOccurrenceRepo
	workflowTemplates  *repository.SQLiteWorkflowTemplateRepo
	projectRepo        *repository.SQLiteProjectRepo
	taskRepo           *repository.SQLiteTaskRepo
	objectionRepo      *repository.SQLiteObjectionRepo

	checklists *checklistService
	workflows  *workflowService
	projects   *projectService
	tasks      *taskService
	objections *objectionService
	scoring    ScoringService
	observer   *recordingObserver
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	return newTestEnvWith(t, database, testutil.NewTestUoW(database), DefaultScheduling())
}

func newTestEnvWith(t *testing.T, database *sql.DB, uow db.UnitOfWork, sched Scheduling) *testEnv {
	t.Helper()
	e := &testEnv{
		db:                 database,
		uow:                uow,
		sched:              sched,
		checklistTemplates: repository.NewSQLiteChecklistTemplateRepo(database),
		occurrenceRepo:     repository.NewSQLiteOccurrenceRepo(database),
		workflowTemplates:  repository.NewSQLiteWorkflowTemplateRepo(database),
		projectRepo:        repository.NewSQLiteProjectRepo(database),
		taskRepo:           repository.NewSQLiteTaskRepo(database),
		objectionRepo:      repository.NewSQLiteObjectionRepo(database),
		observer:           &recordingObserver{},
	}
	e.checklists = NewChecklistService(e.checklistTemplates, e.occurrenceRepo, uow, sched, e.observer).(*checklistService)
	e.workflows = NewWorkflowService(e.workflowTemplates, uow).(*workflowService)
	e.projects = NewProjectService(e.projectRepo, e.workflowTemplates, uow, sched, e.observer).(*projectService)
	e.tasks = NewTaskService(e.taskRepo, uow, e.observer).(*taskService)
	e.objections = NewObjectionService(e.objectionRepo, e.projectRepo, e.taskRepo, uow, sched, e.observer).(*objectionService)
	e.scoring = NewScoringService(e.projectRepo, e.taskRepo, e.occurrenceRepo, e.objectionRepo, e.observer)
	e.setClock(testutil.Now)
	return e
}

func (e *testEnv) setClock(now time.Time) {
	clock := func() time.Time { return now }
	e.checklists.now = clock
	e.workflows.now = clock
	e.projects.now = clock
	e.tasks.now = clock
	e.objections.now = clock
}

// startProject stores a workflow template with the given durations, all
// assigned to who, and starts a project from it on start.
func (e *testEnv) startProject(t *testing.T, who, start string, durations ...domain.DurationSpec) *domain.Project {
	t.Helper()
	ctx := context.Background()
	tmpl := testutil.NewTestWorkflowTemplate("Procurement", durations, who)
	tmpl.ID = ""
	require.NoError(t, e.workflows.CreateTemplate(ctx, tmpl))
	p, err := e.projects.StartProject(ctx, tmpl.ID, "", testutil.Day(start))
	require.NoError(t, err)
	return p
}

func (e *testEnv) raise(t *testing.T, targetID string, typ domain.ObjectionType, requested string) *domain.Objection {
	t.Helper()
	req := scheduler.RaiseRequest{TargetID: targetID, Type: typ, Remarks: "vendor delay", RequestedBy: "sam"}
	if requested != "" {
		d := testutil.Day(requested)
		req.RequestedDate = &d
	}
	o, err := e.objections.Raise(context.Background(), req)
	require.NoError(t, err)
	return o
}

func (e *testEnv) approve(t *testing.T, objectionID string, impact *bool) *Resolution {
	t.Helper()
	res, err := e.objections.Respond(context.Background(), objectionID, scheduler.RespondRequest{
		Status:        domain.ObjectionApproved,
		RespondedBy:   "lee",
		ImpactScoring: impact,
	})
	require.NoError(t, err)
	return res
}

func plannedDates(steps []domain.WorkflowStep) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		if s.PlannedDueDate != nil {
			out[i] = s.PlannedDueDate.Format(domain.DateLayout)
		}
	}
	return out
}

func stepIDs(steps []domain.WorkflowStep) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.ID
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) last(name string) (UseCaseEvent, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.events) - 1; i >= 0; i-- {
		if o.events[i].Name == name {
			return o.events[i], true
		}
	}
	return UseCaseEvent{}, false
}

// racingUoW simulates another writer: in each of its first Races
// transactions it bumps the project version right before the first write, so
// the version check in SaveSteps fails.
type racingUoW struct {
	DB    *sql.DB
	Races int

	mu  sync.Mutex
	txs int
}

func (u *racingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	u.mu.Lock()
	u.txs++
	race := u.txs <= u.Races
	u.mu.Unlock()

	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var conn db.DBTX = tx
	if race {
		conn = &racingTx{DBTX: tx}
	}
	if err := fn(ctx, conn); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type racingTx struct {
	db.DBTX
	raced bool
}

func (r *racingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if !r.raced {
		r.raced = true
		if _, err := r.DBTX.ExecContext(ctx, `UPDATE projects SET version = version + 1`); err != nil {
			return nil, err
		}
	}
	return r.DBTX.ExecContext(ctx, query, args...)
}
