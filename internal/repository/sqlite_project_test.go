package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProject(t *testing.T, repo *SQLiteProjectRepo, tmplRepo *SQLiteWorkflowTemplateRepo, durations ...domain.DurationSpec) *domain.Project {
	t.Helper()
	ctx := context.Background()
	tmpl := testutil.NewTestWorkflowTemplate("Onboarding", durations, "kim", "lee")
	require.NoError(t, tmplRepo.Create(ctx, tmpl))
	p := testutil.NewTestProject(tmpl, "2024-03-01")
	require.NoError(t, repo.Create(ctx, p))
	return p
}

func TestProjectRepo_CreateAndGetByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	p := seedProject(t, repo, NewSQLiteWorkflowTemplateRepo(database),
		domain.Fixed(2), domain.Dependent(3), domain.AskOnCompletion())

	fetched, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, fetched.Name)
	assert.Equal(t, p.TemplateID, fetched.TemplateID)
	assert.Equal(t, testutil.Day("2024-03-01"), fetched.StartDate)
	assert.Equal(t, 1, fetched.Version)
	require.Len(t, fetched.Steps, 3)

	for i, s := range fetched.Steps {
		assert.Equal(t, p.Steps[i].ID, s.ID)
		assert.Equal(t, i, s.StepIndex)
		assert.Equal(t, p.Steps[i].Duration, s.Duration)
		assert.Equal(t, p.Steps[i].Who, s.Who)
	}
	require.NotNil(t, fetched.Steps[0].PlannedDueDate)
	assert.Equal(t, testutil.Day("2024-03-03"), *fetched.Steps[0].PlannedDueDate)
	assert.Equal(t, testutil.Day("2024-03-06"), *fetched.Steps[1].PlannedDueDate)
	assert.Nil(t, fetched.Steps[2].PlannedDueDate)
}

func TestProjectRepo_GetByID_NotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)

	_, err := repo.GetByID(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestProjectRepo_GetByStepID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	p := seedProject(t, repo, NewSQLiteWorkflowTemplateRepo(database), domain.Fixed(1), domain.Dependent(1))

	fetched, err := repo.GetByStepID(ctx, p.Steps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, fetched.ID)

	_, err = repo.GetByStepID(ctx, "missing-step")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProjectRepo_SaveSteps_BumpsVersion(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	p := seedProject(t, repo, NewSQLiteWorkflowTemplateRepo(database), domain.Fixed(2), domain.Dependent(3))

	done := testutil.Day("2024-03-05")
	moved := testutil.Day("2024-03-08")
	p.Steps[0].ActualCompletionDate = &done
	p.Steps[1].PlannedDueDate = &moved
	p.Steps[1].DueOverridden = true
	p.Steps[1].IsOnHold = true
	require.NoError(t, repo.SaveSteps(ctx, p))
	assert.Equal(t, 2, p.Version)

	fetched, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched.Version)
	assert.Equal(t, done, *fetched.Steps[0].ActualCompletionDate)
	assert.Equal(t, moved, *fetched.Steps[1].PlannedDueDate)
	assert.True(t, fetched.Steps[1].DueOverridden)
	assert.True(t, fetched.Steps[1].IsOnHold)
	assert.False(t, fetched.Steps[1].IsTerminated)
}

func TestProjectRepo_SaveSteps_StaleVersion(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	ctx := context.Background()

	p := seedProject(t, repo, NewSQLiteWorkflowTemplateRepo(database), domain.Fixed(2), domain.Dependent(3))

	first, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)

	first.Steps[1].IsOnHold = true
	require.NoError(t, repo.SaveSteps(ctx, first))

	second.Steps[1].IsTerminated = true
	err = repo.SaveSteps(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStaleVersion))
	assert.Equal(t, 1, second.Version, "version is only bumped on success")

	fetched, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Steps[1].IsTerminated, "stale write is discarded")
}

func TestProjectRepo_ListAndStepsByAssignee(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteProjectRepo(database)
	tmplRepo := NewSQLiteWorkflowTemplateRepo(database)
	ctx := context.Background()

	seedProject(t, repo, tmplRepo, domain.Fixed(1), domain.Dependent(1), domain.Dependent(1))
	seedProject(t, repo, tmplRepo, domain.Fixed(1))

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	stepCounts := map[int]int{}
	for _, p := range projects {
		stepCounts[len(p.Steps)]++
	}
	assert.Equal(t, map[int]int{3: 1, 1: 1}, stepCounts)

	// Steps alternate kim, lee, kim in each project.
	kim, err := repo.ListStepsByAssignee(ctx, "kim")
	require.NoError(t, err)
	assert.Len(t, kim, 3)
	lee, err := repo.ListStepsByAssignee(ctx, "lee")
	require.NoError(t, err)
	assert.Len(t, lee, 1)
}
