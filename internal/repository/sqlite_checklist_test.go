package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/opsched/internal/domain"
	"github.com/alexanderramin/opsched/internal/scheduler"
	"github.com/alexanderramin/opsched/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecklistTemplateRepo_RoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteChecklistTemplateRepo(database)
	ctx := context.Background()

	weekly := testutil.NewTestChecklistTemplate("Fire check", "kim",
		testutil.WithWeeklyDays(time.Monday, time.Friday),
		testutil.WithRange("2024-03-01", "2024-03-31"),
		testutil.WithItems("Extinguishers", "Exit signs", "Alarm panel"))
	monthly := testutil.NewTestChecklistTemplate("Payroll", "lee", testutil.WithMonthlyDates(15, 31))
	require.NoError(t, repo.Create(ctx, weekly))
	require.NoError(t, repo.Create(ctx, monthly))

	fetched, err := repo.GetByID(ctx, weekly.ID)
	require.NoError(t, err)
	assert.Equal(t, weekly.Name, fetched.Name)
	assert.Equal(t, domain.FrequencyWeekly, fetched.Pattern.Frequency)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, fetched.Pattern.WeeklyDays)
	assert.Empty(t, fetched.Pattern.MonthlyDates)
	assert.Equal(t, testutil.Day("2024-03-01"), fetched.Pattern.Start)
	assert.Equal(t, testutil.Day("2024-03-31"), fetched.Pattern.End)
	require.Len(t, fetched.Items, 3)
	assert.Equal(t, "Exit signs", fetched.Items[1].Label)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, tmpl := range list {
		if tmpl.ID == monthly.ID {
			assert.Equal(t, []int{15, 31}, tmpl.Pattern.MonthlyDates)
			assert.Len(t, tmpl.Items, 2)
		}
	}

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOccurrenceRepo_CreateAndList(t *testing.T) {
	database := testutil.NewTestDB(t)
	tmplRepo := NewSQLiteChecklistTemplateRepo(database)
	repo := NewSQLiteOccurrenceRepo(database)
	ctx := context.Background()

	tmpl := testutil.NewTestChecklistTemplate("Opening", "kim")
	require.NoError(t, tmplRepo.Create(ctx, tmpl))
	occs, err := scheduler.MaterializeTemplate(tmpl, scheduler.DefaultPolicy(), testutil.Now)
	require.NoError(t, err)
	require.Len(t, occs, 5)
	require.NoError(t, repo.CreateBatch(ctx, occs))

	byTemplate, err := repo.ListByTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	require.Len(t, byTemplate, 5)
	assert.Equal(t, testutil.Day("2024-03-04"), byTemplate[0].DueDate)
	assert.Equal(t, testutil.Day("2024-03-08"), byTemplate[4].DueDate)
	for _, o := range byTemplate {
		assert.Equal(t, domain.OccurrencePending, o.Status)
		require.Len(t, o.Items, 2)
		assert.False(t, o.Items[0].Checked)
		assert.Equal(t, "Record opening float", o.Items[1].Description)
	}

	from, to := testutil.Day("2024-03-05"), testutil.Day("2024-03-06")
	window, err := repo.ListByAssignee(ctx, "kim", &from, &to)
	require.NoError(t, err)
	assert.Len(t, window, 2)

	all, err := repo.ListByAssignee(ctx, "kim", nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := repo.ListByAssignee(ctx, "lee", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOccurrenceRepo_UpdateItems(t *testing.T) {
	database := testutil.NewTestDB(t)
	tmplRepo := NewSQLiteChecklistTemplateRepo(database)
	repo := NewSQLiteOccurrenceRepo(database)
	ctx := context.Background()

	tmpl := testutil.NewTestChecklistTemplate("Opening", "kim", testutil.WithRange("2024-03-04", "2024-03-04"))
	require.NoError(t, tmplRepo.Create(ctx, tmpl))
	occ := scheduler.MaterializeOccurrence(tmpl.ID, tmpl.AssignedTo, testutil.Day("2024-03-04"), tmpl.Items, testutil.Now)
	require.NoError(t, repo.CreateBatch(ctx, []domain.ChecklistOccurrence{occ}))

	at := testutil.Now.Add(time.Hour)
	require.NoError(t, occ.CheckItem(0, at))
	require.NoError(t, occ.CheckItem(1, at.Add(time.Minute)))
	require.NoError(t, repo.UpdateItems(ctx, &occ))

	fetched, err := repo.GetByID(ctx, occ.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OccurrenceCompleted, fetched.Status)
	require.NotNil(t, fetched.CompletedAt)
	assert.Equal(t, at.Add(time.Minute), *fetched.CompletedAt)
	assert.True(t, fetched.Items[0].Checked)
	assert.Equal(t, at, *fetched.Items[0].CheckedAt)

	missing := occ
	missing.ID = "missing"
	assert.ErrorIs(t, repo.UpdateItems(ctx, &missing), ErrNotFound)
}

func TestOccurrenceRepo_DuplicateDueDateRejected(t *testing.T) {
	database := testutil.NewTestDB(t)
	tmplRepo := NewSQLiteChecklistTemplateRepo(database)
	repo := NewSQLiteOccurrenceRepo(database)
	ctx := context.Background()

	tmpl := testutil.NewTestChecklistTemplate("Opening", "kim")
	require.NoError(t, tmplRepo.Create(ctx, tmpl))
	d := testutil.Day("2024-03-04")
	a := scheduler.MaterializeOccurrence(tmpl.ID, "kim", d, tmpl.Items, testutil.Now)
	b := scheduler.MaterializeOccurrence(tmpl.ID, "kim", d, tmpl.Items, testutil.Now)
	assert.Error(t, repo.CreateBatch(ctx, []domain.ChecklistOccurrence{a, b}))
}
