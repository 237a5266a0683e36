package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_LegacyStepsWithoutOverrideFlag simulates upgrading a
// database created before workflow_steps carried due_overridden. Verifies that:
// 1. Data inserted under the old schema survives migration
// 2. The new column is added with its default
// 3. Steps moved by an approved date change are flagged as overridden
func TestMigrate_UpgradePath_LegacyStepsWithoutOverrideFlag(t *testing.T) {
	// Create a raw DB without using OpenDB (to manually control schema).
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON`)
	require.NoError(t, err)

	legacyStatements := []string{
		`CREATE TABLE workflow_templates (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE projects (
			id          TEXT PRIMARY KEY,
			template_id TEXT NOT NULL REFERENCES workflow_templates(id),
			name        TEXT NOT NULL,
			start_date  TEXT NOT NULL,
			version     INTEGER NOT NULL DEFAULT 1,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE TABLE workflow_steps (
			id                     TEXT PRIMARY KEY,
			project_id             TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			step_index             INTEGER NOT NULL,
			what                   TEXT NOT NULL,
			who                    TEXT NOT NULL DEFAULT '',
			how                    TEXT NOT NULL DEFAULT '',
			duration_kind          TEXT NOT NULL,
			offset_days            INTEGER NOT NULL DEFAULT 0,
			planned_due_date       TEXT,
			actual_completion_date TEXT,
			is_on_hold             INTEGER NOT NULL DEFAULT 0,
			is_terminated          INTEGER NOT NULL DEFAULT 0,
			UNIQUE (project_id, step_index)
		)`,
		`CREATE TABLE objections (
			id                   TEXT PRIMARY KEY,
			target_id            TEXT NOT NULL,
			target_kind          TEXT NOT NULL,
			type                 TEXT NOT NULL,
			requested_date       TEXT,
			extra_days_requested INTEGER,
			remarks              TEXT NOT NULL DEFAULT '',
			requested_by         TEXT NOT NULL,
			requested_at         TEXT NOT NULL,
			status               TEXT NOT NULL DEFAULT 'pending',
			responded_by         TEXT,
			responded_at         TEXT,
			approval_remarks     TEXT,
			impact_scoring       INTEGER
		)`,
	}
	for i, stmt := range legacyStatements {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "legacy statement %d failed", i)
	}

	// Insert legacy data BEFORE running migrations.
	_, err = db.Exec(`INSERT INTO workflow_templates (id, name, created_at) VALUES ('wt1', 'Hiring', '2024-03-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO projects (id, template_id, name, start_date, created_at, updated_at)
		VALUES ('p1', 'wt1', 'Legacy', '2024-03-01', '2024-03-01T00:00:00Z', '2024-03-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO workflow_steps (id, project_id, step_index, what, duration_kind, offset_days, planned_due_date)
		VALUES ('s1', 'p1', 0, 'Post ad', 'fixed', 2, '2024-03-03'),
		       ('s2', 'p1', 1, 'Interview', 'dependent', 3, '2024-03-12'),
		       ('s3', 'p1', 2, 'Offer', 'dependent', 1, '2024-03-13')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO objections (id, target_id, target_kind, type, requested_date, requested_by, requested_at, status, responded_by, responded_at)
		VALUES ('o1', 's2', 'step', 'date_change', '2024-03-12', 'sam', '2024-03-04T09:00:00Z', 'approved', 'lee', '2024-03-04T10:00:00Z'),
		       ('o2', 's3', 'step', 'date_change', '2024-03-20', 'sam', '2024-03-04T09:00:00Z', 'rejected', 'lee', '2024-03-04T10:00:00Z')`)
	require.NoError(t, err)

	// === Run current migrations on legacy DB ===
	require.NoError(t, Migrate(db))

	var what, planned string
	err = db.QueryRow(`SELECT what, planned_due_date FROM workflow_steps WHERE id = 's1'`).Scan(&what, &planned)
	require.NoError(t, err)
	assert.Equal(t, "Post ad", what)
	assert.Equal(t, "2024-03-03", planned)

	overridden := map[string]int{}
	rows, err := db.Query(`SELECT id, due_overridden FROM workflow_steps`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var id string
		var flag int
		require.NoError(t, rows.Scan(&id, &flag))
		overridden[id] = flag
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]int{"s1": 0, "s2": 1, "s3": 0}, overridden)

	// Running again is a no-op.
	require.NoError(t, Migrate(db))
}
