package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillDueOverridden(db); err != nil {
		return fmt.Errorf("backfilling due_overridden: %w", err)
	}
	return nil
}

// migrateBackfillDueOverridden marks steps whose planned date came from an
// approved date change. Databases created before the due_overridden column
// existed would otherwise let the next planner pass overwrite those dates.
func migrateBackfillDueOverridden(db *sql.DB) error {
	ctx := context.Background()
	query := `UPDATE workflow_steps SET due_overridden = 1
		WHERE due_overridden = 0
		  AND actual_completion_date IS NULL
		  AND EXISTS (
			SELECT 1 FROM objections o
			WHERE o.target_id = workflow_steps.id
			  AND o.target_kind = 'step'
			  AND o.type = 'date_change'
			  AND o.status = 'approved'
			  AND o.requested_date = workflow_steps.planned_due_date
		  )`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("updating workflow steps: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS checklist_templates (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		assigned_to   TEXT NOT NULL,
		frequency     TEXT NOT NULL
		              CHECK(frequency IN ('daily','weekly','monthly')),
		weekly_days   TEXT NOT NULL DEFAULT '',
		monthly_dates TEXT NOT NULL DEFAULT '',
		start_date    TEXT NOT NULL,
		end_date      TEXT NOT NULL,
		created_at    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS checklist_template_items (
		template_id TEXT NOT NULL REFERENCES checklist_templates(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		label       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (template_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS checklist_occurrences (
		id           TEXT PRIMARY KEY,
		template_id  TEXT NOT NULL REFERENCES checklist_templates(id) ON DELETE CASCADE,
		assigned_to  TEXT NOT NULL,
		due_date     TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending'
		             CHECK(status IN ('pending','completed')),
		completed_at TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		UNIQUE (template_id, due_date)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_occurrences_assignee ON checklist_occurrences(assigned_to, due_date)`,

	`CREATE TABLE IF NOT EXISTS checklist_occurrence_items (
		occurrence_id TEXT NOT NULL REFERENCES checklist_occurrences(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		label         TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		checked       INTEGER NOT NULL DEFAULT 0,
		checked_at    TEXT,
		PRIMARY KEY (occurrence_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS workflow_templates (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS workflow_template_steps (
		template_id   TEXT NOT NULL REFERENCES workflow_templates(id) ON DELETE CASCADE,
		step_index    INTEGER NOT NULL,
		what          TEXT NOT NULL,
		who           TEXT NOT NULL DEFAULT '',
		how           TEXT NOT NULL DEFAULT '',
		duration_kind TEXT NOT NULL
		              CHECK(duration_kind IN ('fixed','dependent','ask_on_completion')),
		offset_days   INTEGER NOT NULL DEFAULT 0 CHECK(offset_days >= 0),
		PRIMARY KEY (template_id, step_index)
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		template_id TEXT NOT NULL REFERENCES workflow_templates(id),
		name        TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		version     INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS workflow_steps (
		id                     TEXT PRIMARY KEY,
		project_id             TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		step_index             INTEGER NOT NULL,
		what                   TEXT NOT NULL,
		who                    TEXT NOT NULL DEFAULT '',
		how                    TEXT NOT NULL DEFAULT '',
		duration_kind          TEXT NOT NULL
		                       CHECK(duration_kind IN ('fixed','dependent','ask_on_completion')),
		offset_days            INTEGER NOT NULL DEFAULT 0,
		planned_due_date       TEXT,
		actual_completion_date TEXT,
		is_on_hold             INTEGER NOT NULL DEFAULT 0,
		is_terminated          INTEGER NOT NULL DEFAULT 0,
		UNIQUE (project_id, step_index)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_workflow_steps_who ON workflow_steps(who)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		assigned_to   TEXT NOT NULL,
		due_date      TEXT NOT NULL,
		completed_at  TEXT,
		is_on_hold    INTEGER NOT NULL DEFAULT 0,
		is_terminated INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assigned_to)`,

	`CREATE TABLE IF NOT EXISTS objections (
		id                   TEXT PRIMARY KEY,
		target_id            TEXT NOT NULL,
		target_kind          TEXT NOT NULL CHECK(target_kind IN ('step','task')),
		type                 TEXT NOT NULL
		                     CHECK(type IN ('date_change','hold','terminate')),
		requested_date       TEXT,
		extra_days_requested INTEGER,
		remarks              TEXT NOT NULL DEFAULT '',
		requested_by         TEXT NOT NULL,
		requested_at         TEXT NOT NULL,
		status               TEXT NOT NULL DEFAULT 'pending'
		                     CHECK(status IN ('pending','approved','rejected')),
		responded_by         TEXT,
		responded_at         TEXT,
		approval_remarks     TEXT,
		impact_scoring       INTEGER
	)`,

	`CREATE INDEX IF NOT EXISTS idx_objections_target ON objections(target_id, requested_at)`,

	// At most one pending objection per target.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_objections_one_pending
		ON objections(target_id) WHERE status = 'pending'`,

	`ALTER TABLE workflow_steps ADD COLUMN due_overridden INTEGER NOT NULL DEFAULT 0`,
}
