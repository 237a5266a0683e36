package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const stepColumns = `id, project_id, step_index, what, who, how, duration_kind, offset_days,
	planned_due_date, actual_completion_date, is_on_hold, is_terminated, due_overridden`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if p.Version == 0 {
		p.Version = 1
	}
	query := `INSERT INTO projects (id, template_id, name, start_date, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.TemplateID,
		p.Name,
		p.StartDate.Format(dateLayout),
		p.Version,
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	for _, s := range p.Steps {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO workflow_steps (`+stepColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID,
			p.ID,
			s.StepIndex,
			s.What,
			s.Who,
			s.How,
			string(s.Duration.Kind),
			s.Duration.OffsetDays,
			nullableTimeToString(s.PlannedDueDate, dateLayout),
			nullableTimeToString(s.ActualCompletionDate, dateLayout),
			boolToInt(s.IsOnHold),
			boolToInt(s.IsTerminated),
			boolToInt(s.DueOverridden),
		)
		if err != nil {
			return fmt.Errorf("inserting step %d: %w", s.StepIndex, err)
		}
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT id, template_id, name, start_date, version, created_at, updated_at
		FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, err
	}
	if p.Steps, err = r.listSteps(ctx, `WHERE project_id = ? ORDER BY step_index`, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteProjectRepo) GetByStepID(ctx context.Context, stepID string) (*domain.Project, error) {
	var projectID string
	err := r.db.QueryRowContext(ctx, `SELECT project_id FROM workflow_steps WHERE id = ?`, stepID).Scan(&projectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("step", stepID)
		}
		return nil, fmt.Errorf("looking up step: %w", err)
	}
	return r.GetByID(ctx, projectID)
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	query := `SELECT id, template_id, name, start_date, version, created_at, updated_at
		FROM projects ORDER BY created_at, name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	rows.Close()

	for _, p := range projects {
		if p.Steps, err = r.listSteps(ctx, `WHERE project_id = ? ORDER BY step_index`, p.ID); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) SaveSteps(ctx context.Context, p *domain.Project) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		p.UpdatedAt.Format(time.RFC3339), p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("bumping project version: %w", err)
	}
	n, err := rowsAffected(res, "bumping project version")
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s at version %d: %w", p.ID, p.Version, ErrStaleVersion)
	}

	for _, s := range p.Steps {
		_, err := r.db.ExecContext(ctx,
			`UPDATE workflow_steps SET planned_due_date = ?, actual_completion_date = ?,
				is_on_hold = ?, is_terminated = ?, due_overridden = ?
			WHERE id = ? AND project_id = ?`,
			nullableTimeToString(s.PlannedDueDate, dateLayout),
			nullableTimeToString(s.ActualCompletionDate, dateLayout),
			boolToInt(s.IsOnHold),
			boolToInt(s.IsTerminated),
			boolToInt(s.DueOverridden),
			s.ID,
			p.ID,
		)
		if err != nil {
			return fmt.Errorf("updating step %d: %w", s.StepIndex, err)
		}
	}
	p.Version++
	return nil
}

func (r *SQLiteProjectRepo) ListStepsByAssignee(ctx context.Context, who string) ([]domain.WorkflowStep, error) {
	return r.listSteps(ctx, `WHERE who = ? ORDER BY project_id, step_index`, who)
}

func (r *SQLiteProjectRepo) listSteps(ctx context.Context, where string, args ...any) ([]domain.WorkflowStep, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+stepColumns+` FROM workflow_steps `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("listing steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.WorkflowStep
	for rows.Next() {
		var s domain.WorkflowStep
		var kind string
		var planned, actual sql.NullString
		var onHold, terminated, overridden int
		if err := rows.Scan(
			&s.ID, &s.ProjectID, &s.StepIndex, &s.What, &s.Who, &s.How,
			&kind, &s.Duration.OffsetDays,
			&planned, &actual,
			&onHold, &terminated, &overridden,
		); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		s.Duration.Kind = domain.DurationKind(kind)
		s.PlannedDueDate = parseNullableTime(planned, dateLayout)
		s.ActualCompletionDate = parseNullableTime(actual, dateLayout)
		s.IsOnHold = intToBool(onHold)
		s.IsTerminated = intToBool(terminated)
		s.DueOverridden = intToBool(overridden)
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating steps: %w", err)
	}
	return steps, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var start, created, updated string
	if err := row.Scan(&p.ID, &p.TemplateID, &p.Name, &start, &p.Version, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	var err error
	if p.StartDate, err = parseTime(start, dateLayout, "start_date"); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(created, time.RFC3339, "created_at"); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updated, time.RFC3339, "updated_at"); err != nil {
		return nil, err
	}
	return &p, nil
}
