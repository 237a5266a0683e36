package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
)

// SQLiteWorkflowTemplateRepo implements WorkflowTemplateRepo using a SQLite database.
type SQLiteWorkflowTemplateRepo struct {
	db db.DBTX
}

func NewSQLiteWorkflowTemplateRepo(conn db.DBTX) *SQLiteWorkflowTemplateRepo {
	return &SQLiteWorkflowTemplateRepo{db: conn}
}

func (r *SQLiteWorkflowTemplateRepo) Create(ctx context.Context, t *domain.WorkflowTemplate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workflow_templates (id, name, created_at) VALUES (?, ?, ?)`,
		t.ID, t.Name, t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting workflow template: %w", err)
	}
	for i, s := range t.Steps {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO workflow_template_steps (template_id, step_index, what, who, how, duration_kind, offset_days)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, i, s.What, s.Who, s.How, string(s.Duration.Kind), s.Duration.OffsetDays)
		if err != nil {
			return fmt.Errorf("inserting workflow template step %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteWorkflowTemplateRepo) GetByID(ctx context.Context, id string) (*domain.WorkflowTemplate, error) {
	var t domain.WorkflowTemplate
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM workflow_templates WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound("workflow template", id)
		}
		return nil, fmt.Errorf("scanning workflow template: %w", err)
	}
	if t.CreatedAt, err = parseTime(created, time.RFC3339, "created_at"); err != nil {
		return nil, err
	}
	if err := r.loadSteps(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SQLiteWorkflowTemplateRepo) List(ctx context.Context) ([]*domain.WorkflowTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM workflow_templates ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("listing workflow templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.WorkflowTemplate
	for rows.Next() {
		var t domain.WorkflowTemplate
		var created string
		if err := rows.Scan(&t.ID, &t.Name, &created); err != nil {
			return nil, fmt.Errorf("scanning workflow template row: %w", err)
		}
		if t.CreatedAt, err = parseTime(created, time.RFC3339, "created_at"); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating workflow templates: %w", err)
	}
	rows.Close()

	for _, t := range out {
		if err := r.loadSteps(ctx, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteWorkflowTemplateRepo) loadSteps(ctx context.Context, t *domain.WorkflowTemplate) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT what, who, how, duration_kind, offset_days
		FROM workflow_template_steps WHERE template_id = ? ORDER BY step_index`, t.ID)
	if err != nil {
		return fmt.Errorf("listing workflow template steps: %w", err)
	}
	defer rows.Close()

	t.Steps = nil
	for rows.Next() {
		var s domain.StepSpec
		var kind string
		if err := rows.Scan(&s.What, &s.Who, &s.How, &kind, &s.Duration.OffsetDays); err != nil {
			return fmt.Errorf("scanning workflow template step: %w", err)
		}
		s.Duration.Kind = domain.DurationKind(kind)
		t.Steps = append(t.Steps, s)
	}
	return rows.Err()
}
