package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
)

// SQLiteChecklistTemplateRepo implements ChecklistTemplateRepo using a SQLite database.
type SQLiteChecklistTemplateRepo struct {
	db db.DBTX
}

func NewSQLiteChecklistTemplateRepo(conn db.DBTX) *SQLiteChecklistTemplateRepo {
	return &SQLiteChecklistTemplateRepo{db: conn}
}

func (r *SQLiteChecklistTemplateRepo) Create(ctx context.Context, t *domain.ChecklistTemplate) error {
	weekly := make([]int, len(t.Pattern.WeeklyDays))
	for i, d := range t.Pattern.WeeklyDays {
		weekly[i] = int(d)
	}
	query := `INSERT INTO checklist_templates (id, name, assigned_to, frequency, weekly_days, monthly_dates, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		t.AssignedTo,
		string(t.Pattern.Frequency),
		joinInts(weekly),
		joinInts(t.Pattern.MonthlyDates),
		t.Pattern.Start.Format(dateLayout),
		t.Pattern.End.Format(dateLayout),
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting checklist template: %w", err)
	}

	for i, it := range t.Items {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO checklist_template_items (template_id, position, label, description) VALUES (?, ?, ?, ?)`,
			t.ID, i, it.Label, it.Description)
		if err != nil {
			return fmt.Errorf("inserting checklist template item %d: %w", i, err)
		}
	}
	return nil
}

func (r *SQLiteChecklistTemplateRepo) GetByID(ctx context.Context, id string) (*domain.ChecklistTemplate, error) {
	query := `SELECT id, name, assigned_to, frequency, weekly_days, monthly_dates, start_date, end_date, created_at
		FROM checklist_templates WHERE id = ?`
	t, err := scanChecklistTemplate(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, notFound("checklist template", id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *SQLiteChecklistTemplateRepo) List(ctx context.Context) ([]*domain.ChecklistTemplate, error) {
	query := `SELECT id, name, assigned_to, frequency, weekly_days, monthly_dates, start_date, end_date, created_at
		FROM checklist_templates ORDER BY created_at, name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing checklist templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.ChecklistTemplate
	for rows.Next() {
		t, err := scanChecklistTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating checklist templates: %w", err)
	}
	rows.Close()

	for _, t := range out {
		if err := r.loadItems(ctx, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteChecklistTemplateRepo) loadItems(ctx context.Context, t *domain.ChecklistTemplate) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT label, description FROM checklist_template_items WHERE template_id = ? ORDER BY position`, t.ID)
	if err != nil {
		return fmt.Errorf("listing checklist template items: %w", err)
	}
	defer rows.Close()

	t.Items = nil
	for rows.Next() {
		var it domain.ChecklistItemSpec
		if err := rows.Scan(&it.Label, &it.Description); err != nil {
			return fmt.Errorf("scanning checklist template item: %w", err)
		}
		t.Items = append(t.Items, it)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChecklistTemplate(row rowScanner) (*domain.ChecklistTemplate, error) {
	var t domain.ChecklistTemplate
	var frequency, weekly, monthly, start, end, created string
	if err := row.Scan(&t.ID, &t.Name, &t.AssignedTo, &frequency, &weekly, &monthly, &start, &end, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning checklist template: %w", err)
	}

	t.Pattern.Frequency = domain.Frequency(frequency)
	days, err := splitInts(weekly)
	if err != nil {
		return nil, err
	}
	for _, d := range days {
		t.Pattern.WeeklyDays = append(t.Pattern.WeeklyDays, time.Weekday(d))
	}
	if t.Pattern.MonthlyDates, err = splitInts(monthly); err != nil {
		return nil, err
	}
	if t.Pattern.Start, err = parseTime(start, dateLayout, "start_date"); err != nil {
		return nil, err
	}
	if t.Pattern.End, err = parseTime(end, dateLayout, "end_date"); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(created, time.RFC3339, "created_at"); err != nil {
		return nil, err
	}
	return &t, nil
}

// SQLiteOccurrenceRepo implements OccurrenceRepo using a SQLite database.
type SQLiteOccurrenceRepo struct {
	db db.DBTX
}

func NewSQLiteOccurrenceRepo(conn db.DBTX) *SQLiteOccurrenceRepo {
	return &SQLiteOccurrenceRepo{db: conn}
}

const occurrenceColumns = `id, template_id, assigned_to, due_date, status, completed_at, created_at, updated_at`

func (r *SQLiteOccurrenceRepo) CreateBatch(ctx context.Context, occs []domain.ChecklistOccurrence) error {
	for i := range occs {
		o := &occs[i]
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO checklist_occurrences (`+occurrenceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID,
			o.TemplateID,
			o.AssignedTo,
			o.DueDate.Format(dateLayout),
			string(o.Status),
			nullableTimeToString(o.CompletedAt, time.RFC3339),
			o.CreatedAt.Format(time.RFC3339),
			o.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting occurrence %s: %w", o.DueDate.Format(dateLayout), err)
		}
		for _, it := range o.Items {
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO checklist_occurrence_items (occurrence_id, position, label, description, checked, checked_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				o.ID, it.Position, it.Label, it.Description, boolToInt(it.Checked),
				nullableTimeToString(it.CheckedAt, time.RFC3339))
			if err != nil {
				return fmt.Errorf("inserting occurrence item %d: %w", it.Position, err)
			}
		}
	}
	return nil
}

func (r *SQLiteOccurrenceRepo) GetByID(ctx context.Context, id string) (*domain.ChecklistOccurrence, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+occurrenceColumns+` FROM checklist_occurrences WHERE id = ?`, id)
	o, err := scanOccurrence(row)
	if err == sql.ErrNoRows {
		return nil, notFound("occurrence", id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, []*domain.ChecklistOccurrence{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *SQLiteOccurrenceRepo) ListByTemplate(ctx context.Context, templateID string) ([]*domain.ChecklistOccurrence, error) {
	return r.list(ctx,
		`SELECT `+occurrenceColumns+` FROM checklist_occurrences WHERE template_id = ? ORDER BY due_date`,
		templateID)
}

func (r *SQLiteOccurrenceRepo) ListByAssignee(ctx context.Context, assignee string, from, to *time.Time) ([]*domain.ChecklistOccurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM checklist_occurrences
		WHERE assigned_to = ?
		  AND (? IS NULL OR due_date >= ?)
		  AND (? IS NULL OR due_date <= ?)
		ORDER BY due_date, template_id`
	lo := nullableTimeToString(from, dateLayout)
	hi := nullableTimeToString(to, dateLayout)
	return r.list(ctx, query, assignee, lo, lo, hi, hi)
}

// UpdateItems writes the check state of every item and the derived status.
func (r *SQLiteOccurrenceRepo) UpdateItems(ctx context.Context, o *domain.ChecklistOccurrence) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE checklist_occurrences SET status = ?, completed_at = ?, updated_at = ? WHERE id = ?`,
		string(o.Status), nullableTimeToString(o.CompletedAt, time.RFC3339), o.UpdatedAt.Format(time.RFC3339), o.ID)
	if err != nil {
		return fmt.Errorf("updating occurrence: %w", err)
	}
	n, err := rowsAffected(res, "updating occurrence")
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("occurrence", o.ID)
	}

	for _, it := range o.Items {
		_, err := r.db.ExecContext(ctx,
			`UPDATE checklist_occurrence_items SET checked = ?, checked_at = ? WHERE occurrence_id = ? AND position = ?`,
			boolToInt(it.Checked), nullableTimeToString(it.CheckedAt, time.RFC3339), o.ID, it.Position)
		if err != nil {
			return fmt.Errorf("updating occurrence item %d: %w", it.Position, err)
		}
	}
	return nil
}

func (r *SQLiteOccurrenceRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ChecklistOccurrence, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing occurrences: %w", err)
	}
	defer rows.Close()

	var out []*domain.ChecklistOccurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating occurrences: %w", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteOccurrenceRepo) loadItems(ctx context.Context, occs []*domain.ChecklistOccurrence) error {
	for _, o := range occs {
		rows, err := r.db.QueryContext(ctx,
			`SELECT position, label, description, checked, checked_at
			FROM checklist_occurrence_items WHERE occurrence_id = ? ORDER BY position`, o.ID)
		if err != nil {
			return fmt.Errorf("listing occurrence items: %w", err)
		}
		o.Items = nil
		for rows.Next() {
			var it domain.OccurrenceItem
			var checked int
			var checkedAt sql.NullString
			if err := rows.Scan(&it.Position, &it.Label, &it.Description, &checked, &checkedAt); err != nil {
				rows.Close()
				return fmt.Errorf("scanning occurrence item: %w", err)
			}
			it.Checked = intToBool(checked)
			it.CheckedAt = parseNullableTime(checkedAt, time.RFC3339)
			o.Items = append(o.Items, it)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("iterating occurrence items: %w", err)
		}
	}
	return nil
}

func scanOccurrence(row rowScanner) (*domain.ChecklistOccurrence, error) {
	var o domain.ChecklistOccurrence
	var due, status, created, updated string
	var completed sql.NullString
	if err := row.Scan(&o.ID, &o.TemplateID, &o.AssignedTo, &due, &status, &completed, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning occurrence: %w", err)
	}

	var err error
	o.Status = domain.OccurrenceStatus(status)
	o.CompletedAt = parseNullableTime(completed, time.RFC3339)
	if o.DueDate, err = parseTime(due, dateLayout, "due_date"); err != nil {
		return nil, err
	}
	if o.CreatedAt, err = parseTime(created, time.RFC3339, "created_at"); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updated, time.RFC3339, "updated_at"); err != nil {
		return nil, err
	}
	return &o, nil
}
