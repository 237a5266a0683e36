package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

const taskColumns = `id, title, assigned_to, due_date, completed_at, is_on_hold, is_terminated, created_at, updated_at`

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Title,
		t.AssignedTo,
		t.DueDate.Format(dateLayout),
		nullableTimeToString(t.CompletedAt, dateLayout),
		boolToInt(t.IsOnHold),
		boolToInt(t.IsTerminated),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, notFound("task", id)
	}
	return t, err
}

// List returns every task, or only the assignee's when assignee is set.
func (r *SQLiteTaskRepo) List(ctx context.Context, assignee string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE (? = '' OR assigned_to = ?) ORDER BY due_date, title`,
		assignee, assignee)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return out, nil
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, assigned_to = ?, due_date = ?, completed_at = ?,
			is_on_hold = ?, is_terminated = ?, updated_at = ?
		WHERE id = ?`,
		t.Title,
		t.AssignedTo,
		t.DueDate.Format(dateLayout),
		nullableTimeToString(t.CompletedAt, dateLayout),
		boolToInt(t.IsOnHold),
		boolToInt(t.IsTerminated),
		t.UpdatedAt.Format(time.RFC3339),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	n, err := rowsAffected(res, "updating task")
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("task", t.ID)
	}
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	var due, created, updated string
	var completed sql.NullString
	var onHold, terminated int
	if err := row.Scan(&t.ID, &t.Title, &t.AssignedTo, &due, &completed, &onHold, &terminated, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	var err error
	t.CompletedAt = parseNullableTime(completed, dateLayout)
	t.IsOnHold = intToBool(onHold)
	t.IsTerminated = intToBool(terminated)
	if t.DueDate, err = parseTime(due, dateLayout, "due_date"); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(created, time.RFC3339, "created_at"); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updated, time.RFC3339, "updated_at"); err != nil {
		return nil, err
	}
	return &t, nil
}
