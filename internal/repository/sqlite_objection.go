package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/opsched/internal/db"
	"github.com/alexanderramin/opsched/internal/domain"
)

// SQLiteObjectionRepo implements ObjectionRepo using a SQLite database. Rows
// are never deleted; a response is the only update a row ever receives.
type SQLiteObjectionRepo struct {
	db db.DBTX
}

func NewSQLiteObjectionRepo(conn db.DBTX) *SQLiteObjectionRepo {
	return &SQLiteObjectionRepo{db: conn}
}

const objectionColumns = `id, target_id, target_kind, type, requested_date, extra_days_requested,
	remarks, requested_by, requested_at, status, responded_by, responded_at, approval_remarks, impact_scoring`

func (r *SQLiteObjectionRepo) Create(ctx context.Context, o *domain.Objection) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO objections (`+objectionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		o.TargetID,
		string(o.TargetKind),
		string(o.Type),
		nullableTimeToString(o.RequestedDate, dateLayout),
		nullableIntToValue(o.ExtraDaysRequested),
		o.Remarks,
		o.RequestedBy,
		o.RequestedAt.Format(time.RFC3339),
		string(o.Status),
		emptyToNull(o.RespondedBy),
		nullableTimeToString(o.RespondedAt, time.RFC3339),
		emptyToNull(o.ApprovalRemarks),
		nullableBoolToValue(o.ImpactScoring),
	)
	if err != nil {
		if isUniqueViolation(err) && o.IsPending() {
			return &domain.ConflictError{TargetID: o.TargetID, Reason: "an objection is already pending"}
		}
		return fmt.Errorf("inserting objection: %w", err)
	}
	return nil
}

func (r *SQLiteObjectionRepo) GetByID(ctx context.Context, id string) (*domain.Objection, error) {
	o, err := scanObjection(r.db.QueryRowContext(ctx, `SELECT `+objectionColumns+` FROM objections WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, notFound("objection", id)
	}
	return o, err
}

func (r *SQLiteObjectionRepo) GetPendingByTarget(ctx context.Context, targetID string) (*domain.Objection, error) {
	o, err := scanObjection(r.db.QueryRowContext(ctx,
		`SELECT `+objectionColumns+` FROM objections WHERE target_id = ? AND status = 'pending'`, targetID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

// ListByTarget returns the target's objection history, oldest first.
func (r *SQLiteObjectionRepo) ListByTarget(ctx context.Context, targetID string) ([]*domain.Objection, error) {
	return r.list(ctx,
		`SELECT `+objectionColumns+` FROM objections WHERE target_id = ? ORDER BY requested_at, rowid`, targetID)
}

func (r *SQLiteObjectionRepo) ListPending(ctx context.Context) ([]*domain.Objection, error) {
	return r.list(ctx,
		`SELECT `+objectionColumns+` FROM objections WHERE status = 'pending' ORDER BY requested_at, rowid`)
}

func (r *SQLiteObjectionRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Objection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing objections: %w", err)
	}
	defer rows.Close()

	var out []*domain.Objection
	for rows.Next() {
		o, err := scanObjection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating objections: %w", err)
	}
	return out, nil
}

func (r *SQLiteObjectionRepo) Respond(ctx context.Context, o *domain.Objection) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE objections SET status = ?, responded_by = ?, responded_at = ?, approval_remarks = ?, impact_scoring = ?
		WHERE id = ? AND status = 'pending'`,
		string(o.Status),
		emptyToNull(o.RespondedBy),
		nullableTimeToString(o.RespondedAt, time.RFC3339),
		emptyToNull(o.ApprovalRemarks),
		nullableBoolToValue(o.ImpactScoring),
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("responding to objection: %w", err)
	}
	n, err := rowsAffected(res, "responding to objection")
	if err != nil {
		return err
	}
	if n == 0 {
		return &domain.ConflictError{TargetID: o.TargetID, Reason: fmt.Sprintf("objection %s is no longer pending", o.ID)}
	}
	return nil
}

func scanObjection(row rowScanner) (*domain.Objection, error) {
	var o domain.Objection
	var kind, typ, requestedAt, status string
	var requestedDate, respondedBy, respondedAt, approvalRemarks sql.NullString
	var extraDays, impact sql.NullInt64
	if err := row.Scan(
		&o.ID, &o.TargetID, &kind, &typ,
		&requestedDate, &extraDays,
		&o.Remarks, &o.RequestedBy, &requestedAt,
		&status, &respondedBy, &respondedAt, &approvalRemarks, &impact,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning objection: %w", err)
	}

	var err error
	o.TargetKind = domain.TargetKind(kind)
	o.Type = domain.ObjectionType(typ)
	o.Status = domain.ObjectionStatus(status)
	o.RequestedDate = parseNullableTime(requestedDate, dateLayout)
	o.ExtraDaysRequested = parseNullableInt(extraDays)
	o.RespondedBy = nullableString(respondedBy)
	o.RespondedAt = parseNullableTime(respondedAt, time.RFC3339)
	o.ApprovalRemarks = nullableString(approvalRemarks)
	o.ImpactScoring = parseNullableBool(impact)
	if o.RequestedAt, err = parseTime(requestedAt, time.RFC3339, "requested_at"); err != nil {
		return nil, err
	}
	return &o, nil
}
