package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const breakColumns = `
	id, employee_id, requested_minutes, status, payout_eligible, break_start, break_end,
	actual_minutes, reviewed_by, reviewed_at, review_notes, created_at, updated_at`

type breakRepository struct {
	db *database.DB
}

func NewBreakRepository(db *database.DB) breaks.BreakRepository {
	return &breakRepository{db: db}
}

func scanBreak(row pgx.Row) (breaks.Break, error) {
	var b breaks.Break
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.RequestedMinutes, &b.Status, &b.PayoutEligible, &b.BreakStart, &b.BreakEnd,
		&b.ActualMinutes, &b.ReviewedBy, &b.ReviewedAt, &b.ReviewNotes, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// Create implements breaks.BreakRepository.
func (r *breakRepository) Create(ctx context.Context, b breaks.Break) (breaks.Break, error) {
	q := GetQuerier(ctx, r.db)

	if b.Status == "" {
		b.Status = breaks.StatusPending
	}

	query := `
		INSERT INTO breaks (employee_id, requested_minutes, status, payout_eligible)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + breakColumns

	created, err := scanBreak(q.QueryRow(ctx, query, b.EmployeeID, b.RequestedMinutes, b.Status, b.PayoutEligible))
	if err != nil {
		return breaks.Break{}, fmt.Errorf("failed to create break: %w", err)
	}
	return created, nil
}

// GetByID implements breaks.BreakRepository.
func (r *breakRepository) GetByID(ctx context.Context, id string) (breaks.Break, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + breakColumns + ` FROM breaks WHERE id = $1` + forUpdate(ctx)

	b, err := scanBreak(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return breaks.Break{}, breaks.ErrBreakNotFound
		}
		return breaks.Break{}, fmt.Errorf("failed to get break %s: %w", id, err)
	}
	return b, nil
}

// Transition implements breaks.BreakRepository.
func (r *breakRepository) Transition(ctx context.Context, id string, from []breaks.Status, to breaks.Status, update breaks.TransitionUpdate) (breaks.Break, bool, error) {
	q := GetQuerier(ctx, r.db)

	allowed := make([]string, len(from))
	for i, st := range from {
		allowed[i] = string(st)
	}

	query := `
		UPDATE breaks
		SET status = $3,
			break_start = COALESCE($4, break_start),
			break_end = COALESCE($5, break_end),
			actual_minutes = COALESCE($6, actual_minutes),
			payout_eligible = COALESCE($7, payout_eligible),
			reviewed_by = CASE WHEN $8::uuid IS NULL THEN reviewed_by ELSE $8 END,
			reviewed_at = CASE WHEN $8::uuid IS NULL THEN reviewed_at ELSE $9 END,
			review_notes = CASE WHEN $8::uuid IS NULL THEN review_notes ELSE $10 END,
			updated_at = NOW()
		WHERE id = $1 AND status = ANY($2)
		RETURNING ` + breakColumns

	b, err := scanBreak(q.QueryRow(ctx, query,
		id, allowed, to,
		update.BreakStart, update.BreakEnd, update.ActualMinutes, update.PayoutEligible,
		update.ReviewedBy, update.ReviewedAt, update.ReviewNotes,
	))
	if err == nil {
		return b, true, nil
	}
	if !isNotFound(err) {
		return breaks.Break{}, false, fmt.Errorf("failed to move break %s to %s: %w", id, to, err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return breaks.Break{}, false, err
	}
	return current, false, nil
}

// HasActive implements breaks.BreakRepository.
func (r *breakRepository) HasActive(ctx context.Context, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM breaks WHERE employee_id = $1 AND status = $2)`,
		employeeID, breaks.StatusActive,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check active break: %w", err)
	}
	return exists, nil
}

// ListByEmployee implements breaks.BreakRepository.
func (r *breakRepository) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]breaks.Break, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + breakColumns + ` FROM breaks WHERE employee_id = $1 ORDER BY created_at DESC`
	args := []interface{}{employeeID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	defer rows.Close()

	var list []breaks.Break
	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan break: %w", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating breaks: %w", err)
	}
	return list, nil
}

// DeleteRejected implements breaks.BreakRepository.
func (r *breakRepository) DeleteRejected(ctx context.Context, employeeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM breaks WHERE employee_id = $1 AND status = $2`, employeeID, breaks.StatusRejected)
	if err != nil {
		return 0, fmt.Errorf("failed to delete rejected breaks: %w", err)
	}
	return tag.RowsAffected(), nil
}
