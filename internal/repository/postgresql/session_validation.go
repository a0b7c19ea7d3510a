package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const sessionValidationColumns = `
	id, employee_id, attendance_id, branch_id, gap_start, gap_end, reason, status,
	reviewed_by, reviewed_at, review_notes, created_at`

type sessionValidationRepository struct {
	db *database.DB
}

func NewSessionValidationRepository(db *database.DB) pulse.SessionValidationRepository {
	return &sessionValidationRepository{db: db}
}

func scanSessionValidation(row pgx.Row) (pulse.SessionValidation, error) {
	var v pulse.SessionValidation
	err := row.Scan(
		&v.ID, &v.EmployeeID, &v.AttendanceID, &v.BranchID, &v.GapStart, &v.GapEnd, &v.Reason, &v.Status,
		&v.ReviewedBy, &v.ReviewedAt, &v.ReviewNotes, &v.CreatedAt,
	)
	return v, err
}

// Create implements pulse.SessionValidationRepository.
func (r *sessionValidationRepository) Create(ctx context.Context, v pulse.SessionValidation) (pulse.SessionValidation, error) {
	q := GetQuerier(ctx, r.db)

	if v.Status == "" {
		v.Status = pulse.ValidationPending
	}

	query := `
		INSERT INTO session_validation_requests (
			employee_id, attendance_id, branch_id, gap_start, gap_end, reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + sessionValidationColumns

	created, err := scanSessionValidation(q.QueryRow(ctx, query,
		v.EmployeeID, v.AttendanceID, v.BranchID, v.GapStart, v.GapEnd, v.Reason, v.Status,
	))
	if err != nil {
		return pulse.SessionValidation{}, fmt.Errorf("failed to create session validation request: %w", err)
	}
	return created, nil
}

// GetByID implements pulse.SessionValidationRepository.
func (r *sessionValidationRepository) GetByID(ctx context.Context, id string) (pulse.SessionValidation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionValidationColumns + ` FROM session_validation_requests WHERE id = $1` + forUpdate(ctx)

	v, err := scanSessionValidation(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return pulse.SessionValidation{}, pulse.ErrSessionValidationNotFound
		}
		return pulse.SessionValidation{}, fmt.Errorf("failed to get session validation request %s: %w", id, err)
	}
	return v, nil
}

// Resolve implements pulse.SessionValidationRepository.
func (r *sessionValidationRepository) Resolve(ctx context.Context, id string, status pulse.ValidationStatus, reviewerID string, notes *string, at time.Time) (bool, error) {
	u := reviewUpdate{table: "session_validation_requests", notFound: pulse.ErrSessionValidationNotFound}
	return u.apply(ctx, GetQuerier(ctx, r.db), id, status, reviewerID, notes, at)
}
