package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const correctionColumns = `
	id, employee_id, request_type, requested_time, reason, status,
	reviewed_by, reviewed_at, review_notes, created_at`

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) attendance.CorrectionRepository {
	return &correctionRepository{db: db}
}

func scanCorrection(row pgx.Row) (attendance.CorrectionRequest, error) {
	var req attendance.CorrectionRequest
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.RequestType, &req.RequestedTime, &req.Reason, &req.Status,
		&req.ReviewedBy, &req.ReviewedAt, &req.ReviewNotes, &req.CreatedAt,
	)
	return req, err
}

// Create implements attendance.CorrectionRepository.
func (r *correctionRepository) Create(ctx context.Context, req attendance.CorrectionRequest) (attendance.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	if req.Status == "" {
		req.Status = attendance.RequestPending
	}

	query := `
		INSERT INTO attendance_requests (employee_id, request_type, requested_time, reason, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + correctionColumns

	created, err := scanCorrection(q.QueryRow(ctx, query,
		req.EmployeeID, req.RequestType, req.RequestedTime, req.Reason, req.Status,
	))
	if err != nil {
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to create attendance request: %w", err)
	}
	return created, nil
}

// GetByID implements attendance.CorrectionRepository.
func (r *correctionRepository) GetByID(ctx context.Context, id string) (attendance.CorrectionRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + correctionColumns + ` FROM attendance_requests WHERE id = $1` + forUpdate(ctx)

	req, err := scanCorrection(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return attendance.CorrectionRequest{}, attendance.ErrCorrectionNotFound
		}
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to get attendance request %s: %w", id, err)
	}
	return req, nil
}

// Resolve implements attendance.CorrectionRepository.
func (r *correctionRepository) Resolve(ctx context.Context, id string, status attendance.RequestStatus, reviewerID string, notes *string, at time.Time) (bool, error) {
	u := reviewUpdate{table: "attendance_requests", notFound: attendance.ErrCorrectionNotFound}
	return u.apply(ctx, GetQuerier(ctx, r.db), id, status, reviewerID, notes, at)
}
