package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveRequestColumns = `
	id, employee_id, start_date::text, end_date::text, reason, status,
	reviewed_by, reviewed_at, review_notes, created_at`

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var l leave.LeaveRequest
	err := row.Scan(
		&l.ID, &l.EmployeeID, &l.StartDate, &l.EndDate, &l.Reason, &l.Status,
		&l.ReviewedBy, &l.ReviewedAt, &l.ReviewNotes, &l.CreatedAt,
	)
	return l, err
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if req.Status == "" {
		req.Status = leave.StatusPending
	}

	query := `
		INSERT INTO leave_requests (employee_id, start_date, end_date, reason, status)
		VALUES ($1, $2::date, $3::date, $4, $5)
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query, req.EmployeeID, req.StartDate, req.EndDate, req.Reason, req.Status))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return created, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1` + forUpdate(ctx)

	l, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request %s: %w", id, err)
	}
	return l, nil
}

// Resolve implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Resolve(ctx context.Context, id string, status leave.LeaveStatus, reviewerID string, notes *string, at time.Time) (bool, error) {
	u := reviewUpdate{table: "leave_requests", notFound: leave.ErrLeaveRequestNotFound}
	return u.apply(ctx, GetQuerier(ctx, r.db), id, status, reviewerID, notes, at)
}
