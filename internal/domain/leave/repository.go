package leave

import (
	"context"
	"time"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, req LeaveRequest) (LeaveRequest, error)

	// GetByID locks the row when called inside a transaction.
	GetByID(ctx context.Context, id string) (LeaveRequest, error)

	Resolve(ctx context.Context, id string, status LeaveStatus, reviewerID string, notes *string, at time.Time) (bool, error)
}
