package leave

import "context"

type LeaveService interface {
	// Create files a pending leave request for an active employee.
	Create(ctx context.Context, req CreateLeaveRequest) (LeaveRequestResponse, error)
}
