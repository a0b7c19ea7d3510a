package breaks

import "context"

// BreakService runs the employee side of the break lifecycle. Review happens in the
// approval workflow.
type BreakService interface {
	Request(ctx context.Context, req CreateBreakRequest) (BreakResponse, error)
	Start(ctx context.Context, req TransitionRequest) (BreakResponse, error)
	End(ctx context.Context, req TransitionRequest) (BreakResponse, error)
	List(ctx context.Context, employeeID string) ([]BreakResponse, error)
	DeleteRejected(ctx context.Context, employeeID string) (DeleteRejectedResponse, error)
}
