package approval

import "context"

type ApprovalService interface {
	// Resolve authorizes the reviewer and applies the decision with its side effects.
	Resolve(ctx context.Context, req ResolveRequest) (ResolveResponse, error)
}
