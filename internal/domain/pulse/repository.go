package pulse

import (
	"context"
	"time"
)

type PulseRepository interface {
	Create(ctx context.Context, p Pulse) (Pulse, error)

	// LatestForAttendance returns up to limit pulses of the session, newest first.
	LatestForAttendance(ctx context.Context, attendanceID string, limit int) ([]Pulse, error)

	// CountOutside counts non-break pulses flagged outside in [from, to).
	CountOutside(ctx context.Context, employeeID string, from, to time.Time) (int, error)
}

type ViolationRepository interface {
	Create(ctx context.Context, v Violation) (Violation, error)
}

type SessionValidationRepository interface {
	Create(ctx context.Context, v SessionValidation) (SessionValidation, error)

	// GetByID locks the row when called inside a transaction.
	GetByID(ctx context.Context, id string) (SessionValidation, error)

	// Resolve moves a pending request to status. ok is false when it was not pending.
	Resolve(ctx context.Context, id string, status ValidationStatus, reviewerID string, notes *string, at time.Time) (bool, error)
}
