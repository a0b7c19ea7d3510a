package breaks

import (
	"context"
	"time"
)

type BreakRepository interface {
	Create(ctx context.Context, b Break) (Break, error)

	// GetByID locks the row when called inside a transaction.
	GetByID(ctx context.Context, id string) (Break, error)

	// Transition moves the break to `to` only while its status is one of from.
	// The returned break is the stored row after the attempt; ok reports whether it moved.
	Transition(ctx context.Context, id string, from []Status, to Status, update TransitionUpdate) (b Break, ok bool, err error)

	HasActive(ctx context.Context, employeeID string) (bool, error)

	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]Break, error)

	// DeleteRejected removes the employee's rejected breaks and returns how many.
	DeleteRejected(ctx context.Context, employeeID string) (int64, error)
}

// TransitionUpdate holds the optional columns written with a status change.
type TransitionUpdate struct {
	BreakStart     *time.Time
	BreakEnd       *time.Time
	ActualMinutes  *int
	PayoutEligible *bool
	ReviewedBy     *string
	ReviewedAt     *time.Time
	ReviewNotes    *string
}
