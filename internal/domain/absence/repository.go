package absence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AbsenceRepository interface {
	// Create returns ErrAbsenceExists when the employee already has a row for the date.
	Create(ctx context.Context, a Absence) (Absence, error)

	// GetByID locks the row when called inside a transaction.
	GetByID(ctx context.Context, id string) (Absence, error)

	ExistsForDate(ctx context.Context, employeeID, date string) (bool, error)

	// Resolve moves a pending absence to status and records whether the deduction applies.
	Resolve(ctx context.Context, id string, status Status, deductionApplied bool, deduction decimal.Decimal, reviewerID string, notes *string, at time.Time) (bool, error)
}
