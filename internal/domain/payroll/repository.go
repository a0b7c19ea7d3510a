package payroll

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type CalculationRepository interface {
	// Upsert replaces the stored row for (employee, date).
	Upsert(ctx context.Context, calc DailyCalculation) (DailyCalculation, error)

	// ListRange returns stored rows with start <= date <= end in date order.
	ListRange(ctx context.Context, employeeID, start, end string) ([]DailyCalculation, error)

	// UpsertPeriod replaces the stored settlement for (employee, start, end).
	UpsertPeriod(ctx context.Context, p PeriodCalculation) (PeriodCalculation, error)

	// GetPeriod returns the stored settlement, nil if the period was never settled.
	GetPeriod(ctx context.Context, employeeID, start, end string) (*PeriodCalculation, error)
}

type LedgerRepository interface {
	// Post inserts the entry unless one already exists for (type, source). posted is
	// false when the entry was already there.
	Post(ctx context.Context, entry LedgerEntry) (posted bool, err error)

	// SumDeductions returns the absolute total of negative entries of entryType dated date.
	SumDeductions(ctx context.Context, employeeID string, entryType LedgerEntryType, date string) (decimal.Decimal, error)
}

type AdvanceRepository interface {
	Create(ctx context.Context, adv Advance) (Advance, error)

	// GetByID locks the row when called inside a transaction.
	GetByID(ctx context.Context, id string) (Advance, error)

	// LatestNonRejected returns the most recent pending or approved advance, nil if none.
	LatestNonRejected(ctx context.Context, employeeID string) (*Advance, error)

	// SumApproved totals approved advances requested within [from, to).
	SumApproved(ctx context.Context, employeeID string, from, to time.Time) (decimal.Decimal, error)

	Resolve(ctx context.Context, id string, status AdvanceStatus, reviewerID string, notes *string, at time.Time) (bool, error)
}
