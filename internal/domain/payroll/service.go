package payroll

import "context"

type PayrollService interface {
	// CalculateDaily recomputes and stores one day, today, or the current period.
	CalculateDaily(ctx context.Context, req CalculateDailyRequest) (CalculateDailyResponse, error)

	// GetPeriodSalary sums stored daily rows for a period (default: current).
	GetPeriodSalary(ctx context.Context, req PeriodSalaryRequest) (PeriodSalaryResponse, error)

	CheckAdvanceEligibility(ctx context.Context, employeeID string) (AdvanceEligibility, error)
	RequestAdvance(ctx context.Context, req RequestAdvanceRequest) (AdvanceResponse, error)

	// RecalculateAll recomputes date for every active employee.
	RecalculateAll(ctx context.Context, date string) (RecalculateAllResponse, error)
}
