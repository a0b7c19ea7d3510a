package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type summaryRepository struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) attendance.SummaryRepository {
	return &summaryRepository{db: db}
}

// RecordCheckIn keeps the first check-in clock of the day.
func (r *summaryRepository) RecordCheckIn(ctx context.Context, employeeID, date, clock string, rate decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_attendance_summary (employee_id, attendance_date, check_in_time, hourly_rate, is_absent)
		VALUES ($1, $2::date, $3::time, $4, FALSE)
		ON CONFLICT (employee_id, attendance_date) DO UPDATE
		SET check_in_time = COALESCE(daily_attendance_summary.check_in_time, EXCLUDED.check_in_time),
			hourly_rate = EXCLUDED.hourly_rate,
			is_absent = FALSE
	`

	if _, err := q.Exec(ctx, query, employeeID, date, clock, rate); err != nil {
		return fmt.Errorf("failed to record check in summary: %w", err)
	}
	return nil
}

// RecordCheckOut implements attendance.SummaryRepository.
func (r *summaryRepository) RecordCheckOut(ctx context.Context, employeeID, date, clock string, hours float64, salary decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_attendance_summary (employee_id, attendance_date, check_out_time, total_hours, daily_salary)
		VALUES ($1, $2::date, $3::time, $4, $5)
		ON CONFLICT (employee_id, attendance_date) DO UPDATE
		SET check_out_time = EXCLUDED.check_out_time,
			total_hours = EXCLUDED.total_hours,
			daily_salary = EXCLUDED.daily_salary
	`

	if _, err := q.Exec(ctx, query, employeeID, date, clock, hours, salary); err != nil {
		return fmt.Errorf("failed to record check out summary: %w", err)
	}
	return nil
}

// MarkAbsent implements attendance.SummaryRepository.
func (r *summaryRepository) MarkAbsent(ctx context.Context, employeeID, date string, deduction decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_attendance_summary (employee_id, attendance_date, is_absent, deduction_amount)
		VALUES ($1, $2::date, TRUE, $3)
		ON CONFLICT (employee_id, attendance_date) DO UPDATE
		SET is_absent = TRUE,
			deduction_amount = EXCLUDED.deduction_amount
	`

	if _, err := q.Exec(ctx, query, employeeID, date, deduction); err != nil {
		return fmt.Errorf("failed to mark absent: %w", err)
	}
	return nil
}

// MarkOnLeave implements attendance.SummaryRepository.
func (r *summaryRepository) MarkOnLeave(ctx context.Context, employeeID, date string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_attendance_summary (employee_id, attendance_date, is_on_leave)
		VALUES ($1, $2::date, TRUE)
		ON CONFLICT (employee_id, attendance_date) DO UPDATE
		SET is_on_leave = TRUE
	`

	if _, err := q.Exec(ctx, query, employeeID, date); err != nil {
		return fmt.Errorf("failed to mark on leave: %w", err)
	}
	return nil
}

// Get implements attendance.SummaryRepository.
func (r *summaryRepository) Get(ctx context.Context, employeeID, date string) (*attendance.DailySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, attendance_date::text,
			to_char(check_in_time, 'HH24:MI:SS'), to_char(check_out_time, 'HH24:MI:SS'),
			total_hours, hourly_rate, daily_salary, deduction_amount, is_absent, is_on_leave
		FROM daily_attendance_summary
		WHERE employee_id = $1 AND attendance_date = $2::date
	`

	var row attendance.DailySummary
	err := q.QueryRow(ctx, query, employeeID, date).Scan(
		&row.EmployeeID, &row.AttendanceDate,
		&row.CheckInTime, &row.CheckOutTime,
		&row.TotalHours, &row.HourlyRate, &row.DailySalary, &row.DeductionAmount, &row.IsAbsent, &row.IsOnLeave,
	)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get daily summary: %w", err)
	}
	return &row, nil
}
