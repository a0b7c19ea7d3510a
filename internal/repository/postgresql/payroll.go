package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ========== DAILY CALCULATIONS ==========

const calculationColumns = `
	employee_id, calculation_date::text, total_work_hours, hourly_rate, gross_salary,
	false_pulses_count, pulse_deduction_amount, other_deductions, total_deductions, net_salary, updated_at`

type calculationRepository struct {
	db *database.DB
}

func NewCalculationRepository(db *database.DB) payroll.CalculationRepository {
	return &calculationRepository{db: db}
}

func scanCalculation(row pgx.Row) (payroll.DailyCalculation, error) {
	var c payroll.DailyCalculation
	err := row.Scan(
		&c.EmployeeID, &c.CalculationDate, &c.TotalWorkHours, &c.HourlyRate, &c.GrossSalary,
		&c.FalsePulsesCount, &c.PulseDeductionAmount, &c.OtherDeductions, &c.TotalDeductions, &c.NetSalary, &c.UpdatedAt,
	)
	return c, err
}

// Upsert implements payroll.CalculationRepository.
func (r *calculationRepository) Upsert(ctx context.Context, calc payroll.DailyCalculation) (payroll.DailyCalculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_salary_calculations (
			employee_id, calculation_date, total_work_hours, hourly_rate, gross_salary,
			false_pulses_count, pulse_deduction_amount, other_deductions, total_deductions, net_salary, updated_at
		) VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (employee_id, calculation_date) DO UPDATE
		SET total_work_hours = EXCLUDED.total_work_hours,
			hourly_rate = EXCLUDED.hourly_rate,
			gross_salary = EXCLUDED.gross_salary,
			false_pulses_count = EXCLUDED.false_pulses_count,
			pulse_deduction_amount = EXCLUDED.pulse_deduction_amount,
			other_deductions = EXCLUDED.other_deductions,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			updated_at = NOW()
		RETURNING ` + calculationColumns

	stored, err := scanCalculation(q.QueryRow(ctx, query,
		calc.EmployeeID, calc.CalculationDate, calc.TotalWorkHours, calc.HourlyRate, calc.GrossSalary,
		calc.FalsePulsesCount, calc.PulseDeductionAmount, calc.OtherDeductions, calc.TotalDeductions, calc.NetSalary,
	))
	if err != nil {
		return payroll.DailyCalculation{}, fmt.Errorf("failed to upsert daily salary calculation: %w", err)
	}
	return stored, nil
}

// ListRange implements payroll.CalculationRepository.
func (r *calculationRepository) ListRange(ctx context.Context, employeeID, start, end string) ([]payroll.DailyCalculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + calculationColumns + `
		FROM daily_salary_calculations
		WHERE employee_id = $1 AND calculation_date BETWEEN $2::date AND $3::date
		ORDER BY calculation_date
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily salary calculations: %w", err)
	}
	defer rows.Close()

	var calcs []payroll.DailyCalculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily salary calculation: %w", err)
		}
		calcs = append(calcs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily salary calculations: %w", err)
	}
	return calcs, nil
}

// ========== PERIOD SETTLEMENTS ==========

const periodColumns = `
	employee_id, period_start::text, period_end::text, days_calculated, total_work_hours,
	gross_salary, false_pulses_count, total_deductions, net_salary, advances, net_payable, updated_at`

func scanPeriod(row pgx.Row) (payroll.PeriodCalculation, error) {
	var p payroll.PeriodCalculation
	err := row.Scan(
		&p.EmployeeID, &p.PeriodStart, &p.PeriodEnd, &p.DaysCalculated, &p.TotalWorkHours,
		&p.GrossSalary, &p.FalsePulsesCount, &p.TotalDeductions, &p.NetSalary, &p.Advances, &p.NetPayable, &p.UpdatedAt,
	)
	return p, err
}

// UpsertPeriod implements payroll.CalculationRepository.
func (r *calculationRepository) UpsertPeriod(ctx context.Context, p payroll.PeriodCalculation) (payroll.PeriodCalculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO period_salary_calculations (
			employee_id, period_start, period_end, days_calculated, total_work_hours,
			gross_salary, false_pulses_count, total_deductions, net_salary, advances, net_payable, updated_at
		) VALUES ($1, $2::date, $3::date, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (employee_id, period_start, period_end) DO UPDATE
		SET days_calculated = EXCLUDED.days_calculated,
			total_work_hours = EXCLUDED.total_work_hours,
			gross_salary = EXCLUDED.gross_salary,
			false_pulses_count = EXCLUDED.false_pulses_count,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			advances = EXCLUDED.advances,
			net_payable = EXCLUDED.net_payable,
			updated_at = NOW()
		RETURNING ` + periodColumns

	stored, err := scanPeriod(q.QueryRow(ctx, query,
		p.EmployeeID, p.PeriodStart, p.PeriodEnd, p.DaysCalculated, p.TotalWorkHours,
		p.GrossSalary, p.FalsePulsesCount, p.TotalDeductions, p.NetSalary, p.Advances, p.NetPayable,
	))
	if err != nil {
		return payroll.PeriodCalculation{}, fmt.Errorf("failed to upsert period salary calculation: %w", err)
	}
	return stored, nil
}

// GetPeriod implements payroll.CalculationRepository.
func (r *calculationRepository) GetPeriod(ctx context.Context, employeeID, start, end string) (*payroll.PeriodCalculation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + periodColumns + `
		FROM period_salary_calculations
		WHERE employee_id = $1 AND period_start = $2::date AND period_end = $3::date
	`

	p, err := scanPeriod(q.QueryRow(ctx, query, employeeID, start, end))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get period salary calculation: %w", err)
	}
	return &p, nil
}

// ========== LEDGER ==========

type ledgerRepository struct {
	db *database.DB
}

func NewLedgerRepository(db *database.DB) payroll.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Post implements payroll.LedgerRepository.
func (r *ledgerRepository) Post(ctx context.Context, entry payroll.LedgerEntry) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_ledger (employee_id, entry_type, source_id, amount, entry_date, reason, applied_by)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7)
		ON CONFLICT (entry_type, source_id) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		entry.EmployeeID, entry.EntryType, entry.SourceID, entry.Amount, entry.EntryDate, entry.Reason, entry.AppliedBy,
	)
	if err != nil {
		return false, fmt.Errorf("failed to post %s ledger entry for %s: %w", entry.EntryType, entry.SourceID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SumDeductions implements payroll.LedgerRepository.
func (r *ledgerRepository) SumDeductions(ctx context.Context, employeeID string, entryType payroll.LedgerEntryType, date string) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(ABS(amount)), 0)
		FROM payroll_ledger
		WHERE employee_id = $1 AND entry_type = $2 AND entry_date = $3::date AND amount < 0
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, entryType, date).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s deductions: %w", entryType, err)
	}
	return total, nil
}

// ========== ADVANCES ==========

const advanceColumns = `id, employee_id, amount, status, requested_at, reviewed_by, reviewed_at, review_notes`

type advanceRepository struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) payroll.AdvanceRepository {
	return &advanceRepository{db: db}
}

func scanAdvance(row pgx.Row) (payroll.Advance, error) {
	var a payroll.Advance
	err := row.Scan(&a.ID, &a.EmployeeID, &a.Amount, &a.Status, &a.RequestedAt, &a.ReviewedBy, &a.ReviewedAt, &a.ReviewNotes)
	return a, err
}

// Create implements payroll.AdvanceRepository.
func (r *advanceRepository) Create(ctx context.Context, adv payroll.Advance) (payroll.Advance, error) {
	q := GetQuerier(ctx, r.db)

	if adv.Status == "" {
		adv.Status = payroll.AdvancePending
	}
	var requestedAt *time.Time
	if !adv.RequestedAt.IsZero() {
		requestedAt = &adv.RequestedAt
	}

	query := `
		INSERT INTO advances (employee_id, amount, status, requested_at)
		VALUES ($1, $2, $3, COALESCE($4, NOW()))
		RETURNING ` + advanceColumns

	created, err := scanAdvance(q.QueryRow(ctx, query, adv.EmployeeID, adv.Amount, adv.Status, requestedAt))
	if err != nil {
		return payroll.Advance{}, fmt.Errorf("failed to create advance: %w", err)
	}
	return created, nil
}

// GetByID implements payroll.AdvanceRepository.
func (r *advanceRepository) GetByID(ctx context.Context, id string) (payroll.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + advanceColumns + ` FROM advances WHERE id = $1` + forUpdate(ctx)

	a, err := scanAdvance(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return payroll.Advance{}, payroll.ErrAdvanceNotFound
		}
		return payroll.Advance{}, fmt.Errorf("failed to get advance %s: %w", id, err)
	}
	return a, nil
}

// LatestNonRejected implements payroll.AdvanceRepository.
func (r *advanceRepository) LatestNonRejected(ctx context.Context, employeeID string) (*payroll.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + advanceColumns + `
		FROM advances
		WHERE employee_id = $1 AND status <> $2
		ORDER BY requested_at DESC
		LIMIT 1
	`

	a, err := scanAdvance(q.QueryRow(ctx, query, employeeID, payroll.AdvanceRejected))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest advance: %w", err)
	}
	return &a, nil
}

// SumApproved implements payroll.AdvanceRepository.
func (r *advanceRepository) SumApproved(ctx context.Context, employeeID string, from, to time.Time) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM advances
		WHERE employee_id = $1 AND status = $2 AND requested_at >= $3 AND requested_at < $4
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, payroll.AdvanceApproved, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum approved advances: %w", err)
	}
	return total, nil
}

// Resolve implements payroll.AdvanceRepository.
func (r *advanceRepository) Resolve(ctx context.Context, id string, status payroll.AdvanceStatus, reviewerID string, notes *string, at time.Time) (bool, error) {
	u := reviewUpdate{table: "advances", notFound: payroll.ErrAdvanceNotFound}
	return u.apply(ctx, GetQuerier(ctx, r.db), id, status, reviewerID, notes, at)
}
