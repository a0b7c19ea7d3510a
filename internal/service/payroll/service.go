package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// recalcConcurrency bounds parallel day and employee recalculations.
const recalcConcurrency = 4

type PayrollServiceImpl struct {
	payroll.CalculationRepository
	payroll.LedgerRepository
	payroll.AdvanceRepository
	attendance.AttendanceRepository
	pulse.PulseRepository
	employee.EmployeeRepository
	calendar *calendar.Calendar
	policy   config.Policy
}

func (s *PayrollServiceImpl) getEmployee(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (s *PayrollServiceImpl) defaultRate() decimal.Decimal {
	return decimal.NewFromFloat(s.policy.DefaultHourlyRate)
}

// computeDay derives and stores one day from attendance, pulses and posted absence
// deductions. Running it twice with the same inputs stores the same row.
func (s *PayrollServiceImpl) computeDay(ctx context.Context, emp employee.Employee, date string) (payroll.DailyCalculation, error) {
	hours, err := s.AttendanceRepository.SumWorkHours(ctx, emp.ID, date)
	if err != nil {
		return payroll.DailyCalculation{}, fmt.Errorf("failed to sum work hours: %w", err)
	}

	from, to, err := s.calendar.DayBounds(date)
	if err != nil {
		return payroll.DailyCalculation{}, err
	}
	falsePulses, err := s.PulseRepository.CountOutside(ctx, emp.ID, from, to)
	if err != nil {
		return payroll.DailyCalculation{}, fmt.Errorf("failed to count false pulses: %w", err)
	}

	other, err := s.LedgerRepository.SumDeductions(ctx, emp.ID, payroll.LedgerAbsence, date)
	if err != nil {
		return payroll.DailyCalculation{}, fmt.Errorf("failed to sum deductions: %w", err)
	}

	rate := emp.RateOr(s.defaultRate())
	fig := payroll.ComputeDay(payroll.DayInputs{
		WorkHours:       hours,
		HourlyRate:      rate,
		FalsePulses:     falsePulses,
		PenaltyMinutes:  s.policy.FalsePulsePenaltyMinutes,
		OtherDeductions: other,
	})

	calc, err := s.CalculationRepository.Upsert(ctx, payroll.DailyCalculation{
		EmployeeID:           emp.ID,
		CalculationDate:      date,
		TotalWorkHours:       hours,
		HourlyRate:           rate,
		GrossSalary:          fig.Gross,
		FalsePulsesCount:     falsePulses,
		PulseDeductionAmount: fig.PulseDeduction,
		OtherDeductions:      other.Round(2),
		TotalDeductions:      fig.TotalDeductions,
		NetSalary:            fig.Net,
	})
	if err != nil {
		return payroll.DailyCalculation{}, fmt.Errorf("failed to store daily calculation: %w", err)
	}
	return calc, nil
}

// CalculateDaily implements payroll.PayrollService.
func (s *PayrollServiceImpl) CalculateDaily(ctx context.Context, req payroll.CalculateDailyRequest) (payroll.CalculateDailyResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CalculateDailyResponse{}, err
	}

	emp, err := s.getEmployee(ctx, req.EmployeeID)
	if err != nil {
		return payroll.CalculateDailyResponse{}, err
	}

	today := s.calendar.Today()
	var (
		period calendar.Period
		dates  []string
	)
	switch {
	case req.RecalculatePeriod:
		period = s.calendar.CurrentPeriod()
		dates, err = s.calendar.DatesThrough(period, today)
		if err != nil {
			return payroll.CalculateDailyResponse{}, err
		}
	default:
		date := today
		if req.Date != nil {
			date = *req.Date
		}
		day, err := s.calendar.ParseDate(date)
		if err != nil {
			return payroll.CalculateDailyResponse{}, err
		}
		period = s.calendar.PeriodOf(day)
		dates = []string{date}
	}

	results := make([]payroll.DailyCalculation, len(dates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recalcConcurrency)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			calc, err := s.computeDay(gctx, emp, date)
			if err != nil {
				return fmt.Errorf("%s: %w", date, err)
			}
			results[i] = calc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.CalculateDailyResponse{}, err
	}

	stored, _, err := s.settlePeriod(ctx, emp.ID, period)
	if err != nil {
		return payroll.CalculateDailyResponse{}, err
	}

	resp := payroll.CalculateDailyResponse{
		EmployeeID:   emp.ID,
		Period:       period,
		PerDay:       make([]payroll.DailyCalculationResponse, 0, len(results)),
		PeriodTotals: payroll.SumPeriod(stored),
	}
	for _, c := range results {
		resp.PerDay = append(resp.PerDay, payroll.ToDailyResponse(c))
	}

	slog.Info("Daily salary calculated", "employee_id", emp.ID, "days", len(dates), "period_start", period.Start)
	return resp, nil
}

// GetPeriodSalary implements payroll.PayrollService.
func (s *PayrollServiceImpl) GetPeriodSalary(ctx context.Context, req payroll.PeriodSalaryRequest) (payroll.PeriodSalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodSalaryResponse{}, err
	}
	if _, err := s.getEmployee(ctx, req.EmployeeID); err != nil {
		return payroll.PeriodSalaryResponse{}, err
	}

	period := s.calendar.CurrentPeriod()
	if req.StartDate != nil {
		period = calendar.Period{Start: *req.StartDate, End: *req.EndDate}
	}

	rows, settled, err := s.periodFigures(ctx, req.EmployeeID, period)
	if err != nil {
		return payroll.PeriodSalaryResponse{}, err
	}

	resp := payroll.PeriodSalaryResponse{
		EmployeeID:     req.EmployeeID,
		Period:         period,
		Totals:         payroll.SumPeriod(rows),
		DailyBreakdown: make([]payroll.DailyCalculationResponse, 0, len(rows)),
		Advances:       settled.Advances,
		NetPayable:     settled.NetPayable,
	}
	for _, c := range rows {
		resp.DailyBreakdown = append(resp.DailyBreakdown, payroll.ToDailyResponse(c))
	}

	stored, err := s.CalculationRepository.GetPeriod(ctx, req.EmployeeID, period.Start, period.End)
	if err != nil {
		return payroll.PeriodSalaryResponse{}, fmt.Errorf("failed to get period settlement: %w", err)
	}
	if stored != nil {
		resp.SettledAt = &stored.UpdatedAt
	}
	return resp, nil
}

// periodFigures reads the stored days of the period and nets approved advances
// requested inside it.
func (s *PayrollServiceImpl) periodFigures(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.DailyCalculation, payroll.PeriodCalculation, error) {
	if err := payroll.CheckPeriod(period); err != nil {
		return nil, payroll.PeriodCalculation{}, err
	}

	rows, err := s.CalculationRepository.ListRange(ctx, employeeID, period.Start, period.End)
	if err != nil {
		return nil, payroll.PeriodCalculation{}, fmt.Errorf("failed to list period calculations: %w", err)
	}

	from, _, err := s.calendar.DayBounds(period.Start)
	if err != nil {
		return nil, payroll.PeriodCalculation{}, err
	}
	_, to, err := s.calendar.DayBounds(period.End)
	if err != nil {
		return nil, payroll.PeriodCalculation{}, err
	}
	advances, err := s.AdvanceRepository.SumApproved(ctx, employeeID, from, to)
	if err != nil {
		return nil, payroll.PeriodCalculation{}, fmt.Errorf("failed to sum approved advances: %w", err)
	}

	return rows, payroll.Settle(employeeID, period, rows, advances), nil
}

// settlePeriod recomputes and stores the period settlement after its days changed.
func (s *PayrollServiceImpl) settlePeriod(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.DailyCalculation, payroll.PeriodCalculation, error) {
	rows, settled, err := s.periodFigures(ctx, employeeID, period)
	if err != nil {
		return nil, payroll.PeriodCalculation{}, err
	}
	stored, err := s.CalculationRepository.UpsertPeriod(ctx, settled)
	if err != nil {
		return nil, payroll.PeriodCalculation{}, fmt.Errorf("failed to store period settlement: %w", err)
	}
	return rows, stored, nil
}

// CheckAdvanceEligibility implements payroll.PayrollService.
func (s *PayrollServiceImpl) CheckAdvanceEligibility(ctx context.Context, employeeID string) (payroll.AdvanceEligibility, error) {
	if validator.IsEmpty(employeeID) {
		return payroll.AdvanceEligibility{}, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}
	if _, err := s.getEmployee(ctx, employeeID); err != nil {
		return payroll.AdvanceEligibility{}, err
	}

	period := s.calendar.CurrentPeriod()
	rows, err := s.CalculationRepository.ListRange(ctx, employeeID, period.Start, s.calendar.Today())
	if err != nil {
		return payroll.AdvanceEligibility{}, fmt.Errorf("failed to list period calculations: %w", err)
	}
	net := decimal.Zero
	for _, c := range rows {
		net = net.Add(c.NetSalary)
	}

	days := payroll.NoPriorAdvanceDays
	last, err := s.AdvanceRepository.LatestNonRejected(ctx, employeeID)
	if err != nil {
		return payroll.AdvanceEligibility{}, fmt.Errorf("failed to get last advance: %w", err)
	}
	if last != nil {
		days = s.calendar.DaysBetween(last.RequestedAt, s.calendar.Now())
	}

	out := payroll.EvaluateAdvance(net, days, s.policy.AdvancePercent, s.policy.AdvanceWaitingDays)
	out.Period = period
	return out, nil
}

// RequestAdvance implements payroll.PayrollService.
func (s *PayrollServiceImpl) RequestAdvance(ctx context.Context, req payroll.RequestAdvanceRequest) (payroll.AdvanceResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.AdvanceResponse{}, err
	}

	emp, err := s.getEmployee(ctx, req.EmployeeID)
	if err != nil {
		return payroll.AdvanceResponse{}, err
	}
	if !emp.IsActive {
		return payroll.AdvanceResponse{}, employee.ErrEmployeeInactive
	}

	elig, err := s.CheckAdvanceEligibility(ctx, emp.ID)
	if err != nil {
		return payroll.AdvanceResponse{}, err
	}
	if !elig.Eligible {
		return payroll.AdvanceResponse{}, fmt.Errorf("%w: %s", payroll.ErrAdvanceNotEligible, elig.Reason)
	}
	if req.Amount.GreaterThan(elig.AvailableAdvance) {
		return payroll.AdvanceResponse{}, fmt.Errorf("%w: available %s", payroll.ErrAdvanceExceedsLimit, elig.AvailableAdvance.StringFixed(2))
	}

	adv, err := s.AdvanceRepository.Create(ctx, payroll.Advance{
		EmployeeID:  emp.ID,
		Amount:      req.Amount.Round(2),
		Status:      payroll.AdvancePending,
		RequestedAt: s.calendar.Now(),
	})
	if err != nil {
		return payroll.AdvanceResponse{}, fmt.Errorf("failed to create advance: %w", err)
	}

	slog.Info("Salary advance requested", "employee_id", emp.ID, "advance_id", adv.ID, "amount", adv.Amount.String())
	return toAdvanceResponse(adv), nil
}

func toAdvanceResponse(a payroll.Advance) payroll.AdvanceResponse {
	return payroll.AdvanceResponse{
		ID:          a.ID,
		EmployeeID:  a.EmployeeID,
		Amount:      a.Amount,
		Status:      a.Status,
		RequestedAt: a.RequestedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// RecalculateAll implements payroll.PayrollService. One employee's failure is logged
// and reported without stopping the others.
func (s *PayrollServiceImpl) RecalculateAll(ctx context.Context, date string) (payroll.RecalculateAllResponse, error) {
	if date == "" {
		date = s.calendar.Today()
	}
	if _, ok := validator.IsValidDate(date); !ok {
		return payroll.RecalculateAllResponse{}, validator.ValidationErrors{{Field: "date", Message: "date must be YYYY-MM-DD"}}
	}

	day, err := s.calendar.ParseDate(date)
	if err != nil {
		return payroll.RecalculateAllResponse{}, err
	}
	period := s.calendar.PeriodOf(day)

	employees, err := s.EmployeeRepository.ListActive(ctx)
	if err != nil {
		return payroll.RecalculateAllResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	var (
		mu   sync.Mutex
		resp = payroll.RecalculateAllResponse{Date: date, Failed: []string{}}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recalcConcurrency)
	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			_, err := s.computeDay(gctx, emp, date)
			if err == nil {
				_, _, err = s.settlePeriod(gctx, emp.ID, period)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Salary recalculation failed", "employee_id", emp.ID, "date", date, "error", err)
				resp.Failed = append(resp.Failed, emp.ID)
				return nil
			}
			resp.Calculated++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return payroll.RecalculateAllResponse{}, err
	}

	slog.Info("Salaries recalculated", "date", date, "calculated", resp.Calculated, "failed", len(resp.Failed))
	return resp, nil
}

func NewPayrollService(
	calculationRepo payroll.CalculationRepository,
	ledgerRepo payroll.LedgerRepository,
	advanceRepo payroll.AdvanceRepository,
	attendanceRepo attendance.AttendanceRepository,
	pulseRepo pulse.PulseRepository,
	employeeRepo employee.EmployeeRepository,
	cal *calendar.Calendar,
	policy config.Policy,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		CalculationRepository: calculationRepo,
		LedgerRepository:      ledgerRepo,
		AdvanceRepository:     advanceRepo,
		AttendanceRepository:  attendanceRepo,
		PulseRepository:       pulseRepo,
		EmployeeRepository:    employeeRepo,
		calendar:              cal,
		policy:                policy,
	}
}
