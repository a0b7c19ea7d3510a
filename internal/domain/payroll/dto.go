package payroll

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// DAILY CALCULATION
// ========================================

// CalculateDailyRequest picks one date, today, or the whole current period.
type CalculateDailyRequest struct {
	EmployeeID        string  `json:"employee_id"`
	Date              *string `json:"date,omitempty"`
	RecalculatePeriod bool    `json:"recalculate_period"`
}

func (r *CalculateDailyRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"})
		}
		if r.RecalculatePeriod {
			errs = append(errs, validator.ValidationError{Field: "recalculate_period", Message: "date and recalculate_period are exclusive"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DailyCalculationResponse struct {
	Date                 string          `json:"date"`
	TotalWorkHours       float64         `json:"total_work_hours"`
	HourlyRate           decimal.Decimal `json:"hourly_rate"`
	GrossSalary          decimal.Decimal `json:"gross_salary"`
	FalsePulsesCount     int             `json:"false_pulses_count"`
	PulseDeductionAmount decimal.Decimal `json:"pulse_deduction_amount"`
	OtherDeductions      decimal.Decimal `json:"other_deductions"`
	TotalDeductions      decimal.Decimal `json:"total_deductions"`
	NetSalary            decimal.Decimal `json:"net_salary"`
}

func ToDailyResponse(c DailyCalculation) DailyCalculationResponse {
	return DailyCalculationResponse{
		Date:                 c.CalculationDate,
		TotalWorkHours:       c.TotalWorkHours,
		HourlyRate:           c.HourlyRate,
		GrossSalary:          c.GrossSalary,
		FalsePulsesCount:     c.FalsePulsesCount,
		PulseDeductionAmount: c.PulseDeductionAmount,
		OtherDeductions:      c.OtherDeductions,
		TotalDeductions:      c.TotalDeductions,
		NetSalary:            c.NetSalary,
	}
}

type PeriodTotals struct {
	WorkHours       float64         `json:"work_hours"`
	Gross           decimal.Decimal `json:"gross"`
	FalsePulses     int             `json:"false_pulses"`
	PulseDeductions decimal.Decimal `json:"pulse_deductions"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	Net             decimal.Decimal `json:"net"`
}

// Add folds one day into the totals.
func (t *PeriodTotals) Add(c DailyCalculation) {
	t.WorkHours += c.TotalWorkHours
	t.Gross = t.Gross.Add(c.GrossSalary)
	t.FalsePulses += c.FalsePulsesCount
	t.PulseDeductions = t.PulseDeductions.Add(c.PulseDeductionAmount)
	t.OtherDeductions = t.OtherDeductions.Add(c.OtherDeductions)
	t.TotalDeductions = t.TotalDeductions.Add(c.TotalDeductions)
	t.Net = t.Net.Add(c.NetSalary)
}

type CalculateDailyResponse struct {
	EmployeeID   string                     `json:"employee_id"`
	Period       calendar.Period            `json:"period"`
	PerDay       []DailyCalculationResponse `json:"per_day"`
	PeriodTotals PeriodTotals               `json:"period_totals"`
}

// ========================================
// PERIOD VIEW
// ========================================

type PeriodSalaryRequest struct {
	EmployeeID string  `json:"employee_id"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
}

func (r *PeriodSalaryRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if (r.StartDate == nil) != (r.EndDate == nil) {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date and end_date must be provided together"})
	}
	if r.StartDate != nil {
		if _, ok := validator.IsValidDate(*r.StartDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
		}
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodSalaryResponse struct {
	EmployeeID     string                     `json:"employee_id"`
	Period         calendar.Period            `json:"period"`
	Totals         PeriodTotals               `json:"totals"`
	DailyBreakdown []DailyCalculationResponse `json:"daily_breakdown"`
	Advances       decimal.Decimal            `json:"advances"`
	NetPayable     decimal.Decimal            `json:"net_payable"`
	SettledAt      *time.Time                 `json:"settled_at,omitempty"`
}

// ========================================
// ADVANCES
// ========================================

type AdvanceEligibility struct {
	Eligible             bool            `json:"eligible"`
	Reason               string          `json:"reason"`
	TotalNetSalary       decimal.Decimal `json:"total_net_salary"`
	AvailableAdvance     decimal.Decimal `json:"available_advance"`
	DaysSinceLastAdvance int             `json:"days_since_last_advance"`
	RemainingDays        int             `json:"remaining_days"`
	Period               calendar.Period `json:"period"`
}

type RequestAdvanceRequest struct {
	EmployeeID string          `json:"-"`
	Amount     decimal.Decimal `json:"amount"`
}

func (r *RequestAdvanceRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must be greater than zero"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AdvanceResponse struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      AdvanceStatus   `json:"status"`
	RequestedAt string          `json:"requested_at"`
}

// ========================================
// BULK RECALCULATION
// ========================================

type RecalculateAllResponse struct {
	Date       string   `json:"date"`
	Calculated int      `json:"calculated"`
	Failed     []string `json:"failed"`
}
