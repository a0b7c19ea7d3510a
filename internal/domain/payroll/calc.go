package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// DayInputs are the raw figures behind one day's salary.
type DayInputs struct {
	WorkHours       float64
	HourlyRate      decimal.Decimal
	FalsePulses     int
	PenaltyMinutes  int
	OtherDeductions decimal.Decimal
}

type DayFigures struct {
	Gross           decimal.Decimal
	PulseDeduction  decimal.Decimal
	TotalDeductions decimal.Decimal
	Net             decimal.Decimal
}

// ComputeDay applies the accrual rule: each false pulse costs PenaltyMinutes of pay
// and net salary never goes below zero.
func ComputeDay(in DayInputs) DayFigures {
	gross := decimal.NewFromFloat(in.WorkHours).Mul(in.HourlyRate).Round(2)
	penalized := decimal.NewFromInt(int64(in.FalsePulses * in.PenaltyMinutes))
	pulse := penalized.Mul(in.HourlyRate).Div(sixty).Round(2)
	total := pulse.Add(in.OtherDeductions).Round(2)

	net := gross.Sub(total)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return DayFigures{
		Gross:           gross,
		PulseDeduction:  pulse,
		TotalDeductions: total,
		Net:             net.Round(2),
	}
}

// CheckPeriod rejects a period that ends before it starts.
func CheckPeriod(p calendar.Period) error {
	if p.Start == "" || p.End == "" || p.End < p.Start {
		return fmt.Errorf("%w: %s to %s", ErrInvalidPeriod, p.Start, p.End)
	}
	return nil
}

// SumPeriod folds stored days into period totals. Work hours are rounded once,
// after summing, to two decimals.
func SumPeriod(rows []DailyCalculation) PeriodTotals {
	var t PeriodTotals
	for _, c := range rows {
		t.Add(c)
	}
	t.WorkHours = decimal.NewFromFloat(t.WorkHours).Round(2).InexactFloat64()
	return t
}

// Settle nets approved advances off the period totals. Net payable never goes
// below zero.
func Settle(employeeID string, p calendar.Period, rows []DailyCalculation, advances decimal.Decimal) PeriodCalculation {
	t := SumPeriod(rows)
	payable := t.Net.Sub(advances).Round(2)
	if payable.IsNegative() {
		payable = decimal.Zero
	}
	return PeriodCalculation{
		EmployeeID:       employeeID,
		PeriodStart:      p.Start,
		PeriodEnd:        p.End,
		DaysCalculated:   len(rows),
		TotalWorkHours:   t.WorkHours,
		GrossSalary:      t.Gross,
		FalsePulsesCount: t.FalsePulses,
		TotalDeductions:  t.TotalDeductions,
		NetSalary:        t.Net,
		Advances:         advances.Round(2),
		NetPayable:       payable,
	}
}

// AbsenceDeduction is penaltyDays full shifts of pay.
func AbsenceDeduction(shiftHours float64, hourlyRate decimal.Decimal, penaltyDays int) decimal.Decimal {
	return decimal.NewFromFloat(shiftHours).
		Mul(hourlyRate).
		Mul(decimal.NewFromInt(int64(penaltyDays))).
		Round(2)
}

// Eligibility reasons
const (
	ReasonNoEarnings    = "no_earnings_yet"
	ReasonWaitingPeriod = "waiting_period"
	ReasonEligible      = "eligible_for_request"
)

// NoPriorAdvanceDays stands in for "days since last advance" when there is none.
const NoPriorAdvanceDays = 999

// EvaluateAdvance decides advance eligibility from the period's net salary so far.
func EvaluateAdvance(netSoFar decimal.Decimal, daysSinceLast int, percent float64, waitingDays int) AdvanceEligibility {
	out := AdvanceEligibility{
		TotalNetSalary:       netSoFar.Round(2),
		DaysSinceLastAdvance: daysSinceLast,
		AvailableAdvance:     decimal.Zero,
	}
	if !netSoFar.IsPositive() {
		out.Reason = ReasonNoEarnings
		return out
	}
	if daysSinceLast < waitingDays {
		out.Reason = ReasonWaitingPeriod
		out.RemainingDays = waitingDays - daysSinceLast
		if out.RemainingDays < 0 {
			out.RemainingDays = 0
		}
		return out
	}
	out.Eligible = true
	out.Reason = ReasonEligible
	out.AvailableAdvance = netSoFar.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Round(2)
	return out
}
