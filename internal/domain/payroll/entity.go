package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyCalculation is the derived salary of one employee for one business date.
// It is recomputable and upserted on (employee, date).
type DailyCalculation struct {
	EmployeeID           string
	CalculationDate      string
	TotalWorkHours       float64
	HourlyRate           decimal.Decimal
	GrossSalary          decimal.Decimal
	FalsePulsesCount     int
	PulseDeductionAmount decimal.Decimal
	OtherDeductions      decimal.Decimal
	TotalDeductions      decimal.Decimal
	NetSalary            decimal.Decimal
	UpdatedAt            time.Time
}

// PeriodCalculation is the settlement of one pay period: the stored days folded
// together with approved advances netted off. It is upserted on
// (employee, period start, period end) each time a day inside it is recalculated.
type PeriodCalculation struct {
	EmployeeID       string
	PeriodStart      string
	PeriodEnd        string
	DaysCalculated   int
	TotalWorkHours   float64
	GrossSalary      decimal.Decimal
	FalsePulsesCount int
	TotalDeductions  decimal.Decimal
	NetSalary        decimal.Decimal
	Advances         decimal.Decimal
	NetPayable       decimal.Decimal
	UpdatedAt        time.Time
}

// LedgerEntryType enum
type LedgerEntryType string

const (
	LedgerAbsence LedgerEntryType = "absence"
	LedgerAdvance LedgerEntryType = "advance"
)

// LedgerEntry is a signed posting made once per approved adjustment. Negative amounts
// reduce pay.
type LedgerEntry struct {
	ID         string
	EmployeeID string
	EntryType  LedgerEntryType
	SourceID   string
	Amount     decimal.Decimal
	EntryDate  string
	Reason     *string
	AppliedBy  *string
	CreatedAt  time.Time
}

// AdvanceStatus enum
type AdvanceStatus string

const (
	AdvancePending  AdvanceStatus = "pending"
	AdvanceApproved AdvanceStatus = "approved"
	AdvanceRejected AdvanceStatus = "rejected"
)

type Advance struct {
	ID          string
	EmployeeID  string
	Amount      decimal.Decimal
	Status      AdvanceStatus
	RequestedAt time.Time
	ReviewedBy  *string
	ReviewedAt  *time.Time
	ReviewNotes *string
}
