package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

type calculationRepo struct{ s *Store }

func (s *Store) Calculations() payroll.CalculationRepository { return calculationRepo{s} }

func (r calculationRepo) Upsert(ctx context.Context, c payroll.DailyCalculation) (payroll.DailyCalculation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.UpdatedAt = r.s.now()
	r.s.calculations[dayKey{c.EmployeeID, c.CalculationDate}] = c
	return c, nil
}

func (r calculationRepo) ListRange(ctx context.Context, employeeID, start, end string) ([]payroll.DailyCalculation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []payroll.DailyCalculation
	for k, c := range r.s.calculations {
		if k.employeeID == employeeID && k.date >= start && k.date <= end {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CalculationDate < out[j].CalculationDate })
	return out, nil
}

func (r calculationRepo) UpsertPeriod(ctx context.Context, p payroll.PeriodCalculation) (payroll.PeriodCalculation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.UpdatedAt = r.s.now()
	r.s.periods[periodKey{p.EmployeeID, p.PeriodStart, p.PeriodEnd}] = p
	return p, nil
}

func (r calculationRepo) GetPeriod(ctx context.Context, employeeID, start, end string) (*payroll.PeriodCalculation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.periods[periodKey{employeeID, start, end}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// PeriodCount returns how many period settlements are stored.
func (s *Store) PeriodCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.periods)
}

// CalculationCount returns how many daily rows are stored.
func (s *Store) CalculationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calculations)
}

type ledgerRepo struct{ s *Store }

func (s *Store) Ledger() payroll.LedgerRepository { return ledgerRepo{s} }

func (r ledgerRepo) Post(ctx context.Context, e payroll.LedgerEntry) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := ledgerKey{e.EntryType, e.SourceID}
	if _, exists := r.s.ledger[k]; exists {
		return false, nil
	}
	if e.ID == "" {
		e.ID = newID()
	}
	e.CreatedAt = r.s.now()
	r.s.ledger[k] = e
	return true, nil
}

func (r ledgerRepo) SumDeductions(ctx context.Context, employeeID string, entryType payroll.LedgerEntryType, date string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, e := range r.s.ledger {
		if e.EmployeeID == employeeID && e.EntryType == entryType && e.EntryDate == date && e.Amount.IsNegative() {
			total = total.Add(e.Amount.Abs())
		}
	}
	return total, nil
}

// LedgerEntries returns every posting for the employee.
func (s *Store) LedgerEntries(employeeID string) []payroll.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []payroll.LedgerEntry
	for _, e := range s.ledger {
		if e.EmployeeID == employeeID {
			out = append(out, e)
		}
	}
	return out
}

type advanceRepo struct{ s *Store }

func (s *Store) Advances() payroll.AdvanceRepository { return advanceRepo{s} }

func (r advanceRepo) Create(ctx context.Context, a payroll.Advance) (payroll.Advance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == "" {
		a.ID = newID()
	}
	if a.Status == "" {
		a.Status = payroll.AdvancePending
	}
	if a.RequestedAt.IsZero() {
		a.RequestedAt = r.s.now()
	}
	r.s.advances[a.ID] = a
	return a, nil
}

func (r advanceRepo) GetByID(ctx context.Context, id string) (payroll.Advance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.advances[id]
	if !ok {
		return payroll.Advance{}, payroll.ErrAdvanceNotFound
	}
	return a, nil
}

func (r advanceRepo) LatestNonRejected(ctx context.Context, employeeID string) (*payroll.Advance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *payroll.Advance
	for _, a := range r.s.advances {
		if a.EmployeeID != employeeID || a.Status == payroll.AdvanceRejected {
			continue
		}
		if best == nil || a.RequestedAt.After(best.RequestedAt) {
			a := a
			best = &a
		}
	}
	return best, nil
}

func (r advanceRepo) SumApproved(ctx context.Context, employeeID string, from, to time.Time) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, a := range r.s.advances {
		if a.EmployeeID == employeeID && a.Status == payroll.AdvanceApproved &&
			!a.RequestedAt.Before(from) && a.RequestedAt.Before(to) {
			total = total.Add(a.Amount)
		}
	}
	return total, nil
}

func (r advanceRepo) Resolve(ctx context.Context, id string, status payroll.AdvanceStatus, reviewerID string, notes *string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.advances[id]
	if !ok {
		return false, payroll.ErrAdvanceNotFound
	}
	if a.Status != payroll.AdvancePending {
		return false, nil
	}
	a.Status = status
	a.ReviewedBy = &reviewerID
	a.ReviewedAt = &at
	a.ReviewNotes = notes
	r.s.advances[id] = a
	return true, nil
}
