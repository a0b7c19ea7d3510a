package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// ========================================
// LEAVE
// ========================================

type leaveRepo struct{ s *Store }

func (s *Store) Leaves() leave.LeaveRequestRepository { return leaveRepo{s} }

func (r leaveRepo) Create(ctx context.Context, l leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = newID()
	}
	if l.Status == "" {
		l.Status = leave.StatusPending
	}
	l.CreatedAt = r.s.now()
	r.s.leaves[l.ID] = l
	return l, nil
}

func (r leaveRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leaves[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return l, nil
}

func (r leaveRepo) Resolve(ctx context.Context, id string, status leave.LeaveStatus, reviewerID string, notes *string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leaves[id]
	if !ok {
		return false, leave.ErrLeaveRequestNotFound
	}
	if l.Status != leave.StatusPending {
		return false, nil
	}
	l.Status = status
	l.ReviewedBy = &reviewerID
	l.ReviewedAt = &at
	l.ReviewNotes = notes
	r.s.leaves[id] = l
	return true, nil
}

// ========================================
// ABSENCES
// ========================================

type absenceRepo struct{ s *Store }

func (s *Store) Absences() absence.AbsenceRepository { return absenceRepo{s} }

func (r absenceRepo) Create(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.absences {
		if existing.EmployeeID == a.EmployeeID && existing.AbsenceDate == a.AbsenceDate {
			return absence.Absence{}, absence.ErrAbsenceExists
		}
	}
	if a.ID == "" {
		a.ID = newID()
	}
	if a.Status == "" {
		a.Status = absence.StatusPending
	}
	a.CreatedAt = r.s.now()
	r.s.absences[a.ID] = a
	return a, nil
}

func (r absenceRepo) GetByID(ctx context.Context, id string) (absence.Absence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.absences[id]
	if !ok {
		return absence.Absence{}, absence.ErrAbsenceNotFound
	}
	return a, nil
}

func (r absenceRepo) ExistsForDate(ctx context.Context, employeeID, date string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.absences {
		if a.EmployeeID == employeeID && a.AbsenceDate == date {
			return true, nil
		}
	}
	return false, nil
}

func (r absenceRepo) Resolve(ctx context.Context, id string, status absence.Status, applied bool, deduction decimal.Decimal, reviewerID string, notes *string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.absences[id]
	if !ok {
		return false, absence.ErrAbsenceNotFound
	}
	if a.Status != absence.StatusPending {
		return false, nil
	}
	a.Status = status
	a.DeductionApplied = &applied
	a.DeductionAmount = deduction
	a.ReviewedBy = &reviewerID
	a.ReviewedAt = &at
	a.ReviewNotes = notes
	r.s.absences[id] = a
	return true, nil
}

// AllAbsences returns every stored absence ordered by date.
func (s *Store) AllAbsences() []absence.Absence {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []absence.Absence
	for _, a := range s.absences {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AbsenceDate < out[j].AbsenceDate })
	return out
}

// ========================================
// BREAKS
// ========================================

type breakRepo struct{ s *Store }

func (s *Store) Breaks() breaks.BreakRepository { return breakRepo{s} }

func (r breakRepo) Create(ctx context.Context, b breaks.Break) (breaks.Break, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b.ID == "" {
		b.ID = newID()
	}
	if b.Status == "" {
		b.Status = breaks.StatusPending
	}
	now := r.s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.breaks[b.ID] = b
	return b, nil
}

func (r breakRepo) GetByID(ctx context.Context, id string) (breaks.Break, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.breaks[id]
	if !ok {
		return breaks.Break{}, breaks.ErrBreakNotFound
	}
	return b, nil
}

func (r breakRepo) Transition(ctx context.Context, id string, from []breaks.Status, to breaks.Status, u breaks.TransitionUpdate) (breaks.Break, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.breaks[id]
	if !ok {
		return breaks.Break{}, false, breaks.ErrBreakNotFound
	}
	allowed := false
	for _, st := range from {
		if b.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return b, false, nil
	}
	b.Status = to
	if u.BreakStart != nil {
		b.BreakStart = u.BreakStart
	}
	if u.BreakEnd != nil {
		b.BreakEnd = u.BreakEnd
	}
	if u.ActualMinutes != nil {
		b.ActualMinutes = u.ActualMinutes
	}
	if u.PayoutEligible != nil {
		b.PayoutEligible = *u.PayoutEligible
	}
	if u.ReviewedBy != nil {
		b.ReviewedBy = u.ReviewedBy
		b.ReviewedAt = u.ReviewedAt
		b.ReviewNotes = u.ReviewNotes
	}
	b.UpdatedAt = r.s.now()
	r.s.breaks[id] = b
	return b, true, nil
}

func (r breakRepo) HasActive(ctx context.Context, employeeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.breaks {
		if b.EmployeeID == employeeID && b.Status == breaks.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (r breakRepo) ListByEmployee(ctx context.Context, employeeID string, limit int) ([]breaks.Break, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []breaks.Break
	for _, b := range r.s.breaks {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r breakRepo) DeleteRejected(ctx context.Context, employeeID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, b := range r.s.breaks {
		if b.EmployeeID == employeeID && b.Status == breaks.StatusRejected {
			delete(r.s.breaks, id)
			n++
		}
	}
	return n, nil
}
