// Package memstore is an in-memory implementation of every repository interface,
// with the same guarded-update and upsert semantics as the PostgreSQL repositories.
// It is meant for service tests.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/google/uuid"
)

type dayKey struct {
	employeeID string
	date       string
}

type periodKey struct {
	employeeID string
	start, end string
}

type ledgerKey struct {
	entryType payroll.LedgerEntryType
	sourceID  string
}

type Store struct {
	mu  sync.Mutex
	now func() time.Time

	employees     map[string]employee.Employee
	employeeOrder []string
	branches      map[string]branch.Branch
	accessPoints  map[string][]string

	attendance  map[string]attendance.Attendance
	summaries   map[dayKey]attendance.DailySummary
	corrections map[string]attendance.CorrectionRequest

	pulses      []pulse.Pulse
	violations  []pulse.Violation
	validations map[string]pulse.SessionValidation

	calculations map[dayKey]payroll.DailyCalculation
	periods      map[periodKey]payroll.PeriodCalculation
	ledger       map[ledgerKey]payroll.LedgerEntry
	advances     map[string]payroll.Advance

	leaves   map[string]leave.LeaveRequest
	absences map[string]absence.Absence
	breaks   map[string]breaks.Break

	notifications []*notification.Notification

	// FailBranchLookups makes every branch query fail, for degradation tests.
	FailBranchLookups bool
}

// New returns an empty store. A nil now uses time.Now for created/updated stamps.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:          now,
		employees:    make(map[string]employee.Employee),
		branches:     make(map[string]branch.Branch),
		accessPoints: make(map[string][]string),
		attendance:   make(map[string]attendance.Attendance),
		summaries:    make(map[dayKey]attendance.DailySummary),
		corrections:  make(map[string]attendance.CorrectionRequest),
		validations:  make(map[string]pulse.SessionValidation),
		calculations: make(map[dayKey]payroll.DailyCalculation),
		periods:      make(map[periodKey]payroll.PeriodCalculation),
		ledger:       make(map[ledgerKey]payroll.LedgerEntry),
		advances:     make(map[string]payroll.Advance),
		leaves:       make(map[string]leave.LeaveRequest),
		absences:     make(map[string]absence.Absence),
		breaks:       make(map[string]breaks.Break),
	}
}

// WithinTx runs fn directly. The store has no rollback; callers validate before
// mutating, as they do against PostgreSQL.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID() string {
	return uuid.NewString()
}

// ========================================
// SEEDING
// ========================================

// PutEmployee stores e, assigning an id when empty, and returns it.
func (s *Store) PutEmployee(e employee.Employee) employee.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	if _, exists := s.employees[e.ID]; !exists {
		s.employeeOrder = append(s.employeeOrder, e.ID)
	}
	s.employees[e.ID] = e
	return e
}

// PutBranch stores b, assigning an id when empty, and returns it.
func (s *Store) PutBranch(b branch.Branch, accessPoints ...string) branch.Branch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = newID()
	}
	s.branches[b.ID] = b
	if len(accessPoints) > 0 {
		s.accessPoints[b.ID] = append([]string(nil), accessPoints...)
	}
	return b
}

// ========================================
// EMPLOYEES & BRANCHES
// ========================================

type employeeRepo struct{ s *Store }

func (s *Store) Employees() employee.EmployeeRepository { return employeeRepo{s} }

func (r employeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r employeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.s.employees {
		if e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r employeeRepo) FirstByRole(ctx context.Context, role user.Role) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range r.s.employeeOrder {
		if e := r.s.employees[id]; e.IsActive && e.Role == role {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

type branchRepo struct{ s *Store }

func (s *Store) Branches() branch.BranchRepository { return branchRepo{s} }

var errBranchLookup = errors.New("branch lookup failed")

func (r branchRepo) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailBranchLookups {
		return branch.Branch{}, errBranchLookup
	}
	b, ok := r.s.branches[id]
	if !ok {
		return branch.Branch{}, branch.ErrBranchNotFound
	}
	return b, nil
}

func (r branchRepo) GetByName(ctx context.Context, name string) (branch.Branch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailBranchLookups {
		return branch.Branch{}, errBranchLookup
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, b := range r.s.branches {
		if strings.ToLower(strings.TrimSpace(b.Name)) == want {
			return b, nil
		}
	}
	return branch.Branch{}, branch.ErrBranchNotFound
}

func (r branchRepo) ListAccessPoints(ctx context.Context, branchID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailBranchLookups {
		return nil, errBranchLookup
	}
	return append([]string(nil), r.s.accessPoints[branchID]...), nil
}
