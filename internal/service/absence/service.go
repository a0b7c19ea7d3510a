package absence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const detectConcurrency = 4

type AbsenceServiceImpl struct {
	absence.AbsenceRepository
	attendance.AttendanceRepository
	attendance.SummaryRepository
	employee.EmployeeRepository
	branch.BranchRepository
	notificationService notification.Notifier
	calendar            *calendar.Calendar
	policy              config.Policy
}

// shiftDate returns the business date a shift belongs to and the instant it ends.
// Overnight shifts end today and belong to yesterday.
func (s *AbsenceServiceImpl) shiftDate(emp employee.Employee) (string, time.Time, bool) {
	if emp.ShiftStartTime == nil || emp.ShiftEndTime == nil {
		return "", time.Time{}, false
	}
	endMinutes, ok := calendar.ParseClock(*emp.ShiftEndTime)
	if !ok {
		return "", time.Time{}, false
	}

	today := s.calendar.Today()
	day, err := s.calendar.ParseDate(today)
	if err != nil {
		return "", time.Time{}, false
	}
	end := time.Date(day.Year(), day.Month(), day.Day(), endMinutes/60, endMinutes%60, 0, 0, s.calendar.Location())

	date := today
	if calendar.IsOvernight(emp.ShiftStartTime, emp.ShiftEndTime) {
		if date, err = s.calendar.AddDays(today, -1); err != nil {
			return "", time.Time{}, false
		}
	}
	return date, end, true
}

// Detect implements absence.AbsenceService.
func (s *AbsenceServiceImpl) Detect(ctx context.Context) (absence.DetectionResult, error) {
	employees, err := s.EmployeeRepository.ListActive(ctx)
	if err != nil {
		return absence.DetectionResult{}, fmt.Errorf("failed to list employees: %w", err)
	}

	var (
		mu     sync.Mutex
		result = absence.DetectionResult{Date: s.calendar.Today(), Created: []string{}}
	)
	now := s.calendar.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detectConcurrency)
	for _, emp := range employees {
		emp := emp
		date, end, ok := s.shiftDate(emp)
		if !ok {
			continue
		}
		result.Checked++
		if now.Before(end) {
			continue
		}

		g.Go(func() error {
			id, err := s.checkEmployee(gctx, emp, date, employees)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Error("Absence check failed", "employee_id", emp.ID, "date", date, "error", err)
				result.Failures++
				return nil
			}
			if id != "" {
				result.Created = append(result.Created, id)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return absence.DetectionResult{}, err
	}

	slog.Info("Absence detection finished", "date", result.Date, "checked", result.Checked, "created", len(result.Created), "failures", result.Failures)
	return result, nil
}

// checkEmployee records an absence for date when nothing covers it, returning the new
// absence id or "" when none was needed.
func (s *AbsenceServiceImpl) checkEmployee(ctx context.Context, emp employee.Employee, date string, staff []employee.Employee) (string, error) {
	rec, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return "", fmt.Errorf("failed to get attendance: %w", err)
	}
	if rec != nil {
		return "", nil
	}

	exists, err := s.AbsenceRepository.ExistsForDate(ctx, emp.ID, date)
	if err != nil {
		return "", fmt.Errorf("failed to check absence: %w", err)
	}
	if exists {
		return "", nil
	}

	summary, err := s.SummaryRepository.Get(ctx, emp.ID, date)
	if err != nil {
		return "", fmt.Errorf("failed to get daily summary: %w", err)
	}
	if summary != nil && summary.IsOnLeave {
		return "", nil
	}

	hours := calendar.ShiftHours(emp.ShiftStartTime, emp.ShiftEndTime, s.policy.DefaultShiftHours)
	rate := emp.RateOr(decimal.NewFromFloat(s.policy.DefaultHourlyRate))
	created, err := s.AbsenceRepository.Create(ctx, absence.Absence{
		EmployeeID:      emp.ID,
		BranchID:        emp.BranchID,
		AbsenceDate:     date,
		ShiftStartTime:  emp.ShiftStartTime,
		ShiftEndTime:    emp.ShiftEndTime,
		DeductionAmount: payroll.AbsenceDeduction(hours, rate, s.policy.AbsencePenaltyDays),
		Status:          absence.StatusPending,
	})
	if errors.Is(err, absence.ErrAbsenceExists) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to create absence: %w", err)
	}

	s.alert(ctx, emp, created, staff)
	return created.ID, nil
}

// recipient picks who reviews the absence: the branch manager for staff, the owner
// for managers or when the branch has no manager.
func (s *AbsenceServiceImpl) recipient(ctx context.Context, emp employee.Employee, staff []employee.Employee) (string, error) {
	if emp.Role != user.RoleManager {
		if emp.BranchID != nil {
			b, err := s.BranchRepository.GetByID(ctx, *emp.BranchID)
			if err == nil && b.ManagerID != nil && *b.ManagerID != "" && *b.ManagerID != emp.ID {
				return *b.ManagerID, nil
			}
			if err != nil && !errors.Is(err, branch.ErrBranchNotFound) {
				slog.Warn("Failed to load branch for absence alert", "branch_id", *emp.BranchID, "error", err)
			}
		}
		for _, m := range staff {
			if m.Role == user.RoleManager && m.ID != emp.ID && m.InSameBranch(emp) {
				return m.ID, nil
			}
		}
	}

	owner, err := s.EmployeeRepository.FirstByRole(ctx, user.RoleOwner)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return "", employee.ErrOwnerNotFound
		}
		return "", fmt.Errorf("failed to find owner: %w", err)
	}
	return owner.ID, nil
}

func (s *AbsenceServiceImpl) alert(ctx context.Context, emp employee.Employee, a absence.Absence, staff []employee.Employee) {
	to, err := s.recipient(ctx, emp, staff)
	if err != nil {
		slog.Warn("No reviewer for absence alert", "employee_id", emp.ID, "absence_id", a.ID, "error", err)
		return
	}

	title := "Employee absent"
	if emp.Role == user.RoleManager {
		title = "Manager absent"
	}
	err = s.notificationService.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: to,
		Type:        notification.TypeAbsenceAlert,
		Title:       title,
		Message:     fmt.Sprintf("%s has no attendance for %s. Please review the absence.", emp.FullName, a.AbsenceDate),
		Data: map[string]interface{}{
			"absence_id":       a.ID,
			"employee_id":      emp.ID,
			"absence_date":     a.AbsenceDate,
			"deduction_amount": a.DeductionAmount.StringFixed(2),
		},
	})
	if err != nil {
		slog.Warn("Failed to queue absence alert", "absence_id", a.ID, "error", err)
	}
}

func NewAbsenceService(
	absenceRepo absence.AbsenceRepository,
	attendanceRepo attendance.AttendanceRepository,
	summaryRepo attendance.SummaryRepository,
	employeeRepo employee.EmployeeRepository,
	branchRepo branch.BranchRepository,
	notificationService notification.Notifier,
	cal *calendar.Calendar,
	policy config.Policy,
) absence.AbsenceService {
	return &AbsenceServiceImpl{
		AbsenceRepository:    absenceRepo,
		AttendanceRepository: attendanceRepo,
		SummaryRepository:    summaryRepo,
		EmployeeRepository:   employeeRepo,
		BranchRepository:     branchRepo,
		notificationService:  notificationService,
		calendar:             cal,
		policy:               policy,
	}
}
