package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/approval"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

const conflictNote = "Automatically rejected: an attendance record already exists inside the requested window."

// Repositories groups the stores the coordinator reads and mutates.
type Repositories struct {
	Employees   employee.EmployeeRepository
	Leaves      leave.LeaveRequestRepository
	Advances    payroll.AdvanceRepository
	Ledger      payroll.LedgerRepository
	Attendance  attendance.AttendanceRepository
	Summaries   attendance.SummaryRepository
	Corrections attendance.CorrectionRepository
	Absences    absence.AbsenceRepository
	Breaks      breaks.BreakRepository
	Pulses      pulse.PulseRepository
	Validations pulse.SessionValidationRepository
}

type ApprovalServiceImpl struct {
	database.Transactor
	repos               Repositories
	notificationService notification.Notifier
	calendar            *calendar.Calendar
	policy              config.Policy
}

// decision is what one request family reports back after its side effects ran.
type decision struct {
	requesterID string
	status      string
	record      interface{}
}

// Resolve implements approval.ApprovalService.
func (s *ApprovalServiceImpl) Resolve(ctx context.Context, req approval.ResolveRequest) (approval.ResolveResponse, error) {
	if err := req.Validate(); err != nil {
		return approval.ResolveResponse{}, err
	}

	reviewer, err := s.repos.Employees.GetByID(ctx, req.ReviewerID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return approval.ResolveResponse{}, approval.ErrForbidden
		}
		return approval.ResolveResponse{}, fmt.Errorf("failed to get reviewer: %w", err)
	}
	if !reviewer.Role.CanApprove() {
		return approval.ResolveResponse{}, approval.ErrForbidden
	}

	var d decision
	err = s.Transactor.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		switch approval.Kind(req.Type) {
		case approval.KindLeave:
			d, err = s.resolveLeave(ctx, reviewer, req)
		case approval.KindAdvance:
			d, err = s.resolveAdvance(ctx, reviewer, req)
		case approval.KindAttendance:
			d, err = s.resolveCorrection(ctx, reviewer, req)
		case approval.KindAbsence:
			d, err = s.resolveAbsence(ctx, reviewer, req)
		case approval.KindBreak:
			d, err = s.resolveBreak(ctx, reviewer, req)
		case approval.KindSessionValidation:
			d, err = s.resolveSessionValidation(ctx, reviewer, req)
		default:
			err = approval.ErrInvalidAction
		}
		return err
	})
	if errors.Is(err, attendance.ErrCorrectionConflict) {
		s.rejectConflicting(ctx, reviewer, req)
		return approval.ResolveResponse{}, err
	}
	if err != nil {
		return approval.ResolveResponse{}, err
	}

	slog.Info("Request resolved", "type", req.Type, "id", req.ID, "action", req.Action, "reviewer_id", reviewer.ID)
	s.notifyRequester(ctx, reviewer, req, d.requesterID, d.status)

	return approval.ResolveResponse{
		Type:   approval.Kind(req.Type),
		ID:     req.ID,
		Action: approval.Action(req.Action),
		Status: d.status,
		Record: d.record,
	}, nil
}

// authorize loads the requester and applies the branch rule before any mutation.
func (s *ApprovalServiceImpl) authorize(ctx context.Context, reviewer employee.Employee, requesterID string) (employee.Employee, error) {
	requester, err := s.repos.Employees.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, approval.ErrRequestNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get requester: %w", err)
	}
	if !approval.CanReview(reviewer, requester) {
		slog.Warn("Reviewer not allowed to resolve request", "reviewer_id", reviewer.ID, "requester_id", requester.ID)
		return employee.Employee{}, approval.ErrForbidden
	}
	return requester, nil
}

func notFound(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return approval.ErrRequestNotFound
	}
	return fmt.Errorf("failed to get request: %w", err)
}

// ========================================
// LEAVE
// ========================================

func (s *ApprovalServiceImpl) resolveLeave(ctx context.Context, reviewer employee.Employee, req approval.ResolveRequest) (decision, error) {
	l, err := s.repos.Leaves.GetByID(ctx, req.ID)
	if err != nil {
		return decision{}, notFound(err, leave.ErrLeaveRequestNotFound)
	}
	if l.Status != leave.StatusPending {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}
	if _, err := s.authorize(ctx, reviewer, l.EmployeeID); err != nil {
		return decision{}, err
	}

	status := leave.StatusRejected
	if approval.Action(req.Action) == approval.ActionApprove {
		status = leave.StatusApproved
		dates, err := s.calendar.DatesThrough(calendar.Period{Start: l.StartDate, End: l.EndDate}, "")
		if err != nil {
			return decision{}, err
		}
		for _, date := range dates {
			if err := s.repos.Summaries.MarkOnLeave(ctx, l.EmployeeID, date); err != nil {
				return decision{}, fmt.Errorf("failed to mark leave day %s: %w", date, err)
			}
		}
	}

	ok, err := s.repos.Leaves.Resolve(ctx, l.ID, status, reviewer.ID, req.Notes, s.calendar.Now())
	if err != nil {
		return decision{}, fmt.Errorf("failed to resolve leave request: %w", err)
	}
	if !ok {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}

	updated, err := s.repos.Leaves.GetByID(ctx, l.ID)
	if err != nil {
		return decision{}, fmt.Errorf("failed to reload leave request: %w", err)
	}
	return decision{requesterID: l.EmployeeID, status: string(status), record: leave.ToResponse(updated)}, nil
}

// ========================================
// ADVANCE
// ========================================

func (s *ApprovalServiceImpl) resolveAdvance(ctx context.Context, reviewer employee.Employee, req approval.ResolveRequest) (decision, error) {
	adv, err := s.repos.Advances.GetByID(ctx, req.ID)
	if err != nil {
		return decision{}, notFound(err, payroll.ErrAdvanceNotFound)
	}
	if adv.Status != payroll.AdvancePending {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}
	if _, err := s.authorize(ctx, reviewer, adv.EmployeeID); err != nil {
		return decision{}, err
	}

	status := payroll.AdvanceRejected
	if approval.Action(req.Action) == approval.ActionApprove {
		status = payroll.AdvanceApproved
		reason := fmt.Sprintf("Salary advance requested %s", s.calendar.DateOf(adv.RequestedAt))
		posted, err := s.repos.Ledger.Post(ctx, payroll.LedgerEntry{
			EmployeeID: adv.EmployeeID,
			EntryType:  payroll.LedgerAdvance,
			SourceID:   adv.ID,
			Amount:     adv.Amount.Neg(),
			EntryDate:  s.calendar.Today(),
			Reason:     &reason,
			AppliedBy:  &reviewer.ID,
		})
		if err != nil {
			return decision{}, fmt.Errorf("failed to post advance: %w", err)
		}
		if !posted {
			slog.Warn("Advance already posted to ledger", "advance_id", adv.ID)
		}
	}

	ok, err := s.repos.Advances.Resolve(ctx, adv.ID, status, reviewer.ID, req.Notes, s.calendar.Now())
	if err != nil {
		return decision{}, fmt.Errorf("failed to resolve advance: %w", err)
	}
	if !ok {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}

	amount := adv.Amount
	return decision{
		requesterID: adv.EmployeeID,
		status:      string(status),
		record: approval.RecordSummary{
			ID:          adv.ID,
			EmployeeID:  adv.EmployeeID,
			Status:      string(status),
			ReviewNotes: req.Notes,
			Amount:      &amount,
		},
	}, nil
}

// ========================================
// ATTENDANCE CORRECTION
// ========================================

func (s *ApprovalServiceImpl) resolveCorrection(ctx context.Context, reviewer employee.Employee, req approval.ResolveRequest) (decision, error) {
	c, err := s.repos.Corrections.GetByID(ctx, req.ID)
	if err != nil {
		return decision{}, notFound(err, attendance.ErrCorrectionNotFound)
	}
	if c.Status != attendance.RequestPending {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}
	if _, err := s.authorize(ctx, reviewer, c.EmployeeID); err != nil {
		return decision{}, err
	}

	status := attendance.RequestRejected
	var attendanceID *string
	if approval.Action(req.Action) == approval.ActionApprove {
		status = attendance.RequestApproved
		switch c.RequestType {
		case attendance.CorrectionCheckIn:
			attendanceID, err = s.applyMissedCheckIn(ctx, reviewer, c)
		case attendance.CorrectionCheckOut:
			attendanceID, err = s.applyMissedCheckOut(ctx, reviewer, c)
		default:
			err = attendance.ErrInvalidCorrectionType
		}
		if err != nil {
			return decision{}, err
		}
	}

	ok, err := s.repos.Corrections.Resolve(ctx, c.ID, status, reviewer.ID, req.Notes, s.calendar.Now())
	if err != nil {
		return decision{}, fmt.Errorf("failed to resolve attendance request: %w", err)
	}
	if !ok {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}

	return decision{
		requesterID: c.EmployeeID,
		status:      string(status),
		record: approval.RecordSummary{
			ID:           c.ID,
			EmployeeID:   c.EmployeeID,
			Status:       string(status),
			ReviewNotes:  req.Notes,
			AttendanceID: attendanceID,
		},
	}, nil
}

// applyMissedCheckIn backfills the session that should have started at the requested
// time. Without any prior record it opens a new active session instead.
func (s *ApprovalServiceImpl) applyMissedCheckIn(ctx context.Context, reviewer employee.Employee, c attendance.CorrectionRequest) (*string, error) {
	latest, err := s.repos.Attendance.GetLatest(ctx, c.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest attendance: %w", err)
	}

	if latest == nil {
		slog.Warn("No attendance before missed check-in, opening an active session", "employee_id", c.EmployeeID, "request_id", c.ID)
		rec, err := s.repos.Attendance.Create(ctx, attendance.Attendance{
			EmployeeID:         c.EmployeeID,
			CheckInTime:        c.RequestedTime,
			Date:               s.calendar.DateOf(c.RequestedTime),
			Status:             attendance.StatusActive,
			ModifiedBy:         &reviewer.ID,
			ModificationReason: &c.Reason,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create attendance: %w", err)
		}
		return &rec.ID, nil
	}

	if !c.RequestedTime.Before(latest.CheckInTime) {
		return nil, attendance.ErrCorrectionTimeInvalid
	}

	overlap, err := s.repos.Attendance.ExistsBetween(ctx, c.EmployeeID, c.RequestedTime, latest.CheckInTime, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check overlapping attendance: %w", err)
	}
	if overlap {
		return nil, attendance.ErrCorrectionConflict
	}

	checkOut := latest.CheckInTime
	hours := attendance.HoursBetween(c.RequestedTime, checkOut)
	within := true
	note := "Created from an approved missed check-in request"
	rec, err := s.repos.Attendance.Create(ctx, attendance.Attendance{
		EmployeeID:         c.EmployeeID,
		BranchID:           latest.BranchID,
		CheckInTime:        c.RequestedTime,
		CheckOutTime:       &checkOut,
		Date:               s.calendar.DateOf(c.RequestedTime),
		Status:             attendance.StatusCompleted,
		WorkHours:          &hours,
		IsWithinGeofence:   &within,
		CheckInLatitude:    latest.CheckInLatitude,
		CheckInLongitude:   latest.CheckInLongitude,
		Notes:              &note,
		ModifiedBy:         &reviewer.ID,
		ModificationReason: &c.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create corrected attendance: %w", err)
	}

	_, err = s.repos.Pulses.Create(ctx, pulse.Pulse{
		EmployeeID:     c.EmployeeID,
		AttendanceID:   &rec.ID,
		BranchID:       latest.BranchID,
		Timestamp:      c.RequestedTime,
		Latitude:       latest.CheckInLatitude,
		Longitude:      latest.CheckInLongitude,
		InsideGeofence: true,
		Source:         pulse.SourceApproval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record correction pulse: %w", err)
	}

	slog.Info("Missed check-in backfilled", "employee_id", c.EmployeeID, "attendance_id", rec.ID, "work_hours", hours)
	return &rec.ID, nil
}

// applyMissedCheckOut closes the active session at the requested time. A missing
// session leaves attendance untouched.
func (s *ApprovalServiceImpl) applyMissedCheckOut(ctx context.Context, reviewer employee.Employee, c attendance.CorrectionRequest) (*string, error) {
	active, err := s.repos.Attendance.GetActive(ctx, c.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active attendance: %w", err)
	}
	if active == nil {
		slog.Warn("No active attendance to close for missed check-out", "employee_id", c.EmployeeID, "request_id", c.ID)
		return nil, nil
	}

	note := "Closed from an approved missed check-out request"
	closed, ok, err := s.repos.Attendance.Complete(ctx, attendance.CompleteParams{
		ID:                 active.ID,
		CheckOutTime:       c.RequestedTime,
		WorkHours:          attendance.HoursBetween(active.CheckInTime, c.RequestedTime),
		Notes:              &note,
		ModifiedBy:         &reviewer.ID,
		ModificationReason: &c.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to close attendance: %w", err)
	}
	if !ok {
		slog.Warn("Attendance closed before the correction applied", "attendance_id", active.ID)
	}
	return &closed.ID, nil
}

// rejectConflicting records the automatic rejection outside the rolled back
// transaction so it survives.
func (s *ApprovalServiceImpl) rejectConflicting(ctx context.Context, reviewer employee.Employee, req approval.ResolveRequest) {
	note := conflictNote
	ok, err := s.repos.Corrections.Resolve(ctx, req.ID, attendance.RequestRejected, reviewer.ID, &note, s.calendar.Now())
	if err != nil {
		slog.Error("Failed to auto-reject conflicting attendance request", "id", req.ID, "error", err)
		return
	}
	if !ok {
		return
	}
	slog.Warn("Attendance request auto-rejected", "id", req.ID, "reviewer_id", reviewer.ID)

	c, err := s.repos.Corrections.GetByID(ctx, req.ID)
	if err != nil {
		slog.Warn("Failed to reload auto-rejected attendance request", "id", req.ID, "error", err)
		return
	}
	s.notifyRequester(ctx, reviewer, req, c.EmployeeID, string(attendance.RequestRejected))
}

// ========================================
// ABSENCE
// ========================================

func (s *ApprovalServiceImpl) resolveAbsence(ctx context.Context, reviewer employee.Employee, req approval.ResolveRequest) (decision, error) {
	a, err := s.repos.Absences.GetByID(ctx, req.ID)
	if err != nil {
		return decision{}, notFound(err, absence.ErrAbsenceNotFound)
	}
	if a.Status != absence.StatusPending {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}
	requester, err := s.authorize(ctx, reviewer, a.EmployeeID)
	if err != nil {
		return decision{}, err
	}

	status, applied, amount := absence.StatusRejected, false, a.DeductionAmount
	if approval.Action(req.Action) == approval.ActionApprove {
		status, applied = absence.StatusApproved, true
		if !amount.IsPositive() {
			amount = s.absenceDeduction(requester, a)
		}

		reason := fmt.Sprintf("Absence on %s", a.AbsenceDate)
		if req.Notes != nil && *req.Notes != "" {
			reason = *req.Notes
		}
		posted, err := s.repos.Ledger.Post(ctx, payroll.LedgerEntry{
			EmployeeID: a.EmployeeID,
			EntryType:  payroll.LedgerAbsence,
			SourceID:   a.ID,
			Amount:     amount.Neg(),
			EntryDate:  a.AbsenceDate,
			Reason:     &reason,
			AppliedBy:  &reviewer.ID,
		})
		if err != nil {
			return decision{}, fmt.Errorf("failed to post absence deduction: %w", err)
		}
		if !posted {
			slog.Warn("Absence deduction already posted", "absence_id", a.ID)
		}

		if err := s.repos.Summaries.MarkAbsent(ctx, a.EmployeeID, a.AbsenceDate, amount); err != nil {
			return decision{}, fmt.Errorf("failed to mark absence in summary: %w", err)
		}
	}

	ok, err := s.repos.Absences.Resolve(ctx, a.ID, status, applied, amount, reviewer.ID, req.Notes, s.calendar.Now())
	if err != nil {
		return decision{}, fmt.Errorf("failed to resolve absence: %w", err)
	}
	if !ok {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}

	return decision{
		requesterID: a.EmployeeID,
		status:      string(status),
		record: approval.RecordSummary{
			ID:               a.ID,
			EmployeeID:       a.EmployeeID,
			Status:           string(status),
			ReviewNotes:      req.Notes,
			Amount:           &amount,
			DeductionApplied: &applied,
		},
	}, nil
}

func (s *ApprovalServiceImpl) absenceDeduction(emp employee.Employee, a absence.Absence) decimal.Decimal {
	start, end := a.ShiftStartTime, a.ShiftEndTime
	if start == nil || end == nil {
		start, end = emp.ShiftStartTime, emp.ShiftEndTime
	}
	hours := calendar.ShiftHours(start, end, s.policy.DefaultShiftHours)
	rate := emp.RateOr(decimal.NewFromFloat(s.policy.DefaultHourlyRate))
	return payroll.AbsenceDeduction(hours, rate, s.policy.AbsencePenaltyDays)
}

// ========================================
// BREAK
// ========================================

func (s *ApprovalServiceImpl) resolveBreak(ctx context.Context, reviewer employee.Employee, req approval.ResolveRequest) (decision, error) {
	b, err := s.repos.Breaks.GetByID(ctx, req.ID)
	if err != nil {
		return decision{}, notFound(err, breaks.ErrBreakNotFound)
	}
	if !b.Status.IsAwaitingReview() {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}
	if _, err := s.authorize(ctx, reviewer, b.EmployeeID); err != nil {
		return decision{}, err
	}

	var (
		to     breaks.Status
		payout bool
	)
	switch approval.Action(req.Action) {
	case approval.ActionApprove:
		to, payout = breaks.StatusApproved, true
	case approval.ActionPostpone:
		to = breaks.StatusPostponed
	default:
		to = breaks.StatusRejected
	}

	now := s.calendar.Now()
	updated, ok, err := s.repos.Breaks.Transition(ctx, b.ID,
		[]breaks.Status{breaks.StatusPending, breaks.StatusPostponed}, to,
		breaks.TransitionUpdate{
			PayoutEligible: &payout,
			ReviewedBy:     &reviewer.ID,
			ReviewedAt:     &now,
			ReviewNotes:    req.Notes,
		})
	if err != nil {
		return decision{}, fmt.Errorf("failed to resolve break: %w", err)
	}
	if !ok {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}
	return decision{requesterID: b.EmployeeID, status: string(to), record: breaks.ToResponse(updated)}, nil
}

// ========================================
// SESSION VALIDATION
// ========================================

// resolveSessionValidation fills the reviewed gap with pulses every
// pulse.SynthesisInterval: inside the geofence on approval, outside on rejection.
// Approval also moves the session check-in back to the start of the gap.
func (s *ApprovalServiceImpl) resolveSessionValidation(ctx context.Context, reviewer employee.Employee, req approval.ResolveRequest) (decision, error) {
	v, err := s.repos.Validations.GetByID(ctx, req.ID)
	if err != nil {
		return decision{}, notFound(err, pulse.ErrSessionValidationNotFound)
	}
	if v.Status != pulse.ValidationPending {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}
	if _, err := s.authorize(ctx, reviewer, v.EmployeeID); err != nil {
		return decision{}, err
	}

	approve := approval.Action(req.Action) == approval.ActionApprove
	status := pulse.ValidationRejected
	if approve {
		status = pulse.ValidationApproved
	}

	zero := 0.0
	created := 0
	for _, at := range v.SyntheticTimes() {
		_, err := s.repos.Pulses.Create(ctx, pulse.Pulse{
			EmployeeID:          v.EmployeeID,
			AttendanceID:        v.AttendanceID,
			BranchID:            v.BranchID,
			Timestamp:           at,
			DistanceFromCenter:  &zero,
			InsideGeofence:      approve,
			Source:              pulse.SourceValidation,
			ValidationRequestID: &v.ID,
		})
		if err != nil {
			return decision{}, fmt.Errorf("failed to record validation pulse: %w", err)
		}
		created++
	}

	if approve && v.AttendanceID != nil {
		moved, ok, err := s.repos.Attendance.MoveCheckIn(ctx, *v.AttendanceID, v.GapStart)
		if err != nil {
			return decision{}, fmt.Errorf("failed to move check-in: %w", err)
		}
		if ok {
			slog.Info("Check-in moved to gap start", "attendance_id", moved.ID, "check_in_time", moved.CheckInTime)
		}
	}

	ok, err := s.repos.Validations.Resolve(ctx, v.ID, status, reviewer.ID, req.Notes, s.calendar.Now())
	if err != nil {
		return decision{}, fmt.Errorf("failed to resolve session validation request: %w", err)
	}
	if !ok {
		return decision{}, approval.ErrRequestAlreadyProcessed
	}

	slog.Info("Session gap reviewed", "request_id", v.ID, "status", status, "pulses_created", created)
	return decision{
		requesterID: v.EmployeeID,
		status:      string(status),
		record: approval.RecordSummary{
			ID:            v.ID,
			EmployeeID:    v.EmployeeID,
			Status:        string(status),
			ReviewNotes:   req.Notes,
			AttendanceID:  v.AttendanceID,
			PulsesCreated: &created,
		},
	}, nil
}

// ========================================
// NOTIFY
// ========================================

func (s *ApprovalServiceImpl) notifyRequester(ctx context.Context, reviewer employee.Employee, req approval.ResolveRequest, requesterID, status string) {
	if requesterID == "" {
		return
	}
	err := s.notificationService.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: requesterID,
		SenderID:    &reviewer.ID,
		Type:        notification.TypeRequestResolved,
		Title:       fmt.Sprintf("Your %s request was %s", req.Type, status),
		Message:     fmt.Sprintf("%s reviewed your %s request.", reviewer.FullName, req.Type),
		Data: map[string]interface{}{
			"request_type": req.Type,
			"request_id":   req.ID,
			"status":       status,
		},
	})
	if err != nil {
		slog.Warn("Failed to queue resolution notification", "request_id", req.ID, "recipient_id", requesterID, "error", err)
	}
}

func NewApprovalService(
	tx database.Transactor,
	repos Repositories,
	notificationService notification.Notifier,
	cal *calendar.Calendar,
	policy config.Policy,
) approval.ApprovalService {
	return &ApprovalServiceImpl{
		Transactor:          tx,
		repos:               repos,
		notificationService: notificationService,
		calendar:            cal,
		policy:              policy,
	}
}
