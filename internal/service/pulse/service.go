package pulse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/geo"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// Error codes reported per pulse in an ingest result.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeEmployee       = "EMPLOYEE_NOT_FOUND"
	CodeInactive       = "EMPLOYEE_INACTIVE"
	CodeTimestamp      = "INVALID_TIMESTAMP"
	CodeBranchLookup   = "BRANCH_LOOKUP_FAILED"
	CodeLookup         = "LOOKUP_FAILED"
	CodeInsert         = "INSERT_FAILED"
	autoCheckoutReason = "Checked out automatically after repeated geofence violations"
)

type PulseServiceImpl struct {
	pulse.PulseRepository
	pulse.ViolationRepository
	attendance.AttendanceRepository
	employee.EmployeeRepository
	breaks.BreakRepository
	validations         pulse.SessionValidationRepository
	locator             branch.Locator
	notificationService notification.Notifier
	calendar            *calendar.Calendar
	policy              config.Policy
}

// batch caches lookups for the pulses of a single Ingest call.
type batch struct {
	employees map[string]employee.Employee
	missing   map[string]error
	sites     map[string]branch.Site
	onBreak   map[string]bool
}

func newBatch() *batch {
	return &batch{
		employees: make(map[string]employee.Employee),
		missing:   make(map[string]error),
		sites:     make(map[string]branch.Site),
		onBreak:   make(map[string]bool),
	}
}

// ingestError is a per-pulse failure with its result code.
type ingestError struct {
	code string
	err  error
}

func (e *ingestError) Error() string { return e.err.Error() }

func fail(code string, err error) *ingestError {
	return &ingestError{code: code, err: err}
}

// Ingest implements pulse.PulseService. Pulses are processed in order so a batch can
// trigger an auto-checkout part way through.
func (s *PulseServiceImpl) Ingest(ctx context.Context, pulses []pulse.PulseInput) (pulse.IngestResult, error) {
	if len(pulses) == 0 {
		return pulse.IngestResult{}, pulse.ErrEmptyBatch
	}
	if len(pulses) > pulse.MaxBatchSize {
		return pulse.IngestResult{}, pulse.ErrBatchTooLarge
	}

	b := newBatch()
	result := pulse.IngestResult{
		Errors:        []pulse.IngestError{},
		AutoCheckouts: []string{},
	}

	for i := range pulses {
		in := pulses[i]
		closed, ierr := s.ingestOne(ctx, b, in)
		if ierr != nil {
			result.Failed++
			result.Errors = append(result.Errors, pulse.IngestError{
				Index:      i,
				EmployeeID: in.EmployeeID,
				Code:       ierr.code,
				Message:    ierr.Error(),
			})
			continue
		}
		result.Inserted++
		if closed != "" {
			result.AutoCheckouts = append(result.AutoCheckouts, closed)
		}
	}

	result.Success = result.Failed == 0
	slog.Info("Pulses ingested", "inserted", result.Inserted, "failed", result.Failed, "auto_checkouts", len(result.AutoCheckouts))
	return result, nil
}

func (s *PulseServiceImpl) ingestOne(ctx context.Context, b *batch, in pulse.PulseInput) (string, *ingestError) {
	if err := in.Validate(); err != nil {
		return "", fail(CodeValidation, err)
	}

	emp, ierr := s.employee(ctx, b, in.EmployeeID)
	if ierr != nil {
		return "", ierr
	}

	at, err := s.calendar.EventTime(in.Timestamp)
	if err != nil {
		return "", fail(CodeTimestamp, fmt.Errorf("%w: %v", pulse.ErrInvalidTimestamp, err))
	}

	session, err := s.session(ctx, emp.ID, in.AttendanceID)
	if err != nil {
		return "", fail(CodeLookup, err)
	}

	site, err := s.site(ctx, b, emp, in.BranchID, session)
	if err != nil {
		return "", fail(CodeBranchLookup, err)
	}

	onBreak, err := s.isOnBreak(ctx, b, emp.ID)
	if err != nil {
		return "", fail(CodeLookup, err)
	}

	observed := geo.NormalizeAPID(deref(in.WifiBSSID))
	inside, distance := s.classify(site, observed, in, onBreak)

	p := pulse.Pulse{
		EmployeeID:         emp.ID,
		BranchID:           site.BranchID(),
		Timestamp:          at,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		DistanceFromCenter: &distance,
		InsideGeofence:     inside,
		Source:             pulse.SourceDevice,
		OnBreak:            onBreak,
	}
	if observed != "" {
		p.WifiBSSID = &observed
	}
	if session != nil {
		p.AttendanceID = &session.ID
		if p.BranchID == nil {
			p.BranchID = session.BranchID
		}
	}

	if _, err := s.PulseRepository.Create(ctx, p); err != nil {
		return "", fail(CodeInsert, err)
	}

	if inside || session == nil {
		return "", nil
	}
	closed, err := s.maybeAutoCheckout(ctx, emp.ID, session.ID)
	if err != nil {
		// The pulse is stored; the next violation retries the rule.
		slog.Error("Auto-checkout evaluation failed", "attendance_id", session.ID, "error", err)
		return "", nil
	}
	return closed, nil
}

func (s *PulseServiceImpl) employee(ctx context.Context, b *batch, id string) (employee.Employee, *ingestError) {
	if emp, ok := b.employees[id]; ok {
		return emp, nil
	}
	if err, ok := b.missing[id]; ok {
		return employee.Employee{}, fail(codeFor(err), err)
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, id)
	switch {
	case err != nil && errors.Is(err, employee.ErrEmployeeNotFound):
		b.missing[id] = err
		return employee.Employee{}, fail(CodeEmployee, err)
	case err != nil:
		return employee.Employee{}, fail(CodeLookup, err)
	case !emp.IsActive:
		b.missing[id] = employee.ErrEmployeeInactive
		return employee.Employee{}, fail(CodeInactive, employee.ErrEmployeeInactive)
	}
	b.employees[id] = emp
	return emp, nil
}

func codeFor(err error) string {
	if errors.Is(err, employee.ErrEmployeeInactive) {
		return CodeInactive
	}
	return CodeEmployee
}

// session returns the attendance record the pulse belongs to. A reference that looks
// like a client placeholder, is not a UUID, or points at another employee's record is
// ignored in favour of the employee's active session.
func (s *PulseServiceImpl) session(ctx context.Context, employeeID string, ref *string) (*attendance.Attendance, error) {
	if ref != nil && !validator.IsPlaceholderID(*ref) && validator.IsValidUUID(*ref) {
		rec, err := s.AttendanceRepository.GetByID(ctx, *ref)
		switch {
		case err == nil && rec.EmployeeID == employeeID:
			return &rec, nil
		case err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound):
			return nil, fmt.Errorf("failed to get attendance: %w", err)
		}
		slog.Debug("Ignoring pulse attendance reference", "employee_id", employeeID, "attendance_id", *ref)
	}

	active, err := s.AttendanceRepository.GetActive(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active attendance: %w", err)
	}
	return active, nil
}

// site resolves the branch from server-side records first: employee assignment, the
// session branch, then the branch of the most recent attendance. A client branch_id
// is consulted only when none of those is known, and only if it names a real branch,
// so it can never switch validation into fail-open mode.
func (s *PulseServiceImpl) site(ctx context.Context, b *batch, emp employee.Employee, clientBranchID *string, session *attendance.Attendance) (branch.Site, error) {
	key := "employee:" + emp.ID
	site, ok := b.sites[key]
	if !ok {
		var err error
		site, err = s.locator.Resolve(ctx, emp)
		if err != nil {
			return branch.Site{}, err
		}
		b.sites[key] = site
	}
	if site.Known() {
		return site, nil
	}

	if session != nil && session.BranchID != nil {
		return s.siteByID(ctx, b, *session.BranchID)
	}
	latest, err := s.AttendanceRepository.GetLatest(ctx, emp.ID)
	if err != nil {
		return branch.Site{}, fmt.Errorf("failed to get latest attendance: %w", err)
	}
	if latest != nil && latest.BranchID != nil {
		return s.siteByID(ctx, b, *latest.BranchID)
	}

	if clientBranchID != nil && validator.IsValidUUID(*clientBranchID) {
		claimed, err := s.siteByID(ctx, b, *clientBranchID)
		if err == nil && claimed.Known() {
			return claimed, nil
		}
		slog.Warn("Ignoring unknown client branch", "employee_id", emp.ID, "branch_id", *clientBranchID)
	}
	return site, nil
}

func (s *PulseServiceImpl) siteByID(ctx context.Context, b *batch, id string) (branch.Site, error) {
	if site, ok := b.sites[id]; ok {
		return site, nil
	}
	site, err := s.locator.ResolveByID(ctx, id)
	if err != nil {
		return branch.Site{}, err
	}
	b.sites[id] = site
	return site, nil
}

func (s *PulseServiceImpl) isOnBreak(ctx context.Context, b *batch, employeeID string) (bool, error) {
	if v, ok := b.onBreak[employeeID]; ok {
		return v, nil
	}
	v, err := s.BreakRepository.HasActive(ctx, employeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check active break: %w", err)
	}
	b.onBreak[employeeID] = v
	return v, nil
}

// classify decides inside/outside and the distance to store. Beyond radius plus
// tolerance a non-break pulse is always outside.
func (s *PulseServiceImpl) classify(site branch.Site, observed string, in pulse.PulseInput, onBreak bool) (bool, float64) {
	radius := site.RadiusOr(s.policy.DefaultRadiusMeters)
	wifi := site.WifiValid(observed, s.policy.FailOpenEmptyAllowList)
	if !site.Known() {
		wifi = s.policy.FailOpenMissingBranch
	}

	d, known := site.DistanceFrom(in.Latitude, in.Longitude)
	var inside bool
	switch {
	case onBreak:
		inside = true
	case known && d > radius+site.Tolerance:
		inside = false
	case known:
		inside = wifi || d <= radius
	default:
		inside = wifi || s.policy.FailOpenUnknownDistance
	}

	switch {
	case known:
		return inside, d
	case in.DistanceFromCenter != nil:
		return inside, *in.DistanceFromCenter
	case inside:
		return inside, 0
	default:
		return inside, radius
	}
}

// maybeAutoCheckout closes the session when its latest pulses are all violations.
// The guarded update makes repeated or concurrent triggers a no-op.
func (s *PulseServiceImpl) maybeAutoCheckout(ctx context.Context, employeeID, attendanceID string) (string, error) {
	n := s.policy.AutoCheckoutViolations
	latest, err := s.PulseRepository.LatestForAttendance(ctx, attendanceID, n)
	if err != nil {
		return "", fmt.Errorf("failed to get latest pulses: %w", err)
	}
	if len(latest) < n {
		return "", nil
	}
	for _, p := range latest {
		if p.InsideGeofence {
			return "", nil
		}
	}

	closed, ok, err := s.AttendanceRepository.AutoCheckout(ctx, attendanceID, s.calendar.Now(), autoCheckoutReason)
	if err != nil {
		return "", fmt.Errorf("failed to auto checkout: %w", err)
	}
	if !ok {
		return "", nil
	}

	slog.Warn("Attendance closed after repeated geofence violations", "employee_id", employeeID, "attendance_id", attendanceID, "violations", n)

	err = s.notificationService.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: employeeID,
		Type:        notification.TypeAutoCheckout,
		Title:       "Checked out automatically",
		Message:     "You were checked out after leaving the work area repeatedly.",
		Data: map[string]interface{}{
			"attendance_id": closed.ID,
			"work_hours":    closed.WorkHours,
		},
	})
	if err != nil {
		slog.Warn("Failed to queue auto-checkout notification", "employee_id", employeeID, "error", err)
	}
	return closed.ID, nil
}

// LogViolation implements pulse.PulseService.
func (s *PulseServiceImpl) LogViolation(ctx context.Context, report pulse.ViolationReport) (pulse.Violation, error) {
	if err := report.Validate(); err != nil {
		return pulse.Violation{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, report.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return pulse.Violation{}, err
		}
		return pulse.Violation{}, fmt.Errorf("failed to get employee: %w", err)
	}

	at, err := s.calendar.EventTime(report.Timestamp)
	if err != nil {
		return pulse.Violation{}, fmt.Errorf("%w: %v", pulse.ErrInvalidTimestamp, err)
	}

	session, err := s.session(ctx, emp.ID, report.AttendanceID)
	if err != nil {
		return pulse.Violation{}, err
	}
	site, err := s.site(ctx, newBatch(), emp, report.BranchID, session)
	if err != nil {
		return pulse.Violation{}, err
	}

	v := pulse.Violation{
		EmployeeID:         emp.ID,
		BranchID:           site.BranchID(),
		OccurredAt:         at,
		Latitude:           report.Latitude,
		Longitude:          report.Longitude,
		DistanceFromCenter: report.DistanceFromCenter,
		RadiusMeters:       site.Radius,
	}
	if d, ok := site.DistanceFrom(report.Latitude, report.Longitude); ok {
		v.DistanceFromCenter = &d
	}
	if observed := geo.NormalizeAPID(deref(report.WifiBSSID)); observed != "" {
		v.WifiBSSID = &observed
	}
	if session != nil {
		v.AttendanceID = &session.ID
	}

	created, err := s.ViolationRepository.Create(ctx, v)
	if err != nil {
		return pulse.Violation{}, fmt.Errorf("failed to log violation: %w", err)
	}
	return created, nil
}

// RequestSessionValidation implements pulse.PulseService. The gap is tied to the
// referenced or active session; without one there is nothing to validate.
func (s *PulseServiceImpl) RequestSessionValidation(ctx context.Context, req pulse.SessionValidationSubmitRequest) (pulse.SessionValidation, error) {
	if err := req.Validate(); err != nil {
		return pulse.SessionValidation{}, err
	}
	start, _ := validator.IsValidDateTime(req.GapStart)
	end, _ := validator.IsValidDateTime(req.GapEnd)
	if end.After(s.calendar.Now()) {
		return pulse.SessionValidation{}, pulse.ErrInvalidGap
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return pulse.SessionValidation{}, err
		}
		return pulse.SessionValidation{}, fmt.Errorf("failed to get employee: %w", err)
	}

	session, err := s.session(ctx, emp.ID, req.AttendanceID)
	if err != nil {
		return pulse.SessionValidation{}, err
	}
	if session == nil {
		return pulse.SessionValidation{}, pulse.ErrNoActiveSession
	}

	branchID := session.BranchID
	if branchID == nil {
		branchID = emp.BranchID
	}

	created, err := s.validations.Create(ctx, pulse.SessionValidation{
		EmployeeID:   emp.ID,
		AttendanceID: &session.ID,
		BranchID:     branchID,
		GapStart:     start,
		GapEnd:       end,
		Reason:       req.Reason,
		Status:       pulse.ValidationPending,
	})
	if err != nil {
		return pulse.SessionValidation{}, fmt.Errorf("failed to create session validation request: %w", err)
	}
	slog.Info("Session validation requested", "employee_id", emp.ID, "attendance_id", session.ID, "gap_start", start, "gap_end", end)
	return created, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func NewPulseService(
	pulseRepo pulse.PulseRepository,
	violationRepo pulse.ViolationRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	breakRepo breaks.BreakRepository,
	validationRepo pulse.SessionValidationRepository,
	locator branch.Locator,
	notificationService notification.Notifier,
	cal *calendar.Calendar,
	policy config.Policy,
) pulse.PulseService {
	return &PulseServiceImpl{
		PulseRepository:      pulseRepo,
		ViolationRepository:  violationRepo,
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		BreakRepository:      breakRepo,
		validations:          validationRepo,
		locator:              locator,
		notificationService:  notificationService,
		calendar:             cal,
		policy:               policy,
	}
}
