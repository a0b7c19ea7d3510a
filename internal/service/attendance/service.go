package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/geo"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	attendance.SummaryRepository
	attendance.CorrectionRepository
	employee.EmployeeRepository
	pulse.PulseRepository
	pulse.ViolationRepository
	locator  branch.Locator
	calendar *calendar.Calendar
	policy   config.Policy
}

// check is the outcome of validating one event against a site.
type check struct {
	wifi     bool
	location bool
	distance *float64
	observed string
}

func (c check) validation() attendance.Validation {
	v := attendance.Validation{Wifi: c.wifi, Location: c.location}
	if c.distance != nil {
		d := geo.RoundMeters(*c.distance)
		v.Distance = &d
	}
	return v
}

func (a *AttendanceServiceImpl) activeEmployee(ctx context.Context, id string) (employee.Employee, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.Employee{}, err
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.CheckInResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckInResponse{}, err
	}

	emp, err := a.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	eventTime, err := a.calendar.EventTime(req.Timestamp)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	site, err := a.locator.Resolve(ctx, emp)
	if err != nil {
		return attendance.CheckInResponse{}, err
	}

	// Check-in uses the strict radius. A branch without center or radius can only
	// pass on Wi-Fi.
	c := check{observed: geo.NormalizeAPID(deref(req.WifiBSSID))}
	c.wifi = site.WifiValid(c.observed, a.policy.FailOpenEmptyAllowList)
	if !site.Known() {
		c.wifi = a.policy.FailOpenMissingBranch
	}
	withinPulseRange := false
	if d, ok := site.DistanceFrom(req.Latitude, req.Longitude); ok {
		c.distance = &d
		if site.Radius != nil && *site.Radius > 0 {
			c.location = d <= *site.Radius
			withinPulseRange = d <= *site.Radius+site.Tolerance
		}
	}

	if !c.wifi && !c.location {
		slog.Info("Check-in rejected outside allowed area", "employee_id", emp.ID, "distance", c.distance, "bssid", c.observed)
		return attendance.CheckInResponse{}, &attendance.OutsideAreaError{
			Distance:      c.validation().Distance,
			AllowedRadius: site.Radius,
		}
	}

	date := a.calendar.DateOf(eventTime)
	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.CheckInResponse{}, fmt.Errorf("failed to check today's attendance: %w", err)
	}

	var (
		record      attendance.Attendance
		reactivated bool
		within      = c.location
		bssid       = optional(c.observed)
	)
	switch {
	case existing != nil && existing.IsActive():
		return attendance.CheckInResponse{}, attendance.ErrAlreadyActive
	case existing != nil:
		record, err = a.AttendanceRepository.Reactivate(ctx, attendance.ReactivateParams{
			ID:               existing.ID,
			CheckInTime:      eventTime,
			BranchID:         site.BranchID(),
			IsWithinGeofence: within,
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			WifiBSSID:        bssid,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyActive) {
				return attendance.CheckInResponse{}, err
			}
			return attendance.CheckInResponse{}, fmt.Errorf("failed to reactivate attendance: %w", err)
		}
		reactivated = true
	default:
		record, err = a.AttendanceRepository.Create(ctx, attendance.Attendance{
			EmployeeID:       emp.ID,
			BranchID:         site.BranchID(),
			CheckInTime:      eventTime,
			Date:             date,
			Status:           attendance.StatusActive,
			IsWithinGeofence: &within,
			CheckInLatitude:  req.Latitude,
			CheckInLongitude: req.Longitude,
			CheckInWifiBSSID: bssid,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyActive) {
				return attendance.CheckInResponse{}, err
			}
			return attendance.CheckInResponse{}, fmt.Errorf("failed to create attendance record: %w", err)
		}
	}

	if site.Known() && withinPulseRange {
		a.recordCheckInPulse(ctx, record, site, c, req.Latitude, req.Longitude, eventTime)
	}

	rate := emp.RateOr(decimal.NewFromFloat(a.policy.DefaultHourlyRate))
	if err := a.SummaryRepository.RecordCheckIn(ctx, emp.ID, date, a.calendar.ClockOf(eventTime), rate); err != nil {
		slog.Warn("Failed to upsert daily summary on check-in", "employee_id", emp.ID, "date", date, "error", err)
	}

	slog.Info("Employee checked in", "employee_id", emp.ID, "attendance_id", record.ID, "reactivated", reactivated)

	return attendance.CheckInResponse{
		Attendance:  attendance.ToResponse(record),
		Validation:  c.validation(),
		Reactivated: reactivated,
	}, nil
}

// recordCheckInPulse writes the session's first pulse, plus a violation row when the
// position is inside the tolerance band but outside the strict radius.
func (a *AttendanceServiceImpl) recordCheckInPulse(ctx context.Context, record attendance.Attendance, site branch.Site, c check, lat, lon *float64, at time.Time) {
	bssid := optional(c.observed)
	_, err := a.PulseRepository.Create(ctx, pulse.Pulse{
		EmployeeID:         record.EmployeeID,
		AttendanceID:       &record.ID,
		BranchID:           site.BranchID(),
		Timestamp:          at,
		Latitude:           lat,
		Longitude:          lon,
		DistanceFromCenter: c.distance,
		InsideGeofence:     c.location,
		WifiBSSID:          bssid,
		Source:             pulse.SourceCheckIn,
	})
	if err != nil {
		slog.Warn("Failed to insert check-in pulse", "attendance_id", record.ID, "error", err)
	}

	if c.location {
		return
	}
	_, err = a.ViolationRepository.Create(ctx, pulse.Violation{
		EmployeeID:         record.EmployeeID,
		AttendanceID:       &record.ID,
		BranchID:           site.BranchID(),
		OccurredAt:         at,
		Latitude:           lat,
		Longitude:          lon,
		DistanceFromCenter: c.distance,
		RadiusMeters:       site.Radius,
		WifiBSSID:          bssid,
	})
	if err != nil {
		slog.Warn("Failed to log geofence violation", "attendance_id", record.ID, "error", err)
	}
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.CheckOutResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckOutResponse{}, err
	}

	emp, err := a.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	eventTime, err := a.calendar.EventTime(req.Timestamp)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	site, err := a.locator.Resolve(ctx, emp)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	// Check-out validation never blocks. Unknown distance counts as valid.
	c := check{observed: geo.NormalizeAPID(deref(req.WifiBSSID))}
	c.wifi = site.WifiValid(c.observed, a.policy.FailOpenEmptyAllowList)
	radius := site.RadiusOr(a.policy.DefaultRadiusMeters)
	c.location = a.policy.FailOpenUnknownDistance
	if d, ok := site.DistanceFrom(req.Latitude, req.Longitude); ok {
		c.distance = &d
		c.location = d <= radius
	}
	if !c.wifi && !c.location {
		slog.Warn("Check-out validation failed, proceeding", "employee_id", emp.ID, "distance", c.distance, "bssid", c.observed)
	}

	active, done, err := a.findOpenSession(ctx, emp.ID, req.AttendanceID, eventTime)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}
	if done != nil {
		return attendance.CheckOutResponse{
			Attendance:        attendance.ToResponse(*done),
			Validation:        c.validation(),
			AlreadyCheckedOut: true,
		}, nil
	}

	hours := attendance.HoursBetween(active.CheckInTime, eventTime)
	record, ok, err := a.AttendanceRepository.Complete(ctx, attendance.CompleteParams{
		ID:           active.ID,
		CheckOutTime: eventTime,
		WorkHours:    hours,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		WifiBSSID:    optional(c.observed),
	})
	if err != nil {
		return attendance.CheckOutResponse{}, fmt.Errorf("failed to complete attendance: %w", err)
	}
	if !ok {
		// Closed concurrently, usually by an auto-checkout.
		return attendance.CheckOutResponse{
			Attendance:        attendance.ToResponse(record),
			Validation:        c.validation(),
			AlreadyCheckedOut: true,
		}, nil
	}

	if site.Known() {
		distance := c.distance
		if distance == nil {
			fallback := 0.0
			if !c.location {
				fallback = radius
			}
			distance = &fallback
		}
		_, err := a.PulseRepository.Create(ctx, pulse.Pulse{
			EmployeeID:         emp.ID,
			AttendanceID:       &record.ID,
			BranchID:           site.BranchID(),
			Timestamp:          eventTime,
			Latitude:           req.Latitude,
			Longitude:          req.Longitude,
			DistanceFromCenter: distance,
			InsideGeofence:     c.location,
			WifiBSSID:          optional(c.observed),
			Source:             pulse.SourceCheckOut,
		})
		if err != nil {
			slog.Warn("Failed to insert check-out pulse", "attendance_id", record.ID, "error", err)
		}
	}

	a.recordCheckOutSummary(ctx, emp, record, eventTime)

	slog.Info("Employee checked out", "employee_id", emp.ID, "attendance_id", record.ID, "work_hours", hours)

	return attendance.CheckOutResponse{
		Attendance: attendance.ToResponse(record),
		Validation: c.validation(),
	}, nil
}

// findOpenSession returns the active record to close, or the completed record when the
// check-out is a harmless repeat.
func (a *AttendanceServiceImpl) findOpenSession(ctx context.Context, employeeID string, attendanceID *string, at time.Time) (*attendance.Attendance, *attendance.Attendance, error) {
	if attendanceID != nil {
		rec, err := a.AttendanceRepository.GetByID(ctx, *attendanceID)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return nil, nil, err
			}
			return nil, nil, fmt.Errorf("failed to get attendance: %w", err)
		}
		if rec.EmployeeID != employeeID {
			return nil, nil, attendance.ErrNotOwner
		}
		if !rec.IsActive() {
			return nil, &rec, nil
		}
		return &rec, nil, nil
	}

	active, err := a.AttendanceRepository.GetActive(ctx, employeeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active attendance: %w", err)
	}
	if active != nil {
		return active, nil, nil
	}

	today, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, a.calendar.DateOf(at))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check today's attendance: %w", err)
	}
	if today != nil && !today.IsActive() {
		return nil, today, nil
	}
	return nil, nil, attendance.ErrNoActiveCheckIn
}

func (a *AttendanceServiceImpl) recordCheckOutSummary(ctx context.Context, emp employee.Employee, record attendance.Attendance, at time.Time) {
	total, err := a.AttendanceRepository.SumWorkHours(ctx, emp.ID, record.Date)
	if err != nil {
		slog.Warn("Failed to sum work hours for summary", "employee_id", emp.ID, "date", record.Date, "error", err)
		return
	}
	rate := emp.RateOr(decimal.NewFromFloat(a.policy.DefaultHourlyRate))
	salary := decimal.NewFromFloat(total).Mul(rate).Round(2)
	if err := a.SummaryRepository.RecordCheckOut(ctx, emp.ID, record.Date, a.calendar.ClockOf(at), total, salary); err != nil {
		slog.Warn("Failed to upsert daily summary on check-out", "employee_id", emp.ID, "date", record.Date, "error", err)
	}
}

// GetByID implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetByID(ctx context.Context, employeeID, id string) (attendance.Attendance, error) {
	rec, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.Attendance{}, err
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	if rec.EmployeeID != employeeID {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return rec, nil
}

// ListMine implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListMine(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.AttendanceRepository.ListByEmployee(ctx, filter.EmployeeID, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	out := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, attendance.ToResponse(r))
	}

	return attendance.ListAttendanceResponse{
		Attendances: out,
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// SubmitCorrection implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) SubmitCorrection(ctx context.Context, req attendance.CorrectionSubmitRequest) (attendance.CorrectionRequest, error) {
	if err := req.Validate(); err != nil {
		return attendance.CorrectionRequest{}, err
	}
	if _, err := a.activeEmployee(ctx, req.EmployeeID); err != nil {
		return attendance.CorrectionRequest{}, err
	}

	requested, err := a.calendar.ParseEventTime(req.RequestedTime)
	if err != nil {
		return attendance.CorrectionRequest{}, err
	}

	created, err := a.CorrectionRepository.Create(ctx, attendance.CorrectionRequest{
		EmployeeID:    req.EmployeeID,
		RequestType:   attendance.CorrectionType(req.RequestType),
		RequestedTime: requested,
		Reason:        req.Reason,
		Status:        attendance.RequestPending,
	})
	if err != nil {
		return attendance.CorrectionRequest{}, fmt.Errorf("failed to create attendance request: %w", err)
	}
	return created, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	summaryRepo attendance.SummaryRepository,
	correctionRepo attendance.CorrectionRepository,
	employeeRepo employee.EmployeeRepository,
	pulseRepo pulse.PulseRepository,
	violationRepo pulse.ViolationRepository,
	locator branch.Locator,
	cal *calendar.Calendar,
	policy config.Policy,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		SummaryRepository:    summaryRepo,
		CorrectionRepository: correctionRepo,
		EmployeeRepository:   employeeRepo,
		PulseRepository:      pulseRepo,
		ViolationRepository:  violationRepo,
		locator:              locator,
		calendar:             cal,
		policy:               policy,
	}
}
