package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

type attendanceRepo struct{ s *Store }

func (s *Store) Attendance() attendance.AttendanceRepository { return attendanceRepo{s} }

// activeFor returns the employee's active record other than exceptID.
func (s *Store) activeFor(employeeID, exceptID string) (attendance.Attendance, bool) {
	for _, a := range s.attendance {
		if a.EmployeeID == employeeID && a.Status == attendance.StatusActive && a.ID != exceptID {
			return a, true
		}
	}
	return attendance.Attendance{}, false
}

func (s *Store) latestWhere(match func(attendance.Attendance) bool) *attendance.Attendance {
	var best *attendance.Attendance
	for _, a := range s.attendance {
		if !match(a) {
			continue
		}
		if best == nil || a.CheckInTime.After(best.CheckInTime) {
			a := a
			best = &a
		}
	}
	return best
}

func (r attendanceRepo) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.Status == attendance.StatusActive {
		if _, exists := r.s.activeFor(a.EmployeeID, ""); exists {
			return attendance.Attendance{}, attendance.ErrAlreadyActive
		}
	}
	if a.ID == "" {
		a.ID = newID()
	}
	now := r.s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.attendance[a.ID] = a
	return a, nil
}

func (r attendanceRepo) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendance[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r attendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.latestWhere(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && a.Date == date
	}), nil
}

func (r attendanceRepo) GetActive(ctx context.Context, employeeID string) (*attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.latestWhere(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID && a.Status == attendance.StatusActive
	}), nil
}

func (r attendanceRepo) GetLatest(ctx context.Context, employeeID string) (*attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.latestWhere(func(a attendance.Attendance) bool {
		return a.EmployeeID == employeeID
	}), nil
}

func (r attendanceRepo) Reactivate(ctx context.Context, p attendance.ReactivateParams) (attendance.Attendance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendance[p.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	if a.Status != attendance.StatusCompleted {
		return attendance.Attendance{}, attendance.ErrAlreadyActive
	}
	if _, exists := r.s.activeFor(a.EmployeeID, a.ID); exists {
		return attendance.Attendance{}, attendance.ErrAlreadyActive
	}
	within := p.IsWithinGeofence
	a.Status = attendance.StatusActive
	a.CheckInTime = p.CheckInTime
	a.CheckOutTime = nil
	a.WorkHours = nil
	a.IsWithinGeofence = &within
	a.CheckInLatitude, a.CheckInLongitude = p.Latitude, p.Longitude
	a.CheckOutLatitude, a.CheckOutLongitude = nil, nil
	a.CheckInWifiBSSID, a.CheckOutWifiBSSID = p.WifiBSSID, nil
	if p.BranchID != nil {
		a.BranchID = p.BranchID
	}
	a.UpdatedAt = r.s.now()
	r.s.attendance[a.ID] = a
	return a, nil
}

func (r attendanceRepo) Complete(ctx context.Context, p attendance.CompleteParams) (attendance.Attendance, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendance[p.ID]
	if !ok {
		return attendance.Attendance{}, false, attendance.ErrAttendanceNotFound
	}
	if a.Status != attendance.StatusActive {
		return a, false, nil
	}
	out := p.CheckOutTime
	hours := p.WorkHours
	a.Status = attendance.StatusCompleted
	a.CheckOutTime = &out
	a.WorkHours = &hours
	a.CheckOutLatitude, a.CheckOutLongitude = p.Latitude, p.Longitude
	a.CheckOutWifiBSSID = p.WifiBSSID
	if p.Notes != nil {
		a.Notes = p.Notes
	}
	if p.ModifiedBy != nil {
		a.ModifiedBy = p.ModifiedBy
		a.ModificationReason = p.ModificationReason
	}
	a.UpdatedAt = r.s.now()
	r.s.attendance[a.ID] = a
	return a, true, nil
}

func (r attendanceRepo) AutoCheckout(ctx context.Context, id string, checkOut time.Time, reason string) (attendance.Attendance, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendance[id]
	if !ok {
		return attendance.Attendance{}, false, attendance.ErrAttendanceNotFound
	}
	if a.CheckOutTime != nil || a.Status != attendance.StatusActive {
		return a, false, nil
	}
	hours := attendance.HoursBetween(a.CheckInTime, checkOut)
	a.Status = attendance.StatusCompleted
	a.CheckOutTime = &checkOut
	a.WorkHours = &hours
	a.Notes = &reason
	a.UpdatedAt = r.s.now()
	r.s.attendance[a.ID] = a
	return a, true, nil
}

func (r attendanceRepo) MoveCheckIn(ctx context.Context, id string, at time.Time) (attendance.Attendance, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attendance[id]
	if !ok {
		return attendance.Attendance{}, false, attendance.ErrAttendanceNotFound
	}
	if !at.Before(a.CheckInTime) {
		return a, false, nil
	}
	a.CheckInTime = at
	if a.CheckOutTime != nil {
		hours := attendance.HoursBetween(at, *a.CheckOutTime)
		a.WorkHours = &hours
	}
	a.UpdatedAt = r.s.now()
	r.s.attendance[a.ID] = a
	return a, true, nil
}

func (r attendanceRepo) ExistsBetween(ctx context.Context, employeeID string, from, to time.Time, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.attendance {
		if a.EmployeeID != employeeID || a.ID == excludeID {
			continue
		}
		if a.CheckInTime.After(from) && a.CheckInTime.Before(to) {
			return true, nil
		}
	}
	return false, nil
}

func (r attendanceRepo) SumWorkHours(ctx context.Context, employeeID string, date string) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, a := range r.s.attendance {
		if a.EmployeeID == employeeID && a.Date == date && a.WorkHours != nil {
			total = total.Add(decimal.NewFromFloat(*a.WorkHours))
		}
	}
	return total.Round(2).InexactFloat64(), nil
}

func (r attendanceRepo) ListByEmployee(ctx context.Context, employeeID string, f attendance.MyAttendanceFilter) ([]attendance.Attendance, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []attendance.Attendance
	for _, a := range r.s.attendance {
		if a.EmployeeID != employeeID {
			continue
		}
		if f.StartDate != nil && a.Date < *f.StartDate {
			continue
		}
		if f.EndDate != nil && a.Date > *f.EndDate {
			continue
		}
		if f.Status != nil && string(a.Status) != *f.Status {
			continue
		}
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CheckInTime.After(all[j].CheckInTime) })
	return paginate(all, f.Page, f.Limit), int64(len(all)), nil
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ========================================
// DAILY SUMMARY
// ========================================

type summaryRepo struct{ s *Store }

func (s *Store) Summaries() attendance.SummaryRepository { return summaryRepo{s} }

func (r summaryRepo) upsert(employeeID, date string, fn func(*attendance.DailySummary)) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := dayKey{employeeID, date}
	row, ok := r.s.summaries[k]
	if !ok {
		row = attendance.DailySummary{EmployeeID: employeeID, AttendanceDate: date}
	}
	fn(&row)
	r.s.summaries[k] = row
}

func (r summaryRepo) RecordCheckIn(ctx context.Context, employeeID, date, clock string, rate decimal.Decimal) error {
	r.upsert(employeeID, date, func(row *attendance.DailySummary) {
		if row.CheckInTime == nil {
			row.CheckInTime = &clock
		}
		row.HourlyRate = rate
		row.IsAbsent = false
	})
	return nil
}

func (r summaryRepo) RecordCheckOut(ctx context.Context, employeeID, date, clock string, hours float64, salary decimal.Decimal) error {
	r.upsert(employeeID, date, func(row *attendance.DailySummary) {
		row.CheckOutTime = &clock
		row.TotalHours = hours
		row.DailySalary = salary
	})
	return nil
}

func (r summaryRepo) MarkAbsent(ctx context.Context, employeeID, date string, deduction decimal.Decimal) error {
	r.upsert(employeeID, date, func(row *attendance.DailySummary) {
		row.IsAbsent = true
		row.DeductionAmount = deduction
	})
	return nil
}

func (r summaryRepo) MarkOnLeave(ctx context.Context, employeeID, date string) error {
	r.upsert(employeeID, date, func(row *attendance.DailySummary) {
		row.IsOnLeave = true
	})
	return nil
}

func (r summaryRepo) Get(ctx context.Context, employeeID, date string) (*attendance.DailySummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.summaries[dayKey{employeeID, date}]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// ========================================
// CORRECTION REQUESTS
// ========================================

type correctionRepo struct{ s *Store }

func (s *Store) Corrections() attendance.CorrectionRepository { return correctionRepo{s} }

func (r correctionRepo) Create(ctx context.Context, req attendance.CorrectionRequest) (attendance.CorrectionRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if req.ID == "" {
		req.ID = newID()
	}
	if req.Status == "" {
		req.Status = attendance.RequestPending
	}
	req.CreatedAt = r.s.now()
	r.s.corrections[req.ID] = req
	return req, nil
}

func (r correctionRepo) GetByID(ctx context.Context, id string) (attendance.CorrectionRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.corrections[id]
	if !ok {
		return attendance.CorrectionRequest{}, attendance.ErrCorrectionNotFound
	}
	return req, nil
}

func (r correctionRepo) Resolve(ctx context.Context, id string, status attendance.RequestStatus, reviewerID string, notes *string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.corrections[id]
	if !ok {
		return false, attendance.ErrCorrectionNotFound
	}
	if req.Status != attendance.RequestPending {
		return false, nil
	}
	req.Status = status
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &at
	req.ReviewNotes = notes
	r.s.corrections[id] = req
	return true, nil
}
