package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const attendanceColumns = `
	id, employee_id, branch_id, check_in_time, check_out_time, date::text, status,
	work_hours, is_within_geofence,
	check_in_latitude, check_in_longitude, check_out_latitude, check_out_longitude,
	check_in_wifi_bssid, check_out_wifi_bssid,
	notes, modified_by, modification_reason, created_at, updated_at`

const activeAttendanceIndex = "attendance_one_active_per_employee"

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.BranchID, &att.CheckInTime, &att.CheckOutTime, &att.Date, &att.Status,
		&att.WorkHours, &att.IsWithinGeofence,
		&att.CheckInLatitude, &att.CheckInLongitude, &att.CheckOutLatitude, &att.CheckOutLongitude,
		&att.CheckInWifiBSSID, &att.CheckOutWifiBSSID,
		&att.Notes, &att.ModifiedBy, &att.ModificationReason, &att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance (
			employee_id, branch_id, check_in_time, check_out_time, date, status,
			work_hours, is_within_geofence,
			check_in_latitude, check_in_longitude, check_out_latitude, check_out_longitude,
			check_in_wifi_bssid, check_out_wifi_bssid, notes, modified_by, modification_reason
		) VALUES (
			$1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		) RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.BranchID,
		newAttendance.CheckInTime,
		newAttendance.CheckOutTime,
		newAttendance.Date,
		newAttendance.Status,
		newAttendance.WorkHours,
		newAttendance.IsWithinGeofence,
		newAttendance.CheckInLatitude,
		newAttendance.CheckInLongitude,
		newAttendance.CheckOutLatitude,
		newAttendance.CheckOutLongitude,
		newAttendance.CheckInWifiBSSID,
		newAttendance.CheckOutWifiBSSID,
		newAttendance.Notes,
		newAttendance.ModifiedBy,
		newAttendance.ModificationReason,
	))
	if err != nil {
		if isUniqueViolation(err, activeAttendanceIndex) {
			return attendance.Attendance{}, attendance.ErrAlreadyActive
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return created, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance WHERE id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id %s: %w", id, err)
	}
	return att, nil
}

func (a *attendanceRepository) latest(ctx context.Context, where string, args ...interface{}) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance
		WHERE ` + where + `
		ORDER BY check_in_time DESC
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &att, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date string) (*attendance.Attendance, error) {
	att, err := a.latest(ctx, "employee_id = $1 AND date = $2::date", employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}
	return att, nil
}

// GetActive implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetActive(ctx context.Context, employeeID string) (*attendance.Attendance, error) {
	att, err := a.latest(ctx, "employee_id = $1 AND status = $2", employeeID, attendance.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to get active attendance: %w", err)
	}
	return att, nil
}

// GetLatest implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetLatest(ctx context.Context, employeeID string) (*attendance.Attendance, error) {
	att, err := a.latest(ctx, "employee_id = $1", employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest attendance: %w", err)
	}
	return att, nil
}

// Reactivate implements attendance.AttendanceRepository.
func (a *attendanceRepository) Reactivate(ctx context.Context, params attendance.ReactivateParams) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance AS t
		SET status = $2,
			check_in_time = $3,
			check_out_time = NULL,
			work_hours = NULL,
			is_within_geofence = $4,
			check_in_latitude = $5,
			check_in_longitude = $6,
			check_out_latitude = NULL,
			check_out_longitude = NULL,
			check_in_wifi_bssid = $7,
			check_out_wifi_bssid = NULL,
			branch_id = COALESCE($8, t.branch_id),
			updated_at = NOW()
		WHERE t.id = $1
		  AND t.status = $9
		  AND NOT EXISTS (
			SELECT 1 FROM attendance o
			WHERE o.employee_id = t.employee_id AND o.status = $2 AND o.id <> t.id
		  )
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query,
		params.ID,
		attendance.StatusActive,
		params.CheckInTime,
		params.IsWithinGeofence,
		params.Latitude,
		params.Longitude,
		params.WifiBSSID,
		params.BranchID,
		attendance.StatusCompleted,
	))
	if err == nil {
		return att, nil
	}
	if isUniqueViolation(err, activeAttendanceIndex) {
		return attendance.Attendance{}, attendance.ErrAlreadyActive
	}
	if !isNotFound(err) {
		return attendance.Attendance{}, fmt.Errorf("failed to reactivate attendance %s: %w", params.ID, err)
	}

	// Nothing updated: either the row is gone or the guard rejected it.
	if _, err := a.GetByID(ctx, params.ID); err != nil {
		return attendance.Attendance{}, err
	}
	return attendance.Attendance{}, attendance.ErrAlreadyActive
}

// Complete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Complete(ctx context.Context, params attendance.CompleteParams) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance
		SET status = $2,
			check_out_time = $3,
			work_hours = $4,
			check_out_latitude = $5,
			check_out_longitude = $6,
			check_out_wifi_bssid = $7,
			notes = COALESCE($8, notes),
			modified_by = COALESCE($9, modified_by),
			modification_reason = CASE WHEN $9::uuid IS NULL THEN modification_reason ELSE $10 END,
			updated_at = NOW()
		WHERE id = $1 AND status = $11
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query,
		params.ID,
		attendance.StatusCompleted,
		params.CheckOutTime,
		params.WorkHours,
		params.Latitude,
		params.Longitude,
		params.WifiBSSID,
		params.Notes,
		params.ModifiedBy,
		params.ModificationReason,
		attendance.StatusActive,
	))
	if err == nil {
		return att, true, nil
	}
	if !isNotFound(err) {
		return attendance.Attendance{}, false, fmt.Errorf("failed to complete attendance %s: %w", params.ID, err)
	}

	current, err := a.GetByID(ctx, params.ID)
	if err != nil {
		return attendance.Attendance{}, false, err
	}
	return current, false, nil
}

// AutoCheckout implements attendance.AttendanceRepository.
func (a *attendanceRepository) AutoCheckout(ctx context.Context, id string, checkOut time.Time, reason string) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance
		SET status = $2,
			check_out_time = $3,
			work_hours = round(GREATEST(EXTRACT(EPOCH FROM ($3::timestamptz - check_in_time)) / 3600, 0)::numeric, 2),
			notes = $4,
			updated_at = NOW()
		WHERE id = $1 AND check_out_time IS NULL AND status = $5
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query, id, attendance.StatusCompleted, checkOut, reason, attendance.StatusActive))
	if err == nil {
		return att, true, nil
	}
	if !isNotFound(err) {
		return attendance.Attendance{}, false, fmt.Errorf("failed to auto checkout attendance %s: %w", id, err)
	}

	current, err := a.GetByID(ctx, id)
	if err != nil {
		return attendance.Attendance{}, false, err
	}
	return current, false, nil
}

// MoveCheckIn implements attendance.AttendanceRepository.
func (a *attendanceRepository) MoveCheckIn(ctx context.Context, id string, at time.Time) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance
		SET check_in_time = $2,
			work_hours = CASE
				WHEN check_out_time IS NULL THEN work_hours
				ELSE round(GREATEST(EXTRACT(EPOCH FROM (check_out_time - $2::timestamptz)) / 3600, 0)::numeric, 2)
			END,
			updated_at = NOW()
		WHERE id = $1 AND check_in_time > $2
		RETURNING ` + attendanceColumns

	att, err := scanAttendance(q.QueryRow(ctx, query, id, at))
	if err == nil {
		return att, true, nil
	}
	if !isNotFound(err) {
		return attendance.Attendance{}, false, fmt.Errorf("failed to move check-in of attendance %s: %w", id, err)
	}

	current, err := a.GetByID(ctx, id)
	if err != nil {
		return attendance.Attendance{}, false, err
	}
	return current, false, nil
}

// ExistsBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ExistsBetween(ctx context.Context, employeeID string, from, to time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM attendance
			WHERE employee_id = $1
			  AND check_in_time > $2
			  AND check_in_time < $3
			  AND id::text <> $4
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, from, to, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check attendance between %s and %s: %w", from, to, err)
	}
	return exists, nil
}

// SumWorkHours implements attendance.AttendanceRepository.
func (a *attendanceRepository) SumWorkHours(ctx context.Context, employeeID string, date string) (float64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT COALESCE(SUM(work_hours), 0)
		FROM attendance
		WHERE employee_id = $1 AND date = $2::date AND work_hours IS NOT NULL
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, employeeID, date).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum work hours: %w", err)
	}
	return total.Round(2).InexactFloat64(), nil
}

// ListByEmployee implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.MyAttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "employee_id = $1"
	args := []interface{}{employeeID}
	argIdx := 2

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM attendance WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendance
		WHERE %s
		ORDER BY check_in_time DESC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	attendances := []attendance.Attendance{}
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating attendance: %w", err)
	}

	return attendances, total, nil
}
