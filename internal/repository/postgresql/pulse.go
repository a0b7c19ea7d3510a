package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const pulseColumns = `
	id, employee_id, attendance_id, branch_id, timestamp, latitude, longitude,
	distance_from_center, inside_geofence, wifi_bssid, source, on_break,
	validation_request_id, created_at`

type pulseRepository struct {
	db *database.DB
}

func NewPulseRepository(db *database.DB) pulse.PulseRepository {
	return &pulseRepository{db: db}
}

func scanPulse(row pgx.Row) (pulse.Pulse, error) {
	var p pulse.Pulse
	err := row.Scan(
		&p.ID, &p.EmployeeID, &p.AttendanceID, &p.BranchID, &p.Timestamp, &p.Latitude, &p.Longitude,
		&p.DistanceFromCenter, &p.InsideGeofence, &p.WifiBSSID, &p.Source, &p.OnBreak,
		&p.ValidationRequestID, &p.CreatedAt,
	)
	return p, err
}

// Create implements pulse.PulseRepository.
func (r *pulseRepository) Create(ctx context.Context, p pulse.Pulse) (pulse.Pulse, error) {
	q := GetQuerier(ctx, r.db)

	if p.Source == "" {
		p.Source = pulse.SourceDevice
	}

	query := `
		INSERT INTO pulses (
			employee_id, attendance_id, branch_id, timestamp, latitude, longitude,
			distance_from_center, inside_geofence, wifi_bssid, source, on_break,
			validation_request_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + pulseColumns

	created, err := scanPulse(q.QueryRow(ctx, query,
		p.EmployeeID, p.AttendanceID, p.BranchID, p.Timestamp, p.Latitude, p.Longitude,
		p.DistanceFromCenter, p.InsideGeofence, p.WifiBSSID, p.Source, p.OnBreak,
		p.ValidationRequestID,
	))
	if err != nil {
		return pulse.Pulse{}, fmt.Errorf("failed to create pulse: %w", err)
	}
	return created, nil
}

// LatestForAttendance implements pulse.PulseRepository.
func (r *pulseRepository) LatestForAttendance(ctx context.Context, attendanceID string, limit int) ([]pulse.Pulse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + pulseColumns + `
		FROM pulses
		WHERE attendance_id = $1
		ORDER BY timestamp DESC, created_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, attendanceID, limit)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query pulses for attendance %s: %w", attendanceID, err)
	}
	defer rows.Close()

	var pulses []pulse.Pulse
	for rows.Next() {
		p, err := scanPulse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pulse: %w", err)
		}
		pulses = append(pulses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pulses: %w", err)
	}
	return pulses, nil
}

// CountOutside implements pulse.PulseRepository.
func (r *pulseRepository) CountOutside(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*)
		FROM pulses
		WHERE employee_id = $1
		  AND NOT inside_geofence
		  AND NOT on_break
		  AND timestamp >= $2
		  AND timestamp < $3
	`

	var count int
	if err := q.QueryRow(ctx, query, employeeID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count outside pulses: %w", err)
	}
	return count, nil
}

type violationRepository struct {
	db *database.DB
}

func NewViolationRepository(db *database.DB) pulse.ViolationRepository {
	return &violationRepository{db: db}
}

// Create implements pulse.ViolationRepository.
func (r *violationRepository) Create(ctx context.Context, v pulse.Violation) (pulse.Violation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO geofence_violations (
			employee_id, attendance_id, branch_id, occurred_at, latitude, longitude,
			distance_from_center, radius_meters, wifi_bssid
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		v.EmployeeID, v.AttendanceID, v.BranchID, v.OccurredAt, v.Latitude, v.Longitude,
		v.DistanceFromCenter, v.RadiusMeters, v.WifiBSSID,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return pulse.Violation{}, fmt.Errorf("failed to create geofence violation: %w", err)
	}
	return v, nil
}
