package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const absenceColumns = `
	id, employee_id, branch_id, absence_date::text,
	to_char(shift_start_time, 'HH24:MI'), to_char(shift_end_time, 'HH24:MI'),
	deduction_amount, deduction_applied, status, reviewed_by, reviewed_at, review_notes, created_at`

const absenceDateKey = "absences_employee_id_absence_date_key"

type absenceRepository struct {
	db *database.DB
}

func NewAbsenceRepository(db *database.DB) absence.AbsenceRepository {
	return &absenceRepository{db: db}
}

func scanAbsence(row pgx.Row) (absence.Absence, error) {
	var a absence.Absence
	err := row.Scan(
		&a.ID, &a.EmployeeID, &a.BranchID, &a.AbsenceDate,
		&a.ShiftStartTime, &a.ShiftEndTime,
		&a.DeductionAmount, &a.DeductionApplied, &a.Status, &a.ReviewedBy, &a.ReviewedAt, &a.ReviewNotes, &a.CreatedAt,
	)
	return a, err
}

// Create implements absence.AbsenceRepository.
func (r *absenceRepository) Create(ctx context.Context, a absence.Absence) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)

	if a.Status == "" {
		a.Status = absence.StatusPending
	}

	query := `
		INSERT INTO absences (
			employee_id, branch_id, absence_date, shift_start_time, shift_end_time,
			deduction_amount, deduction_applied, status
		) VALUES ($1, $2, $3::date, $4::time, $5::time, $6, $7, $8)
		RETURNING ` + absenceColumns

	created, err := scanAbsence(q.QueryRow(ctx, query,
		a.EmployeeID, a.BranchID, a.AbsenceDate, a.ShiftStartTime, a.ShiftEndTime,
		a.DeductionAmount, a.DeductionApplied, a.Status,
	))
	if err != nil {
		if isUniqueViolation(err, absenceDateKey) {
			return absence.Absence{}, absence.ErrAbsenceExists
		}
		return absence.Absence{}, fmt.Errorf("failed to create absence: %w", err)
	}
	return created, nil
}

// GetByID implements absence.AbsenceRepository.
func (r *absenceRepository) GetByID(ctx context.Context, id string) (absence.Absence, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + absenceColumns + ` FROM absences WHERE id = $1` + forUpdate(ctx)

	a, err := scanAbsence(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return absence.Absence{}, absence.ErrAbsenceNotFound
		}
		return absence.Absence{}, fmt.Errorf("failed to get absence %s: %w", id, err)
	}
	return a, nil
}

// ExistsForDate implements absence.AbsenceRepository.
func (r *absenceRepository) ExistsForDate(ctx context.Context, employeeID, date string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM absences WHERE employee_id = $1 AND absence_date = $2::date)`,
		employeeID, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check absence for %s: %w", date, err)
	}
	return exists, nil
}

// Resolve implements absence.AbsenceRepository.
func (r *absenceRepository) Resolve(ctx context.Context, id string, status absence.Status, deductionApplied bool, deduction decimal.Decimal, reviewerID string, notes *string, at time.Time) (bool, error) {
	u := reviewUpdate{
		table:     "absences",
		notFound:  absence.ErrAbsenceNotFound,
		extraSet:  ", deduction_applied = $6, deduction_amount = $7",
		extraArgs: []interface{}{deductionApplied, deduction},
	}
	return u.apply(ctx, GetQuerier(ctx, r.db), id, status, reviewerID, notes, at)
}
