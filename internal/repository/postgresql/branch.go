package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const branchColumns = `id, name, latitude, longitude, geofence_radius, pulse_tolerance, wifi_bssid, bssid_2, manager_id`

type branchRepositoryImpl struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepositoryImpl{db: db}
}

func scanBranch(row pgx.Row) (branch.Branch, error) {
	var b branch.Branch
	err := row.Scan(
		&b.ID, &b.Name, &b.Latitude, &b.Longitude, &b.GeofenceRadius, &b.PulseTolerance,
		&b.WifiBSSID, &b.BSSID2, &b.ManagerID,
	)
	return b, err
}

// GetByID implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + branchColumns + ` FROM branches WHERE id = $1`

	b, err := scanBranch(q.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFound(err) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch by id %s: %w", id, err)
	}
	return b, nil
}

// GetByName implements branch.BranchRepository.
func (r *branchRepositoryImpl) GetByName(ctx context.Context, name string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + branchColumns + `
		FROM branches
		WHERE lower(btrim(name)) = lower(btrim($1))
		ORDER BY created_at
		LIMIT 1
	`

	b, err := scanBranch(q.QueryRow(ctx, query, name))
	if err != nil {
		if isNotFound(err) {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch by name %q: %w", name, err)
	}
	return b, nil
}

// ListAccessPoints implements branch.BranchRepository.
func (r *branchRepositoryImpl) ListAccessPoints(ctx context.Context, branchID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT bssid_address FROM branch_access_points WHERE branch_id = $1`, branchID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list access points for branch %s: %w", branchID, err)
	}

	aps, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan access points: %w", err)
	}
	return aps, nil
}
