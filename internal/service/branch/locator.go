package branch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/geo"
)

type LocatorImpl struct {
	branch.BranchRepository
	policy config.Policy
}

// Resolve finds the employee's branch by id, then by case-insensitive name. Lookup
// failures degrade to an unknown site unless fail_open_missing_branch is off.
func (l *LocatorImpl) Resolve(ctx context.Context, emp employee.Employee) (branch.Site, error) {
	var (
		b   branch.Branch
		err error
	)
	switch {
	case emp.BranchID != nil && *emp.BranchID != "":
		b, err = l.BranchRepository.GetByID(ctx, *emp.BranchID)
		if errors.Is(err, branch.ErrBranchNotFound) && emp.BranchName != nil && strings.TrimSpace(*emp.BranchName) != "" {
			b, err = l.BranchRepository.GetByName(ctx, *emp.BranchName)
		}
	case emp.BranchName != nil && strings.TrimSpace(*emp.BranchName) != "":
		b, err = l.BranchRepository.GetByName(ctx, *emp.BranchName)
	default:
		err = branch.ErrBranchNotFound
	}
	if err != nil {
		return l.degrade(err, "employee_id", emp.ID)
	}
	return l.site(ctx, b)
}

func (l *LocatorImpl) ResolveByID(ctx context.Context, branchID string) (branch.Site, error) {
	b, err := l.BranchRepository.GetByID(ctx, branchID)
	if err != nil {
		return l.degrade(err, "branch_id", branchID)
	}
	return l.site(ctx, b)
}

func (l *LocatorImpl) site(ctx context.Context, b branch.Branch) (branch.Site, error) {
	aps := geo.NewAPSet()
	for _, field := range []*string{b.WifiBSSID, b.BSSID2} {
		if field == nil {
			continue
		}
		for _, ap := range geo.ParseAPList(*field) {
			aps.Add(ap)
		}
	}

	extra, err := l.BranchRepository.ListAccessPoints(ctx, b.ID)
	if err != nil {
		if !l.policy.FailOpenMissingBranch {
			return branch.Site{}, fmt.Errorf("failed to load access points for branch %s: %w", b.ID, err)
		}
		slog.Warn("Failed to load branch access points", "branch_id", b.ID, "error", err)
	}
	for _, raw := range extra {
		for _, ap := range geo.ParseAPList(raw) {
			aps.Add(ap)
		}
	}

	tolerance := l.policy.DefaultToleranceMeters
	if b.PulseTolerance != nil && *b.PulseTolerance >= 0 {
		tolerance = *b.PulseTolerance
	}

	return branch.Site{
		Branch:     &b,
		AllowedAPs: aps,
		Radius:     b.GeofenceRadius,
		Tolerance:  tolerance,
	}, nil
}

func (l *LocatorImpl) degrade(err error, key, value string) (branch.Site, error) {
	if !l.policy.FailOpenMissingBranch {
		return branch.Site{}, fmt.Errorf("failed to resolve branch: %w", err)
	}
	slog.Warn("Branch lookup failed, continuing without branch", key, value, "error", err)
	return branch.Site{Tolerance: l.policy.DefaultToleranceMeters}, nil
}

func NewLocator(branchRepo branch.BranchRepository, policy config.Policy) branch.Locator {
	return &LocatorImpl{
		BranchRepository: branchRepo,
		policy:           policy,
	}
}
