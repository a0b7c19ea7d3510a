package branch

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
)

type BranchRepository interface {
	GetByID(ctx context.Context, id string) (Branch, error)

	// GetByName matches the branch name case-insensitively.
	GetByName(ctx context.Context, name string) (Branch, error)

	// ListAccessPoints returns the raw identifiers from the auxiliary allow-list table.
	ListAccessPoints(ctx context.Context, branchID string) ([]string, error)
}

// Locator resolves the branch an employee checks in against.
type Locator interface {
	Resolve(ctx context.Context, emp employee.Employee) (Site, error)
	ResolveByID(ctx context.Context, branchID string) (Site, error)
}
