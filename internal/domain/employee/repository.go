package employee

import (
	"context"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
)

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)

	// ListActive returns every active employee ordered by name.
	ListActive(ctx context.Context) ([]Employee, error)

	// FirstByRole returns the oldest active employee holding role.
	FirstByRole(ctx context.Context, role user.Role) (Employee, error)
}
