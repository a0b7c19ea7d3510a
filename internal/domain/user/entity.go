package user

type Role string

const (
	RoleOwner   Role = "owner"   // Business owner - full access
	RoleAdmin   Role = "admin"   // Back office - full access
	RoleManager Role = "manager" // Branch manager - approves own branch
	RoleHR      Role = "hr"
	RoleMonitor Role = "monitor"
	RoleStaff   Role = "staff"
)

// AllRoles returns all known roles
func AllRoles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleManager, RoleHR, RoleMonitor, RoleStaff}
}

func (r Role) Valid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the role may approve any request.
func (r Role) IsPrivileged() bool {
	return r == RoleOwner || r == RoleAdmin
}

// CanApprove reports whether the role may review requests at all.
func (r Role) CanApprove() bool {
	return r.IsPrivileged() || r == RoleManager
}

// IsManagedByBranch reports whether a branch manager may review requests from this role.
func (r Role) IsManagedByBranch() bool {
	return r == RoleStaff || r == RoleMonitor || r == RoleHR
}

// Actor is the authenticated caller as carried in the access token.
type Actor struct {
	EmployeeID string
	Role       Role
	BranchID   *string
}
