package user

type Permission string

const (
	// Self service
	PermissionAttendanceSelf Permission = "attendance.self"
	PermissionPayrollViewOwn Permission = "payroll.view_own"
	PermissionRequestCreate  Permission = "request.create"

	// Review
	PermissionRequestApprove   Permission = "request.approve"
	PermissionPayrollRecompute Permission = "payroll.recompute"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionAttendanceSelf,
		PermissionPayrollViewOwn,
		PermissionRequestCreate,
		PermissionRequestApprove,
		PermissionPayrollRecompute,
	},
	RoleAdmin: {
		PermissionAttendanceSelf,
		PermissionPayrollViewOwn,
		PermissionRequestCreate,
		PermissionRequestApprove,
		PermissionPayrollRecompute,
	},
	RoleManager: {
		PermissionAttendanceSelf,
		PermissionPayrollViewOwn,
		PermissionRequestCreate,
		PermissionRequestApprove,
	},
	RoleHR:      {PermissionAttendanceSelf, PermissionPayrollViewOwn, PermissionRequestCreate},
	RoleMonitor: {PermissionAttendanceSelf, PermissionPayrollViewOwn, PermissionRequestCreate},
	RoleStaff:   {PermissionAttendanceSelf, PermissionPayrollViewOwn, PermissionRequestCreate},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
