package approval

import (
	"strings"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
)

// Kind names the request families a reviewer can act on.
type Kind string

const (
	KindLeave      Kind = "leave"
	KindAdvance    Kind = "advance"
	KindAttendance Kind = "attendance"
	KindAbsence    Kind = "absence"
	KindBreak      Kind = "break"

	// KindSessionValidation covers manager rulings on a gap in a session's pulses.
	KindSessionValidation Kind = "session_validation"
)

func AllKinds() []string {
	return []string{
		string(KindLeave),
		string(KindAdvance),
		string(KindAttendance),
		string(KindAbsence),
		string(KindBreak),
		string(KindSessionValidation),
	}
}

type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionPostpone Action = "postpone"
)

// CanReview applies the branch rule: owners and admins review anything; a manager
// reviews staff, monitor and hr requests from their own branch; requests from
// managers (or any other role) need an owner or admin.
func CanReview(reviewer, requester employee.Employee) bool {
	if reviewer.Role.IsPrivileged() {
		return true
	}
	if !reviewer.Role.CanApprove() {
		return false
	}
	if !requester.Role.IsManagedByBranch() {
		return false
	}
	return reviewer.InSameBranch(requester)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
