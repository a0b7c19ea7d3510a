package approval

import (
	"testing"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s(v string) *string { return &v }

func TestCanReview(t *testing.T) {
	branchA := employee.Employee{Role: user.RoleManager, BranchID: s("a"), BranchName: s("Downtown")}
	staffA := employee.Employee{Role: user.RoleStaff, BranchID: s("a")}
	staffB := employee.Employee{Role: user.RoleStaff, BranchID: s("b")}
	hrByName := employee.Employee{Role: user.RoleHR, BranchName: s("downtown")}
	otherManager := employee.Employee{Role: user.RoleManager, BranchID: s("a")}
	owner := employee.Employee{Role: user.RoleOwner}
	admin := employee.Employee{Role: user.RoleAdmin}
	staffReviewer := employee.Employee{Role: user.RoleStaff, BranchID: s("a")}

	cases := []struct {
		name                string
		reviewer, requester employee.Employee
		want                bool
	}{
		{"owner approves anything", owner, otherManager, true},
		{"admin approves anything", admin, staffB, true},
		{"manager approves own branch staff", branchA, staffA, true},
		{"manager approves by branch name", branchA, hrByName, true},
		{"manager cannot cross branches", branchA, staffB, false},
		{"manager cannot approve a manager", branchA, otherManager, false},
		{"staff cannot approve", staffReviewer, staffA, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CanReview(c.reviewer, c.requester))
		})
	}
}

func TestResolveRequestValidate(t *testing.T) {
	ok := ResolveRequest{Type: " Break ", ID: "123e4567-e89b-12d3-a456-426614174000", Action: "POSTPONE", ReviewerID: "m1"}
	require.NoError(t, ok.Validate())
	assert.Equal(t, "break", ok.Type)
	assert.Equal(t, "postpone", ok.Action)

	postponeLeave := ResolveRequest{Type: "leave", ID: "123e4567-e89b-12d3-a456-426614174000", Action: "postpone", ReviewerID: "m1"}
	err := postponeLeave.Validate()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, ErrInvalidAction.Error(), verrs.ToMap()["action"])

	empty := ResolveRequest{}
	require.ErrorAs(t, empty.Validate(), &verrs)
	assert.Len(t, verrs, 4)
}
