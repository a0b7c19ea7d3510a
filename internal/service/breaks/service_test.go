package breaks

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*memstore.Store, breaks.BreakService, employee.Employee) {
	t.Helper()
	clock := testutil.NewClock(testutil.At("2024-03-04", "12:00"))
	store := memstore.New(clock.Now)
	emp := store.PutEmployee(employee.Employee{FullName: "Hana Fathy", Role: user.RoleStaff, IsActive: true})
	return store, NewBreakService(store.Breaks(), store.Employees(), testutil.Calendar(clock)), emp
}

func approve(t *testing.T, store *memstore.Store, id string) {
	t.Helper()
	payout := true
	_, ok, err := store.Breaks().Transition(context.Background(), id,
		[]breaks.Status{breaks.StatusPending}, breaks.StatusApproved, breaks.TransitionUpdate{PayoutEligible: &payout})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestBreakLifecycle(t *testing.T) {
	store, svc, emp := setup(t)
	ctx := context.Background()

	b, err := svc.Request(ctx, breaks.CreateBreakRequest{EmployeeID: emp.ID, DurationMinutes: 15})
	require.NoError(t, err)
	assert.Equal(t, breaks.StatusPending, b.Status)

	_, err = svc.Start(ctx, breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID})
	assert.ErrorIs(t, err, breaks.ErrBreakNotApproved)

	approve(t, store, b.ID)

	started, err := svc.Start(ctx, breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID, Timestamp: testutil.Ptr("2024-03-04T12:00:00+02:00")})
	require.NoError(t, err)
	assert.Equal(t, breaks.StatusActive, started.Status)

	again, err := svc.Start(ctx, breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, started.BreakStart, again.BreakStart)

	ended, err := svc.End(ctx, breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID, Timestamp: testutil.Ptr("2024-03-04T12:22:00+02:00")})
	require.NoError(t, err)
	assert.Equal(t, breaks.StatusCompleted, ended.Status)
	require.NotNil(t, ended.ActualMinutes)
	assert.Equal(t, 22, *ended.ActualMinutes)

	repeat, err := svc.End(ctx, breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, 22, *repeat.ActualMinutes)
}

func TestEndBeforeStart(t *testing.T) {
	store, svc, emp := setup(t)
	b, err := svc.Request(context.Background(), breaks.CreateBreakRequest{EmployeeID: emp.ID, DurationMinutes: 10})
	require.NoError(t, err)
	approve(t, store, b.ID)

	_, err = svc.End(context.Background(), breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID})
	assert.ErrorIs(t, err, breaks.ErrBreakNotActive)
}

func TestBreaksBelongToTheirEmployee(t *testing.T) {
	store, svc, emp := setup(t)
	other := store.PutEmployee(employee.Employee{FullName: "Other", Role: user.RoleStaff, IsActive: true})
	b, err := svc.Request(context.Background(), breaks.CreateBreakRequest{EmployeeID: emp.ID, DurationMinutes: 10})
	require.NoError(t, err)
	approve(t, store, b.ID)

	_, err = svc.Start(context.Background(), breaks.TransitionRequest{EmployeeID: other.ID, BreakID: b.ID})
	assert.ErrorIs(t, err, breaks.ErrBreakNotFound)
}

func TestRequestValidation(t *testing.T) {
	store, svc, _ := setup(t)
	inactive := store.PutEmployee(employee.Employee{FullName: "Gone", Role: user.RoleStaff})

	_, err := svc.Request(context.Background(), breaks.CreateBreakRequest{EmployeeID: inactive.ID, DurationMinutes: 10})
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	_, err = svc.Request(context.Background(), breaks.CreateBreakRequest{EmployeeID: inactive.ID})
	assert.Error(t, err)
}

func TestListAndDeleteRejected(t *testing.T) {
	store, svc, emp := setup(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Request(ctx, breaks.CreateBreakRequest{EmployeeID: emp.ID, DurationMinutes: 5})
		require.NoError(t, err)
	}
	list, err := svc.List(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	_, ok, err := store.Breaks().Transition(ctx, list[0].ID, []breaks.Status{breaks.StatusPending}, breaks.StatusRejected, breaks.TransitionUpdate{})
	require.NoError(t, err)
	require.True(t, ok)

	res, err := svc.DeleteRejected(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Deleted)

	list, err = svc.List(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCompletedBreakCannotRestart(t *testing.T) {
	store, svc, emp := setup(t)
	ctx := context.Background()
	b, err := svc.Request(ctx, breaks.CreateBreakRequest{EmployeeID: emp.ID, DurationMinutes: 10})
	require.NoError(t, err)
	approve(t, store, b.ID)

	_, err = svc.Start(ctx, breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID})
	require.NoError(t, err)
	_, err = svc.End(ctx, breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID})
	require.NoError(t, err)

	_, err = svc.Start(ctx, breaks.TransitionRequest{EmployeeID: emp.ID, BreakID: b.ID})
	assert.ErrorIs(t, err, breaks.ErrBreakInvalid)
}
