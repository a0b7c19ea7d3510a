package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	branchsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	centerLat = 30.0444
	centerLon = 31.2357
	officeAP  = "AA:BB:CC:DD:EE:FF"
)

type fixture struct {
	store  *memstore.Store
	clock  *testutil.Clock
	svc    attendance.AttendanceService
	branch branch.Branch
	emp    employee.Employee
}

func newFixture(t *testing.T, policy config.Policy) *fixture {
	t.Helper()
	clock := testutil.NewClock(testutil.At("2024-03-04", "09:00"))
	store := memstore.New(clock.Now)

	b := store.PutBranch(branch.Branch{
		Name:           "Downtown",
		Latitude:       testutil.Ptr(centerLat),
		Longitude:      testutil.Ptr(centerLon),
		GeofenceRadius: testutil.Ptr(100.0),
		PulseTolerance: testutil.Ptr(50.0),
		WifiBSSID:      testutil.Ptr(officeAP),
	})
	emp := store.PutEmployee(employee.Employee{
		FullName:   "Mona Adel",
		Role:       user.RoleStaff,
		BranchID:   &b.ID,
		HourlyRate: testutil.Ptr(decimal.NewFromInt(60)),
		IsActive:   true,
	})

	svc := NewAttendanceService(
		store.Attendance(),
		store.Summaries(),
		store.Corrections(),
		store.Employees(),
		store.Pulses(),
		store.Violations(),
		branchsvc.NewLocator(store.Branches(), policy),
		testutil.Calendar(clock),
		policy,
	)
	return &fixture{store: store, clock: clock, svc: svc, branch: b, emp: emp}
}

func (f *fixture) checkIn(t *testing.T, lat, lon float64, ap string) (attendance.CheckInResponse, error) {
	t.Helper()
	req := attendance.CheckInRequest{EmployeeID: f.emp.ID, Latitude: &lat, Longitude: &lon}
	if ap != "" {
		req.WifiBSSID = &ap
	}
	return f.svc.CheckIn(context.Background(), req)
}

func (f *fixture) checkOut(t *testing.T) (attendance.CheckOutResponse, error) {
	t.Helper()
	return f.svc.CheckOut(context.Background(), attendance.CheckOutRequest{
		EmployeeID: f.emp.ID,
		Latitude:   testutil.Ptr(centerLat),
		Longitude:  testutil.Ptr(centerLon),
	})
}

func TestCheckInThenOutRoundTrip(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	in, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusActive, in.Attendance.Status)
	assert.Equal(t, "2024-03-04", in.Attendance.Date)
	assert.True(t, in.Validation.Location)
	require.NotNil(t, in.Validation.Distance)
	assert.Equal(t, 0.0, *in.Validation.Distance)
	assert.False(t, in.Reactivated)

	out, err := f.checkOut(t)
	require.NoError(t, err)
	assert.False(t, out.AlreadyCheckedOut)
	assert.Equal(t, attendance.StatusCompleted, out.Attendance.Status)
	require.NotNil(t, out.Attendance.WorkHours)
	assert.InDelta(t, 0, *out.Attendance.WorkHours, 0.01)

	pulses := f.store.AllPulses()
	require.Len(t, pulses, 2)
	assert.Equal(t, pulse.SourceCheckIn, pulses[0].Source)
	assert.True(t, pulses[0].InsideGeofence)
	assert.Equal(t, pulse.SourceCheckOut, pulses[1].Source)
	assert.Empty(t, f.store.AllViolations())
}

func TestCheckInAlreadyActive(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	_, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)

	_, err = f.checkIn(t, centerLat, centerLon, "")
	assert.ErrorIs(t, err, attendance.ErrAlreadyActive)
}

func TestCheckInOutsideAllowedArea(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	_, err := f.checkIn(t, centerLat+0.01, centerLon, "11:22:33:44:55:66")
	require.ErrorIs(t, err, attendance.ErrOutsideAllowedArea)

	var outside *attendance.OutsideAreaError
	require.True(t, errors.As(err, &outside))
	require.NotNil(t, outside.Distance)
	assert.InDelta(t, 1112, *outside.Distance, 1)
	assert.Equal(t, 100.0, *outside.AllowedRadius)

	active, err := f.store.Attendance().GetActive(context.Background(), f.emp.ID)
	require.NoError(t, err)
	assert.Nil(t, active, "a rejected check-in must not change state")
}

func TestCheckInPassesOnWifiFarAway(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	in, err := f.checkIn(t, centerLat+0.01, centerLon, "aa-bb-cc-dd-ee-ff")
	require.NoError(t, err)
	assert.True(t, in.Validation.Wifi)
	assert.False(t, in.Validation.Location)
	assert.Empty(t, f.store.AllPulses(), "beyond radius plus tolerance no pulse is synthesized")
}

func TestCheckInInsideToleranceBandLogsViolation(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	_, err := f.checkIn(t, centerLat+0.0011, centerLon, officeAP)
	require.NoError(t, err)

	pulses := f.store.AllPulses()
	require.Len(t, pulses, 1)
	assert.False(t, pulses[0].InsideGeofence)

	violations := f.store.AllViolations()
	require.Len(t, violations, 1)
	assert.Equal(t, 100.0, *violations[0].RadiusMeters)
	assert.InDelta(t, 122, *violations[0].DistanceFromCenter, 1)
}

func TestCheckInReactivatesCompletedRecord(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	first, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)
	f.clock.Set(testutil.At("2024-03-04", "12:00"))
	_, err = f.checkOut(t)
	require.NoError(t, err)

	f.clock.Set(testutil.At("2024-03-04", "13:00"))
	second, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)
	assert.True(t, second.Reactivated)
	assert.Equal(t, first.Attendance.ID, second.Attendance.ID)
	assert.Nil(t, second.Attendance.WorkHours)
	assert.Nil(t, second.Attendance.CheckOutTime)

	f.clock.Set(testutil.At("2024-03-04", "17:00"))
	out, err := f.checkOut(t)
	require.NoError(t, err)
	assert.Equal(t, 4.0, *out.Attendance.WorkHours)
}

func TestCheckOutScenarioSummary(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	_, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)
	f.clock.Set(testutil.At("2024-03-04", "17:00"))
	out, err := f.checkOut(t)
	require.NoError(t, err)
	assert.Equal(t, 8.0, *out.Attendance.WorkHours)

	summary, err := f.store.Summaries().Get(context.Background(), f.emp.ID, "2024-03-04")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "09:00:00", *summary.CheckInTime)
	assert.Equal(t, "17:00:00", *summary.CheckOutTime)
	assert.Equal(t, 8.0, summary.TotalHours)
	assert.True(t, decimal.NewFromInt(480).Equal(summary.DailySalary))
}

func TestCheckOutIdempotentAndMissing(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	_, err := f.checkOut(t)
	assert.ErrorIs(t, err, attendance.ErrNoActiveCheckIn)

	_, err = f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)
	_, err = f.checkOut(t)
	require.NoError(t, err)

	again, err := f.checkOut(t)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCheckedOut)
	assert.Len(t, f.store.AllPulses(), 2, "a repeated check-out writes nothing")
}

func TestCheckOutByIDOwnership(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	in, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)

	other := f.store.PutEmployee(employee.Employee{FullName: "Other", Role: user.RoleStaff, IsActive: true})
	_, err = f.svc.CheckOut(context.Background(), attendance.CheckOutRequest{
		EmployeeID:   other.ID,
		AttendanceID: &in.Attendance.ID,
	})
	assert.ErrorIs(t, err, attendance.ErrNotOwner)

	_, err = f.svc.CheckOut(context.Background(), attendance.CheckOutRequest{
		EmployeeID:   f.emp.ID,
		AttendanceID: testutil.Ptr("0d6b8f2e-3c1a-4f6e-9a7b-5c4d3e2f1a0b"),
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	out, err := f.svc.CheckOut(context.Background(), attendance.CheckOutRequest{
		EmployeeID:   f.emp.ID,
		AttendanceID: &in.Attendance.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusCompleted, out.Attendance.Status)
	assert.True(t, out.Validation.Location, "unknown distance is treated as valid")
}

func TestCheckOutLosesRaceToAutoCheckout(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	in, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)

	_, ok, err := f.store.Attendance().AutoCheckout(context.Background(), in.Attendance.ID, f.clock.Now(), "auto")
	require.NoError(t, err)
	require.True(t, ok)

	out, err := f.svc.CheckOut(context.Background(), attendance.CheckOutRequest{
		EmployeeID:   f.emp.ID,
		AttendanceID: &in.Attendance.ID,
	})
	require.NoError(t, err)
	assert.True(t, out.AlreadyCheckedOut)
}

func TestInactiveEmployeeRejected(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())
	f.emp.IsActive = false
	f.store.PutEmployee(f.emp)

	_, err := f.checkIn(t, centerLat, centerLon, "")
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)

	_, err = f.svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: "4c3b2a19-0000-4000-8000-000000000000",
		Latitude:   testutil.Ptr(centerLat),
		Longitude:  testutil.Ptr(centerLon),
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestMissingBranchFailOpen(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())
	f.store.FailBranchLookups = true

	in, err := f.checkIn(t, centerLat+0.5, centerLon, "")
	require.NoError(t, err)
	assert.Nil(t, in.Attendance.BranchID)
	assert.Nil(t, in.Validation.Distance)
	assert.Empty(t, f.store.AllPulses())

	strict := config.DefaultPolicy()
	strict.FailOpenMissingBranch = false
	g := newFixture(t, strict)
	g.store.FailBranchLookups = true
	_, err = g.checkIn(t, centerLat, centerLon, "")
	assert.Error(t, err)
}

func TestCheckInUsesBusinessDate(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())
	// 23:30 UTC on March 4 is already March 5 in the business zone.
	f.clock.Set(testutil.At("2024-03-05", "01:30"))

	in, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", in.Attendance.Date)
}

func TestSubmitCorrectionAndReadSide(t *testing.T) {
	f := newFixture(t, config.DefaultPolicy())

	req, err := f.svc.SubmitCorrection(context.Background(), attendance.CorrectionSubmitRequest{
		EmployeeID:    f.emp.ID,
		RequestType:   "CHECK_IN",
		RequestedTime: "2024-03-04T07:00:00+02:00",
		Reason:        "forgot to check in",
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.RequestPending, req.Status)
	assert.Equal(t, attendance.CorrectionCheckIn, req.RequestType)

	in, err := f.checkIn(t, centerLat, centerLon, "")
	require.NoError(t, err)

	got, err := f.svc.GetByID(context.Background(), f.emp.ID, in.Attendance.ID)
	require.NoError(t, err)
	assert.Equal(t, in.Attendance.ID, got.ID)

	_, err = f.svc.GetByID(context.Background(), "someone-else", in.Attendance.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	list, err := f.svc.ListMine(context.Background(), attendance.MyAttendanceFilter{EmployeeID: f.emp.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	assert.Equal(t, 1, list.TotalPages)
	assert.Equal(t, 20, list.Limit)
}
