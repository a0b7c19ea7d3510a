package payroll

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *memstore.Store
	clock *testutil.Clock
	svc   payroll.PayrollService
	emp   employee.Employee
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testutil.NewClock(testutil.At("2024-03-04", "18:00"))
	store := memstore.New(clock.Now)
	rate := decimal.NewFromInt(60)
	emp := store.PutEmployee(employee.Employee{
		FullName:   "Mona Adel",
		Role:       user.RoleStaff,
		HourlyRate: &rate,
		IsActive:   true,
	})
	svc := NewPayrollService(
		store.Calculations(),
		store.Ledger(),
		store.Advances(),
		store.Attendance(),
		store.Pulses(),
		store.Employees(),
		testutil.Calendar(clock),
		config.DefaultPolicy(),
	)
	return &fixture{store: store, clock: clock, svc: svc, emp: emp}
}

// workDay stores a completed shift and the given number of outside pulses.
func (f *fixture) workDay(t *testing.T, date, from, to string, outside int) {
	t.Helper()
	ctx := context.Background()
	in, out := testutil.At(date, from), testutil.At(date, to)
	hours := attendance.HoursBetween(in, out)
	rec, err := f.store.Attendance().Create(ctx, attendance.Attendance{
		EmployeeID:   f.emp.ID,
		CheckInTime:  in,
		CheckOutTime: &out,
		Date:         date,
		Status:       attendance.StatusCompleted,
		WorkHours:    &hours,
	})
	require.NoError(t, err)
	for i := 0; i < outside; i++ {
		_, err := f.store.Pulses().Create(ctx, pulse.Pulse{
			EmployeeID:   f.emp.ID,
			AttendanceID: &rec.ID,
			Timestamp:    testutil.At(date, "10:00"),
			Source:       pulse.SourceDevice,
		})
		require.NoError(t, err)
	}
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func TestCalculateDailyWithFalsePulse(t *testing.T) {
	f := newFixture(t)
	f.workDay(t, "2024-03-04", "09:00", "17:00", 1)

	resp, err := f.svc.CalculateDaily(context.Background(), payroll.CalculateDailyRequest{
		EmployeeID: f.emp.ID,
		Date:       testutil.Ptr("2024-03-04"),
	})
	require.NoError(t, err)
	require.Len(t, resp.PerDay, 1)

	day := resp.PerDay[0]
	assert.Equal(t, 8.0, day.TotalWorkHours)
	assert.Equal(t, "480.00", money(day.GrossSalary))
	assert.Equal(t, 1, day.FalsePulsesCount)
	assert.Equal(t, "5.00", money(day.PulseDeductionAmount))
	assert.Equal(t, "475.00", money(day.NetSalary))
	assert.Equal(t, "2024-03-01", resp.Period.Start)
	assert.Equal(t, "2024-03-15", resp.Period.End)
	assert.Equal(t, "475.00", money(resp.PeriodTotals.Net))
}

func TestCalculateDailyIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.workDay(t, "2024-03-04", "09:00", "17:00", 1)
	req := payroll.CalculateDailyRequest{EmployeeID: f.emp.ID, Date: testutil.Ptr("2024-03-04")}

	first, err := f.svc.CalculateDaily(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.CalculateDaily(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.CalculationCount())
	assert.Equal(t, first.PerDay, second.PerDay)
	assert.Equal(t, "475.00", money(second.PeriodTotals.Net))

	assert.Equal(t, 1, f.store.PeriodCount())
	settled, err := f.store.Calculations().GetPeriod(context.Background(), f.emp.ID, "2024-03-01", "2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, settled)
	assert.Equal(t, 1, settled.DaysCalculated)
	assert.Equal(t, "475.00", money(settled.NetPayable))
}

func TestPeriodHoursRoundedAlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, date := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		f.workDay(t, date, "09:00", "09:06", 0)
	}

	daily, err := f.svc.CalculateDaily(ctx, payroll.CalculateDailyRequest{EmployeeID: f.emp.ID, RecalculatePeriod: true})
	require.NoError(t, err)
	period, err := f.svc.GetPeriodSalary(ctx, payroll.PeriodSalaryRequest{EmployeeID: f.emp.ID})
	require.NoError(t, err)

	assert.Equal(t, 0.3, daily.PeriodTotals.WorkHours)
	assert.Equal(t, daily.PeriodTotals, period.Totals)
}

func TestAbsenceDeductionFloorsNetAtZero(t *testing.T) {
	f := newFixture(t)
	posted, err := f.store.Ledger().Post(context.Background(), payroll.LedgerEntry{
		EmployeeID: f.emp.ID,
		EntryType:  payroll.LedgerAbsence,
		SourceID:   "absence-1",
		Amount:     decimal.NewFromInt(-800),
		EntryDate:  "2024-03-03",
	})
	require.NoError(t, err)
	require.True(t, posted)

	resp, err := f.svc.CalculateDaily(context.Background(), payroll.CalculateDailyRequest{
		EmployeeID: f.emp.ID,
		Date:       testutil.Ptr("2024-03-03"),
	})
	require.NoError(t, err)
	day := resp.PerDay[0]
	assert.Equal(t, "800.00", money(day.OtherDeductions))
	assert.Equal(t, "800.00", money(day.TotalDeductions))
	assert.Equal(t, "0.00", money(day.NetSalary))
}

func TestRecalculatePeriodCoversDaysThroughToday(t *testing.T) {
	f := newFixture(t)
	f.workDay(t, "2024-03-01", "09:00", "13:00", 0)
	f.workDay(t, "2024-03-04", "09:00", "17:00", 1)

	resp, err := f.svc.CalculateDaily(context.Background(), payroll.CalculateDailyRequest{
		EmployeeID:        f.emp.ID,
		RecalculatePeriod: true,
	})
	require.NoError(t, err)

	require.Len(t, resp.PerDay, 4)
	assert.Equal(t, "2024-03-01", resp.PerDay[0].Date)
	assert.Equal(t, "2024-03-04", resp.PerDay[3].Date)
	assert.Equal(t, "240.00", money(resp.PerDay[0].NetSalary))
	assert.Equal(t, "715.00", money(resp.PeriodTotals.Net))
	assert.Equal(t, 12.0, resp.PeriodTotals.WorkHours)

	_, err = f.svc.CalculateDaily(context.Background(), payroll.CalculateDailyRequest{
		EmployeeID:        f.emp.ID,
		Date:              testutil.Ptr("2024-03-01"),
		RecalculatePeriod: true,
	})
	assert.Error(t, err)
}

func TestGetPeriodSalarySubtractsApprovedAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.workDay(t, "2024-03-04", "09:00", "17:00", 1)
	_, err := f.svc.CalculateDaily(ctx, payroll.CalculateDailyRequest{EmployeeID: f.emp.ID, Date: testutil.Ptr("2024-03-04")})
	require.NoError(t, err)

	adv, err := f.store.Advances().Create(ctx, payroll.Advance{
		EmployeeID:  f.emp.ID,
		Amount:      decimal.NewFromInt(100),
		RequestedAt: testutil.At("2024-03-02", "12:00"),
	})
	require.NoError(t, err)
	ok, err := f.store.Advances().Resolve(ctx, adv.ID, payroll.AdvanceApproved, "manager", nil, f.clock.Now())
	require.NoError(t, err)
	require.True(t, ok)

	resp, err := f.svc.GetPeriodSalary(ctx, payroll.PeriodSalaryRequest{EmployeeID: f.emp.ID})
	require.NoError(t, err)
	assert.Len(t, resp.DailyBreakdown, 1)
	assert.Equal(t, "475.00", money(resp.Totals.Net))
	assert.Equal(t, "100.00", money(resp.Advances))
	assert.Equal(t, "375.00", money(resp.NetPayable))
	require.NotNil(t, resp.SettledAt)

	_, err = f.svc.CalculateDaily(ctx, payroll.CalculateDailyRequest{EmployeeID: f.emp.ID, Date: testutil.Ptr("2024-03-04")})
	require.NoError(t, err)
	settled, err := f.store.Calculations().GetPeriod(ctx, f.emp.ID, "2024-03-01", "2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, settled)
	assert.Equal(t, "100.00", money(settled.Advances))
	assert.Equal(t, "375.00", money(settled.NetPayable))
	assert.Equal(t, 1, f.store.PeriodCount())

	_, err = f.svc.GetPeriodSalary(ctx, payroll.PeriodSalaryRequest{
		EmployeeID: f.emp.ID,
		StartDate:  testutil.Ptr("2024-03-01"),
	})
	assert.Error(t, err)

	_, err = f.svc.GetPeriodSalary(ctx, payroll.PeriodSalaryRequest{
		EmployeeID: f.emp.ID,
		StartDate:  testutil.Ptr("2024-03-10"),
		EndDate:    testutil.Ptr("2024-03-01"),
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestAdvanceEligibility(t *testing.T) {
	t.Run("no earnings yet", func(t *testing.T) {
		f := newFixture(t)
		got, err := f.svc.CheckAdvanceEligibility(context.Background(), f.emp.ID)
		require.NoError(t, err)
		assert.False(t, got.Eligible)
		assert.Equal(t, payroll.ReasonNoEarnings, got.Reason)
		assert.Equal(t, payroll.NoPriorAdvanceDays, got.DaysSinceLastAdvance)
	})

	t.Run("waiting period", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.workDay(t, "2024-03-04", "09:00", "17:00", 1)
		_, err := f.svc.CalculateDaily(ctx, payroll.CalculateDailyRequest{EmployeeID: f.emp.ID})
		require.NoError(t, err)
		_, err = f.store.Advances().Create(ctx, payroll.Advance{
			EmployeeID:  f.emp.ID,
			Amount:      decimal.NewFromInt(50),
			RequestedAt: testutil.At("2024-03-01", "12:00"),
		})
		require.NoError(t, err)

		got, err := f.svc.CheckAdvanceEligibility(ctx, f.emp.ID)
		require.NoError(t, err)
		assert.False(t, got.Eligible)
		assert.Equal(t, payroll.ReasonWaitingPeriod, got.Reason)
		assert.Equal(t, 3, got.DaysSinceLastAdvance)
		assert.Equal(t, 2, got.RemainingDays)
	})

	t.Run("eligible", func(t *testing.T) {
		f := newFixture(t)
		f.workDay(t, "2024-03-04", "09:00", "17:00", 1)
		_, err := f.svc.CalculateDaily(context.Background(), payroll.CalculateDailyRequest{EmployeeID: f.emp.ID})
		require.NoError(t, err)

		got, err := f.svc.CheckAdvanceEligibility(context.Background(), f.emp.ID)
		require.NoError(t, err)
		assert.True(t, got.Eligible)
		assert.Equal(t, "475.00", money(got.TotalNetSalary))
		assert.Equal(t, "142.50", money(got.AvailableAdvance))
	})
}

func TestRequestAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.workDay(t, "2024-03-04", "09:00", "17:00", 1)
	_, err := f.svc.CalculateDaily(ctx, payroll.CalculateDailyRequest{EmployeeID: f.emp.ID})
	require.NoError(t, err)

	_, err = f.svc.RequestAdvance(ctx, payroll.RequestAdvanceRequest{EmployeeID: f.emp.ID, Amount: decimal.NewFromInt(200)})
	assert.ErrorIs(t, err, payroll.ErrAdvanceExceedsLimit)

	adv, err := f.svc.RequestAdvance(ctx, payroll.RequestAdvanceRequest{EmployeeID: f.emp.ID, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, payroll.AdvancePending, adv.Status)
	assert.NotEmpty(t, adv.ID)

	_, err = f.svc.RequestAdvance(ctx, payroll.RequestAdvanceRequest{EmployeeID: f.emp.ID, Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, payroll.ErrAdvanceNotEligible)

	_, err = f.svc.RequestAdvance(ctx, payroll.RequestAdvanceRequest{EmployeeID: f.emp.ID})
	assert.Error(t, err)
}

func TestRecalculateAll(t *testing.T) {
	f := newFixture(t)
	f.workDay(t, "2024-03-04", "09:00", "17:00", 0)
	f.store.PutEmployee(employee.Employee{FullName: "Omar Nabil", Role: user.RoleStaff, IsActive: true})
	f.store.PutEmployee(employee.Employee{FullName: "Former Staff", Role: user.RoleStaff})

	resp, err := f.svc.RecalculateAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", resp.Date)
	assert.Equal(t, 2, resp.Calculated)
	assert.Empty(t, resp.Failed)
	assert.Equal(t, 2, f.store.CalculationCount())
	assert.Equal(t, 2, f.store.PeriodCount())

	_, err = f.svc.RecalculateAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.PeriodCount())

	_, err = f.svc.RecalculateAll(context.Background(), "04/03/2024")
	assert.Error(t, err)
}
