package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/jwt"
	absencesvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/absence"
	notificationsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/notification"
	payrollsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil/memstore"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "cli-test-secret"

type cliFixture struct {
	store  *memstore.Store
	staff  employee.Employee
	deps   Deps
	closed int
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	clock := testutil.NewClock(testutil.At("2024-03-04", "18:00"))
	store := memstore.New(clock.Now)
	cal := testutil.Calendar(clock)
	policy := config.DefaultPolicy()

	b := store.PutBranch(branch.Branch{Name: "Downtown"})
	store.PutEmployee(employee.Employee{FullName: "Owner", Role: user.RoleOwner, IsActive: true})
	rate := decimal.NewFromInt(50)
	staff := store.PutEmployee(employee.Employee{
		FullName:       "Staff",
		Role:           user.RoleStaff,
		BranchID:       &b.ID,
		HourlyRate:     &rate,
		ShiftStartTime: testutil.Ptr("09:00"),
		ShiftEndTime:   testutil.Ptr("17:00"),
		IsActive:       true,
	})

	f := &cliFixture{store: store, staff: staff}
	f.deps = Deps{
		Services: func(ctx context.Context, opts *RootOptions) (*Services, error) {
			notifier := notificationsvc.NewNotificationService(store.Notifications(), notificationsvc.Config{FlushInterval: time.Hour})
			return &Services{
				Absences: absencesvc.NewAbsenceService(store.Absences(), store.Attendance(), store.Summaries(),
					store.Employees(), store.Branches(), notifier, cal, policy),
				Payroll: payrollsvc.NewPayrollService(store.Calculations(), store.Ledger(), store.Advances(),
					store.Attendance(), store.Pulses(), store.Employees(), cal, policy),
				Close: func() {
					notifier.Stop()
					f.closed++
				},
			}, nil
		},
		Tokens: func(opts *RootOptions) (jwt.Service, error) {
			return jwt.NewJWTService(testSecret, "1h"), nil
		},
	}
	return f
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(f.deps)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(Deps{})

	t.Run("has subcommands", func(t *testing.T) {
		names := map[string]bool{}
		for _, sub := range cmd.Commands() {
			names[sub.Name()] = true
		}
		assert.True(t, names["detect-absences"])
		assert.True(t, names["recalc-salary"])
		assert.True(t, names["issue-token"])
	})

	t.Run("has global flags", func(t *testing.T) {
		assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
		format := cmd.PersistentFlags().Lookup("format")
		require.NotNil(t, format)
		assert.Equal(t, "text", format.DefValue)
	})
}

func TestRootCommand_RejectsUnknownFormat(t *testing.T) {
	f := newCLIFixture(t)
	_, _, err := f.run(t, "--format", "yaml", "detect-absences")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Zero(t, f.closed)
}

func TestDetectAbsences(t *testing.T) {
	f := newCLIFixture(t)

	stdout, _, err := f.run(t, "detect-absences")
	require.NoError(t, err)
	assert.Contains(t, stdout, "date 2024-03-04: checked 1, recorded 1, failures 0")
	assert.Len(t, f.store.AllAbsences(), 1)
	assert.Equal(t, 1, f.closed)

	stdout, _, err = f.run(t, "--format", "json", "detect-absences")
	require.NoError(t, err)
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Created []string `json:"created"`
			Checked int      `json:"checked"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Checked)
	assert.Empty(t, resp.Data.Created)
	assert.Len(t, f.store.AllAbsences(), 1)
}

func TestRecalcSalary(t *testing.T) {
	f := newCLIFixture(t)
	in, out := testutil.At("2024-03-04", "09:00"), testutil.At("2024-03-04", "17:00")
	hours := attendance.HoursBetween(in, out)
	_, err := f.store.Attendance().Create(context.Background(), attendance.Attendance{
		EmployeeID:   f.staff.ID,
		CheckInTime:  in,
		CheckOutTime: &out,
		Date:         "2024-03-04",
		Status:       attendance.StatusCompleted,
		WorkHours:    &hours,
	})
	require.NoError(t, err)

	t.Run("one employee and day", func(t *testing.T) {
		stdout, _, err := f.run(t, "recalc-salary", "--employee", f.staff.ID, "--date", "2024-03-04")
		require.NoError(t, err)
		assert.Contains(t, stdout, "period 2024-03-01..2024-03-15")
		assert.Contains(t, stdout, "gross 400.00")
		assert.Contains(t, stdout, "period net 400.00")
	})

	t.Run("all employees as json", func(t *testing.T) {
		stdout, stderr, err := f.run(t, "--format", "json", "--verbose", "recalc-salary", "--all", "--date", "2024-03-04")
		require.NoError(t, err)
		assert.Contains(t, stderr, "Recalculating all employees")
		var resp struct {
			Data struct {
				Date       string `json:"date"`
				Calculated int    `json:"calculated"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
		assert.Equal(t, "2024-03-04", resp.Data.Date)
		assert.Equal(t, 2, resp.Data.Calculated)
	})

	t.Run("flag validation", func(t *testing.T) {
		cases := map[string][]string{
			"neither":     {"recalc-salary"},
			"both":        {"recalc-salary", "--all", "--employee", f.staff.ID},
			"period all":  {"recalc-salary", "--all", "--period"},
			"date+period": {"recalc-salary", "--employee", f.staff.ID, "--period", "--date", "2024-03-04"},
			"bad date":    {"recalc-salary", "--employee", f.staff.ID, "--date", "04-03-2024"},
		}
		for name, args := range cases {
			t.Run(name, func(t *testing.T) {
				_, _, err := f.run(t, args...)
				assert.Error(t, err)
			})
		}
	})
}

func TestIssueToken(t *testing.T) {
	f := newCLIFixture(t)

	stdout, _, err := f.run(t, "issue-token", "--employee", "emp-1", "--role", "manager", "--branch", "branch-1")
	require.NoError(t, err)
	assert.Zero(t, f.closed)

	tok, err := jwtauth.VerifyToken(jwtauth.New("HS256", []byte(testSecret), nil), strings.TrimSpace(stdout))
	require.NoError(t, err)
	actor, err := jwt.ActorFromClaims(tok.PrivateClaims())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", actor.EmployeeID)
	assert.Equal(t, user.RoleManager, actor.Role)
	require.NotNil(t, actor.BranchID)
	assert.Equal(t, "branch-1", *actor.BranchID)

	_, _, err = f.run(t, "issue-token", "--employee", "emp-1", "--role", "janitor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid role")

	_, _, err = f.run(t, "issue-token", "--role", "staff")
	assert.Error(t, err)
}

func TestWithServices_PropagatesLoadError(t *testing.T) {
	loadErr := errors.New("database unavailable")
	deps := Deps{Services: func(context.Context, *RootOptions) (*Services, error) { return nil, loadErr }}
	err := withServices(context.Background(), &RootOptions{}, deps, func(*Services) error { return nil })
	assert.ErrorIs(t, err, loadErr)
}
