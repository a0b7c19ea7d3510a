package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/branch"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/jwt"
	approvalsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/approval"
	attendancesvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/attendance"
	branchsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/branch"
	breaksvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/breaks"
	leavesvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/leave"
	notificationsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/notification"
	payrollsvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/payroll"
	pulsesvc "github.com/cmlabs-hris/attendance-engine-go/internal/service/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil"
	"github.com/cmlabs-hris/attendance-engine-go/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt"
	centerLat         = 30.0444
	centerLon         = 31.2357
)

type apiFixture struct {
	router   http.Handler
	store    *memstore.Store
	notifier notification.Notifier
	jwt      jwt.Service
	staff    employee.Employee
	manager  employee.Employee
	owner    employee.Employee
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	clock := testutil.NewClock(testutil.At("2024-03-04", "09:00"))
	store := memstore.New(clock.Now)
	cal := testutil.Calendar(clock)
	policy := config.DefaultPolicy()

	b := store.PutBranch(branch.Branch{
		Name:           "Downtown",
		Latitude:       testutil.Ptr(centerLat),
		Longitude:      testutil.Ptr(centerLon),
		GeofenceRadius: testutil.Ptr(100.0),
		WifiBSSID:      testutil.Ptr("AA:BB:CC:DD:EE:FF"),
	})
	owner := store.PutEmployee(employee.Employee{FullName: "Owner", Role: user.RoleOwner, IsActive: true})
	manager := store.PutEmployee(employee.Employee{FullName: "Manager", Role: user.RoleManager, BranchID: &b.ID, IsActive: true})
	staff := store.PutEmployee(employee.Employee{FullName: "Staff", Role: user.RoleStaff, BranchID: &b.ID, IsActive: true})

	notifier := notificationsvc.NewNotificationService(store.Notifications(), notificationsvc.Config{FlushInterval: time.Hour})
	t.Cleanup(notifier.Stop)
	locator := branchsvc.NewLocator(store.Branches(), policy)

	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	handlers := Handlers{
		Attendance: NewAttendanceHandler(attendancesvc.NewAttendanceService(store.Attendance(), store.Summaries(), store.Corrections(),
			store.Employees(), store.Pulses(), store.Violations(), locator, cal, policy)),
		Pulse: NewPulseHandler(pulsesvc.NewPulseService(store.Pulses(), store.Violations(), store.Attendance(), store.Employees(),
			store.Breaks(), store.SessionValidations(), locator, notifier, cal, policy)),
		Payroll: NewPayrollHandler(payrollsvc.NewPayrollService(store.Calculations(), store.Ledger(), store.Advances(),
			store.Attendance(), store.Pulses(), store.Employees(), cal, policy)),
		Break: NewBreakHandler(breaksvc.NewBreakService(store.Breaks(), store.Employees(), cal)),
		Leave: NewLeaveHandler(leavesvc.NewLeaveService(store.Leaves(), store.Employees())),
		Approval: NewApprovalHandler(approvalsvc.NewApprovalService(store, approvalsvc.Repositories{
			Employees:   store.Employees(),
			Leaves:      store.Leaves(),
			Advances:    store.Advances(),
			Ledger:      store.Ledger(),
			Attendance:  store.Attendance(),
			Summaries:   store.Summaries(),
			Corrections: store.Corrections(),
			Absences:    store.Absences(),
			Breaks:      store.Breaks(),
			Pulses:      store.Pulses(),
			Validations: store.SessionValidations(),
		}, notifier, cal, policy)),
		Notification: NewNotificationHandler(notifier),
	}

	router := NewRouter(RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}, jwtService, handlers)

	return &apiFixture{router: router, store: store, notifier: notifier, jwt: jwtService, staff: staff, manager: manager, owner: owner}
}

func (f *apiFixture) token(t *testing.T, emp employee.Employee) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(user.Actor{EmployeeID: emp.ID, Role: emp.Role, BranchID: emp.BranchID}, 0)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec.Code, env
}

func TestHeartbeatAndAuth(t *testing.T) {
	f := newAPIFixture(t)

	code, _ := f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/attendance/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	other := jwt.NewJWTService("another-secret", "1h")
	forged, _, err := other.GenerateAccessToken(user.Actor{EmployeeID: f.staff.ID, Role: user.RoleOwner}, 0)
	require.NoError(t, err)
	code, _ = f.do(t, http.MethodGet, "/api/v1/attendance/my", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCheckInErrorCodes(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.staff)

	code, env := f.do(t, http.MethodPost, "/api/v1/attendance/check-in", token,
		map[string]float64{"latitude": centerLat + 0.01, "longitude": centerLon})
	require.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "OUTSIDE_ALLOWED_AREA", env.Error.Code)
	assert.InDelta(t, 1112, env.Error.Details["distance"], 1)
	assert.Equal(t, 100.0, env.Error.Details["allowed_radius"])

	code, env = f.do(t, http.MethodPost, "/api/v1/attendance/check-out", token, nil)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "NO_ACTIVE_CHECKIN", env.Error.Code)

	code, env = f.do(t, http.MethodPost, "/api/v1/attendance/check-in", token,
		map[string]float64{"latitude": centerLat, "longitude": centerLon})
	require.Equal(t, http.StatusCreated, code)
	var checkIn struct {
		Attendance struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"attendance"`
		Validation struct {
			Location bool `json:"location"`
		} `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &checkIn))
	assert.Equal(t, "active", checkIn.Attendance.Status)
	assert.True(t, checkIn.Validation.Location)

	code, env = f.do(t, http.MethodPost, "/api/v1/attendance/check-in", token,
		map[string]float64{"latitude": centerLat, "longitude": centerLon})
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_ACTIVE", env.Error.Code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/attendance/"+checkIn.Attendance.ID, token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/attendance/"+checkIn.Attendance.ID, f.token(t, f.manager), nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestValidationAndMalformedBodies(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.staff)

	code, env := f.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, map[string]float64{"latitude": centerLat})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "latitude")

	code, env = f.do(t, http.MethodPost, "/api/v1/leave-requests", token, "{not json")
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	code, _ = f.do(t, http.MethodPost, "/api/v1/pulses", token, "[]")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRoleGates(t *testing.T) {
	f := newAPIFixture(t)
	staff := f.token(t, f.staff)

	code, env := f.do(t, http.MethodPost, "/api/v1/approvals", staff,
		map[string]string{"type": "leave", "id": "0190a4b2-7c3e-7d4f-8a9b-0c1d2e3f4a5b", "action": "approve"})
	require.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = f.do(t, http.MethodPost, "/api/v1/payroll/recalculate", f.token(t, f.manager), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/payroll/period?employee_id="+f.manager.ID, staff, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = f.do(t, http.MethodPost, "/api/v1/payroll/recalculate", f.token(t, f.owner), map[string]string{"date": "2024-03-03"})
	require.Equal(t, http.StatusOK, code)
	var recalc struct {
		Calculated int `json:"calculated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &recalc))
	assert.Equal(t, 3, recalc.Calculated)
}

func TestLeaveApprovalFlow(t *testing.T) {
	f := newAPIFixture(t)

	code, env := f.do(t, http.MethodPost, "/api/v1/leave-requests", f.token(t, f.staff), map[string]string{
		"start_date": "2024-03-06",
		"end_date":   "2024-03-07",
		"reason":     "family",
	})
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)

	decision := map[string]string{"type": "leave", "id": created.ID, "action": "approve"}
	code, env = f.do(t, http.MethodPost, "/api/v1/approvals", f.token(t, f.manager), decision)
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = f.do(t, http.MethodPost, "/api/v1/approvals", f.token(t, f.manager), decision)
	require.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	f.notifier.Stop()
	code, env = f.do(t, http.MethodGet, "/api/v1/notifications", f.token(t, f.staff), nil)
	require.Equal(t, http.StatusOK, code)
	var list notification.NotificationListResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Notifications, 1)

	code, _ = f.do(t, http.MethodGet, "/api/v1/notifications?type=absence_alert", f.token(t, f.staff), nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodGet, "/api/v1/notifications?type=birthday", f.token(t, f.staff), nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// Someone else's notification id reads as missing.
	read := map[string][]string{"notification_ids": {list.Notifications[0].ID}}
	code, _ = f.do(t, http.MethodPost, "/api/v1/notifications/read", f.token(t, f.manager), read)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodPost, "/api/v1/notifications/read", f.token(t, f.staff), read)
	assert.Equal(t, http.StatusOK, code)
}

func TestPulsesAndBreaks(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.staff)

	code, _ := f.do(t, http.MethodPost, "/api/v1/attendance/check-in", token,
		map[string]float64{"latitude": centerLat, "longitude": centerLon})
	require.Equal(t, http.StatusCreated, code)

	code, env := f.do(t, http.MethodPost, "/api/v1/pulses", token, map[string]interface{}{
		"pulses": []map[string]float64{
			{"latitude": centerLat, "longitude": centerLon},
			{"latitude": centerLat, "longitude": centerLon},
		},
	})
	require.Equal(t, http.StatusOK, code)
	var ingest struct {
		Inserted int `json:"inserted"`
		Failed   int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &ingest))
	assert.Equal(t, 2, ingest.Inserted)
	assert.Zero(t, ingest.Failed)

	code, env = f.do(t, http.MethodPost, "/api/v1/breaks", token, map[string]int{"duration_minutes": 15})
	require.Equal(t, http.StatusCreated, code)
	var brk struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &brk))

	code, env = f.do(t, http.MethodPost, "/api/v1/breaks/"+brk.ID+"/start", token, nil)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)

	code, _ = f.do(t, http.MethodGet, "/api/v1/breaks", token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestSessionValidationFlow(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, f.staff)

	code, env := f.do(t, http.MethodPost, "/api/v1/pulses/session-validations", token, map[string]string{
		"gap_start": "2024-03-04T08:00:00+02:00",
		"gap_end":   "2024-03-04T08:30:00+02:00",
		"reason":    "phone was off",
	})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "NO_ACTIVE_CHECKIN", env.Error.Code)

	code, _ = f.do(t, http.MethodPost, "/api/v1/attendance/check-in", token,
		map[string]float64{"latitude": centerLat, "longitude": centerLon})
	require.Equal(t, http.StatusCreated, code)

	code, env = f.do(t, http.MethodPost, "/api/v1/pulses/session-validations", token, map[string]string{
		"gap_start": "2024-03-04T08:00:00+02:00",
		"gap_end":   "2024-03-04T08:30:00+02:00",
		"reason":    "phone was off",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var filed struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &filed))

	code, env = f.do(t, http.MethodPost, "/api/v1/approvals", f.token(t, f.manager),
		map[string]string{"type": "session_validation", "id": filed.ID, "action": "approve"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var resolved struct {
		Status string `json:"status"`
		Record struct {
			PulsesCreated int `json:"pulses_created"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.Equal(t, "approved", resolved.Status)
	assert.Equal(t, 5, resolved.Record.PulsesCreated)
}
