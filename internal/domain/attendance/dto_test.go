package attendance

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }
func sp(v string) *string   { return &v }

func TestCheckInRequestValidate(t *testing.T) {
	ok := CheckInRequest{EmployeeID: "e1", Latitude: fp(30), Longitude: fp(31)}
	assert.NoError(t, ok.Validate())

	wifiOnly := CheckInRequest{EmployeeID: "e1", WifiBSSID: sp("aa:bb")}
	assert.NoError(t, wifiOnly.Validate())

	bad := CheckInRequest{Latitude: fp(95), Timestamp: sp("yesterday")}
	err := bad.Validate()
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "employee_id")
	assert.Contains(t, fields, "latitude")
	assert.Contains(t, fields, "timestamp")
}

func TestCheckOutRequestValidate(t *testing.T) {
	assert.NoError(t, (&CheckOutRequest{EmployeeID: "e1"}).Validate())

	err := (&CheckOutRequest{EmployeeID: "e1", AttendanceID: sp("pending-1")}).Validate()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "attendance_id")
}

func TestCorrectionSubmitRequestValidate(t *testing.T) {
	r := CorrectionSubmitRequest{EmployeeID: "e1", RequestType: " Check_In ", RequestedTime: "2025-01-15T08:00:00+02:00", Reason: "forgot"}
	require.NoError(t, r.Validate())
	assert.Equal(t, "check_in", r.RequestType)

	err := (&CorrectionSubmitRequest{EmployeeID: "e1", RequestType: "lunch"}).Validate()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}

func TestMyAttendanceFilterDefaults(t *testing.T) {
	f := MyAttendanceFilter{Limit: 500}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	f = MyAttendanceFilter{Status: sp("paused")}
	assert.Error(t, f.Validate())
}

func TestHoursBetween(t *testing.T) {
	in := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 8.0, HoursBetween(in, in.Add(8*time.Hour)))
	assert.Equal(t, 0.0, HoursBetween(in, in.Add(-time.Hour)))
	assert.Equal(t, 0.33, HoursBetween(in, in.Add(20*time.Minute)))
}

func TestOutsideAreaError(t *testing.T) {
	err := error(&OutsideAreaError{Distance: fp(350), AllowedRadius: fp(200)})
	assert.ErrorIs(t, err, ErrOutsideAllowedArea)
	assert.Contains(t, err.Error(), "350m")
}
