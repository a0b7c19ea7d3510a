package attendance

import (
	"context"
)

// AttendanceService drives the per-employee session state machine.
type AttendanceService interface {
	// CheckIn opens or reactivates today's session after validating location and Wi-Fi.
	CheckIn(ctx context.Context, req CheckInRequest) (CheckInResponse, error)

	// CheckOut closes the active session. Validation failures are logged only.
	CheckOut(ctx context.Context, req CheckOutRequest) (CheckOutResponse, error)

	GetByID(ctx context.Context, employeeID, id string) (Attendance, error)

	ListMine(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// SubmitCorrection files a pending missed check-in/check-out request.
	SubmitCorrection(ctx context.Context, req CorrectionSubmitRequest) (CorrectionRequest, error)
}
