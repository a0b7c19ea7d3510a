package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/approval"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var outside *attendance.OutsideAreaError
	if errors.As(err, &outside) {
		details := map[string]interface{}{}
		if outside.Distance != nil {
			details["distance"] = *outside.Distance
		}
		if outside.AllowedRadius != nil {
			details["allowed_radius"] = *outside.AllowedRadius
		}
		Fail(w, http.StatusForbidden, CodeOutsideAllowedArea, attendance.ErrOutsideAllowedArea.Error(), details)
		return
	}

	switch {
	// Token claims
	case errors.Is(err, user.ErrMissingClaims), errors.Is(err, user.ErrInvalidRole):
		Unauthorized(w, err.Error())

	// Attendance
	case errors.Is(err, attendance.ErrOutsideAllowedArea):
		Fail(w, http.StatusForbidden, CodeOutsideAllowedArea, err.Error(), nil)
	case errors.Is(err, attendance.ErrAlreadyActive):
		Fail(w, http.StatusConflict, CodeAlreadyActive, err.Error(), nil)
	case errors.Is(err, attendance.ErrNoActiveCheckIn):
		Fail(w, http.StatusBadRequest, CodeNoActiveCheckIn, err.Error(), nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound),
		errors.Is(err, attendance.ErrCorrectionNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, attendance.ErrNotOwner):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrCorrectionConflict):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrCorrectionTimeInvalid),
		errors.Is(err, attendance.ErrInvalidCorrectionType):
		BadRequest(w, err.Error(), nil)

	// Employees
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, err.Error())

	// Pulses
	case errors.Is(err, pulse.ErrEmptyBatch), errors.Is(err, pulse.ErrBatchTooLarge),
		errors.Is(err, pulse.ErrInvalidTimestamp), errors.Is(err, pulse.ErrInvalidGap):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, pulse.ErrNoActiveSession):
		Fail(w, http.StatusBadRequest, CodeNoActiveCheckIn, err.Error(), nil)
	case errors.Is(err, pulse.ErrSessionValidationNotFound):
		NotFound(w, err.Error())

	// Payroll
	case errors.Is(err, payroll.ErrAdvanceNotEligible), errors.Is(err, payroll.ErrAdvanceExceedsLimit),
		errors.Is(err, payroll.ErrInvalidPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrAdvanceNotFound):
		NotFound(w, err.Error())

	// Breaks
	case errors.Is(err, breaks.ErrBreakNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, breaks.ErrBreakNotApproved), errors.Is(err, breaks.ErrBreakNotActive):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, breaks.ErrBreakInvalid):
		Conflict(w, err.Error())

	// Leave and absences
	case errors.Is(err, leave.ErrLeaveRequestNotFound), errors.Is(err, absence.ErrAbsenceNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, leave.ErrLeaveTooLong):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, absence.ErrAbsenceExists):
		Conflict(w, err.Error())

	// Approvals
	case errors.Is(err, approval.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, approval.ErrRequestNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, approval.ErrRequestAlreadyProcessed):
		Conflict(w, err.Error())
	case errors.Is(err, approval.ErrInvalidAction):
		BadRequest(w, err.Error(), nil)

	// Notifications
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, notification.ErrInvalidNotificationType):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
