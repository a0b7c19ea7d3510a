package breaks

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
)

// MaxBreakMinutes bounds one requested break.
const MaxBreakMinutes = 240

type CreateBreakRequest struct {
	EmployeeID      string `json:"-"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (r *CreateBreakRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.DurationMinutes <= 0 {
		errs = append(errs, validator.ValidationError{Field: "duration_minutes", Message: "duration_minutes must be greater than zero"})
	} else if r.DurationMinutes > MaxBreakMinutes {
		errs = append(errs, validator.ValidationError{Field: "duration_minutes", Message: "duration_minutes is too long"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TransitionRequest starts or ends a break. Timestamp defaults to now.
type TransitionRequest struct {
	EmployeeID string  `json:"-"`
	BreakID    string  `json:"-"`
	Timestamp  *string `json:"timestamp,omitempty"`
}

func (r *TransitionRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !validator.IsValidUUID(r.BreakID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "break id must be a valid UUID"})
	}
	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be RFC3339"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BreakResponse struct {
	ID               string     `json:"id"`
	EmployeeID       string     `json:"employee_id"`
	RequestedMinutes int        `json:"requested_minutes"`
	Status           Status     `json:"status"`
	PayoutEligible   bool       `json:"payout_eligible"`
	BreakStart       *time.Time `json:"break_start"`
	BreakEnd         *time.Time `json:"break_end"`
	ActualMinutes    *int       `json:"actual_minutes"`
	ReviewNotes      *string    `json:"review_notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func ToResponse(b Break) BreakResponse {
	return BreakResponse{
		ID:               b.ID,
		EmployeeID:       b.EmployeeID,
		RequestedMinutes: b.RequestedMinutes,
		Status:           b.Status,
		PayoutEligible:   b.PayoutEligible,
		BreakStart:       b.BreakStart,
		BreakEnd:         b.BreakEnd,
		ActualMinutes:    b.ActualMinutes,
		ReviewNotes:      b.ReviewNotes,
		CreatedAt:        b.CreatedAt,
	}
}

type DeleteRejectedResponse struct {
	Deleted int64 `json:"deleted"`
}
