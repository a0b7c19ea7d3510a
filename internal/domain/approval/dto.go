package approval

import (
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ResolveRequest is the normalized review command. ReviewerID comes from the token.
type ResolveRequest struct {
	Type       string  `json:"type"`
	ID         string  `json:"id"`
	Action     string  `json:"action"`
	Notes      *string `json:"notes,omitempty"`
	ReviewerID string  `json:"-"`
}

func (r *ResolveRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Type = normalize(r.Type)
	r.Action = normalize(r.Action)

	if !validator.IsInSlice(r.Type, AllKinds()) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be one of leave, advance, attendance, absence, break, session_validation"})
	}
	if !validator.IsValidUUID(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id must be a valid UUID"})
	}
	if !validator.IsInSlice(r.Action, []string{string(ActionApprove), string(ActionReject), string(ActionPostpone)}) {
		errs = append(errs, validator.ValidationError{Field: "action", Message: "action must be approve, reject or postpone"})
	} else if Action(r.Action) == ActionPostpone && Kind(r.Type) != KindBreak {
		errs = append(errs, validator.ValidationError{Field: "action", Message: ErrInvalidAction.Error()})
	}
	if validator.IsEmpty(r.ReviewerID) {
		errs = append(errs, validator.ValidationError{Field: "reviewer_id", Message: "reviewer is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ResolveResponse echoes the outcome and the updated record.
type ResolveResponse struct {
	Type   Kind        `json:"type"`
	ID     string      `json:"id"`
	Action Action      `json:"action"`
	Status string      `json:"status"`
	Record interface{} `json:"record,omitempty"`
}

// RecordSummary is the reviewed request as stored after the decision, for request
// families without a richer response type.
type RecordSummary struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employee_id"`
	Status           string           `json:"status"`
	ReviewNotes      *string          `json:"review_notes,omitempty"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	DeductionApplied *bool            `json:"deduction_applied,omitempty"`
	AttendanceID     *string          `json:"attendance_id,omitempty"`
	PulsesCreated    *int             `json:"pulses_created,omitempty"`
}
