package pulse

import "context"

type PulseService interface {
	// Ingest classifies and stores each pulse independently.
	Ingest(ctx context.Context, pulses []PulseInput) (IngestResult, error)

	LogViolation(ctx context.Context, report ViolationReport) (Violation, error)

	// RequestSessionValidation files a gap in the employee's session for review.
	RequestSessionValidation(ctx context.Context, req SessionValidationSubmitRequest) (SessionValidation, error)
}
