package absence

import "context"

type DetectionResult struct {
	Date     string   `json:"date"`
	Checked  int      `json:"checked"`
	Created  []string `json:"created"`
	Failures int      `json:"failures"`
}

type AbsenceService interface {
	// Detect records absences for every shift that ended without attendance.
	Detect(ctx context.Context) (DetectionResult, error)
}
