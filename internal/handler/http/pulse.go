package http

import (
	"io"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/response"
)

type PulseHandler interface {
	Ingest(w http.ResponseWriter, r *http.Request)
	ReportViolation(w http.ResponseWriter, r *http.Request)
	RequestSessionValidation(w http.ResponseWriter, r *http.Request)
}

type pulseHandlerImpl struct {
	pulseService pulse.PulseService
}

func NewPulseHandler(pulseService pulse.PulseService) PulseHandler {
	return &pulseHandlerImpl{pulseService: pulseService}
}

// Ingest accepts one pulse, an array, or {"pulses": [...]} and reports per-pulse outcomes.
func (h *pulseHandlerImpl) Ingest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	pulses, err := pulse.DecodeBatch(raw)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	for i := range pulses {
		pulses[i].EmployeeID = actor.EmployeeID
	}

	result, err := h.pulseService.Ingest(r.Context(), pulses)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ReportViolation implements PulseHandler.
func (h *pulseHandlerImpl) ReportViolation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req pulse.ViolationReport
	if !decodeBody(w, r, &req, false) {
		return
	}
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.pulseService.LogViolation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Violation recorded", result)
}

// RequestSessionValidation files a gap in the caller's session for manager review.
func (h *pulseHandlerImpl) RequestSessionValidation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req pulse.SessionValidationSubmitRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.pulseService.RequestSessionValidation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Session validation requested", result)
}
