package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type BreakHandler interface {
	Request(w http.ResponseWriter, r *http.Request)
	Start(w http.ResponseWriter, r *http.Request)
	End(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	DeleteRejected(w http.ResponseWriter, r *http.Request)
}

type breakHandlerImpl struct {
	breakService breaks.BreakService
}

func NewBreakHandler(breakService breaks.BreakService) BreakHandler {
	return &breakHandlerImpl{breakService: breakService}
}

func (h *breakHandlerImpl) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req breaks.CreateBreakRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.breakService.Request(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Break requested", result)
}

// transition decodes the optional timestamp body shared by start and end.
func (h *breakHandlerImpl) transition(w http.ResponseWriter, r *http.Request) (breaks.TransitionRequest, bool) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return breaks.TransitionRequest{}, false
	}

	var req breaks.TransitionRequest
	if !decodeBody(w, r, &req, true) {
		return breaks.TransitionRequest{}, false
	}
	req.EmployeeID = actor.EmployeeID
	req.BreakID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return breaks.TransitionRequest{}, false
	}
	return req, true
}

func (h *breakHandlerImpl) Start(w http.ResponseWriter, r *http.Request) {
	req, ok := h.transition(w, r)
	if !ok {
		return
	}

	result, err := h.breakService.Start(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break started", result)
}

func (h *breakHandlerImpl) End(w http.ResponseWriter, r *http.Request) {
	req, ok := h.transition(w, r)
	if !ok {
		return
	}

	result, err := h.breakService.End(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", result)
}

func (h *breakHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.breakService.List(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *breakHandlerImpl) DeleteRejected(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.breakService.DeleteRejected(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
