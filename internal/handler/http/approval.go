package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/approval"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/response"
)

type ApprovalHandler interface {
	Resolve(w http.ResponseWriter, r *http.Request)
}

type approvalHandlerImpl struct {
	approvalService approval.ApprovalService
}

func NewApprovalHandler(approvalService approval.ApprovalService) ApprovalHandler {
	return &approvalHandlerImpl{approvalService: approvalService}
}

// Resolve applies a reviewer decision. The reviewer is always the caller.
func (h *approvalHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req approval.ResolveRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	req.ReviewerID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.approvalService.Resolve(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Request "+result.Status, result)
}
