package http

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/response"
)

type PayrollHandler interface {
	CalculateDaily(w http.ResponseWriter, r *http.Request)
	GetPeriodSalary(w http.ResponseWriter, r *http.Request)
	AdvanceEligibility(w http.ResponseWriter, r *http.Request)
	RequestAdvance(w http.ResponseWriter, r *http.Request)
	RecalculateAll(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{payrollService: payrollService}
}

// ========== DAILY ==========

func (h *payrollHandlerImpl) CalculateDaily(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req payroll.CalculateDailyRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	if req.EmployeeID, ok = targetEmployee(w, actor, req.EmployeeID); !ok {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.CalculateDaily(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== PERIOD ==========

func (h *payrollHandlerImpl) GetPeriodSalary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	req := payroll.PeriodSalaryRequest{
		StartDate: getOptionalQueryParam(r, "start_date"),
		EndDate:   getOptionalQueryParam(r, "end_date"),
	}
	if req.EmployeeID, ok = targetEmployee(w, actor, r.URL.Query().Get("employee_id")); !ok {
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetPeriodSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== ADVANCES ==========

func (h *payrollHandlerImpl) AdvanceEligibility(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.payrollService.CheckAdvanceEligibility(r.Context(), actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) RequestAdvance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req payroll.RequestAdvanceRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.RequestAdvance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Advance requested", result)
}

// ========== BULK ==========

func (h *payrollHandlerImpl) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if !decodeBody(w, r, &req, true) {
		return
	}

	result, err := h.payrollService.RecalculateAll(r.Context(), req.Date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
