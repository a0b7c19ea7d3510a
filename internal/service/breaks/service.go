package breaks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
)

// listLimit caps the break history returned to an employee.
const listLimit = 100

type BreakServiceImpl struct {
	breaks.BreakRepository
	employee.EmployeeRepository
	calendar *calendar.Calendar
}

// Request implements breaks.BreakService.
func (s *BreakServiceImpl) Request(ctx context.Context, req breaks.CreateBreakRequest) (breaks.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return breaks.BreakResponse{}, err
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return breaks.BreakResponse{}, err
	}
	if !emp.IsActive {
		return breaks.BreakResponse{}, employee.ErrEmployeeInactive
	}

	b, err := s.BreakRepository.Create(ctx, breaks.Break{
		EmployeeID:       emp.ID,
		RequestedMinutes: req.DurationMinutes,
		Status:           breaks.StatusPending,
	})
	if err != nil {
		slog.Error("Failed to create break request", "employee_id", emp.ID, "error", err)
		return breaks.BreakResponse{}, fmt.Errorf("failed to create break: %w", err)
	}
	return breaks.ToResponse(b), nil
}

// owned loads a break of the caller. Another employee's break reads as not found.
func (s *BreakServiceImpl) owned(ctx context.Context, employeeID, breakID string) (breaks.Break, error) {
	b, err := s.BreakRepository.GetByID(ctx, breakID)
	if err != nil {
		if errors.Is(err, breaks.ErrBreakNotFound) {
			return breaks.Break{}, err
		}
		return breaks.Break{}, fmt.Errorf("failed to get break: %w", err)
	}
	if b.EmployeeID != employeeID {
		return breaks.Break{}, breaks.ErrBreakNotFound
	}
	return b, nil
}

// Start implements breaks.BreakService. Repeating it on a started break returns the
// break unchanged.
func (s *BreakServiceImpl) Start(ctx context.Context, req breaks.TransitionRequest) (breaks.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return breaks.BreakResponse{}, err
	}
	b, err := s.owned(ctx, req.EmployeeID, req.BreakID)
	if err != nil {
		return breaks.BreakResponse{}, err
	}

	switch b.Status {
	case breaks.StatusActive:
		return breaks.ToResponse(b), nil
	case breaks.StatusApproved:
	case breaks.StatusCompleted:
		return breaks.BreakResponse{}, breaks.ErrBreakInvalid
	default:
		return breaks.BreakResponse{}, breaks.ErrBreakNotApproved
	}

	start, err := s.calendar.EventTime(req.Timestamp)
	if err != nil {
		return breaks.BreakResponse{}, err
	}
	updated, ok, err := s.BreakRepository.Transition(ctx, b.ID, []breaks.Status{breaks.StatusApproved}, breaks.StatusActive,
		breaks.TransitionUpdate{BreakStart: &start})
	if err != nil {
		return breaks.BreakResponse{}, fmt.Errorf("failed to start break: %w", err)
	}
	if !ok && updated.Status != breaks.StatusActive {
		return breaks.BreakResponse{}, fmt.Errorf("%w: %s", breaks.ErrBreakInvalid, updated.Status)
	}

	slog.Info("Break started", "employee_id", b.EmployeeID, "break_id", b.ID)
	return breaks.ToResponse(updated), nil
}

// End implements breaks.BreakService. Actual minutes come from the recorded start and
// end, not the requested duration.
func (s *BreakServiceImpl) End(ctx context.Context, req breaks.TransitionRequest) (breaks.BreakResponse, error) {
	if err := req.Validate(); err != nil {
		return breaks.BreakResponse{}, err
	}
	b, err := s.owned(ctx, req.EmployeeID, req.BreakID)
	if err != nil {
		return breaks.BreakResponse{}, err
	}

	switch b.Status {
	case breaks.StatusCompleted:
		return breaks.ToResponse(b), nil
	case breaks.StatusActive:
	default:
		return breaks.BreakResponse{}, breaks.ErrBreakNotActive
	}

	end, err := s.calendar.EventTime(req.Timestamp)
	if err != nil {
		return breaks.BreakResponse{}, err
	}
	minutes := 0
	if b.BreakStart != nil {
		minutes = breaks.ElapsedMinutes(*b.BreakStart, end)
	}

	updated, ok, err := s.BreakRepository.Transition(ctx, b.ID, []breaks.Status{breaks.StatusActive}, breaks.StatusCompleted,
		breaks.TransitionUpdate{BreakEnd: &end, ActualMinutes: &minutes})
	if err != nil {
		return breaks.BreakResponse{}, fmt.Errorf("failed to end break: %w", err)
	}
	if !ok && updated.Status != breaks.StatusCompleted {
		return breaks.BreakResponse{}, fmt.Errorf("%w: %s", breaks.ErrBreakInvalid, updated.Status)
	}

	slog.Info("Break ended", "employee_id", b.EmployeeID, "break_id", b.ID, "actual_minutes", minutes)
	return breaks.ToResponse(updated), nil
}

// List implements breaks.BreakService.
func (s *BreakServiceImpl) List(ctx context.Context, employeeID string) ([]breaks.BreakResponse, error) {
	rows, err := s.BreakRepository.ListByEmployee(ctx, employeeID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	out := make([]breaks.BreakResponse, 0, len(rows))
	for _, b := range rows {
		out = append(out, breaks.ToResponse(b))
	}
	return out, nil
}

// DeleteRejected implements breaks.BreakService.
func (s *BreakServiceImpl) DeleteRejected(ctx context.Context, employeeID string) (breaks.DeleteRejectedResponse, error) {
	n, err := s.BreakRepository.DeleteRejected(ctx, employeeID)
	if err != nil {
		return breaks.DeleteRejectedResponse{}, fmt.Errorf("failed to delete rejected breaks: %w", err)
	}
	return breaks.DeleteRejectedResponse{Deleted: n}, nil
}

func NewBreakService(breakRepo breaks.BreakRepository, employeeRepo employee.EmployeeRepository, cal *calendar.Calendar) breaks.BreakService {
	return &BreakServiceImpl{
		BreakRepository:    breakRepo,
		EmployeeRepository: employeeRepo,
		calendar:           cal,
	}
}
