package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
)

type pulseRepo struct{ s *Store }

func (s *Store) Pulses() pulse.PulseRepository { return pulseRepo{s} }

func (r pulseRepo) Create(ctx context.Context, p pulse.Pulse) (pulse.Pulse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = r.s.now()
	r.s.pulses = append(r.s.pulses, p)
	return p, nil
}

func (r pulseRepo) LatestForAttendance(ctx context.Context, attendanceID string, limit int) ([]pulse.Pulse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []pulse.Pulse
	for _, p := range r.s.pulses {
		if p.AttendanceID != nil && *p.AttendanceID == attendanceID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r pulseRepo) CountOutside(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, p := range r.s.pulses {
		if p.EmployeeID != employeeID || p.InsideGeofence || p.OnBreak {
			continue
		}
		if !p.Timestamp.Before(from) && p.Timestamp.Before(to) {
			n++
		}
	}
	return n, nil
}

// AllPulses returns a copy of every stored pulse in insertion order.
func (s *Store) AllPulses() []pulse.Pulse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pulse.Pulse(nil), s.pulses...)
}

type violationRepo struct{ s *Store }

func (s *Store) Violations() pulse.ViolationRepository { return violationRepo{s} }

func (r violationRepo) Create(ctx context.Context, v pulse.Violation) (pulse.Violation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v.ID == "" {
		v.ID = newID()
	}
	v.CreatedAt = r.s.now()
	r.s.violations = append(r.s.violations, v)
	return v, nil
}

// AllViolations returns a copy of every stored violation in insertion order.
func (s *Store) AllViolations() []pulse.Violation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]pulse.Violation(nil), s.violations...)
}

type sessionValidationRepo struct{ s *Store }

func (s *Store) SessionValidations() pulse.SessionValidationRepository {
	return sessionValidationRepo{s}
}

func (r sessionValidationRepo) Create(ctx context.Context, v pulse.SessionValidation) (pulse.SessionValidation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if v.ID == "" {
		v.ID = newID()
	}
	if v.Status == "" {
		v.Status = pulse.ValidationPending
	}
	v.CreatedAt = r.s.now()
	r.s.validations[v.ID] = v
	return v, nil
}

func (r sessionValidationRepo) GetByID(ctx context.Context, id string) (pulse.SessionValidation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.validations[id]
	if !ok {
		return pulse.SessionValidation{}, pulse.ErrSessionValidationNotFound
	}
	return v, nil
}

func (r sessionValidationRepo) Resolve(ctx context.Context, id string, status pulse.ValidationStatus, reviewerID string, notes *string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.validations[id]
	if !ok {
		return false, pulse.ErrSessionValidationNotFound
	}
	if v.Status != pulse.ValidationPending {
		return false, nil
	}
	v.Status = status
	v.ReviewedBy = &reviewerID
	v.ReviewedAt = &at
	v.ReviewNotes = notes
	r.s.validations[id] = v
	return true, nil
}
