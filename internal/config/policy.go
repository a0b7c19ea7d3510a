package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the business rules that operators may need to audit. The fail-open
// switches keep attendance available when branch data is incomplete.
type Policy struct {
	FailOpenEmptyAllowList  bool `yaml:"fail_open_empty_allow_list"`
	FailOpenMissingBranch   bool `yaml:"fail_open_missing_branch"`
	FailOpenUnknownDistance bool `yaml:"fail_open_unknown_distance"`

	DefaultRadiusMeters    float64 `yaml:"default_radius_meters"`
	DefaultToleranceMeters float64 `yaml:"default_tolerance_meters"`

	FalsePulsePenaltyMinutes int     `yaml:"false_pulse_penalty_minutes"`
	DefaultHourlyRate        float64 `yaml:"default_hourly_rate"`
	AdvancePercent           float64 `yaml:"advance_percent"`
	AdvanceWaitingDays       int     `yaml:"advance_waiting_days"`
	AbsencePenaltyDays       int     `yaml:"absence_penalty_days"`
	DefaultShiftHours        float64 `yaml:"default_shift_hours"`
	AutoCheckoutViolations   int     `yaml:"auto_checkout_violations"`
}

func DefaultPolicy() Policy {
	return Policy{
		FailOpenEmptyAllowList:   true,
		FailOpenMissingBranch:    true,
		FailOpenUnknownDistance:  true,
		DefaultRadiusMeters:      200,
		DefaultToleranceMeters:   100,
		FalsePulsePenaltyMinutes: 5,
		DefaultHourlyRate:        60,
		AdvancePercent:           30,
		AdvanceWaitingDays:       5,
		AbsencePenaltyDays:       2,
		DefaultShiftHours:        8,
		AutoCheckoutViolations:   3,
	}
}

// LoadPolicy returns the default policy overlaid with the YAML file at path.
// An empty path returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if path == "" {
		return p, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := p.Decode(raw); err != nil {
		return p, err
	}
	return p, nil
}

// Decode overlays YAML onto p. Keys missing from the document keep their values.
func (p *Policy) Decode(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("unmarshal policy yaml: %w", err)
	}
	return p.Validate()
}

func (p Policy) Validate() error {
	switch {
	case p.DefaultRadiusMeters < 0:
		return fmt.Errorf("default_radius_meters must not be negative")
	case p.DefaultToleranceMeters < 0:
		return fmt.Errorf("default_tolerance_meters must not be negative")
	case p.FalsePulsePenaltyMinutes < 0:
		return fmt.Errorf("false_pulse_penalty_minutes must not be negative")
	case p.DefaultHourlyRate < 0:
		return fmt.Errorf("default_hourly_rate must not be negative")
	case p.AdvancePercent < 0 || p.AdvancePercent > 100:
		return fmt.Errorf("advance_percent must be between 0 and 100")
	case p.AdvanceWaitingDays < 0:
		return fmt.Errorf("advance_waiting_days must not be negative")
	case p.AbsencePenaltyDays < 0:
		return fmt.Errorf("absence_penalty_days must not be negative")
	case p.DefaultShiftHours <= 0:
		return fmt.Errorf("default_shift_hours must be positive")
	case p.AutoCheckoutViolations < 1:
		return fmt.Errorf("auto_checkout_violations must be at least 1")
	}
	return nil
}
