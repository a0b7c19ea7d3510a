package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
)

const (
	JobDetectAbsences      = "detect_absences"
	JobRecalculateSalaries = "recalculate_salaries"
)

// EngineJobs are the periodic attendance and payroll tasks.
type EngineJobs struct {
	absenceService absence.AbsenceService
	payrollService payroll.PayrollService
	calendar       *calendar.Calendar
}

func NewEngineJobs(absenceService absence.AbsenceService, payrollService payroll.PayrollService, cal *calendar.Calendar) *EngineJobs {
	return &EngineJobs{
		absenceService: absenceService,
		payrollService: payrollService,
		calendar:       cal,
	}
}

// RegisterJobs adds the jobs to scheduler. A zero interval disables a job.
func (j *EngineJobs) RegisterJobs(scheduler *Scheduler, absenceEvery, salaryEvery time.Duration) {
	scheduler.AddJob(JobDetectAbsences, absenceEvery, j.DetectAbsences)
	scheduler.AddJob(JobRecalculateSalaries, salaryEvery, j.RecalculateSalaries)
}

func (j *EngineJobs) DetectAbsences(ctx context.Context) error {
	res, err := j.absenceService.Detect(ctx)
	if err != nil {
		return err
	}
	if len(res.Created) > 0 {
		slog.Info("Cron: absences recorded", "date", res.Date, "count", len(res.Created))
	}
	return nil
}

// RecalculateSalaries refreshes yesterday and today for every active employee, so
// late check-outs and approvals land on the right day.
func (j *EngineJobs) RecalculateSalaries(ctx context.Context) error {
	today := j.calendar.Today()
	yesterday, err := j.calendar.AddDays(today, -1)
	if err != nil {
		return err
	}

	var errs []error
	for _, date := range []string{yesterday, today} {
		res, err := j.payrollService.RecalculateAll(ctx, date)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", date, err))
			continue
		}
		if len(res.Failed) > 0 {
			slog.Warn("Cron: salary recalculation incomplete", "date", date, "failed", len(res.Failed))
		}
	}
	return errors.Join(errs...)
}
