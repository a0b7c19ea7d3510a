// Package app wires repositories, services and jobs for the API server and the ops CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/approval"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/breaks"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/pulse"
	appHTTP "github.com/cmlabs-hris/attendance-engine-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/calendar"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-engine-go/internal/repository/postgresql"
	absenceService "github.com/cmlabs-hris/attendance-engine-go/internal/service/absence"
	approvalService "github.com/cmlabs-hris/attendance-engine-go/internal/service/approval"
	attendanceService "github.com/cmlabs-hris/attendance-engine-go/internal/service/attendance"
	branchService "github.com/cmlabs-hris/attendance-engine-go/internal/service/branch"
	breakService "github.com/cmlabs-hris/attendance-engine-go/internal/service/breaks"
	leaveService "github.com/cmlabs-hris/attendance-engine-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/attendance-engine-go/internal/service/notification"
	payrollService "github.com/cmlabs-hris/attendance-engine-go/internal/service/payroll"
	pulseService "github.com/cmlabs-hris/attendance-engine-go/internal/service/pulse"
)

// App holds the wired services. Close must be called once the process is done.
type App struct {
	Config   *config.Config
	DB       *database.DB
	Calendar *calendar.Calendar
	JWT      jwt.Service

	Notifications notification.Notifier
	Attendance    attendance.AttendanceService
	Pulses        pulse.PulseService
	Payroll       payroll.PayrollService
	Breaks        breaks.BreakService
	Leave         leave.LeaveService
	Approvals     approval.ApprovalService
	Absences      absence.AbsenceService
}

// New connects to PostgreSQL and builds every service on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	cal, err := calendar.Load(cfg.Business.Timezone)
	if err != nil {
		return nil, err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("Database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)

	employeeRepo := postgresql.NewEmployeeRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	summaryRepo := postgresql.NewSummaryRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)
	pulseRepo := postgresql.NewPulseRepository(db)
	violationRepo := postgresql.NewViolationRepository(db)
	sessionValidationRepo := postgresql.NewSessionValidationRepository(db)
	calculationRepo := postgresql.NewCalculationRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	advanceRepo := postgresql.NewAdvanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	absenceRepo := postgresql.NewAbsenceRepository(db)
	breakRepo := postgresql.NewBreakRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	policy := cfg.Policy
	locator := branchService.NewLocator(branchRepo, policy)
	notifier := notificationService.NewNotificationService(notificationRepo, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
	})

	a := &App{
		Config:        cfg,
		DB:            db,
		Calendar:      cal,
		JWT:           jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration),
		Notifications: notifier,
	}
	a.Attendance = attendanceService.NewAttendanceService(
		attendanceRepo,
		summaryRepo,
		correctionRepo,
		employeeRepo,
		pulseRepo,
		violationRepo,
		locator,
		cal,
		policy,
	)
	a.Pulses = pulseService.NewPulseService(
		pulseRepo,
		violationRepo,
		attendanceRepo,
		employeeRepo,
		breakRepo,
		sessionValidationRepo,
		locator,
		notifier,
		cal,
		policy,
	)
	a.Payroll = payrollService.NewPayrollService(
		calculationRepo,
		ledgerRepo,
		advanceRepo,
		attendanceRepo,
		pulseRepo,
		employeeRepo,
		cal,
		policy,
	)
	a.Breaks = breakService.NewBreakService(breakRepo, employeeRepo, cal)
	a.Leave = leaveService.NewLeaveService(leaveRequestRepo, employeeRepo)
	a.Approvals = approvalService.NewApprovalService(
		postgresql.NewTransactor(db),
		approvalService.Repositories{
			Employees:   employeeRepo,
			Leaves:      leaveRequestRepo,
			Advances:    advanceRepo,
			Ledger:      ledgerRepo,
			Attendance:  attendanceRepo,
			Summaries:   summaryRepo,
			Corrections: correctionRepo,
			Absences:    absenceRepo,
			Breaks:      breakRepo,
			Pulses:      pulseRepo,
			Validations: sessionValidationRepo,
		},
		notifier,
		cal,
		policy,
	)
	a.Absences = absenceService.NewAbsenceService(
		absenceRepo,
		attendanceRepo,
		summaryRepo,
		employeeRepo,
		branchRepo,
		notifier,
		cal,
		policy,
	)

	return a, nil
}

// Handlers builds the HTTP handlers for the router.
func (a *App) Handlers() appHTTP.Handlers {
	return appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(a.Attendance),
		Pulse:        appHTTP.NewPulseHandler(a.Pulses),
		Payroll:      appHTTP.NewPayrollHandler(a.Payroll),
		Break:        appHTTP.NewBreakHandler(a.Breaks),
		Leave:        appHTTP.NewLeaveHandler(a.Leave),
		Approval:     appHTTP.NewApprovalHandler(a.Approvals),
		Notification: appHTTP.NewNotificationHandler(a.Notifications),
	}
}

// Scheduler registers the periodic absence and salary jobs on a new scheduler.
func (a *App) Scheduler() *cron.Scheduler {
	scheduler := cron.NewScheduler()
	cron.NewEngineJobs(a.Absences, a.Payroll, a.Calendar).
		RegisterJobs(scheduler, a.Config.Jobs.AbsenceCheckInterval, a.Config.Jobs.SalaryRecalcInterval)
	return scheduler
}

// Close flushes queued notifications and releases the pool.
func (a *App) Close() {
	a.Notifications.Stop()
	a.DB.Close()
	slog.Info("Database connection closed")
}
