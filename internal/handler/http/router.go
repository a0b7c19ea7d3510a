package http

import (
	"io"
	"log/slog"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

const (
	appName    = "attendance-engine"
	appVersion = "v1.0.0"
)

// NewLogger builds the JSON logger shared by the request logger and the rest of the
// process, with ECS field names.
func NewLogger(w io.Writer, level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", appName),
		slog.String("version", appVersion),
		slog.String("env", env),
	)
}

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Handlers struct {
	Attendance   AttendanceHandler
	Pulse        PulseHandler
	Payroll      PayrollHandler
	Break        BreakHandler
	Leave        LeaveHandler
	Approval     ApprovalHandler
	Notification NotificationHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/attendance", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionAttendanceSelf))
			r.Post("/check-in", h.Attendance.CheckIn)
			r.Post("/check-out", h.Attendance.CheckOut)
			r.Get("/my", h.Attendance.ListMine)
			r.Post("/requests", h.Attendance.SubmitCorrection)
			r.Get("/{id}", h.Attendance.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionAttendanceSelf))
			r.Post("/pulses", h.Pulse.Ingest)
			r.Post("/violations", h.Pulse.ReportViolation)
			r.Post("/pulses/session-validations", h.Pulse.RequestSessionValidation)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollViewOwn))
				r.Post("/daily", h.Payroll.CalculateDaily)
				r.Get("/period", h.Payroll.GetPeriodSalary)
				r.Get("/advance-eligibility", h.Payroll.AdvanceEligibility)
			})
			r.With(middleware.RequirePermission(user.PermissionRequestCreate)).Post("/advances", h.Payroll.RequestAdvance)
			r.With(middleware.RequirePermission(user.PermissionPayrollRecompute)).Post("/recalculate", h.Payroll.RecalculateAll)
		})

		r.Route("/breaks", func(r chi.Router) {
			r.Use(middleware.RequirePermission(user.PermissionRequestCreate))
			r.Post("/", h.Break.Request)
			r.Get("/", h.Break.List)
			r.Delete("/rejected", h.Break.DeleteRejected)
			r.Post("/{id}/start", h.Break.Start)
			r.Post("/{id}/end", h.Break.End)
		})

		r.With(middleware.RequirePermission(user.PermissionRequestCreate)).Post("/leave-requests", h.Leave.Create)

		r.With(middleware.RequireApprover).Post("/approvals", h.Approval.Resolve)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.Notification.List)
			r.Post("/read", h.Notification.MarkAsRead)
		})
	})

	return r
}
