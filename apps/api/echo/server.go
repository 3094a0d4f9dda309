package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
	"github.com/trezcool/englishcenter/core/class"
	"github.com/trezcool/englishcenter/core/course"
	"github.com/trezcool/englishcenter/core/enrollment"
	"github.com/trezcool/englishcenter/core/exam"
	"github.com/trezcool/englishcenter/core/payment"
	"github.com/trezcool/englishcenter/core/score"
	"github.com/trezcool/englishcenter/core/session"
	"github.com/trezcool/englishcenter/core/student"
	"github.com/trezcool/englishcenter/core/teacher"
)

const apiVersion = "1.0.0"

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger
		// HealthCheck reports whether the store is reachable; nil means always healthy.
		HealthCheck func(ctx context.Context) error
		// Registry receives the HTTP metrics; a fresh registry is used when nil.
		Registry *prometheus.Registry

		StudentSvc    *student.Service
		TeacherSvc    *teacher.Service
		CourseSvc     *course.Service
		ClassSvc      *class.Service
		SessionSvc    *session.Service
		EnrollmentSvc *enrollment.Service
		AttendanceSvc *attendance.Service
		TestSvc       *exam.Service
		ScoreSvc      *score.Service
		PaymentSvc    *payment.Service

		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	if s.deps.Registry == nil {
		s.deps.Registry = prometheus.NewRegistry()
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.SignalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: newRequestID}))
	if !conf.Server.DisableRequestLogs {
		s.app.Use(middleware.Logger())
	}
	if conf.Server.LogRequestBodies {
		s.app.Use(bodyDumpMiddleware(s.deps.Logger))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: conf.Server.CORSOrigins}))
	s.app.Use(newMetrics(s.deps.Registry).middleware)
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/healthz", s.healthz)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{})))

	api := s.app.Group("/api")
	api.GET("", s.index)

	registerStudentAPI(api, s.deps.StudentSvc)
	registerTeacherAPI(api, s.deps.TeacherSvc)
	registerCourseAPI(api, s.deps.CourseSvc)
	registerClassAPI(api, s.deps.ClassSvc)
	registerSessionAPI(api, s.deps.SessionSvc)
	registerEnrollmentAPI(api, s.deps.EnrollmentSvc)
	registerAttendanceAPI(api, s.deps.AttendanceSvc, s.deps.Logger)
	registerTestAPI(api, s.deps.TestSvc)
	registerScoreAPI(api, s.deps.ScoreSvc)
	registerPaymentAPI(api, s.deps.PaymentSvc)
}

// Start listens on the configured address; listener failures are sent on Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the owner of the server to shut it down.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) index(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"message":   s.deps.Conf.AppName + " API",
		"version":   apiVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": echo.Map{
			"students":    "/api/students",
			"teachers":    "/api/teachers",
			"courses":     "/api/courses",
			"classes":     "/api/classes",
			"sessions":    "/api/sessions",
			"enrollments": "/api/enrollments",
			"attendances": "/api/attendances",
			"tests":       "/api/tests",
			"scores":      "/api/scores",
			"payments":    "/api/payments",
		},
	})
}

func (s *Server) healthz(ctx echo.Context) error {
	if s.deps.HealthCheck != nil {
		if err := s.deps.HealthCheck(ctx.Request().Context()); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
