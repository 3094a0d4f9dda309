package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	echoapi "github.com/trezcool/englishcenter/apps/api/echo"
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
	logsvc "github.com/trezcool/englishcenter/services/logger"
	"github.com/trezcool/englishcenter/storage/cache"
	"github.com/trezcool/englishcenter/storage/database"
	boiledrepos "github.com/trezcool/englishcenter/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/englishcenter/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = database.Close(db); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up the summary cache (optional)
	var summaryCache attendance.SummaryCache
	redisClient, err := cache.Open(context.Background(), conf.Redis)
	if err != nil {
		logger.Warn(fmt.Sprintf("attendance summaries will not be cached: %v", err), err)
	} else if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		summaryCache = cache.NewSummaryCache(redisClient, conf.Redis.SummaryTTL)
	}

	validate, translator := core.NewValidator()
	reports := boiledrepos.NewReportRepository(db)

	// set up services
	clsSvc := class.NewService(sqlxrepos.NewClassRepository(db), validate)
	deps := echoapi.ServerDeps{
		Conf:   conf,
		Logger: logger,
		HealthCheck: func(ctx context.Context) error {
			return database.Check(ctx, db)
		},
		Registry: newRegistry(db),

		StudentSvc:    student.NewService(sqlxrepos.NewStudentRepository(db), validate),
		TeacherSvc:    teacher.NewService(sqlxrepos.NewTeacherRepository(db), validate),
		CourseSvc:     course.NewService(sqlxrepos.NewCourseRepository(db), validate),
		ClassSvc:      clsSvc,
		SessionSvc:    session.NewService(sqlxrepos.NewSessionRepository(db), validate),
		EnrollmentSvc: enrollment.NewService(sqlxrepos.NewEnrollmentRepository(db), clsSvc, validate, logger),
		AttendanceSvc: attendance.NewService(sqlxrepos.NewAttendanceRepository(db), summaryCache, validate, logger),
		TestSvc:       exam.NewService(sqlxrepos.NewTestRepository(db), validate),
		ScoreSvc:      score.NewService(sqlxrepos.NewScoreRepository(db), reports, conf.GradeScale, validate),
		PaymentSvc:    payment.NewService(sqlxrepos.NewPaymentRepository(db), reports, validate),

		Validate:   validate,
		Translator: translator,
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : %s", conf))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(deps)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf.Database); err != nil {
		return nil, err
	}

	db, err := database.Open(conf.Database)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newRegistry(db *sqlx.DB) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, "english_center"),
	)
	return reg
}
