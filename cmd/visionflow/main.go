package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lumora-health/visionflow/internal/config"
	v1 "github.com/lumora-health/visionflow/internal/handler/v1"
	"github.com/lumora-health/visionflow/internal/repository/postgres"
	"github.com/lumora-health/visionflow/internal/scheduling"
	"github.com/lumora-health/visionflow/internal/service"
	"github.com/lumora-health/visionflow/pkg/database"
	"github.com/lumora-health/visionflow/pkg/logger"
	"github.com/lumora-health/visionflow/pkg/metrics"
	"github.com/lumora-health/visionflow/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown error", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	collector := metrics.NewCollector("visionflow")

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		return fmt.Errorf("resolving clinic timezone: %w", err)
	}
	hours, err := scheduling.ParseBusinessHours(cfg.Scheduling.OpenTime, cfg.Scheduling.CloseTime, loc)
	if err != nil {
		return fmt.Errorf("parsing business hours: %w", err)
	}

	scheduleStore := postgres.NewScheduleStore(db)
	engine := scheduling.NewEngine(scheduleStore, scheduling.Config{
		Policy:      scheduling.DefaultPolicyTable(),
		Hours:       hours,
		HorizonDays: cfg.Scheduling.HorizonDays,
		Metrics:     collector,
	}, log)

	apptRepo := postgres.NewAppointmentRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	resourceRepo := postgres.NewResourceRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, log, collector)
	defer auditSvc.Shutdown()

	apptSvc := service.NewAppointmentService(apptRepo, patientRepo, resourceRepo, engine, auditSvc, collector, log)
	scheduleSvc := service.NewScheduleService(engine, resourceRepo, log)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, collector, log)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	v1.Register(router, v1.Handlers{
		Appointments: v1.NewAppointmentHandler(apptSvc),
		Schedule:     v1.NewScheduleHandler(scheduleSvc),
		Patients:     v1.NewPatientHandler(patientSvc),
	}, collector)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	return nil
}
