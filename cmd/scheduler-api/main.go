package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/class-scheduler-api/internal/handler"
	"github.com/noah-isme/class-scheduler-api/internal/repository"
	"github.com/noah-isme/class-scheduler-api/internal/service"
	"github.com/noah-isme/class-scheduler-api/pkg/cache"
	"github.com/noah-isme/class-scheduler-api/pkg/config"
	"github.com/noah-isme/class-scheduler-api/pkg/database"
	"github.com/noah-isme/class-scheduler-api/pkg/jobs"
	"github.com/noah-isme/class-scheduler-api/pkg/logger"
	"github.com/noah-isme/class-scheduler-api/pkg/storage"
)

// @title Class Scheduler API
// @version 1.0.0
// @description Generates conflict-free weekly class schedules for college sections and exports timetables.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, schedule cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.ScheduleTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	sectionRepo := repository.NewSectionRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	window, err := service.ParseDayWindow(cfg.Scheduler.DayStart, cfg.Scheduler.DayEnd)
	if err != nil {
		logr.Warn("invalid scheduler day window, using default", zap.Error(err))
		window = service.DefaultDayWindow()
	}
	generatorSvc := service.NewScheduleGeneratorService(
		sectionRepo,
		subjectRepo,
		roomRepo,
		professorRepo,
		timeSlotRepo,
		scheduleRepo,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.ScheduleGeneratorConfig{
			DailyHourCeiling:     cfg.Scheduler.DailyHourCeiling,
			WeekPasses:           cfg.Scheduler.WeekPasses,
			ShuffleGrid:          cfg.Scheduler.ShuffleGrid,
			ConflictMode:         cfg.Scheduler.ConflictMode,
			CheckRoom:            cfg.Scheduler.CheckRoom,
			CheckProfessor:       cfg.Scheduler.CheckProfessor,
			RequiredHoursPolicy:  cfg.Scheduler.RequiredHoursPolicy,
			DefaultRequiredHours: cfg.Scheduler.DefaultRequiredHours,
			GridSource:           cfg.Scheduler.GridSource,
			DayWindow:            window,
			DefaultAcademicYear:  cfg.Scheduler.DefaultAcademicYear,
		},
	)
	scheduleSvc := service.NewScheduleService(scheduleRepo, sectionRepo, cacheSvc, cfg.Cache.ScheduleTTL, validate, logr)

	var termStart time.Time
	if cfg.Exports.TermStart != "" {
		termStart, err = time.Parse("2006-01-02", cfg.Exports.TermStart)
		if err != nil {
			logr.Warn("invalid EXPORTS_TERM_START, calendar exports start this week", zap.Error(err))
		}
	}
	timetableSvc := service.NewTimetableExportService(sectionRepo, scheduleRepo, timeSlotRepo, service.TimetableExportConfig{
		GridSource: cfg.Scheduler.GridSource,
		TermStart:  termStart,
		TermWeeks:  cfg.Exports.TermWeeks,
	}, logr)

	var exportQueue *jobs.Queue
	var exportJobSvc *service.ExportJobService
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportJobSvc = service.NewExportJobService(exportJobRepo, nil, files, signer, metrics, validate, logr, service.ExportJobConfig{
			APIPrefix:       cfg.APIPrefix,
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
		})
		worker := service.NewExportJobWorker(exportJobRepo, timetableSvc, files, metrics, logr)
		exportQueue = jobs.NewQueue("timetable-exports", worker.Handle, jobs.QueueConfig{
			Workers:     cfg.Exports.WorkerConcurrency,
			MaxRetries:  cfg.Exports.WorkerRetries,
			RetryDelay:  2 * time.Second,
			Logger:      logr,
			OnExhausted: exportJobSvc.MarkExhausted,
		})
		exportJobSvc.SetQueue(exportQueue)
		exportQueue.Start(ctx)
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)
	}

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	router := newRouter(cfg, logr, routerDeps{
		verifier:  service.NewTokenVerifier(cfg.JWT.Secret, cfg.JWT.Issuer),
		metrics:   metrics,
		generator: handler.NewScheduleGeneratorHandler(generatorSvc),
		schedules: handler.NewScheduleHandler(scheduleSvc),
		timetable: handler.NewTimetableExportHandler(timetableSvc),
		exports:   exportHandler(exportJobSvc),
		ops:       handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if exportQueue != nil {
		exportQueue.Stop()
	}
}

func exportHandler(svc *service.ExportJobService) *handler.ExportJobHandler {
	if svc == nil {
		return nil
	}
	return handler.NewExportJobHandler(svc)
}
