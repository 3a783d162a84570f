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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academic-progression-api/api/swagger"
	"github.com/noah-isme/academic-progression-api/internal/handler"
	"github.com/noah-isme/academic-progression-api/internal/middleware"
	"github.com/noah-isme/academic-progression-api/internal/repository"
	"github.com/noah-isme/academic-progression-api/internal/scheduler"
	"github.com/noah-isme/academic-progression-api/internal/service"
	"github.com/noah-isme/academic-progression-api/pkg/cache"
	"github.com/noah-isme/academic-progression-api/pkg/clock"
	"github.com/noah-isme/academic-progression-api/pkg/config"
	"github.com/noah-isme/academic-progression-api/pkg/database"
	"github.com/noah-isme/academic-progression-api/pkg/export"
	"github.com/noah-isme/academic-progression-api/pkg/logger"
	reqidmiddleware "github.com/noah-isme/academic-progression-api/pkg/middleware/requestid"
	"github.com/noah-isme/academic-progression-api/pkg/similarity"
)

// @title Academic Progression API
// @version 1.0.0
// @description GPA ledger, academic warnings, enrollment admission control and course recommendations
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.Open(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, recommendation cache disabled", zap.Error(err))
	}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		redisRepo := repository.NewCacheRepository(redisClient, cfg.Redis.KeyPrefix, logr)
		defer redisRepo.Close() //nolint:errcheck
		cacheRepo = redisRepo
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	clk := clock.System{}
	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	periodRepo := repository.NewEnrollmentPeriodRepository(db)
	warningRepo := repository.NewWarningRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Recommendations.CacheTTL, logr, cfg.Recommendations.CacheEnabled)
	studentSvc := service.NewStudentService(studentRepo, courseRepo, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, cacheSvc, validate, logr)
	periodSvc := service.NewPeriodService(periodRepo, clk, validate, logr)
	ledgerSvc := service.NewLedgerService(studentRepo, enrollmentRepo, courseRepo, warningRepo, clk, logr)
	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentServiceDeps{
		Repo:      enrollmentRepo,
		Students:  studentRepo,
		Courses:   courseRepo,
		Periods:   periodRepo,
		Cache:     cacheSvc,
		Metrics:   metrics,
		Clock:     clk,
		Validator: validate,
		Logger:    logr,
	})
	warningSvc := service.NewWarningService(service.WarningServiceDeps{
		Repo:        warningRepo,
		Students:    studentRepo,
		Enrollments: enrollmentRepo,
		Catalog:     courseRepo,
		Clock:       clk,
		Metrics:     metrics,
		CSV:         export.NewCSVExporter(),
		PDF:         export.NewPDFExporter(),
		Validator:   validate,
		Logger:      logr,
	})
	recommendationSvc := service.NewRecommendationService(studentRepo, enrollmentRepo, courseRepo, periodRepo,
		similarity.NewTFIDF(), cacheSvc, clk, service.RecommendationConfig{
			Limit:    cfg.Recommendations.Limit,
			CacheTTL: cfg.Recommendations.CacheTTL,
		}, logr)

	sweeps := scheduler.New(warningSvc, scheduler.Config{
		Enabled:    cfg.Warnings.SchedulerEnabled,
		DailySpec:  cfg.Warnings.DailyCron,
		WeeklySpec: cfg.Warnings.WeeklyCron,
		Retries:    cfg.Warnings.SweepRetries,
		RetryDelay: cfg.Warnings.SweepRetryDelay,
	}, logr)
	if err := sweeps.Start(ctx); err != nil {
		logr.Fatal("failed to start warning scheduler", zap.Error(err))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(reqidmiddleware.Middleware())
	r.Use(middleware.Recovery(logr))
	probes := []string{"/metrics", "/health", "/ready"}
	r.Use(logger.GinMiddleware(logr, probes...))
	r.Use(middleware.Metrics(metrics, probes...))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Students:    handler.NewStudentHandler(studentSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Periods:     handler.NewPeriodHandler(periodSvc),
		Warnings:    handler.NewWarningHandler(warningSvc, sweeps),
		Academic:    handler.NewAcademicHandler(ledgerSvc, recommendationSvc),
		Metrics:     handler.NewMetricsHandler(metrics, db),
	}, cfg.Metrics.Enabled)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown failed", zap.Error(err))
	}
	sweeps.Stop(shutdownCtx)
}
