package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/okulapps/etut-api/api/swagger"
	"github.com/okulapps/etut-api/internal/handler"
	"github.com/okulapps/etut-api/internal/middleware"
	"github.com/okulapps/etut-api/internal/repository"
	"github.com/okulapps/etut-api/internal/service"
	"github.com/okulapps/etut-api/pkg/cache"
	"github.com/okulapps/etut-api/pkg/config"
	"github.com/okulapps/etut-api/pkg/database"
	"github.com/okulapps/etut-api/pkg/jobs"
	"github.com/okulapps/etut-api/pkg/logger"
	corsmiddleware "github.com/okulapps/etut-api/pkg/middleware/cors"
	reqidmiddleware "github.com/okulapps/etut-api/pkg/middleware/requestid"
	"github.com/okulapps/etut-api/pkg/storage"
)

// @title Etut API
// @version 1.0.0
// @description Tutoring session scheduling service
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewSQLite(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to open snapshot database", "path", cfg.Database.Path, "error", err)
	}
	defer db.Close()

	store := repository.NewStateStore(repository.NewSnapshotRepository(db), jobs.QueueConfig{
		Workers:    cfg.Persist.Workers,
		MaxRetries: cfg.Persist.MaxRetries,
		RetryDelay: cfg.Persist.RetryDelay,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Start(ctx); err != nil {
		logr.Sugar().Fatalw("failed to load state", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	// Redis is optional: report caching just stays off when it is absent.
	var reportCache *repository.ReportCache
	var invalidator service.ReportInvalidator
	if cfg.Reports.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, report cache disabled", "error", err)
		} else {
			reportCache = repository.NewReportCache(client, logr)
			invalidator = reportCache
			defer reportCache.Close()
		}
	}

	archive, err := storage.NewLocalStorage(cfg.Reports.ExportDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export directory", "error", err)
	}

	schedulingSvc := service.NewSchedulingService(store, validate, logr, metricsSvc, invalidator)
	teacherSvc := service.NewTeacherService(store, validate, logr)
	studentSvc := service.NewStudentService(store, validate, logr)
	timeslotSvc := service.NewTimeSlotService(store, validate, logr)

	reportCfg := service.ReportServiceConfig{
		CacheTTL:     cfg.Reports.CacheTTL,
		CacheEnabled: reportCache != nil,
		Archive:      archive,
		Retention:    cfg.Reports.ExportRetention,
		Metrics:      metricsSvc,
	}
	if reportCache != nil {
		reportCfg.Cache = reportCache
	}
	reportSvc := service.NewReportService(store, reportCfg, logr)

	sessionHandler := handler.NewSessionHandler(schedulingSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	timeslotHandler := handler.NewTimeSlotHandler(timeslotSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		sessions := api.Group("/sessions")
		{
			sessions.GET("", sessionHandler.List)
			sessions.POST("", sessionHandler.Create)
			sessions.POST("/validate", sessionHandler.Validate)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.POST("/:id/complete", sessionHandler.Complete)
			sessions.POST("/:id/absent", sessionHandler.MarkAbsent)
			sessions.PUT("/:id/notes", sessionHandler.UpdateNotes)
			sessions.DELETE("/:id", sessionHandler.Delete)
		}

		teachers := api.Group("/teachers")
		{
			teachers.GET("", teacherHandler.List)
			teachers.POST("", teacherHandler.Create)
			teachers.GET("/subjects", teacherHandler.Subjects)
			teachers.GET("/:id", teacherHandler.Get)
			teachers.GET("/:id/sessions", teacherHandler.Sessions)
			teachers.PUT("/:id", teacherHandler.Update)
			teachers.DELETE("/:id", teacherHandler.Delete)
		}

		students := api.Group("/students")
		{
			students.GET("", studentHandler.List)
			students.POST("", studentHandler.Create)
			students.GET("/banned", studentHandler.Banned)
			students.GET("/:id", studentHandler.Get)
			students.PUT("/:id", studentHandler.Update)
			students.POST("/:id/unban", studentHandler.Unban)
			students.DELETE("/:id", studentHandler.Delete)
		}

		slots := api.Group("/time-slots")
		{
			slots.GET("", timeslotHandler.List)
			slots.POST("", timeslotHandler.Create)
			slots.GET("/strings", timeslotHandler.Strings)
			slots.PUT("/:id", timeslotHandler.Update)
			slots.POST("/:id/toggle", timeslotHandler.Toggle)
			slots.DELETE("/:id", timeslotHandler.Delete)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/summary", reportHandler.Summary)
			reports.GET("/teachers", reportHandler.ByTeacher)
			reports.GET("/subjects", reportHandler.BySubject)
			reports.GET("/monthly", reportHandler.Monthly)
			reports.GET("/export", reportHandler.Export)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	store.Stop(shutdownCtx)
}
