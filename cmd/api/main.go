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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/class-records-api/api/swagger"
	"github.com/noah-isme/class-records-api/internal/handler"
	"github.com/noah-isme/class-records-api/internal/middleware"
	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/internal/repository"
	"github.com/noah-isme/class-records-api/internal/service"
	"github.com/noah-isme/class-records-api/pkg/config"
	"github.com/noah-isme/class-records-api/pkg/database"
	"github.com/noah-isme/class-records-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/class-records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/class-records-api/pkg/middleware/requestid"
)

// @title Class Records API
// @version 1.0.0
// @description Attendance, answer keys, grades and class reports for teachers
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	tx := database.NewTransactor(db)
	catalogRepo := repository.NewCatalogRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	reportRepo := repository.NewReportRepository(db)

	validate := service.NewValidator()
	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})
	attendanceSvc := service.NewAttendanceService(tx, catalogRepo, sessionRepo, validate, logr, metrics)
	answerKeySvc := service.NewAnswerKeyService(tx, catalogRepo, assessmentRepo, validate, logr, metrics)
	gradeSvc := service.NewGradeService(tx, catalogRepo, assessmentRepo, gradeRepo, validate, logr, metrics)
	reportSvc := service.NewReportService(catalogRepo, reportRepo, assessmentRepo, gradeRepo,
		service.ReportConfig{MaxRangeDays: cfg.Reports.MaxRangeDays}, logr, metrics)

	var reportHandler *handler.ReportHandler
	if cfg.Reports.ExportEnabled {
		reportHandler = handler.NewReportHandler(reportSvc, service.NewExportService(logr, metrics))
	} else {
		reportHandler = handler.NewReportHandler(reportSvc, nil)
	}
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	answerKeyHandler := handler.NewAnswerKeyHandler(answerKeySvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	healthHandler := handler.NewHealthHandler(db, logr)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}
	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokens), middleware.RequireRoles(models.RoleTeacher))

	classes := api.Group("/classes/:id")
	classes.POST("/sessions", middleware.Audit(logr, "register_attendance", "class_session"), attendanceHandler.Register)
	classes.GET("/sessions/:date", attendanceHandler.Get)
	classes.GET("/reports/frequency", reportHandler.Frequency)
	classes.GET("/reports/performance", reportHandler.Performance)

	assessments := api.Group("/assessments/:id")
	assessments.PUT("/answer-key", middleware.Audit(logr, "define_answer_key", "answer_key"), answerKeyHandler.Define)
	assessments.GET("/answer-key", answerKeyHandler.Summary)
	assessments.POST("/grades", middleware.Audit(logr, "launch_grades", "grade_entry"), gradeHandler.Launch)
	assessments.GET("/grades", gradeHandler.List)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
