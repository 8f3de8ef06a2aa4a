package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/aishe-survey-api/api/swagger"
	"github.com/noah-isme/aishe-survey-api/internal/handler"
	"github.com/noah-isme/aishe-survey-api/internal/middleware"
	"github.com/noah-isme/aishe-survey-api/internal/models"
	"github.com/noah-isme/aishe-survey-api/internal/repository"
	"github.com/noah-isme/aishe-survey-api/internal/service"
	"github.com/noah-isme/aishe-survey-api/pkg/cache"
	"github.com/noah-isme/aishe-survey-api/pkg/config"
	"github.com/noah-isme/aishe-survey-api/pkg/database"
	"github.com/noah-isme/aishe-survey-api/pkg/export"
	"github.com/noah-isme/aishe-survey-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/aishe-survey-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/aishe-survey-api/pkg/middleware/requestid"
)

// @title AISHE Survey API
// @version 1.0.0
// @description Departmental enrollment and examination count submission for the statutory AISHE survey
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// Redis is advisory: every cached read falls back to postgres, so a
	// missing cache degrades latency, not correctness.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	countRepo := repository.NewCountRecordRepository(db)
	declarationRepo := repository.NewDeclarationRepository(db)
	aggregationRepo := repository.NewAggregationRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	completionSvc := service.NewCompletionService(countRepo, referenceRepo, cacheSvc, cfg.Survey.StatusCacheTTL, logr)
	aggregationSvc := service.NewAggregationService(aggregationRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	countSvc := service.NewCountService(countRepo, referenceRepo, completionSvc, aggregationSvc, validate, logr)
	declarationSvc := service.NewDeclarationService(declarationRepo, completionSvc, referenceRepo, validate, logr)
	adminSvc := service.NewAdminService(declarationRepo, countRepo, referenceRepo, referenceRepo, aggregationSvc, completionSvc, aggregationSvc, logr)
	reportSvc := service.NewReportService(aggregationRepo, referenceRepo, export.NewCSVExporter(), logr)
	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}, logr)

	defaultYear := cfg.Survey.CurrentAcademicYear
	countHandler := handler.NewCountHandler(countSvc, defaultYear)
	submissionHandler := handler.NewSubmissionHandler(completionSvc, defaultYear)
	declarationHandler := handler.NewDeclarationHandler(declarationSvc, defaultYear)
	dashboardHandler := handler.NewDashboardHandler(aggregationSvc, defaultYear)
	adminHandler := handler.NewAdminHandler(adminSvc, defaultYear)
	reportHandler := handler.NewReportHandler(reportSvc, defaultYear)
	referenceHandler := handler.NewReferenceHandler(referenceRepo)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	counts := api.Group("/counts")
	{
		counts.POST("",
			middleware.RequireRoles(models.RoleDepartment, models.RoleAdmin),
			middleware.Audit(auditRepo, models.AuditActionCountSubmit, "counts"),
			countHandler.Submit)
		counts.GET("", middleware.DepartmentScope("dept_id"), countHandler.List)
	}

	api.GET("/submissions/status", middleware.DepartmentScope("dept_id"), submissionHandler.Status)

	declarations := api.Group("/declarations")
	{
		declarations.POST("",
			middleware.RequireRoles(models.RoleDepartment, models.RoleAdmin),
			middleware.Audit(auditRepo, models.AuditActionDeclarationFile, "declarations"),
			declarationHandler.File)
		declarations.GET("/status", middleware.DepartmentScope("dept_id"), declarationHandler.Status)
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/gender-totals", dashboardHandler.GenderTotals)
		dashboard.GET("/departments/:id/summary", middleware.DepartmentScope("id"), dashboardHandler.DepartmentSummary)
	}

	admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/submissions", adminHandler.ListSubmissions)
		admin.PUT("/submissions/:id/lock",
			middleware.Audit(auditRepo, models.AuditActionAdminLock, "declarations"),
			adminHandler.SetLock)
		admin.DELETE("/submissions/:id",
			middleware.Audit(auditRepo, models.AuditActionAdminDelete, "declarations"),
			adminHandler.Delete)
		admin.GET("/metrics", metricsHandler.Snapshot)
	}

	api.GET("/reports/survey", middleware.RequireRoles(models.RoleAdmin), reportHandler.Survey)

	reference := api.Group("/reference")
	{
		reference.GET("/departments", referenceHandler.Departments)
		reference.GET("/categories", referenceHandler.Categories)
		reference.GET("/subcategories", referenceHandler.Subcategories)
		reference.GET("/genders", referenceHandler.Genders)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
