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

	_ "github.com/kotoba-labs/kotoba-api/api/swagger"
	"github.com/kotoba-labs/kotoba-api/internal/ai"
	"github.com/kotoba-labs/kotoba-api/internal/handler"
	"github.com/kotoba-labs/kotoba-api/internal/middleware"
	"github.com/kotoba-labs/kotoba-api/internal/models"
	"github.com/kotoba-labs/kotoba-api/internal/repository"
	"github.com/kotoba-labs/kotoba-api/internal/seed"
	"github.com/kotoba-labs/kotoba-api/internal/service"
	"github.com/kotoba-labs/kotoba-api/pkg/cache"
	"github.com/kotoba-labs/kotoba-api/pkg/config"
	"github.com/kotoba-labs/kotoba-api/pkg/database"
	"github.com/kotoba-labs/kotoba-api/pkg/logger"
	corsmiddleware "github.com/kotoba-labs/kotoba-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kotoba-labs/kotoba-api/pkg/middleware/requestid"
)

// @title Kotoba API
// @version 1.0.0
// @description Japanese-learning classroom backend
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, dashboard cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	learningLogRepo := repository.NewLearningLogRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	// Services.
	metricsSvc := service.NewMetricsService()

	// The audit queue outlives the signal context so buffered rows are
	// drained after the HTTP server shuts down.
	auditSvc := service.NewAuditService(userRepo, cfg.Audit, logr)
	auditSvc.Start(context.Background())
	defer auditSvc.Stop()

	authSvc := service.NewAuthService(userRepo, auditSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "kotoba-api",
	})
	userSvc := service.NewUserService(userRepo, classroomRepo, auditSvc, validate, logr)
	classroomSvc := service.NewClassroomService(classroomRepo, auditSvc, validate, logr, service.ClassroomConfig{
		CodeLength:      cfg.Classroom.CodeLength,
		CodeMaxAttempts: cfg.Classroom.CodeMaxAttempts,
	})
	assignmentSvc := service.NewAssignmentService(assignmentRepo, classroomSvc, auditSvc, validate, logr)
	reportSvc := service.NewReportService(learningLogRepo, classroomSvc, logr, cfg.Classroom.ReportPageLimit)

	completer := ai.NewClient(cfg.OpenAI)
	quizSvc := service.NewQuizService(completer, learningLogRepo, cacheRepo, metricsSvc, validate, logr)
	chatSvc := service.NewChatService(completer, metricsSvc, validate, logr, cfg.Chat.HistoryWindow)
	dashboardSvc := service.NewDashboardService(learningLogRepo, cacheRepo, logr, service.DashboardConfig{
		CacheTTL:   cfg.Dashboard.CacheTTL,
		RecentLogs: cfg.Dashboard.RecentLogs,
	})

	if cfg.Seed.Enabled {
		if err := seed.Accounts(ctx, userRepo, logr); err != nil {
			logr.Sugar().Fatalw("failed to seed accounts", "error", err)
		}
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	classroomHandler := handler.NewClassroomHandler(classroomSvc, reportSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	quizHandler := handler.NewQuizHandler(quizSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, metricsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

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
		status := gin.H{"status": "ready"}
		code := http.StatusOK
		if err := db.PingContext(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(cfg.APIPrefix)

	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/auth/refresh", authHandler.Refresh)

	authed := v1.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.PUT("/auth/password", authHandler.ChangePassword)
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/dashboard", dashboardHandler.Load)
		authed.POST("/quiz/generate", quizHandler.Generate)
		authed.POST("/quiz/results", quizHandler.Save)
		authed.POST("/chat", chatHandler.Reply)

		authed.GET("/classrooms/enrolled", classroomHandler.ListEnrolled)
		authed.GET("/classrooms/:id", classroomHandler.Detail)
		authed.GET("/classrooms/:id/assignments", assignmentHandler.List)

		authed.POST("/classrooms/join",
			middleware.RequireRoles(models.RoleStudent, models.RoleGuest),
			classroomHandler.Join)

		teaching := authed.Group("")
		teaching.Use(middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin))
		{
			teaching.POST("/classrooms", classroomHandler.Create)
			teaching.GET("/classrooms/teaching", classroomHandler.ListOwned)
			teaching.GET("/classrooms/:id/roster", classroomHandler.Roster)
			teaching.GET("/classrooms/:id/scores", classroomHandler.Scores)
			teaching.GET("/classrooms/:id/scores/export", classroomHandler.ExportScores)
			teaching.POST("/classrooms/:id/assignments", assignmentHandler.Create)
		}

		admin := authed.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/users", userHandler.List)
			admin.POST("/users", userHandler.Create)
			admin.GET("/users/:id", userHandler.Get)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	_ = cacheRepo.Close()
}
