package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"mdsq/docs"
	"mdsq/internal/auth"
	"mdsq/internal/cache"
	"mdsq/internal/config"
	"mdsq/internal/db"
	"mdsq/internal/handler"
	"mdsq/internal/logging"
	"mdsq/internal/metrics"
	"mdsq/internal/repository"
	"mdsq/internal/router"
	"mdsq/internal/service"
)

// @title MDSQ Church Directory API
// @version 1.0
// @description Member directory, ministries and teams, service planning, assignments and attendance.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Fatal("reset database", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable, running without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	store := repository.NewStore(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(store.Users(), store.Members(), jwtService, tokenStore, logger)
	memberService := service.NewMemberService(store, cacheClient, logger)
	labelService := service.NewLabelService(store, logger)
	ministryService := service.NewMinistryService(store, cacheClient, logger)
	integrityService := service.NewIntegrityService(store, cacheClient, m, logger)
	planService := service.NewPlanService(store, cacheClient, m, logger)
	assignmentService := service.NewAssignmentService(store, cacheClient, m, logger)
	attendanceService := service.NewAttendanceService(store, cfg.AttendanceRecentLimit, m, logger)

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Member:     handler.NewMemberHandler(memberService, integrityService),
		Label:      handler.NewLabelHandler(labelService),
		Ministry:   handler.NewMinistryHandler(ministryService, integrityService),
		Service:    handler.NewServiceHandler(planService, assignmentService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
	}
	if cfg.IsDevelopment() {
		seedService := service.NewSeedService(store, logger)
		handlers.Seed = handler.NewSeedHandler(seedService, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	}

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, registry, jwtService, handlers)

	logger.Info("swagger documentation available", zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Environment), zap.String("auth_mode", cfg.AuthMode))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
