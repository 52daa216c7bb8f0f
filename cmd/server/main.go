package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Iliyan-H-Iliev/LeaveOpsManager/config"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/api/handler"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/api/router"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/model"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/repository"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/internal/service"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/database"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/jwt"
	applogger "github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/logger"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/redis"
	"github.com/Iliyan-H-Iliev/LeaveOpsManager/pkg/tracing"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("LEAVEOPS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting leaveops",
		zap.Int("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Environment),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// 3. tracing
	shutdownTracing, err := tracing.Init(context.Background(), &cfg.Tracing, cfg.Server.Environment, logger)
	if err != nil {
		logger.Fatal("init tracing failed", zap.Error(err))
	}

	// 4. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}
	if err := database.Migrate(db, cfg.Database.Driver, logger, model.All()...); err != nil {
		logger.Fatal("migrate database failed", zap.Error(err))
	}

	// 5. Redis is optional: without it logout and rate limiting degrade
	var tokens service.TokenStore
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token revocation and rate limiting disabled", zap.Error(err))
		rdb = nil
	} else {
		tokens = rdb
	}

	// 6. wiring: repository -> service -> handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, tokens, logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, jwtMgr, rdb, svc.Auth, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      otelhttp.NewHandler(engine, "leaveops"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error("tracing shutdown failed", zap.Error(err))
	}

	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
