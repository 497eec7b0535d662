package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/config"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/handler"
	infraRedis "github.com/nguyenquy0710/Financial-Tracking-sub001/internal/infrastructure/redis"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/repository"
	"github.com/nguyenquy0710/Financial-Tracking-sub001/internal/service/totp"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	slog.Info("Starting Financial Tracking OTP API...")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Config load failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Logging))

	ctx := context.Background()

	db, err := repository.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Database connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			slog.Error("Database migration failed", slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("Database schema up to date")
	}

	redisClient, err := infraRedis.NewClient(infraRedis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,

		BreakerThreshold: cfg.Redis.BreakerThreshold,
		BreakerReset:     cfg.Redis.BreakerReset,
	})
	if err != nil {
		slog.Error("Redis connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Redis connected")

	accountRepo := repository.NewAccountRepository(db.Pool)
	auditRepo := repository.NewAuditRepository(db.Pool)

	otpService, err := totp.NewService(cfg.OTP, accountRepo, auditRepo, redisClient)
	if err != nil {
		slog.Error("OTP service init failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("OTP service initialized",
		slog.String("issuer", cfg.OTP.Issuer),
		slog.Bool("cache_codes", cfg.OTP.CacheCodes),
		slog.Int("code_rate_limit", cfg.OTP.CodeRateLimit))

	router := handler.NewRouter(cfg,
		handler.NewHealthHandler(db, redisClient),
		handler.NewOTPHandler(otpService),
		handler.NewAccountHandler(otpService),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("Server starting", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", slog.Any("error", err))
	}
	redisClient.Close()
	db.Close()
	slog.Info("Server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
