package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/expense-tracker/config"
	"github.com/ErlanBelekov/expense-tracker/internal/cache"
	"github.com/ErlanBelekov/expense-tracker/internal/email"
	"github.com/ErlanBelekov/expense-tracker/internal/health"
	"github.com/ErlanBelekov/expense-tracker/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/expense-tracker/internal/log"
	"github.com/ErlanBelekov/expense-tracker/internal/metrics"
	"github.com/ErlanBelekov/expense-tracker/internal/password"
	"github.com/ErlanBelekov/expense-tracker/internal/token"
	httptransport "github.com/ErlanBelekov/expense-tracker/internal/transport/http"
	"github.com/ErlanBelekov/expense-tracker/internal/transport/http/handler"
	"github.com/ErlanBelekov/expense-tracker/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := ctxlog.New(os.Stdout, cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := time.LoadLocation(cfg.DefaultTimezone)
	if err != nil {
		log.Fatalf("default timezone: %v", err)
	}

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	deps := map[string]health.Pinger{"postgres": pool}

	// Summaries are cached only when Redis is configured.
	var summaryCache usecase.SummaryCache = cache.Nop{}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()

		summaryCache = cache.NewSummaryCache(rdb, cfg.SummaryCacheTTL)
		deps["redis"] = health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		logger.Info("summary cache enabled", "ttl", cfg.SummaryCacheTTL)
	}

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  []byte(cfg.JWTSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		ResetSecret:   []byte(cfg.ResetPasswordSecret),
	})
	if err != nil {
		stop()
		log.Fatalf("tokens: %v", err)
	}

	hasher := password.NewHasher(0)
	mailer := email.NewCodeMailer(email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger))

	// Users
	userRepo := postgres.NewUserRepository(pool)
	authUsecase := usecase.NewAuthUsecase(userRepo, mailer, tokens, hasher, logger)
	accountUsecase := usecase.NewAccountUsecase(userRepo, mailer, hasher, logger)

	// Expenses
	expenseRepo := postgres.NewExpenseRepository(pool)
	expenseUsecase := usecase.NewExpenseUsecase(expenseRepo, summaryCache, loc, logger)

	handlers := httptransport.Handlers{
		Auth:    handler.NewAuthHandler(authUsecase, cfg.CookieSecure, logger),
		Account: handler.NewAccountHandler(accountUsecase, cfg.EchoOTP, logger),
		Expense: handler.NewExpenseHandler(expenseUsecase, logger),
	}

	metrics.Register()
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, httptransport.RouterConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			HSTS:           cfg.CookieSecure && cfg.Env != "local",
			AuthRateLimit:  cfg.AuthRateLimit,
			AuthRateBurst:  cfg.AuthRateBurst,
		}, tokens, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}
