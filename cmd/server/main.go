package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAdapter "github.com/iho/gobooks/internal/adapter/http"
	"github.com/iho/gobooks/internal/adapter/http/handler"
	postgresRepo "github.com/iho/gobooks/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobooks/internal/adapter/repository/redis"
	"github.com/iho/gobooks/internal/infrastructure/auth"
	"github.com/iho/gobooks/internal/infrastructure/config"
	"github.com/iho/gobooks/internal/infrastructure/logger"
	"github.com/iho/gobooks/internal/infrastructure/metrics"
	"github.com/iho/gobooks/internal/infrastructure/postgres"
	"github.com/iho/gobooks/internal/infrastructure/redis"
	"github.com/iho/gobooks/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if path := resolveMigrationsPath(); path != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, path, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	periodRepo := postgresRepo.NewPeriodRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(log)

	// Use cases
	transfer := usecase.TransferAccounts{
		EarningsCode: cfg.EarningsAccountCode,
		RetainedCode: cfg.RetainedAccountCode,
	}
	accountUC := usecase.NewAccountUseCase(accountRepo, periodRepo, entryRepo, idGen, m)
	entryUC := usecase.NewEntryUseCase(txManager, periodRepo, accountRepo, entryRepo, idGen, retrier, m)
	closingUC := usecase.NewClosingUseCase(txManager, periodRepo, accountRepo, entryRepo, idGen, transfer, retrier, m, log)
	periodUC := usecase.NewPeriodUseCase(txManager, periodRepo, closingUC, idGen, m, log)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, periodRepo, entryRepo)
	reportingUC := usecase.NewReportingUseCase(accountRepo, periodRepo, entryRepo)

	// Handlers
	accountHandler := handler.NewAccountHandler(accountUC, balanceUC)
	periodHandler := handler.NewPeriodHandler(periodUC, reportingUC)
	entryHandler := handler.NewEntryHandler(entryUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			log.Fatal().Msg("AUTH_ENABLED requires JWT_SECRET")
		}
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		PeriodHandler:    periodHandler,
		EntryHandler:     entryHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		JWTManager:       jwtManager,
		AuthEnabled:      cfg.AuthEnabled,
		Logger:           log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// resolveMigrationsPath returns the migrations directory, or empty to skip
// running migrations at startup.
func resolveMigrationsPath() string {
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		return path
	}

	if _, err := os.Stat("migrations"); err == nil {
		return "migrations"
	}

	return ""
}
