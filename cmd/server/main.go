package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modapos/internal/config"
	"modapos/internal/infra"
	"modapos/internal/middleware"
	"modapos/internal/repository"
	"modapos/internal/router"
	"modapos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// ── Async jobs ───────────────────────────────────────────────────────────
	// Worker handlers are wired here (composition root) so the pool has full
	// access to infrastructure.
	dispatcher := worker.NewDispatcher(rdb)
	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))

	orderRepo := repository.NewOrderRepository(db)
	conditionalRepo := repository.NewConditionalRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)

	var emails worker.EmailEnqueuer
	if mailer.Configured() {
		emails = dispatcher
	} else {
		log.Warn().Msg("SMTP_HOST not set: receipts will not be emailed")
	}
	receipts := worker.NewReceiptWorker(orderRepo, conditionalRepo, receiptRepo, emails, cfg.StoreName, cfg.ReceiptStoragePath, loc)

	pool := worker.NewPool(rdb, dispatcher)
	pool.Handle(worker.JobReceipt, receipts.Process)
	pool.Handle(worker.JobEmail, worker.NewEmailWorker(mailer, smtpCB).Process)
	pool.Start(ctx, cfg.WorkerPoolSize)

	cron := worker.StartMaintenanceCron(ctx, worker.MaintenanceConfig{
		Interval:     cfg.MaintenanceInterval(),
		Conditionals: conditionalRepo,
		Receipts:     receiptRepo,
		Issuer:       receipts,
		Cache:        infra.NewCache(rdb, cfg.CacheTTL()),
		RDB:          rdb,
	})

	apiLimiter := middleware.NewRateLimiter(cfg.RateLimit, 0)
	loginLimiter := middleware.NewRateLimiter(10, 5)
	go apiLimiter.Cleanup(ctx)
	go loginLimiter.Cleanup(ctx)

	r := router.New(router.Deps{
		Config:       cfg,
		DB:           db,
		Redis:        rdb,
		Location:     loc,
		Jobs:         dispatcher,
		APILimiter:   apiLimiter,
		LoginLimiter: loginLimiter,
		Breakers:     []*infra.CircuitBreaker{smtpCB},
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("timezone", loc.String()).Msgf("modapos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	// Stop background goroutines before closing their connections.
	cancel()
	pool.Wait()
	cron.Wait()

	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
