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

	"github.com/civichub/society-api/internal/api"
	"github.com/civichub/society-api/internal/api/middleware"
	"github.com/civichub/society-api/internal/core/ports"
	"github.com/civichub/society-api/internal/core/service"
	"github.com/civichub/society-api/internal/infrastructure/config"
	"github.com/civichub/society-api/internal/infrastructure/queue"
	"github.com/civichub/society-api/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "society-api",
	})
	log := logger.Get()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	// Notification fan-out is optional and never blocks request handling.
	var broadcaster ports.NotificationBroadcaster
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	var dispatcher *queue.Dispatcher
	if cfg.AMQP.URL != "" {
		publisher, err := queue.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, logger.Component("amqp"))
		if err != nil {
			return fmt.Errorf("amqp: %w", err)
		}
		defer publisher.Close()
		st.readiness = append(st.readiness, readinessCheck("amqp", publisher.Ping))

		dispatcher = queue.NewDispatcher(cfg.AMQP.Workers, publisher, logger.Component("dispatcher"))
		dispatcher.Start(workerCtx)
		broadcaster = dispatcher
		log.Info().Str("queue", cfg.AMQP.Queue).Int("workers", cfg.AMQP.Workers).Msg("notification publishing enabled")
	}

	hasher := service.NewCredentialService(cfg.Security.BcryptCost, cfg.Security.HashConcurrency)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	notificationService := service.NewNotificationService(st.notifications, broadcaster, logger.Component("notifications"))
	authService := service.NewAuthService(st.users, hasher, tokens, logger.Component("auth")).WithWelcome(notificationService)
	complaintService := service.NewComplaintService(st.complaints, st.users, notificationService, st.idempotency, logger.Component("complaints"))

	if cfg.Admin.Enabled() {
		if _, err := authService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return err
		}
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		PerMinute: cfg.RateLimit.PerMinute,
		Burst:     cfg.RateLimit.Burst,
	}, logger.Component("ratelimit"))
	defer limiter.Stop()

	e := api.NewRouter(api.Deps{
		Log:           log,
		Guard:         service.NewGuard(tokens),
		Auth:          authService,
		Complaints:    complaintService,
		Notifications: notificationService,
		AuthLimiter:   limiter,
		Readiness:     st.readiness,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ":"+cfg.Port).Str("store", cfg.Store).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	stopWorkers()
	if dispatcher != nil {
		dispatcher.Wait()
		if dropped := dispatcher.Dropped(); dropped > 0 {
			log.Warn().Uint64("dropped", dropped).Msg("notifications dropped while queues were full")
		}
	}

	log.Info().Msg("server stopped")
	return nil
}
