package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/registry"
	"github.com/switchyardhq/switchyard/pkg/renewal"
)

// Renewer wraps the renewal scheduler with process lifecycle: lock selection,
// signal handling, graceful shutdown.
type Renewer struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	redisURL    string
	interval    time.Duration
	window      time.Duration

	redisClient *redis.Client
}

func NewRenewer(
	logger *slog.Logger,
	db persistence.Persistence,
	reg *registry.Registry,
	redisURL string,
	interval, window time.Duration,
) *Renewer {
	return &Renewer{
		logger:      logger,
		persistence: db,
		registry:    reg,
		redisURL:    redisURL,
		interval:    interval,
		window:      window,
	}
}

// Start runs the scheduler until SIGINT or SIGTERM.
func (r *Renewer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	locker, err := r.buildLocker()
	if err != nil {
		return err
	}

	scheduler := renewal.NewScheduler(r.persistence, r.registry, r.logger,
		renewal.WithInterval(r.interval),
		renewal.WithWindow(r.window),
		renewal.WithLocker(locker),
	)

	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	r.logger.Info("Renewer started", "interval", r.interval, "window", r.window)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		r.logger.Info("Received signal, shutting down gracefully", "signal", sig)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer shutdownCancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		return err
	}

	if r.redisClient != nil {
		return r.redisClient.Close()
	}

	return nil
}

// buildLocker returns a redis lock when a redis URL is configured, otherwise
// runs lockless for single-instance deployments.
func (r *Renewer) buildLocker() (renewal.Locker, error) {
	if r.redisURL == "" {
		return renewal.NoopLocker{}, nil
	}

	options, err := redis.ParseURL(r.redisURL)
	if err != nil {
		return nil, err
	}

	r.redisClient = redis.NewClient(options)

	// Lock TTL outlives one pass; the token guards against releasing a lock
	// another instance has since acquired.
	return renewal.NewRedisLocker(r.redisClient, uuid.New().String(), r.interval), nil
}
