// Package renewal keeps push-based provider subscriptions alive. Providers
// grant watch channels a finite lifetime; the scheduler re-issues them ahead
// of expiry so registrations never silently stop delivering.
package renewal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/switchyardhq/switchyard/pkg/models"
	"github.com/switchyardhq/switchyard/pkg/persistence"
	"github.com/switchyardhq/switchyard/pkg/provider"
	"github.com/switchyardhq/switchyard/pkg/registry"
)

const (
	defaultInterval    = 1 * time.Hour
	defaultWindow      = 24 * time.Hour
	defaultItemTimeout = 30 * time.Second
)

// ErrAlreadyStarted is returned when Start is called on a running scheduler.
// A second loop would double-renew and could exhaust provider rate limits,
// so the duplicate start fails loudly instead of spawning silently.
var ErrAlreadyStarted = errors.New("renewal scheduler already started")

// Scheduler is the single background task of the gateway. Passes run one at
// a time: each tick's registration loop completes before the next tick is
// taken from the timer.
type Scheduler struct {
	db       persistence.Persistence
	registry *registry.Registry
	logger   *slog.Logger

	interval    time.Duration
	window      time.Duration
	itemTimeout time.Duration

	// now is injectable for deterministic window and expiry math in tests.
	now func() time.Time

	locker Locker

	ticker  *time.Ticker
	done    chan struct{}
	started bool
	mu      sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the period between renewal passes.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) { s.interval = interval }
}

// WithWindow sets the expiry look-ahead. It must be comfortably larger than
// the interval so no registration can lapse between two passes even when a
// run is delayed.
func WithWindow(window time.Duration) Option {
	return func(s *Scheduler) { s.window = window }
}

// WithItemTimeout bounds each registration's renewal so one unresponsive
// provider cannot stall the rest of the pass.
func WithItemTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) { s.itemTimeout = timeout }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLocker guards passes with a lock shared across replicas.
func WithLocker(locker Locker) Option {
	return func(s *Scheduler) { s.locker = locker }
}

func NewScheduler(db persistence.Persistence, reg *registry.Registry, logger *slog.Logger, opts ...Option) *Scheduler {
	scheduler := &Scheduler{
		db:          db,
		registry:    reg,
		logger:      logger.With("module", "renewal_scheduler"),
		interval:    defaultInterval,
		window:      defaultWindow,
		itemTimeout: defaultItemTimeout,
		now:         func() time.Time { return time.Now().UTC() },
		locker:      NoopLocker{},
	}

	for _, opt := range opts {
		opt(scheduler)
	}

	return scheduler
}

// Start runs one pass immediately, then on every tick until Stop or context
// cancellation. Calling Start on a running scheduler is an error.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan struct{})
	s.started = true

	s.logger.Info("Starting subscription renewal scheduler",
		"interval", s.interval,
		"window", s.window)

	go s.run(ctx)

	return nil
}

// Stop cancels the periodic task.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.ticker.Stop()
	close(s.done)
	s.started = false

	s.logger.Info("Subscription renewal scheduler stopped")

	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	s.pass(ctx)

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		case <-s.ticker.C:
			// Processed inline so two passes can never overlap.
			s.pass(ctx)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context) {
	acquired, err := s.locker.TryLock(ctx)
	if err != nil {
		s.logger.Error("Failed to acquire renewal lock", "error", err)

		return
	}

	if !acquired {
		s.logger.Debug("Renewal lock held elsewhere, skipping pass")

		return
	}

	defer func() {
		if err := s.locker.Unlock(ctx); err != nil {
			s.logger.Error("Failed to release renewal lock", "error", err)
		}
	}()

	if err := s.RenewAllExpiring(ctx); err != nil {
		s.logger.Error("Renewal pass failed", "error", err)
	}
}

// RenewAllExpiring renews every registration whose subscription expires
// inside the look-ahead window. Also the manual entry point for out-of-band
// invocation. Failures are isolated per registration: one bad renewal never
// aborts the rest.
func (s *Scheduler) RenewAllExpiring(ctx context.Context) error {
	cutoff := s.now().Add(s.window)

	candidates, err := s.db.ExpiringTriggerRegistrations(ctx, cutoff)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		return nil
	}

	s.logger.Info("Renewing expiring subscriptions", "count", len(candidates), "cutoff", cutoff)

	for _, registration := range candidates {
		logger := s.logger.With(
			"registration_id", registration.ID,
			"provider_id", registration.ProviderID,
			"trigger_id", registration.TriggerID,
		)

		renewed, err := s.renewOne(ctx, registration)
		if err != nil {
			logger.Error("Subscription renewal failed", "error", err)
			s.recordFailure(ctx, registration, err, logger)

			continue
		}

		if renewed {
			logger.Info("Subscription renewed", "expires_at", registration.ExpiresAt)
		}
	}

	return nil
}

// renewOne re-issues one registration's provider subscription. Returns false
// without error for triggers that model no provider-side subscription; they
// are skipped, never treated as failures.
func (s *Scheduler) renewOne(ctx context.Context, registration *models.TriggerRegistration) (bool, error) {
	runtime, err := s.registry.Provider(registration.ProviderID)
	if err != nil {
		return false, err
	}

	trigger, err := runtime.Trigger(registration.TriggerID)
	if err != nil {
		return false, err
	}

	subscribing, ok := trigger.(provider.SubscribingTrigger)
	if !ok {
		s.logger.Debug("Trigger has no renewable subscription, skipping",
			"registration_id", registration.ID,
			"trigger_id", registration.TriggerID)

		return false, nil
	}

	connectionMetadata := map[string]any{}

	if registration.ConnectionID != nil {
		connection, err := s.db.ConnectionByID(ctx, *registration.ConnectionID)
		if err != nil {
			return false, err
		}

		if connection.ExternalAccountMetadata != nil {
			connectionMetadata = connection.ExternalAccountMetadata
		}
	}

	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	subscription, err := subscribing.RegisterSubscription(itemCtx, s.db, connectionMetadata, registration)
	if err != nil {
		return false, err
	}

	registration.ApplyRenewal(subscription.Metadata, subscription.ExpiresAt)

	if err := s.db.SaveTriggerRegistration(ctx, registration); err != nil {
		return false, err
	}

	return true, nil
}

// recordFailure persists the renewal error onto the registration without
// touching its expiry, leaving it eligible for retry until it lapses. A
// stale subscription stops delivering but never disappears from
// observability.
func (s *Scheduler) recordFailure(ctx context.Context, registration *models.TriggerRegistration, renewErr error, logger *slog.Logger) {
	registration.RecordRenewalError(renewErr.Error(), s.now())

	if err := s.db.SaveTriggerRegistration(ctx, registration); err != nil {
		logger.Error("Failed to persist renewal error", "error", err)
	}
}
