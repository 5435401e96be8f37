package ledgerstore

import (
	"context"
	"log/slog"
	"time"
)

// Manager wraps a Store with health checking and retrying, mirroring the
// reference relational-DB Manager's lifecycle helpers but logging through
// log/slog instead of a bespoke Logger interface.
type Manager struct {
	store  Store
	config *Config
	log    *slog.Logger

	healthCheckInterval time.Duration
	healthCancel        context.CancelFunc
}

// NewManager constructs a Manager around an already-built Store.
func NewManager(store Store, config *Config, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		store:               store,
		config:              config,
		log:                 log.With("component", "ledgerstore"),
		healthCheckInterval: time.Minute,
	}
}

// Open opens the underlying store and starts a background health checker.
func (m *Manager) Open(ctx context.Context) error {
	if err := m.store.Open(ctx); err != nil {
		m.log.Error("failed to open store", "error", err)
		return err
	}
	if err := m.store.System().Ping(ctx); err != nil {
		m.log.Error("initial health check failed", "error", err)
		return err
	}

	var healthCtx context.Context
	healthCtx, m.healthCancel = context.WithCancel(context.Background())
	go m.runHealthChecker(healthCtx)

	m.log.Info("ledger store opened")
	return nil
}

// Close stops the health checker and closes the underlying store.
func (m *Manager) Close(ctx context.Context) error {
	if m.healthCancel != nil {
		m.healthCancel()
	}
	return m.store.Close(ctx)
}

// Store returns the underlying Store for engine wiring.
func (m *Manager) Store() Store { return m.store }

func (m *Manager) runHealthChecker(ctx context.Context) {
	ticker := time.NewTicker(m.healthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := m.store.System().Ping(checkCtx); err != nil {
				m.log.Warn("background health check failed", "error", err)
			}
			cancel()
		}
	}
}

// ExecuteWithRetry runs operation, retrying retryable StoreErrors with a
// linear backoff capped at attempts tries; this is a store-level retry
// helper (the background health checker pings once per tick without it),
// distinct from the engine's
// request-level retry loop (§4.4), which has its own MAX_RETRIES policy.
func (m *Manager) ExecuteWithRetry(ctx context.Context, attempts int, operation func() error) error {
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
		if err := operation(); err != nil {
			lastErr = err
			if !IsRetryable(err) {
				return err
			}
			continue
		}
		return nil
	}
	return lastErr
}
