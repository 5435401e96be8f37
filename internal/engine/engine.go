// Package engine implements the transaction-processing core (C4–C7): the
// pre-validation pipeline, the three variant handlers, outcome/balance
// publication and the retry controller, wired together by Engine's
// bounded concurrent dispatch loop.
package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/nostrbank/ledgerd/internal/httpintro"
	"github.com/nostrbank/ledgerd/internal/ingest"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/nostrevent"
	"github.com/nostrbank/ledgerd/internal/outbox"
	"github.com/nostrbank/ledgerd/internal/txtype"
)

// Config carries the engine's runtime tunables (§6 Configuration,
// optional subset).
type Config struct {
	MinterIdentity        string
	MaxRetries            int
	RepublishInterval     time.Duration
	MaxConcurrentRequests int64
}

// Engine drives the dispatch loop: it pulls delivered events from an
// ingest.Source, classifies the variant from the "t" tag, and runs each
// one through RunWithRetry bounded by a weighted semaphore so at most
// MaxConcurrentRequests requests are in flight at once (§5 scheduling
// model).
type Engine struct {
	store    ledgerstore.Store
	source   ingest.Source
	pub      *Publisher
	cfg      Config
	log      *slog.Logger
	sem      *semaphore.Weighted
	counters *httpintro.Counters
}

// New builds an Engine. counters may be nil when HTTP introspection is
// disabled (§6, PORT optional).
func New(store ledgerstore.Store, source ingest.Source, sink outbox.Outbox, cfg Config, log *slog.Logger, counters *httpintro.Counters) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RepublishInterval <= 0 {
		cfg.RepublishInterval = time.Second
	}
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 64
	}

	return &Engine{
		store:    store,
		source:   source,
		pub:      NewPublisher(sink, store, cfg.RepublishInterval, log, counters),
		cfg:      cfg,
		log:      log.With("component", "engine"),
		sem:      semaphore.NewWeighted(cfg.MaxConcurrentRequests),
		counters: counters,
	}
}

// Run drives the dispatch loop until ctx is cancelled, then waits for
// in-flight requests and deferred re-announcements to drain before
// returning.
func (e *Engine) Run(ctx context.Context) error {
	group, gctx := errgroup.WithContext(ctx)

	for {
		delivery, err := e.source.Next(gctx)
		if err != nil {
			if gctx.Err() != nil {
				break
			}
			e.log.Warn("ingest source error", "error", err)
			continue
		}

		variant, ok := txtype.ParseStartTag(delivery.StartTag)
		if !ok {
			e.log.Warn("dropping event with unrecognised start tag", "tag", delivery.StartTag, "event_id", delivery.Event.ID)
			continue
		}

		if err := e.sem.Acquire(gctx, 1); err != nil {
			break
		}

		ev := delivery.Event
		group.Go(func() error {
			defer e.sem.Release(1)
			e.process(gctx, variant, ev)
			return nil
		})
	}

	waitErr := group.Wait()
	e.pub.Close()
	if waitErr != nil {
		return waitErr
	}
	return ctx.Err()
}

func (e *Engine) process(ctx context.Context, variant txtype.Variant, ev *nostrevent.Event) {
	RunWithRetry(ctx, e.store, e.pub, variant, e.cfg.MinterIdentity, ev, e.cfg.MaxRetries, e.log, e.counters)
}
