// Package relay is the concrete websocket transport for the substrate
// (§4.5, §4.6): a pool of per-relay clients that together implement both
// ingest.Source (C3) and outbox.Outbox (C2), sharing one dedup cache and
// one durable cursor.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/ingest"
	"github.com/nostrbank/ledgerd/internal/nostrevent"
	"github.com/nostrbank/ledgerd/internal/storage/kv"
)

// Pool dials a fixed set of relays, fans their deliveries into one
// channel deduplicated by event id, and fans outbound publication out to
// every relay currently connected.
type Pool struct {
	identity string
	clients  []*client
	dedupe   *ingest.Dedupe
	cursor   *ingest.Cursor
	deliver  chan delivered
	out      chan ingest.Delivery
	log      *slog.Logger
}

// Config carries everything the pool needs to dial and subscribe.
type Config struct {
	LedgerIdentity  string
	Relays          []string
	FreshnessWindow time.Duration
	DedupeSize      int
}

// New builds a Pool. Dialing happens when Run is called.
func New(cfg Config, store kv.DB, log *slog.Logger) (*Pool, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.DedupeSize <= 0 {
		cfg.DedupeSize = 4096
	}

	dedupe, err := ingest.NewDedupe(cfg.DedupeSize)
	if err != nil {
		return nil, fmt.Errorf("relay: build dedupe cache: %w", err)
	}

	deliver := make(chan delivered, 256)
	p := &Pool{
		identity: cfg.LedgerIdentity,
		dedupe:   dedupe,
		cursor:   ingest.NewCursor(store),
		deliver:  deliver,
		out:      make(chan ingest.Delivery, 256),
		log:      log.With("component", "relay"),
	}

	fallback := time.Now().Add(-cfg.FreshnessWindow).Unix()
	for _, url := range cfg.Relays {
		since := p.cursor.Since(context.Background(), url, fallback)
		filters := ingest.Filters(cfg.LedgerIdentity, since)
		p.clients = append(p.clients, newClient(url, uuid.NewString(), filters, deliver, log))
	}

	return p, nil
}

// Run dials every relay and pumps deliveries until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) {
	for _, c := range p.clients {
		go c.run(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-p.deliver:
			if p.dedupe.Seen(d.event.ID) {
				continue
			}
			variant, ok := d.event.Tags.First("t")
			if !ok {
				continue
			}
			if err := p.cursor.Advance(ctx, d.relayURL, d.event.CreatedAt); err != nil {
				p.log.Warn("failed to advance ingest cursor", "relay", d.relayURL, "error", err)
			}
			select {
			case p.out <- ingest.Delivery{Event: d.event, StartTag: variant}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// ConnectedRelays reports how many relay connections are currently live,
// for the /healthz surface (§6 "HTTP introspection").
func (p *Pool) ConnectedRelays() int {
	n := 0
	for _, c := range p.clients {
		if c.connected() {
			n++
		}
	}
	return n
}

// Next implements ingest.Source.
func (p *Pool) Next(ctx context.Context) (ingest.Delivery, error) {
	select {
	case <-ctx.Done():
		return ingest.Delivery{}, ctx.Err()
	case d := <-p.out:
		return d, nil
	}
}

// Publish implements outbox.Outbox, broadcasting ev to every currently
// connected relay. Publication is fire-and-forget from the engine's
// perspective (§5): a relay that's mid-reconnect simply misses this
// event, which is acceptable for outcome/balance announcements that are
// re-derivable from the store.
func (p *Pool) Publish(ctx context.Context, ev nostrevent.OutgoingEvent) error {
	signed, err := stamp(p.identity, time.Now().Unix(), ev.Kind, ev.Tags, ev.Content)
	if err != nil {
		return fmt.Errorf("relay: stamp outgoing event: %w", err)
	}

	var delivered int
	var lastErr error
	for _, c := range p.clients {
		ok, err := c.publish(signed)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			delivered++
		}
	}
	if delivered == 0 && lastErr != nil {
		return fmt.Errorf("relay: publish failed on every relay: %w", lastErr)
	}
	return nil
}
