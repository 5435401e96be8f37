package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/nostrbank/ledgerd/internal/httpintro"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/nostrevent"
	"github.com/nostrbank/ledgerd/internal/outbox"
)

// Publisher builds and emits the three outbound event shapes of §6 and
// drives the deferred re-announcement of §4.3.4 item 3. Deferred timers
// run on a conc.WaitGroup so Close can drain them before process exit
// instead of leaking goroutines on shutdown.
type Publisher struct {
	sink              outbox.Outbox
	store             ledgerstore.Store
	republishInterval time.Duration
	log               *slog.Logger
	deferred          conc.WaitGroup
	counters          *httpintro.Counters
}

// NewPublisher builds a Publisher. counters may be nil when HTTP
// introspection is disabled.
func NewPublisher(sink outbox.Outbox, store ledgerstore.Store, republishInterval time.Duration, log *slog.Logger, counters *httpintro.Counters) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{sink: sink, store: store, republishInterval: republishInterval, log: log.With("component", "publisher"), counters: counters}
}

// Close waits for any in-flight deferred re-announcements to finish,
// implementing the graceful-shutdown drain called for by §5.
func (p *Publisher) Close() {
	p.deferred.Wait()
}

// PublishOk emits the ok outcome event and, for each affected balance, an
// initial balance-announcement plus a deferred re-announcement.
func (p *Publisher) PublishOk(ctx context.Context, req *ValidatedRequest, out *Outcome) error {
	tags := nostrevent.Tags{
		{"p", req.Sender},
		{"p", req.Receiver},
		{"e", req.EventID.String()},
		{"t", req.Variant.OkTag()},
	}
	for _, e := range req.RequestETags {
		if e == req.EventID.String() {
			continue
		}
		tags = append(tags, nostrevent.Tag{"e", e})
	}
	content, err := json.Marshal(map[string]interface{}{"tokens": req.Tokens, "memo": req.Memo})
	if err != nil {
		return err
	}
	if err := p.sink.Publish(ctx, nostrevent.OutgoingEvent{
		Kind: nostrevent.KindTransaction, Tags: tags, Content: string(content),
	}); err != nil {
		p.log.Warn("failed to publish ok outcome", "event_id", req.EventID, "error", err)
	}

	for _, bal := range out.Affected {
		p.announceBalance(ctx, bal, req.EventID.String())
	}
	return nil
}

// PublishError emits the error outcome event carrying reason's message.
func (p *Publisher) PublishError(ctx context.Context, req *ValidatedRequest, reason RejectionReason) error {
	tags := nostrevent.Tags{
		{"p", req.Sender},
		{"p", req.Receiver},
		{"e", req.EventID.String()},
		{"t", req.Variant.ErrorTag()},
	}
	content, err := json.Marshal(map[string][]string{"messages": {reason.Message()}})
	if err != nil {
		return err
	}
	if err := p.sink.Publish(ctx, nostrevent.OutgoingEvent{
		Kind: nostrevent.KindTransaction, Tags: tags, Content: string(content),
	}); err != nil {
		p.log.Warn("failed to publish error outcome", "event_id", req.EventID, "error", err)
	}
	return nil
}

// announceBalance publishes the initial balance-announcement for bal, then
// schedules a deferred re-announcement after republishInterval re-querying
// the current amount, compensating for out-of-order relay delivery.
func (p *Publisher) announceBalance(ctx context.Context, bal ledgerstore.Balance, triggerEventID string) {
	p.publishBalanceAnnouncement(ctx, bal.Account, bal.Token, bal.Amount.String(), triggerEventID)

	account, token := bal.Account, bal.Token
	p.deferred.Go(func() {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.republishInterval):
		}

		// The republish reads the authoritative current balance, not the
		// value captured at commit time — another request may have
		// mutated it in the meantime.
		fresh, err := p.freshBalance(account, token)
		if err != nil {
			p.log.Warn("deferred re-announcement: balance lookup failed", "account", account, "token", token, "error", err)
			return
		}
		p.publishBalanceAnnouncement(context.Background(), account, token, fresh, triggerEventID)
		if p.counters != nil {
			p.counters.Republished.Add(1)
		}
	})
}

// freshBalance re-reads the current balance outside of any transaction,
// used only by the deferred re-announcement path.
func (p *Publisher) freshBalance(account, token string) (string, error) {
	var result string
	err := p.store.WithTransaction(context.Background(), func(tc ledgerstore.TransactionContext) error {
		bal, err := tc.Balances().Get(context.Background(), account, token)
		if err != nil {
			return err
		}
		result = bal.Amount.String()
		return nil
	})
	return result, err
}

func (p *Publisher) publishBalanceAnnouncement(ctx context.Context, account, token, amount, triggerEventID string) {
	tags := nostrevent.Tags{
		{"p", account},
		{"d", "balance:" + token + ":" + account},
		{"e", triggerEventID},
		{"amount", amount},
	}
	if err := p.sink.Publish(ctx, nostrevent.OutgoingEvent{
		Kind: nostrevent.KindBalanceAnnouncement, Tags: tags, Content: "{}",
	}); err != nil {
		p.log.Warn("failed to publish balance announcement", "account", account, "token", token, "error", err)
	}
}
