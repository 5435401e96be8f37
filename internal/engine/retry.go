package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nostrbank/ledgerd/internal/httpintro"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/nostrevent"
	"github.com/nostrbank/ledgerd/internal/txtype"
)

// DefaultMaxRetries is MAX_RETRIES's default (§6 Configuration).
const DefaultMaxRetries = 10

// RunWithRetry implements the state machine of §4.4: Prevalidate and the
// variant handler are re-run from the top on a transient fault, up to
// maxRetries times, before a terminal network-error outcome is published.
// A deterministic Rejection is never retried, whether it originates from
// Prevalidate or from the variant handler's mutation phase. counters may
// be nil.
func RunWithRetry(ctx context.Context, store ledgerstore.Store, pub *Publisher, variant txtype.Variant, minterIdentity string, ev *nostrevent.Event, maxRetries int, log *slog.Logger, counters *httpintro.Counters) {
	if log == nil {
		log = slog.Default()
	}
	defer bump(counters, func(c *httpintro.Counters) { c.Processed.Add(1) })

	for attempt := 0; ; attempt++ {
		req, err := Prevalidate(ctx, store, variant, ev)
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				return
			}
			var rej *Rejection
			if errors.As(err, &rej) {
				publishRejection(ctx, pub, ev, rej)
				bump(counters, func(c *httpintro.Counters) { c.Rejected.Add(1) })
				return
			}
			if attempt < maxRetries {
				log.Warn("prevalidation failed transiently, retrying", "attempt", attempt, "error", err)
				bump(counters, func(c *httpintro.Counters) { c.Retried.Add(1) })
				continue
			}
			terminalNetworkError(ctx, pub, store, ev, variant)
			bump(counters, func(c *httpintro.Counters) { c.Rejected.Add(1) })
			return
		}

		if variant == txtype.Inbound || variant == txtype.Outbound {
			if rej := CheckMintAuthority(variant, req.Sender, minterIdentity); rej != nil {
				_ = store.Events().Insert(ctx, eventFromNostr(req.EventID, ev))
				pub.PublishError(ctx, req, rej.Reason)
				bump(counters, func(c *httpintro.Counters) { c.Rejected.Add(1) })
				return
			}
		}

		out, err := runMutation(ctx, store, variant, req)
		if err == nil {
			pub.PublishOk(ctx, req, out)
			return
		}

		var rej *Rejection
		if errors.As(err, &rej) {
			_ = store.Events().Insert(ctx, eventFromNostr(req.EventID, ev))
			pub.PublishError(ctx, req, rej.Reason)
			bump(counters, func(c *httpintro.Counters) { c.Rejected.Add(1) })
			return
		}

		if attempt < maxRetries {
			log.Warn("mutation failed transiently, retrying", "attempt", attempt, "event_id", req.EventID, "error", err)
			bump(counters, func(c *httpintro.Counters) { c.Retried.Add(1) })
			continue
		}

		terminalNetworkError(ctx, pub, store, ev, variant)
		bump(counters, func(c *httpintro.Counters) { c.Rejected.Add(1) })
		return
	}
}

func bump(counters *httpintro.Counters, f func(*httpintro.Counters)) {
	if counters != nil {
		f(counters)
	}
}

func runMutation(ctx context.Context, store ledgerstore.Store, variant txtype.Variant, req *ValidatedRequest) (*Outcome, error) {
	var out *Outcome
	err := store.WithTransaction(ctx, func(tc ledgerstore.TransactionContext) error {
		var mutErr error
		switch variant {
		case txtype.Internal:
			out, mutErr = handleInternal(ctx, tc, req)
		case txtype.Inbound:
			out, mutErr = handleInbound(ctx, tc, req)
		case txtype.Outbound:
			out, mutErr = handleOutbound(ctx, tc, req)
		}
		return mutErr
	})
	return out, err
}

func publishRejection(ctx context.Context, pub *Publisher, ev *nostrevent.Event, rej *Rejection) {
	// The Event row was already persisted by Prevalidate for every
	// deterministic reason it can itself detect; build a minimal
	// ValidatedRequest-shaped view purely to address the error outcome.
	req := requestFromEvent(ev, rej.Variant)
	pub.PublishError(ctx, req, rej.Reason)
}

func terminalNetworkError(ctx context.Context, pub *Publisher, store ledgerstore.Store, ev *nostrevent.Event, variant txtype.Variant) {
	req := requestFromEvent(ev, variant)
	_ = store.Events().Insert(ctx, eventFromNostr(req.EventID, ev))
	pub.PublishError(ctx, req, ReasonNetworkError)
}
