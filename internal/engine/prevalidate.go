package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/amount"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/nostrevent"
	"github.com/nostrbank/ledgerd/internal/txtype"
)

// ErrDuplicate is returned by Prevalidate when the request's Event id has
// already been persisted (§4.1 step 1). The caller must stop silently: no
// republish, no error event, no Event write.
var ErrDuplicate = errors.New("engine: duplicate request")

// ValidatedRequest is the output of a successful pre-validation pass: a
// fully resolved request ready for a variant handler's mutation phase.
type ValidatedRequest struct {
	EventID           uuid.UUID
	Variant           txtype.Variant
	Signer            string
	Sender            string
	Receiver          string
	Tokens            map[string]amount.Amount
	Memo              string
	TransactionTypeID int
	RawContent        string
	RequestETags      []string // the request event's "e" tags, forwarded verbatim on the ok outcome
	CreatedAt         time.Time
}

// Prevalidate runs the fixed-order pipeline of §4.1 against ev for the
// given variant. It returns exactly one of: a *ValidatedRequest (success),
// ErrDuplicate (silent drop), a *Rejection (deterministic, Event already
// persisted by the time this returns unless the id itself is malformed),
// or a transient error from store
// (the caller's retry loop, §4.4, decides what happens next).
func Prevalidate(ctx context.Context, store ledgerstore.Store, variant txtype.Variant, ev *nostrevent.Event) (*ValidatedRequest, error) {
	eventID, err := uuid.Parse(ev.ID)
	if err != nil {
		// A malformed id can never collide with a real request and can
		// never be persisted as one; treat it as unparsable content,
		// the closest existing deterministic reason, without an Event
		// write (there is no valid id to write).
		return nil, Reject(variant, ReasonUnparsableContent)
	}

	// 1. Idempotency.
	exists, err := store.Events().Exists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicate
	}

	// Authorship is resolved here, ahead of the §4.1 step-3 check below, so
	// its result is available to persist on the Event row regardless of
	// which step ultimately rejects the request (§3 Data Model:
	// Event.author). It is a pure function of ev's tags/signer and doesn't
	// depend on content, so computing it early changes nothing about step
	// ordering.
	author, delegationClaimed, resolved := nostrevent.ResolveAuthor(ev)
	persistedAuthor := author
	if !resolved {
		persistedAuthor = ev.Signer
	}

	// 2. Content parse. On failure the Event is persisted with an empty
	// payload — the malformed content is never retried or stored verbatim.
	content, parseErr := ParseContent([]byte(ev.Content))
	if parseErr != nil {
		err := store.Events().Insert(ctx, &ledgerstore.Event{
			ID:        eventID,
			Kind:      ev.Kind,
			Signer:    ev.Signer,
			Signature: ev.Signature,
			Author:    persistedAuthor,
			Content:   "",
			CreatedAt: time.Unix(ev.CreatedAt, 0).UTC(),
			StoredAt:  time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		return nil, Reject(variant, ReasonUnparsableContent)
	}

	// 3. Authorship. A delegation tag that is present but unresolvable
	// still rejects with sender assigned to the raw signer (not the
	// failed delegation claim).
	if delegationClaimed && !resolved {
		if err := persistRejectedEvent(ctx, store, eventID, ev, persistedAuthor); err != nil {
			return nil, err
		}
		return nil, Reject(variant, ReasonBadDelegation)
	}

	// 4. Recipient resolution: the first "p" tag is the ledger's own
	// identity (the subscription target), the second is the receiver.
	recipients := ev.Tags.All("p")
	if len(recipients) < 2 {
		if err := persistRejectedEvent(ctx, store, eventID, ev, persistedAuthor); err != nil {
			return nil, err
		}
		return nil, Reject(variant, ReasonBadRecipientTags)
	}
	sender := author
	receiver := recipients[1]

	// 5. Amount sanity.
	for _, amt := range content.Tokens {
		if !amt.IsPositive() {
			if err := persistRejectedEvent(ctx, store, eventID, ev, persistedAuthor); err != nil {
				return nil, err
			}
			return nil, Reject(variant, ReasonNonPositiveAmount)
		}
	}

	// 6. Token existence.
	for name := range content.Tokens {
		if _, err := store.Tokens().Get(ctx, name); err != nil {
			if errors.Is(err, ledgerstore.ErrNotFound) {
				if err := persistRejectedEvent(ctx, store, eventID, ev, persistedAuthor); err != nil {
					return nil, err
				}
				return nil, Reject(variant, ReasonUnsupportedToken)
			}
			return nil, err
		}
	}

	// 7. Transaction-type existence.
	txType, err := store.TransactionTypes().GetByDescription(ctx, variant.Descriptor())
	if err != nil {
		if errors.Is(err, ledgerstore.ErrNotFound) {
			if err := persistRejectedEvent(ctx, store, eventID, ev, persistedAuthor); err != nil {
				return nil, err
			}
			return nil, Reject(variant, ReasonUnsupportedTransactionType)
		}
		return nil, err
	}

	return &ValidatedRequest{
		EventID:           eventID,
		Variant:           variant,
		Signer:            ev.Signer,
		Sender:            sender,
		Receiver:          receiver,
		Tokens:            content.Tokens,
		Memo:              content.Memo,
		TransactionTypeID: txType.ID,
		RawContent:        ev.Content,
		RequestETags:      ev.Tags.All("e"),
		CreatedAt:         time.Unix(ev.CreatedAt, 0).UTC(),
	}, nil
}

// CheckMintAuthority implements the Inbound/Outbound authorship
// precondition (§4.3.2/§4.3.3), short-circuiting before the mutation phase
// per the Open Question 1 decision — unlike the reference behavior, a
// failed check here never reaches Credit/Debit.
func CheckMintAuthority(variant txtype.Variant, author, minterIdentity string) *Rejection {
	if author == minterIdentity {
		return nil
	}
	if variant == txtype.Outbound {
		return Reject(variant, ReasonUnauthorisedBurn)
	}
	return Reject(variant, ReasonUnauthorisedMint)
}

func persistRejectedEvent(ctx context.Context, store ledgerstore.Store, id uuid.UUID, ev *nostrevent.Event, author string) error {
	return store.Events().Insert(ctx, &ledgerstore.Event{
		ID:        id,
		Kind:      ev.Kind,
		Signer:    ev.Signer,
		Signature: ev.Signature,
		Author:    author,
		Content:   ev.Content,
		CreatedAt: time.Unix(ev.CreatedAt, 0).UTC(),
		StoredAt:  time.Now().UTC(),
	})
}
