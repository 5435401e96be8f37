package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/nostrevent"
	"github.com/nostrbank/ledgerd/internal/txtype"
)

// requestFromEvent builds just enough of a ValidatedRequest to address an
// error outcome event when the full pipeline never produced one — either
// because Prevalidate itself rejected ev, or because a terminal transient
// failure means no ValidatedRequest will ever exist for it. Sender and
// Receiver fall back to best-effort extraction; an event with fewer than
// two "p" tags still gets an outcome published, addressed to its author
// with an empty receiver tag.
func requestFromEvent(ev *nostrevent.Event, variant txtype.Variant) *ValidatedRequest {
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		id = uuid.Nil
	}

	author := resolvedAuthor(ev)

	recipients := ev.Tags.All("p")
	receiver := ""
	if len(recipients) >= 2 {
		receiver = recipients[1]
	}

	return &ValidatedRequest{
		EventID:  id,
		Variant:  variant,
		Signer:   ev.Signer,
		Sender:   author,
		Receiver: receiver,
	}
}

func eventFromNostr(id uuid.UUID, ev *nostrevent.Event) *ledgerstore.Event {
	return &ledgerstore.Event{
		ID:        id,
		Kind:      ev.Kind,
		Signer:    ev.Signer,
		Signature: ev.Signature,
		Author:    resolvedAuthor(ev),
		Content:   ev.Content,
		CreatedAt: time.Unix(ev.CreatedAt, 0).UTC(),
		StoredAt:  time.Now().UTC(),
	}
}

// resolvedAuthor returns the delegation-resolved author, falling back to
// the raw signer when no delegation is claimed or it doesn't resolve.
func resolvedAuthor(ev *nostrevent.Event) string {
	author, _, resolved := nostrevent.ResolveAuthor(ev)
	if !resolved {
		return ev.Signer
	}
	return author
}
