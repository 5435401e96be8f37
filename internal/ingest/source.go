// Package ingest defines the engine's subscription port (C3): pulling
// already-deduplicated, filter-matched events off the substrate.
package ingest

import (
	"context"

	"github.com/nostrbank/ledgerd/internal/nostrevent"
)

// Delivery is one event handed to the engine, along with the "t" tag
// value of the filter that matched it (so the engine doesn't need to
// re-scan tags just to classify the variant).
type Delivery struct {
	Event    *nostrevent.Event
	StartTag string
}

// Source is the pull-side port the engine's dispatch loop drives. Next
// blocks until a deduplicated, filter-matched event is available or ctx
// is cancelled.
type Source interface {
	Next(ctx context.Context) (Delivery, error)
}

// Filters returns the three NIP-01 subscription filters the engine
// subscribes with (§6 "Inbound wire format"): one per transaction
// variant, matching kind 1112, the ledger's own recipient tag, the
// variant's start tag, and a freshness floor.
func Filters(ledgerIdentity string, since int64) []nostrevent.Filter {
	filters := make([]nostrevent.Filter, 0, 3)
	for _, v := range allVariantTags() {
		s := since
		filters = append(filters, nostrevent.Filter{
			Kinds: []int{nostrevent.KindTransaction},
			Tags: map[string][]string{
				"p": {ledgerIdentity},
				"t": {v},
			},
			Since: &s,
		})
	}
	return filters
}
