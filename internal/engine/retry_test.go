package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nostrbank/ledgerd/internal/amount"
	"github.com/nostrbank/ledgerd/internal/httpintro"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/ledgerstore/memstore"
	"github.com/nostrbank/ledgerd/internal/nostrevent"
	"github.com/nostrbank/ledgerd/internal/outbox"
	"github.com/nostrbank/ledgerd/internal/txtype"
)

func amountHundred() amount.Amount { return amount.FromInt64(100) }

func mustTag(ev nostrevent.OutgoingEvent, name string) string {
	v, _ := ev.Tags.First(name)
	return v
}

func newTestPublisher(store ledgerstore.Store, counters *httpintro.Counters) (*Publisher, *outbox.MemoryQueue) {
	q := outbox.NewMemoryQueue()
	return NewPublisher(q, store, 0, nil, counters), q
}

func TestRunWithRetry_Success(t *testing.T) {
	store := memstore.New()
	store.SeedToken("usd", "minter")
	store.SeedBalance("alice", "usd", amountHundred())
	pub, q := newTestPublisher(store, nil)
	ev := baseEvent(`{"tokens":{"usd":10}}`)

	RunWithRetry(context.Background(), store, pub, txtype.Internal, "minter", ev, 3, nil, nil)
	pub.Close() // drain the deferred re-announcements before asserting

	events := q.Events()
	// ok outcome, plus an initial + deferred re-announcement for each of
	// the two affected balances (sender debit, receiver credit).
	require.Len(t, events, 5)
	require.Equal(t, txtype.Internal.OkTag(), mustTag(events[0], "t"))
}

func TestRunWithRetry_RejectionIsNeverRetried(t *testing.T) {
	store := memstore.New()
	pub, q := newTestPublisher(store, nil)
	ev := baseEvent(`{"tokens":{"doge":10}}`) // unsupported token

	RunWithRetry(context.Background(), store, pub, txtype.Internal, "minter", ev, 5, nil, nil)

	events := q.Events()
	require.Len(t, events, 1)
	require.Equal(t, txtype.Internal.ErrorTag(), mustTag(events[0], "t"))
}

func TestRunWithRetry_TransientFaultRetriesThenSucceeds(t *testing.T) {
	store := memstore.New()
	store.SeedToken("usd", "minter")
	store.SeedBalance("alice", "usd", amountHundred())
	store.FailNextTransaction = errors.New("transient blip")
	counters := &httpintro.Counters{}
	pub, q := newTestPublisher(store, counters)
	ev := baseEvent(`{"tokens":{"usd":10}}`)

	RunWithRetry(context.Background(), store, pub, txtype.Internal, "minter", ev, 3, nil, counters)

	require.Equal(t, int64(1), counters.Retried.Load())
	require.Equal(t, int64(1), counters.Processed.Load())
	events := q.Events()
	require.Equal(t, txtype.Internal.OkTag(), mustTag(events[0], "t"))
}

func TestRunWithRetry_TerminalNetworkError(t *testing.T) {
	store := memstore.New()
	store.SeedToken("usd", "minter")
	store.SeedBalance("alice", "usd", amountHundred())
	pub, q := newTestPublisher(store, nil)
	ev := baseEvent(`{"tokens":{"usd":10}}`)

	store.FailNextTransaction = &ledgerstore.StoreError{Type: ledgerstore.ErrorTypeConnection, Retryable: true, Cause: errors.New("down")}

	// maxRetries=0: the single attempt fails and is immediately terminal,
	// since attempt 0 is never < 0.
	RunWithRetry(context.Background(), store, pub, txtype.Internal, "minter", ev, 0, nil, nil)

	events := q.Events()
	require.Len(t, events, 1)
	require.Equal(t, txtype.Internal.ErrorTag(), mustTag(events[0], "t"))
}

func TestRunWithRetry_DuplicateDeliveryPublishesNothing(t *testing.T) {
	store := memstore.New()
	store.SeedToken("usd", "minter")
	store.SeedBalance("alice", "usd", amountHundred())
	pub, q := newTestPublisher(store, nil)
	ev := baseEvent(`{"tokens":{"usd":10}}`)

	RunWithRetry(context.Background(), store, pub, txtype.Internal, "minter", ev, 3, nil, nil)
	pub.Close()
	first := len(q.Events())
	require.Greater(t, first, 0)

	RunWithRetry(context.Background(), store, pub, txtype.Internal, "minter", ev, 3, nil, nil)
	pub.Close()
	require.Len(t, q.Events(), first) // no new publications on replay
}
