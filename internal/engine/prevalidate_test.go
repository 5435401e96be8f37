package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nostrbank/ledgerd/internal/amount"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/ledgerstore/memstore"
	"github.com/nostrbank/ledgerd/internal/nostrevent"
	"github.com/nostrbank/ledgerd/internal/txtype"
)

func baseEvent(content string) *nostrevent.Event {
	return &nostrevent.Event{
		ID:        uuid.New().String(),
		Signer:    "alice",
		Kind:      nostrevent.KindTransaction,
		CreatedAt: 1700000000,
		Tags: nostrevent.Tags{
			{"p", "ledger"},
			{"p", "bob"},
			{"t", txtype.Internal.StartTag()},
		},
		Content: content,
	}
}

func mustParse(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func TestPrevalidate_OK(t *testing.T) {
	store := memstore.New()
	store.SeedToken("usd", "minter")
	ev := baseEvent(`{"tokens":{"usd":10}}`)

	req, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	require.NoError(t, err)
	require.Equal(t, "alice", req.Sender)
	require.Equal(t, "bob", req.Receiver)
	require.Equal(t, 0, req.Tokens["usd"].Cmp(amount.FromInt64(10)))
}

func TestPrevalidate_CarriesRequestETags(t *testing.T) {
	store := memstore.New()
	store.SeedToken("usd", "minter")
	ev := baseEvent(`{"tokens":{"usd":10}}`)
	ev.Tags = append(ev.Tags, nostrevent.Tag{"e", "referenced-event-1"}, nostrevent.Tag{"e", "referenced-event-2"})

	req, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	require.NoError(t, err)
	require.Equal(t, []string{"referenced-event-1", "referenced-event-2"}, req.RequestETags)
}

func TestPrevalidate_DuplicateOnSecondDelivery(t *testing.T) {
	store := memstore.New()
	store.SeedToken("usd", "minter")
	ev := baseEvent(`{"tokens":{"usd":10}}`)

	_, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	require.NoError(t, err)

	require.NoError(t, store.Events().Insert(context.Background(), &ledgerstore.Event{
		ID:        mustParse(ev.ID),
		Kind:      ev.Kind,
		Signer:    ev.Signer,
		Signature: ev.Signature,
		Author:    ev.Signer,
		Content:   ev.Content,
		CreatedAt: time.Unix(ev.CreatedAt, 0).UTC(),
		StoredAt:  time.Now().UTC(),
	}))

	_, err = Prevalidate(context.Background(), store, txtype.Internal, ev)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestPrevalidate_MalformedID(t *testing.T) {
	store := memstore.New()
	ev := baseEvent(`{"tokens":{"usd":10}}`)
	ev.ID = "not-a-uuid"

	_, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonUnparsableContent, rej.Reason)
}

func TestPrevalidate_UnparsableContent(t *testing.T) {
	store := memstore.New()
	ev := baseEvent(`not json`)

	_, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonUnparsableContent, rej.Reason)

	exists, err := store.Events().Exists(context.Background(), mustParse(ev.ID))
	require.NoError(t, err)
	require.True(t, exists)
}

func TestPrevalidate_BadDelegation(t *testing.T) {
	store := memstore.New()
	ev := baseEvent(`{"tokens":{"usd":10}}`)
	ev.Tags = append(ev.Tags, nostrevent.Tag{"delegation", "  "})

	_, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonBadDelegation, rej.Reason)
}

func TestPrevalidate_BadRecipientTags(t *testing.T) {
	store := memstore.New()
	ev := baseEvent(`{"tokens":{"usd":10}}`)
	ev.Tags = nostrevent.Tags{{"p", "ledger"}, {"t", txtype.Internal.StartTag()}}

	_, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonBadRecipientTags, rej.Reason)
}

func TestPrevalidate_NonPositiveAmount(t *testing.T) {
	store := memstore.New()
	store.SeedToken("usd", "minter")
	ev := baseEvent(`{"tokens":{"usd":0}}`)

	_, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonNonPositiveAmount, rej.Reason)
}

func TestPrevalidate_UnsupportedToken(t *testing.T) {
	store := memstore.New()
	ev := baseEvent(`{"tokens":{"doge":10}}`)

	_, err := Prevalidate(context.Background(), store, txtype.Internal, ev)
	var rej *Rejection
	require.ErrorAs(t, err, &rej)
	require.Equal(t, ReasonUnsupportedToken, rej.Reason)
}

func TestCheckMintAuthority(t *testing.T) {
	require.Nil(t, CheckMintAuthority(txtype.Inbound, "minter", "minter"))

	rej := CheckMintAuthority(txtype.Inbound, "alice", "minter")
	require.NotNil(t, rej)
	require.Equal(t, ReasonUnauthorisedMint, rej.Reason)

	rej = CheckMintAuthority(txtype.Outbound, "alice", "minter")
	require.NotNil(t, rej)
	require.Equal(t, ReasonUnauthorisedBurn, rej.Reason)
}
