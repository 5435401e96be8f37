package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nostrbank/ledgerd/internal/amount"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
	"github.com/nostrbank/ledgerd/internal/ledgerstore/memstore"
	"github.com/nostrbank/ledgerd/internal/txtype"
)

func validatedRequest(variant txtype.Variant, sender, receiver string, tokens map[string]amount.Amount) *ValidatedRequest {
	return &ValidatedRequest{
		EventID:           uuid.New(),
		Variant:           variant,
		Signer:            sender,
		Sender:            sender,
		Receiver:          receiver,
		Tokens:            tokens,
		TransactionTypeID: 1,
	}
}

func withTx(t *testing.T, store *memstore.Store, fn func(tc ledgerstore.TransactionContext) error) {
	t.Helper()
	require.NoError(t, store.WithTransaction(context.Background(), fn))
}

func TestHandleInternal_OK(t *testing.T) {
	store := memstore.New()
	store.SeedBalance("alice", "usd", amount.FromInt64(100))
	req := validatedRequest(txtype.Internal, "alice", "bob", map[string]amount.Amount{"usd": amount.FromInt64(30)})

	var out *Outcome
	withTx(t, store, func(tc ledgerstore.TransactionContext) error {
		var err error
		out, err = handleInternal(context.Background(), tc, req)
		return err
	})

	require.NotNil(t, out)
	require.Equal(t, 0, store.Balance("alice", "usd").Cmp(amount.FromInt64(70)))
	require.Equal(t, 0, store.Balance("bob", "usd").Cmp(amount.FromInt64(30)))
}

func TestHandleInternal_InsufficientFunds(t *testing.T) {
	store := memstore.New()
	store.SeedBalance("alice", "usd", amount.FromInt64(10))
	req := validatedRequest(txtype.Internal, "alice", "bob", map[string]amount.Amount{"usd": amount.FromInt64(30)})

	var gotErr error
	withTx(t, store, func(tc ledgerstore.TransactionContext) error {
		_, gotErr = handleInternal(context.Background(), tc, req)
		return nil
	})

	var rej *Rejection
	require.ErrorAs(t, gotErr, &rej)
	require.Equal(t, ReasonInsufficientFunds, rej.Reason)
}

func TestHandleInternal_NoExistingBalanceIsInsufficientFunds(t *testing.T) {
	store := memstore.New()
	req := validatedRequest(txtype.Internal, "alice", "bob", map[string]amount.Amount{"usd": amount.FromInt64(1)})

	var gotErr error
	withTx(t, store, func(tc ledgerstore.TransactionContext) error {
		_, gotErr = handleInternal(context.Background(), tc, req)
		return nil
	})

	var rej *Rejection
	require.ErrorAs(t, gotErr, &rej)
	require.Equal(t, ReasonInsufficientFunds, rej.Reason)
}

func TestHandleInternal_CreatesFreshReceiverBalance(t *testing.T) {
	store := memstore.New()
	store.SeedBalance("alice", "usd", amount.FromInt64(100))
	req := validatedRequest(txtype.Internal, "alice", "newbob", map[string]amount.Amount{"usd": amount.FromInt64(10)})

	withTx(t, store, func(tc ledgerstore.TransactionContext) error {
		_, err := handleInternal(context.Background(), tc, req)
		return err
	})

	require.Equal(t, 0, store.Balance("newbob", "usd").Cmp(amount.FromInt64(10)))
}

func TestHandleInbound_MintsIntoFreshBalance(t *testing.T) {
	store := memstore.New()
	req := validatedRequest(txtype.Inbound, "minter", "bob", map[string]amount.Amount{"usd": amount.FromInt64(50)})

	withTx(t, store, func(tc ledgerstore.TransactionContext) error {
		_, err := handleInbound(context.Background(), tc, req)
		return err
	})

	require.Equal(t, 0, store.Balance("bob", "usd").Cmp(amount.FromInt64(50)))
}

func TestHandleInbound_CreditsExistingBalance(t *testing.T) {
	store := memstore.New()
	store.SeedBalance("bob", "usd", amount.FromInt64(20))
	req := validatedRequest(txtype.Inbound, "minter", "bob", map[string]amount.Amount{"usd": amount.FromInt64(50)})

	withTx(t, store, func(tc ledgerstore.TransactionContext) error {
		_, err := handleInbound(context.Background(), tc, req)
		return err
	})

	require.Equal(t, 0, store.Balance("bob", "usd").Cmp(amount.FromInt64(70)))
}

func TestHandleOutbound_OK(t *testing.T) {
	store := memstore.New()
	store.SeedBalance("bob", "usd", amount.FromInt64(50))
	req := validatedRequest(txtype.Outbound, "bob", "minter", map[string]amount.Amount{"usd": amount.FromInt64(20)})

	withTx(t, store, func(tc ledgerstore.TransactionContext) error {
		_, err := handleOutbound(context.Background(), tc, req)
		return err
	})

	require.Equal(t, 0, store.Balance("bob", "usd").Cmp(amount.FromInt64(30)))
}

func TestHandleOutbound_InsufficientFunds(t *testing.T) {
	store := memstore.New()
	store.SeedBalance("bob", "usd", amount.FromInt64(5))
	req := validatedRequest(txtype.Outbound, "bob", "minter", map[string]amount.Amount{"usd": amount.FromInt64(20)})

	var gotErr error
	withTx(t, store, func(tc ledgerstore.TransactionContext) error {
		_, gotErr = handleOutbound(context.Background(), tc, req)
		return nil
	})

	var rej *Rejection
	require.ErrorAs(t, gotErr, &rej)
	require.Equal(t, ReasonInsufficientFunds, rej.Reason)
}
