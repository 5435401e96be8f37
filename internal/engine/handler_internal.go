package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/amount"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// Outcome is what a variant's mutation phase produced on commit, handed to
// publish.go to build the outcome and balance-announcement events.
type Outcome struct {
	TransactionID uuid.UUID
	Affected      []ledgerstore.Balance
}

// handleInternal implements §4.3.1: no authorship precondition beyond C4,
// sender must hold sufficient balance in every requested token.
func handleInternal(ctx context.Context, tc ledgerstore.TransactionContext, req *ValidatedRequest) (*Outcome, error) {
	for token, amt := range req.Tokens {
		bal, err := tc.Balances().Get(ctx, req.Sender, token)
		if err != nil {
			if err == ledgerstore.ErrNotFound {
				return nil, Reject(req.Variant, ReasonInsufficientFunds)
			}
			return nil, err
		}
		if !bal.Amount.GreaterOrEqual(amt) {
			return nil, Reject(req.Variant, ReasonInsufficientFunds)
		}
	}

	txID := uuid.New()
	if err := tc.Transactions().Insert(ctx, &ledgerstore.Transaction{
		ID: txID, EventID: req.EventID, TransactionType: req.TransactionTypeID, Memo: req.Memo, Payload: req.RawContent,
	}); err != nil {
		return nil, err
	}

	out := &Outcome{TransactionID: txID}

	for token, amt := range req.Tokens {
		senderBal, _, err := tc.Balances().Debit(ctx, req.Sender, token, amt, txID, req.EventID)
		if err != nil {
			if err == ledgerstore.ErrInsufficientFunds {
				return nil, Reject(req.Variant, ReasonInsufficientFunds)
			}
			return nil, err
		}
		out.Affected = append(out.Affected, *senderBal)

		receiverBal, err := creditOrCreate(ctx, tc, req.Receiver, token, amt, txID, req.EventID)
		if err != nil {
			return nil, err
		}
		out.Affected = append(out.Affected, *receiverBal)
	}

	return out, nil
}

// creditOrCreate is the CreateFresh-or-Credit branch shared by the
// internal transfer's receiver leg and the inbound mint (§4.2 "Ordering
// within a request").
func creditOrCreate(ctx context.Context, tc ledgerstore.TransactionContext, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*ledgerstore.Balance, error) {
	if _, err := tc.Balances().Get(ctx, account, token); err != nil {
		if err != ledgerstore.ErrNotFound {
			return nil, err
		}
		bal, _, err := tc.Balances().CreateFresh(ctx, account, token, amt, txID, eventID)
		if err != nil {
			return nil, err
		}
		return bal, nil
	}

	bal, _, err := tc.Balances().Credit(ctx, account, token, amt, txID, eventID)
	if err != nil {
		return nil, err
	}
	return bal, nil
}
