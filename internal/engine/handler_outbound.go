package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// handleOutbound implements §4.3.3: the author must be the configured
// minter identity (same identity governs burns); sender must hold
// sufficient balance in every requested token.
func handleOutbound(ctx context.Context, tc ledgerstore.TransactionContext, req *ValidatedRequest) (*Outcome, error) {
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
		bal, _, err := tc.Balances().Debit(ctx, req.Sender, token, amt, txID, req.EventID)
		if err != nil {
			if err == ledgerstore.ErrInsufficientFunds {
				return nil, Reject(req.Variant, ReasonInsufficientFunds)
			}
			return nil, err
		}
		out.Affected = append(out.Affected, *bal)
	}
	return out, nil
}
