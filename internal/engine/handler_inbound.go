package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// handleInbound implements §4.3.2: the author must be the configured
// minter identity; CheckMintAuthority has already short-circuited a
// failed check before this runs (Open Question 1).
func handleInbound(ctx context.Context, tc ledgerstore.TransactionContext, req *ValidatedRequest) (*Outcome, error) {
	txID := uuid.New()
	if err := tc.Transactions().Insert(ctx, &ledgerstore.Transaction{
		ID: txID, EventID: req.EventID, TransactionType: req.TransactionTypeID, Memo: req.Memo, Payload: req.RawContent,
	}); err != nil {
		return nil, err
	}

	out := &Outcome{TransactionID: txID}
	for token, amt := range req.Tokens {
		bal, err := creditOrCreate(ctx, tc, req.Receiver, token, amt, txID, req.EventID)
		if err != nil {
			return nil, err
		}
		out.Affected = append(out.Affected, *bal)
	}
	return out, nil
}
