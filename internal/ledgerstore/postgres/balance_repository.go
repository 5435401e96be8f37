package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/amount"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// BalanceRepository implements ledgerstore.BalanceRepository. Every
// mutating query below is a single statement built from CTEs so the
// Balance row and its BalanceSnapshot are written atomically — per §9
// "Paired insert of Balance + first Snapshot", two separate statements
// cannot satisfy both foreign keys, and the same reasoning extends to
// Debit/Credit keeping the snapshot chain (P5) consistent with the
// balance it updates.
type BalanceRepository struct {
	exec executor
}

func NewBalanceRepository(exec executor) *BalanceRepository { return &BalanceRepository{exec: exec} }

func (r *BalanceRepository) Get(ctx context.Context, account, token string) (*ledgerstore.Balance, error) {
	var b ledgerstore.Balance
	b.Account, b.Token = account, token
	err := r.exec.QueryRowContext(ctx,
		`SELECT amount, event_id, latest_snapshot_id FROM balances WHERE account = $1 AND token = $2`,
		account, token,
	).Scan(&b.Amount, &b.EventID, &b.LatestSnapshotID)
	if err == sql.ErrNoRows {
		return nil, ledgerstore.ErrNotFound
	}
	if err != nil {
		return nil, classify("balance_get", err)
	}
	return &b, nil
}

func (r *BalanceRepository) CreateFresh(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*ledgerstore.Balance, *ledgerstore.BalanceSnapshot, error) {
	snapshotID := uuid.New()

	const query = `
WITH snap AS (
	INSERT INTO balance_snapshots (id, account, token, delta, result_amount, event_id, prev_snapshot_id, transaction_id, created_at)
	VALUES ($1, $2, $3, $4, $4, $6, NULL, $5, now())
	RETURNING id, created_at
)
INSERT INTO balances (account, token, amount, event_id, latest_snapshot_id)
SELECT $2, $3, $4, $6, snap.id FROM snap
RETURNING account, token, amount, event_id, latest_snapshot_id, (SELECT created_at FROM snap)`

	var b ledgerstore.Balance
	var createdAt sql.NullTime
	err := r.exec.QueryRowContext(ctx, query, snapshotID, account, token, amt, txID, eventID).
		Scan(&b.Account, &b.Token, &b.Amount, &b.EventID, &b.LatestSnapshotID, &createdAt)
	if err != nil {
		return nil, nil, classify("balance_create_fresh", err)
	}

	snap := &ledgerstore.BalanceSnapshot{
		ID:            snapshotID,
		Account:       account,
		Token:         token,
		Delta:         amt,
		ResultAmount:  amt,
		EventID:       eventID,
		TransactionID: txID,
		CreatedAt:     createdAt.Time,
	}
	return &b, snap, nil
}

func (r *BalanceRepository) Debit(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*ledgerstore.Balance, *ledgerstore.BalanceSnapshot, error) {
	return r.applyDelta(ctx, account, token, amt.Neg(), txID, eventID, true)
}

func (r *BalanceRepository) Credit(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*ledgerstore.Balance, *ledgerstore.BalanceSnapshot, error) {
	return r.applyDelta(ctx, account, token, amt, txID, eventID, false)
}

// applyDelta updates an existing balance by delta (negative for a debit)
// and inserts the resulting snapshot linked to the prior latest snapshot.
// When enforceSufficiency is set, the update is constrained to rows whose
// current amount can absorb the delta; zero rows affected is reported as
// ledgerstore.ErrInsufficientFunds rather than ErrNotFound, since the
// calling handler has already confirmed the balance row exists in its
// sufficiency check.
func (r *BalanceRepository) applyDelta(ctx context.Context, account, token string, delta amount.Amount, txID, eventID uuid.UUID, enforceSufficiency bool) (*ledgerstore.Balance, *ledgerstore.BalanceSnapshot, error) {
	snapshotID := uuid.New()

	query := `
WITH cur AS (
	SELECT amount, latest_snapshot_id FROM balances
	WHERE account = $1 AND token = $2`
	if enforceSufficiency {
		query += ` AND amount + $4 >= 0`
	}
	query += `
	FOR UPDATE
),
snap AS (
	INSERT INTO balance_snapshots (id, account, token, delta, result_amount, event_id, prev_snapshot_id, transaction_id, created_at)
	SELECT $3, $1, $2, $4, cur.amount + $4, $6, cur.latest_snapshot_id, $5, now() FROM cur
	RETURNING id, result_amount, created_at
)
UPDATE balances SET amount = snap.result_amount, event_id = $6, latest_snapshot_id = snap.id
FROM snap
WHERE balances.account = $1 AND balances.token = $2
RETURNING balances.account, balances.token, balances.amount, balances.event_id, balances.latest_snapshot_id, snap.created_at`

	var b ledgerstore.Balance
	var createdAt sql.NullTime
	err := r.exec.QueryRowContext(ctx, query, account, token, snapshotID, delta, txID, eventID).
		Scan(&b.Account, &b.Token, &b.Amount, &b.EventID, &b.LatestSnapshotID, &createdAt)
	if err == sql.ErrNoRows {
		if enforceSufficiency {
			return nil, nil, ledgerstore.ErrInsufficientFunds
		}
		return nil, nil, ledgerstore.ErrNotFound
	}
	if err != nil {
		return nil, nil, classify("balance_apply_delta", err)
	}

	snap := &ledgerstore.BalanceSnapshot{
		ID:            snapshotID,
		Account:       account,
		Token:         token,
		Delta:         delta,
		ResultAmount:  b.Amount,
		EventID:       eventID,
		TransactionID: txID,
		CreatedAt:     createdAt.Time,
	}
	return &b, snap, nil
}
