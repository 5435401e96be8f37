// Package memstore implements internal/ledgerstore.Store entirely
// in-process, mirroring the reference repo's pattern of a fake repository
// manager for engine-level unit tests (no real database involved).
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/amount"
	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// Store is a fake, in-memory ledgerstore.Store. The embedded mutex is taken
// by the Seed*/Balance helpers, Events().Exists and WithTransaction (which
// holds it for the whole of fn); Events().Insert, Tokens().Get and
// TransactionTypes().GetByDescription called outside WithTransaction take
// no lock.
type Store struct {
	mu sync.Mutex

	events    map[uuid.UUID]*ledgerstore.Event
	tokens    map[string]*ledgerstore.Token
	types     map[string]*ledgerstore.TransactionType
	typesByID map[int]*ledgerstore.TransactionType
	nextType  int
	txs       map[uuid.UUID]*ledgerstore.Transaction
	balances  map[balanceKey]*ledgerstore.Balance
	snapshots map[uuid.UUID]*ledgerstore.BalanceSnapshot

	// FailNextTransaction, when set, makes the next WithTransaction call
	// return it instead of running fn — used to exercise the engine's
	// transient-retry path (§4.4) without a real database.
	FailNextTransaction error
}

type balanceKey struct{ account, token string }

// New returns an empty Store seeded with the three known transaction
// types, matching what postgres.initSchema inserts on a fresh database.
func New() *Store {
	s := &Store{
		events:    map[uuid.UUID]*ledgerstore.Event{},
		tokens:    map[string]*ledgerstore.Token{},
		types:     map[string]*ledgerstore.TransactionType{},
		typesByID: map[int]*ledgerstore.TransactionType{},
		txs:       map[uuid.UUID]*ledgerstore.Transaction{},
		balances:  map[balanceKey]*ledgerstore.Balance{},
		snapshots: map[uuid.UUID]*ledgerstore.BalanceSnapshot{},
	}
	for _, d := range []string{"internal-transaction", "inbound-transaction", "outbound-transaction"} {
		s.addTransactionTypeLocked(d)
	}
	return s
}

func (s *Store) addTransactionTypeLocked(description string) {
	s.nextType++
	tt := &ledgerstore.TransactionType{ID: s.nextType, Description: description}
	s.types[description] = tt
	s.typesByID[tt.ID] = tt
}

// SeedToken registers a token definition directly, bypassing persistence —
// test setup convenience, not part of the Store interface. minter is
// accepted for call-site symmetry with the global MINTER_PUBLIC_KEY
// identity tests pass to RunWithRetry; Token itself carries no per-token
// minter (§3 Data Model).
func (s *Store) SeedToken(name, minter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[name] = &ledgerstore.Token{Name: name}
}

// SeedBalance gives account a starting balance for token, creating a root
// snapshot, bypassing the usual CreateFresh transaction path — test setup
// convenience.
func (s *Store) SeedBalance(account, token string, amt amount.Amount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapID := uuid.New()
	s.snapshots[snapID] = &ledgerstore.BalanceSnapshot{
		ID: snapID, Account: account, Token: token, Delta: amt, ResultAmount: amt,
	}
	s.balances[balanceKey{account, token}] = &ledgerstore.Balance{
		Account: account, Token: token, Amount: amt, LatestSnapshotID: snapID,
	}
}

// Balance returns the current amount for (account, token), 0 if unset —
// test assertion convenience.
func (s *Store) Balance(account, token string) amount.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[balanceKey{account, token}]; ok {
		return b.Amount
	}
	return amount.Zero()
}

func (s *Store) Open(ctx context.Context) error  { return nil }
func (s *Store) Close(ctx context.Context) error { return nil }

func (s *Store) Events() ledgerstore.EventRepository                     { return (*eventRepo)(s) }
func (s *Store) Tokens() ledgerstore.TokenRepository                     { return (*tokenRepo)(s) }
func (s *Store) TransactionTypes() ledgerstore.TransactionTypeRepository { return (*typeRepo)(s) }
func (s *Store) System() ledgerstore.SystemRepository                    { return (*systemRepo)(s) }

func (s *Store) WithTransaction(ctx context.Context, fn func(ledgerstore.TransactionContext) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNextTransaction != nil {
		err := s.FailNextTransaction
		s.FailNextTransaction = nil
		return err
	}

	// The fake store has no real rollback: mutations apply directly to
	// maps, so on error we simply discard nothing further — handlers
	// under test only mutate through the repositories below, and those
	// never partially apply on a path that also returns an error.
	return fn((*txContext)(s))
}

type eventRepo Store

func (r *eventRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	(*Store)(r).mu.Lock()
	defer (*Store)(r).mu.Unlock()
	_, ok := r.events[id]
	return ok, nil
}

func (r *eventRepo) Insert(ctx context.Context, e *ledgerstore.Event) error {
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

type tokenRepo Store

func (r *tokenRepo) Get(ctx context.Context, name string) (*ledgerstore.Token, error) {
	if t, ok := r.tokens[name]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ledgerstore.ErrNotFound
}

type typeRepo Store

func (r *typeRepo) GetByDescription(ctx context.Context, description string) (*ledgerstore.TransactionType, error) {
	if tt, ok := r.types[description]; ok {
		cp := *tt
		return &cp, nil
	}
	return nil, ledgerstore.ErrNotFound
}

type systemRepo Store

func (r *systemRepo) Ping(ctx context.Context) error { return nil }

// txContext gives the handler pipeline the same repository set inside
// WithTransaction as outside it; the fake store has no isolation to
// provide beyond the mutex already held by WithTransaction.
type txContext Store

func (c *txContext) Events() ledgerstore.EventRepository { return (*eventRepo)(c) }
func (c *txContext) Tokens() ledgerstore.TokenRepository { return (*tokenRepo)(c) }
func (c *txContext) TransactionTypes() ledgerstore.TransactionTypeRepository {
	return (*typeRepo)(c)
}
func (c *txContext) Transactions() ledgerstore.TransactionRepository { return (*txRepo)(c) }
func (c *txContext) Balances() ledgerstore.BalanceRepository         { return (*balanceRepo)(c) }

type txRepo Store

func (r *txRepo) Insert(ctx context.Context, t *ledgerstore.Transaction) error {
	cp := *t
	r.txs[t.ID] = &cp
	return nil
}

type balanceRepo Store

func (r *balanceRepo) Get(ctx context.Context, account, token string) (*ledgerstore.Balance, error) {
	if b, ok := r.balances[balanceKey{account, token}]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, ledgerstore.ErrNotFound
}

func (r *balanceRepo) CreateFresh(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*ledgerstore.Balance, *ledgerstore.BalanceSnapshot, error) {
	key := balanceKey{account, token}
	if _, exists := r.balances[key]; exists {
		return nil, nil, ledgerstore.NewConstraintError("balance_create_fresh", nil)
	}
	snapID := uuid.New()
	snap := &ledgerstore.BalanceSnapshot{
		ID: snapID, Account: account, Token: token, Delta: amt, ResultAmount: amt, EventID: eventID, TransactionID: txID,
	}
	bal := &ledgerstore.Balance{Account: account, Token: token, Amount: amt, EventID: eventID, LatestSnapshotID: snapID}
	r.snapshots[snapID] = snap
	r.balances[key] = bal
	balCp, snapCp := *bal, *snap
	return &balCp, &snapCp, nil
}

func (r *balanceRepo) Debit(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*ledgerstore.Balance, *ledgerstore.BalanceSnapshot, error) {
	return r.applyDelta(account, token, amt.Neg(), txID, eventID, true)
}

func (r *balanceRepo) Credit(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*ledgerstore.Balance, *ledgerstore.BalanceSnapshot, error) {
	return r.applyDelta(account, token, amt, txID, eventID, false)
}

func (r *balanceRepo) applyDelta(account, token string, delta amount.Amount, txID, eventID uuid.UUID, enforceSufficiency bool) (*ledgerstore.Balance, *ledgerstore.BalanceSnapshot, error) {
	key := balanceKey{account, token}
	bal, ok := r.balances[key]
	if !ok {
		return nil, nil, ledgerstore.ErrNotFound
	}
	result := bal.Amount.Add(delta)
	if enforceSufficiency && result.IsNegative() {
		return nil, nil, ledgerstore.ErrInsufficientFunds
	}

	snapID := uuid.New()
	prev := bal.LatestSnapshotID
	snap := &ledgerstore.BalanceSnapshot{
		ID: snapID, Account: account, Token: token, Delta: delta, ResultAmount: result, EventID: eventID,
		PrevSnapshotID: &prev, TransactionID: txID,
	}
	bal.Amount = result
	bal.EventID = eventID
	bal.LatestSnapshotID = snapID
	r.snapshots[snapID] = snap

	balCp, snapCp := *bal, *snap
	return &balCp, &snapCp, nil
}
