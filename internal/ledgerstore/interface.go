// Package ledgerstore defines the persistence port the engine drives: the
// domain entities (§3 Data Model), the per-entity repository interfaces and
// the transactional manager that wraps them, adapted from the reference
// relational-DB layer's repository-per-entity split and
// RepositoryManager.WithTransaction pattern.
package ledgerstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/amount"
)

// Event is the persisted record of an inbound substrate event that reached
// a terminal outcome (§3 Data Model: Event). Persisting it makes the
// request id non-replayable, which is what implements idempotency (P1).
type Event struct {
	ID        uuid.UUID // the substrate event's "id" field, not a generated key
	Kind      int
	Signer    string // the "pubkey" field, i.e. whoever actually signed
	Signature string
	Author    string // the delegation-resolved identity (§3 Data Model); equals Signer absent delegation
	Content   string
	CreatedAt time.Time
	StoredAt  time.Time
}

// Token is a unit of account the ledger tracks balances for.
type Token struct {
	Name      string
	CreatedAt time.Time
}

// TransactionType names one of the three transaction variants, stored so
// Transaction rows can carry a foreign key instead of a bare string.
type TransactionType struct {
	ID          int
	Description string // "internal-transaction" / "inbound-transaction" / "outbound-transaction"
}

// Transaction is a committed unit of work: one row per accepted request,
// referencing the Event that triggered it and the variant that ran.
type Transaction struct {
	ID              uuid.UUID
	EventID         uuid.UUID
	TransactionType int
	Memo            string
	Payload         string // snapshot of the triggering request's content (§3 Data Model: Transaction.payload)
	CreatedAt       time.Time
}

// Balance is the current holding of one (account, token) pair. Amount is
// always the running total; EventID names the most recent Event that moved
// it; the authoritative history lives in the BalanceSnapshot chain reachable
// from LatestSnapshotID.
type Balance struct {
	Account          string
	Token            string
	Amount           amount.Amount
	EventID          uuid.UUID
	LatestSnapshotID uuid.UUID
}

// BalanceSnapshot is one immutable entry in a Balance's append-only delta
// history (§3 Data Model, §9 "Snapshot chain integrity").
type BalanceSnapshot struct {
	ID             uuid.UUID
	Account        string
	Token          string
	Delta          amount.Amount
	ResultAmount   amount.Amount
	EventID        uuid.UUID
	PrevSnapshotID *uuid.UUID // nil for the root snapshot of a balance
	TransactionID  uuid.UUID
	CreatedAt      time.Time
}

// EventRepository persists and looks up inbound events.
type EventRepository interface {
	// Exists reports whether an Event with this id was already persisted,
	// the primary idempotency check (§4.1 step 1).
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Insert(ctx context.Context, e *Event) error
}

// TokenRepository resolves token definitions.
type TokenRepository interface {
	Get(ctx context.Context, name string) (*Token, error)
}

// TransactionTypeRepository resolves the three known transaction types.
type TransactionTypeRepository interface {
	GetByDescription(ctx context.Context, description string) (*TransactionType, error)
}

// TransactionRepository persists committed transactions.
type TransactionRepository interface {
	Insert(ctx context.Context, t *Transaction) error
}

// BalanceRepository implements the three balance mutations the engine's
// variant handlers drive (§4.3): CreateFresh for first-touch balances,
// Debit/Credit for existing ones. Each call is expected to run inside the
// caller's ambient transaction (the executor bound at manager construction
// time), never opening one of its own.
type BalanceRepository interface {
	// Get returns the current balance for (account, token), or
	// ErrNotFound if no Balance row exists yet.
	Get(ctx context.Context, account, token string) (*Balance, error)

	// CreateFresh inserts a Balance and its root BalanceSnapshot in a
	// single atomic statement (§9 "Paired insert of Balance + first
	// Snapshot" — two inserts, one returning clause, never two
	// statements). eventID is stamped onto both rows as the Event that
	// moved the balance.
	CreateFresh(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*Balance, *BalanceSnapshot, error)

	// Debit subtracts amt from an existing balance, inserting the
	// resulting BalanceSnapshot. Callers must have already verified
	// sufficiency; Debit returns ErrInsufficientFunds defensively if the
	// stored amount has since changed under it.
	Debit(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*Balance, *BalanceSnapshot, error)

	// Credit adds amt to an existing balance, inserting the resulting
	// BalanceSnapshot.
	Credit(ctx context.Context, account, token string, amt amount.Amount, txID, eventID uuid.UUID) (*Balance, *BalanceSnapshot, error)
}

// SystemRepository covers operations with no natural entity home.
type SystemRepository interface {
	Ping(ctx context.Context) error
}

// TransactionContext exposes the repository set bound to one open database
// transaction, mirroring the reference TransactionContext but over ledger
// entities instead of XRPL ones.
type TransactionContext interface {
	Events() EventRepository
	Tokens() TokenRepository
	TransactionTypes() TransactionTypeRepository
	Transactions() TransactionRepository
	Balances() BalanceRepository
}

// Store is the persistence port the engine is constructed against. A
// concrete Store (postgres, or the in-memory fake used in engine tests)
// exposes Transaction and Balance writes only inside WithTransaction, so a
// variant handler's full pipeline commits or rolls back atomically
// (§9 "Atomicity" / P6).
type Store interface {
	// Events/Tokens/TransactionTypes/System are usable outside of a
	// transaction. Events().Insert is the one write made there: the
	// pre-validation pipeline and the retry wrapper persist rejected and
	// failed request events through it.
	Events() EventRepository
	Tokens() TokenRepository
	TransactionTypes() TransactionTypeRepository
	System() SystemRepository

	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// WithTransaction runs fn inside a single serializable database
	// transaction, committing on nil return and rolling back otherwise.
	WithTransaction(ctx context.Context, fn func(TransactionContext) error) error
}
