// Package postgres implements internal/ledgerstore.Store over PostgreSQL
// via database/sql and lib/pq, grounded on the reference relational-DB
// package's RepositoryManager + per-entity-repository split and its
// executor seam for sharing repository code between *sql.DB and *sql.Tx.
package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// Store implements ledgerstore.Store against a PostgreSQL database.
type Store struct {
	db     *sql.DB
	config *ledgerstore.Config

	events *EventRepository
	tokens *TokenRepository
	types  *TransactionTypeRepository
	system *SystemRepository
}

// NewStore validates config and returns an unopened Store; call Open
// before use.
func NewStore(config *ledgerstore.Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Store{config: config}, nil
}

func (s *Store) Open(ctx context.Context) error {
	dsn, err := s.config.DSN()
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return classify("open", err)
	}

	db.SetMaxOpenConns(s.config.MaxOpenConns)
	db.SetMaxIdleConns(s.config.MaxIdleConns)
	db.SetConnMaxLifetime(s.config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(s.config.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, s.config.DefaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return classify("open", err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.events = NewEventRepository(db)
	s.tokens = NewTokenRepository(db)
	s.types = NewTransactionTypeRepository(db)
	s.system = NewSystemRepository(db)
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return classify("close", err)
	}
	return nil
}

func (s *Store) Events() ledgerstore.EventRepository                     { return s.events }
func (s *Store) Tokens() ledgerstore.TokenRepository                     { return s.tokens }
func (s *Store) TransactionTypes() ledgerstore.TransactionTypeRepository { return s.types }
func (s *Store) System() ledgerstore.SystemRepository                    { return s.system }

// WithTransaction runs fn inside a single SERIALIZABLE transaction,
// matching the isolation level the spec's "Atomicity" invariant (P6)
// requires for concurrent variant handlers touching the same balances.
func (s *Store) WithTransaction(ctx context.Context, fn func(ledgerstore.TransactionContext) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classify("begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	tc := newTransactionContext(tx)
	if err := fn(tc); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit", err)
	}
	return nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tokens (
			name TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS transaction_types (
			id SERIAL PRIMARY KEY,
			description TEXT UNIQUE NOT NULL
		)`,
		`INSERT INTO transaction_types (description) VALUES
			('internal-transaction'), ('inbound-transaction'), ('outbound-transaction')
			ON CONFLICT (description) DO NOTHING`,
		`CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			kind INTEGER NOT NULL,
			signer TEXT NOT NULL,
			signature TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			stored_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			event_id UUID NOT NULL REFERENCES events(id),
			transaction_type INTEGER NOT NULL REFERENCES transaction_types(id),
			memo TEXT NOT NULL DEFAULT '',
			payload TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS balance_snapshots (
			id UUID PRIMARY KEY,
			account TEXT NOT NULL,
			token TEXT NOT NULL REFERENCES tokens(name),
			delta NUMERIC NOT NULL,
			result_amount NUMERIC NOT NULL,
			event_id UUID NOT NULL REFERENCES events(id),
			prev_snapshot_id UUID REFERENCES balance_snapshots(id),
			transaction_id UUID NOT NULL REFERENCES transactions(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS balances (
			account TEXT NOT NULL,
			token TEXT NOT NULL REFERENCES tokens(name),
			amount NUMERIC NOT NULL,
			event_id UUID NOT NULL REFERENCES events(id),
			latest_snapshot_id UUID NOT NULL REFERENCES balance_snapshots(id),
			PRIMARY KEY (account, token)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balance_snapshots_account_token ON balance_snapshots(account, token)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_event_id ON transactions(event_id)`,
	}

	for _, q := range queries {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return classify("init_schema", err)
		}
	}
	return nil
}
