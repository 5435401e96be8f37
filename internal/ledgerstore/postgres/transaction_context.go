package postgres

import (
	"database/sql"

	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// transactionContext binds the per-entity repositories to a single open
// *sql.Tx, implementing ledgerstore.TransactionContext.
type transactionContext struct {
	events  *EventRepository
	tokens  *TokenRepository
	types   *TransactionTypeRepository
	txs     *TransactionRepository
	balance *BalanceRepository
}

func newTransactionContext(tx *sql.Tx) *transactionContext {
	return &transactionContext{
		events:  NewEventRepository(tx),
		tokens:  NewTokenRepository(tx),
		types:   NewTransactionTypeRepository(tx),
		txs:     NewTransactionRepository(tx),
		balance: NewBalanceRepository(tx),
	}
}

func (c *transactionContext) Events() ledgerstore.EventRepository                     { return c.events }
func (c *transactionContext) Tokens() ledgerstore.TokenRepository                     { return c.tokens }
func (c *transactionContext) TransactionTypes() ledgerstore.TransactionTypeRepository { return c.types }
func (c *transactionContext) Transactions() ledgerstore.TransactionRepository         { return c.txs }
func (c *transactionContext) Balances() ledgerstore.BalanceRepository                 { return c.balance }
