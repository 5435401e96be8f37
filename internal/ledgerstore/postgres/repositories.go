package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// EventRepository persists the idempotency record of terminal requests.
type EventRepository struct {
	exec executor
}

func NewEventRepository(exec executor) *EventRepository { return &EventRepository{exec: exec} }

func (r *EventRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.exec.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, classify("event_exists", err)
	}
	return exists, nil
}

func (r *EventRepository) Insert(ctx context.Context, e *ledgerstore.Event) error {
	_, err := r.exec.ExecContext(ctx,
		`INSERT INTO events (id, kind, signer, signature, author, content, created_at, stored_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Kind, e.Signer, e.Signature, e.Author, e.Content, e.CreatedAt, e.StoredAt,
	)
	if err != nil {
		return classify("event_insert", err)
	}
	return nil
}

// TokenRepository resolves token definitions.
type TokenRepository struct {
	exec executor
}

func NewTokenRepository(exec executor) *TokenRepository { return &TokenRepository{exec: exec} }

func (r *TokenRepository) Get(ctx context.Context, name string) (*ledgerstore.Token, error) {
	var t ledgerstore.Token
	t.Name = name
	err := r.exec.QueryRowContext(ctx,
		`SELECT created_at FROM tokens WHERE name = $1`, name,
	).Scan(&t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ledgerstore.ErrNotFound
	}
	if err != nil {
		return nil, classify("token_get", err)
	}
	return &t, nil
}

// TransactionTypeRepository resolves the three known transaction types.
type TransactionTypeRepository struct {
	exec executor
}

func NewTransactionTypeRepository(exec executor) *TransactionTypeRepository {
	return &TransactionTypeRepository{exec: exec}
}

func (r *TransactionTypeRepository) GetByDescription(ctx context.Context, description string) (*ledgerstore.TransactionType, error) {
	var tt ledgerstore.TransactionType
	tt.Description = description
	err := r.exec.QueryRowContext(ctx,
		`SELECT id FROM transaction_types WHERE description = $1`, description,
	).Scan(&tt.ID)
	if err == sql.ErrNoRows {
		return nil, ledgerstore.ErrNotFound
	}
	if err != nil {
		return nil, classify("transaction_type_get", err)
	}
	return &tt, nil
}

// TransactionRepository persists committed transactions.
type TransactionRepository struct {
	exec executor
}

func NewTransactionRepository(exec executor) *TransactionRepository {
	return &TransactionRepository{exec: exec}
}

func (r *TransactionRepository) Insert(ctx context.Context, t *ledgerstore.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.exec.ExecContext(ctx,
		`INSERT INTO transactions (id, event_id, transaction_type, memo, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.EventID, t.TransactionType, t.Memo, t.Payload, t.CreatedAt,
	)
	if err != nil {
		return classify("transaction_insert", err)
	}
	return nil
}

// SystemRepository covers operations with no natural entity home.
type SystemRepository struct {
	db *sql.DB
}

func NewSystemRepository(db *sql.DB) *SystemRepository { return &SystemRepository{db: db} }

func (r *SystemRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}
