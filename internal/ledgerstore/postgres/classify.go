package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

// classify maps a driver-level error into a *ledgerstore.StoreError,
// consulting the PostgreSQL SQLSTATE class when the error comes from
// lib/pq so the retry loop (§4.4) can tell a dropped connection from a
// constraint violation without string-matching.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// A unique-violation on CreateFresh signals a concurrent first-credit
		// race (two requests both found no existing balance row and tried to
		// insert one); a retry resolves it via Credit, same as a serialization
		// failure, so it gets the same transient classification (§5).
		if pqErr.Code == "23505" {
			return ledgerstore.NewTransactionError(operation, err, true)
		}
		switch pqErr.Code.Class() {
		case "08": // connection exception
			return ledgerstore.NewConnectionError(operation, err)
		case "40": // transaction rollback (serialization failure, deadlock)
			return ledgerstore.NewTransactionError(operation, err, true)
		case "23": // integrity constraint violation
			return ledgerstore.NewConstraintError(operation, err)
		default:
			return ledgerstore.NewDataError(operation, err)
		}
	}

	return ledgerstore.NewConnectionError(operation, err)
}
