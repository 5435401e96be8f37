package postgres

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/nostrbank/ledgerd/internal/ledgerstore"
)

func TestClassify_Nil(t *testing.T) {
	require.NoError(t, classify("op", nil))
}

func TestClassify_ConnectionException(t *testing.T) {
	err := classify("op", &pq.Error{Code: "08006"})
	var se *ledgerstore.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, ledgerstore.ErrorTypeConnection, se.Type)
	require.True(t, se.Retryable)
}

func TestClassify_SerializationFailureIsRetryable(t *testing.T) {
	err := classify("op", &pq.Error{Code: "40001"})
	var se *ledgerstore.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, ledgerstore.ErrorTypeTransaction, se.Type)
	require.True(t, se.Retryable)
}

func TestClassify_UniqueViolationOnCreateFreshIsRetryable(t *testing.T) {
	err := classify("balance_create_fresh", &pq.Error{Code: "23505"})
	var se *ledgerstore.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, ledgerstore.ErrorTypeTransaction, se.Type)
	require.True(t, se.Retryable)
}

func TestClassify_OtherConstraintViolationIsNotRetryable(t *testing.T) {
	err := classify("op", &pq.Error{Code: "23503"}) // foreign key violation
	var se *ledgerstore.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, ledgerstore.ErrorTypeConstraint, se.Type)
	require.False(t, se.Retryable)
}

func TestClassify_UnknownClassIsDataError(t *testing.T) {
	err := classify("op", &pq.Error{Code: "22P02"}) // invalid text representation
	var se *ledgerstore.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, ledgerstore.ErrorTypeData, se.Type)
	require.False(t, se.Retryable)
}

func TestClassify_NonPQError(t *testing.T) {
	err := classify("op", errors.New("dial tcp: connection refused"))
	var se *ledgerstore.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, ledgerstore.ErrorTypeConnection, se.Type)
}
