package kv

import "errors"

var (
	// ErrDBClosed is returned when operating on a closed store.
	ErrDBClosed = errors.New("kv: store is closed")

	// ErrKeyNotFound is returned when a key doesn't exist in the store.
	ErrKeyNotFound = errors.New("kv: key not found")
)
