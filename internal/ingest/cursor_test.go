package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	kvpebble "github.com/nostrbank/ledgerd/internal/storage/kv/pebble"
)

func TestCursor_SinceFallsBackWhenUnset(t *testing.T) {
	db, err := kvpebble.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := NewCursor(db)
	require.Equal(t, int64(42), c.Since(context.Background(), "wss://relay.example.com", 42))
}

func TestCursor_AdvanceThenSince(t *testing.T) {
	db, err := kvpebble.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := NewCursor(db)
	require.NoError(t, c.Advance(context.Background(), "wss://relay.example.com", 100))
	require.Equal(t, int64(100), c.Since(context.Background(), "wss://relay.example.com", 0))
}

func TestCursor_AdvanceNeverGoesBackwards(t *testing.T) {
	db, err := kvpebble.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := NewCursor(db)
	require.NoError(t, c.Advance(context.Background(), "r", 100))
	require.NoError(t, c.Advance(context.Background(), "r", 50))
	require.Equal(t, int64(100), c.Since(context.Background(), "r", 0))
}

func TestCursor_PerRelayIsolation(t *testing.T) {
	db, err := kvpebble.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	c := NewCursor(db)
	require.NoError(t, c.Advance(context.Background(), "relay-a", 10))
	require.NoError(t, c.Advance(context.Background(), "relay-b", 20))

	require.Equal(t, int64(10), c.Since(context.Background(), "relay-a", 0))
	require.Equal(t, int64(20), c.Since(context.Background(), "relay-b", 0))
}
