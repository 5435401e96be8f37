package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("NOSTR_PUBLIC_KEY", "ledger-pubkey")
	t.Setenv("MINTER_PUBLIC_KEY", "minter-pubkey")
	t.Setenv("NOSTR_RELAYS", "wss://a.example.com,wss://b.example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "ledger-pubkey", cfg.NostrPublicKey)
	require.Equal(t, "minter-pubkey", cfg.MinterPublicKey)
	require.Equal(t, []string{"wss://a.example.com", "wss://b.example.com"}, cfg.NostrRelays)
	require.Equal(t, "postgres://localhost/ledger", cfg.DatabaseURL)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("NOSTR_PUBLIC_KEY", "ledger-pubkey")
	t.Setenv("MINTER_PUBLIC_KEY", "minter-pubkey")
	t.Setenv("NOSTR_RELAYS", "wss://a.example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10, cfg.MaxRetries)
	require.Equal(t, time.Second, cfg.RepublishInterval)
	require.Equal(t, int64(64), cfg.MaxConcurrentRequests)
	require.Equal(t, 23*time.Hour+53*time.Minute+20*time.Second, cfg.FreshnessWindow)
}

func TestLoad_MissingRequiredFieldFails(t *testing.T) {
	t.Setenv("NOSTR_PUBLIC_KEY", "")
	t.Setenv("MINTER_PUBLIC_KEY", "minter-pubkey")
	t.Setenv("NOSTR_RELAYS", "wss://a.example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")

	_, err := Load("")
	require.ErrorIs(t, err, ErrMissingPublicKey)
}
