// Package config loads and validates ledgerd's runtime configuration: the
// substrate identities, the relay set, the database connection and the
// engine's optional tunables (§6 Configuration).
package config

import "time"

// Config is ledgerd's complete runtime configuration.
type Config struct {
	// NostrPublicKey is the ledger's own identity: the "p" tag value every
	// inbound request must name as recipient.
	NostrPublicKey string `mapstructure:"nostr_public_key"`

	// MinterPublicKey is the single identity authorised to submit Inbound
	// (mint) and Outbound (burn) requests (§4.2 Open Question 1).
	MinterPublicKey string `mapstructure:"minter_public_key"`

	// NostrRelays is the set of relay websocket URLs the engine
	// subscribes to and publishes outcomes on.
	NostrRelays []string `mapstructure:"nostr_relays"`

	// DatabaseURL is the Postgres connection string backing
	// internal/ledgerstore/postgres.
	DatabaseURL string `mapstructure:"database_url"`

	// CursorPath is the directory holding the embedded kv store backing
	// the durable ingest cursor checkpoint (§4.5).
	CursorPath string `mapstructure:"cursor_path"`

	// Port is the bind port for the health/metrics HTTP endpoint.
	Port int `mapstructure:"port"`

	// MaxRetries is the transient-fault retry ceiling before a request
	// is abandoned with a terminal network-error outcome (§4.4).
	MaxRetries int `mapstructure:"max_retries"`

	// RepublishInterval is how long the engine waits before
	// re-announcing a balance after its initial publication (§4.6).
	RepublishInterval time.Duration `mapstructure:"republish_interval"`

	// MaxConcurrentRequests bounds how many requests the engine
	// processes in flight at once (§5 scheduling model).
	MaxConcurrentRequests int64 `mapstructure:"max_concurrent_requests"`

	// FreshnessWindow bounds how far back the initial subscription's
	// "since" filter reaches on a cold start (§5 "Cancellation and
	// timeouts").
	FreshnessWindow time.Duration `mapstructure:"freshness_window"`
}
