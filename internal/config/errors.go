package config

import "errors"

var (
	ErrMissingPublicKey  = errors.New("config: NOSTR_PUBLIC_KEY is required")
	ErrMissingMinterKey  = errors.New("config: MINTER_PUBLIC_KEY is required")
	ErrMissingRelays     = errors.New("config: NOSTR_RELAYS must name at least one relay")
	ErrMissingDatabase   = errors.New("config: DATABASE_URL is required")
	ErrInvalidRetries    = errors.New("config: MAX_RETRIES must be non-negative")
	ErrInvalidConcurrent = errors.New("config: MAX_CONCURRENT_REQUESTS must be positive")
)
