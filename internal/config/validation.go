package config

// Validate checks the required settings are present and the optional
// ones are sane, returning the first problem found.
func Validate(cfg *Config) error {
	if cfg.NostrPublicKey == "" {
		return ErrMissingPublicKey
	}
	if cfg.MinterPublicKey == "" {
		return ErrMissingMinterKey
	}
	if len(cfg.NostrRelays) == 0 {
		return ErrMissingRelays
	}
	if cfg.DatabaseURL == "" {
		return ErrMissingDatabase
	}
	if cfg.MaxRetries < 0 {
		return ErrInvalidRetries
	}
	if cfg.MaxConcurrentRequests <= 0 {
		return ErrInvalidConcurrent
	}
	return nil
}
