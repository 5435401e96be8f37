package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load builds a Config from, in priority order: defaults, an optional
// config file (if configPath is non-empty), and environment variables
// (unprefixed — NOSTR_PUBLIC_KEY, MINTER_PUBLIC_KEY, NOSTR_RELAYS,
// DATABASE_URL, PORT, MAX_RETRIES, REPUBLISH_INTERVAL,
// MAX_CONCURRENT_REQUESTS, FRESHNESS_WINDOW — §6), which always win.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"nostr_public_key", "minter_public_key", "nostr_relays", "database_url",
		"cursor_path", "port", "max_retries", "republish_interval",
		"max_concurrent_requests", "freshness_window",
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
