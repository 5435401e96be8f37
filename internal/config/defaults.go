package config

import "github.com/spf13/viper"

// setDefaults populates every optional setting's default (§6
// Configuration, "optional"). Required settings — the two identities,
// the relay set and the database URL — have no default and must be
// supplied by the environment or a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cursor_path", "./ledgerd-cursor.db")
	v.SetDefault("port", 8080)
	v.SetDefault("max_retries", 10)
	v.SetDefault("republish_interval", "1s")
	v.SetDefault("max_concurrent_requests", 64)
	v.SetDefault("freshness_window", "23h53m20s") // 86000s, per §5
}
