package ledgerstore

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the connection and pool settings for the postgres Store,
// adapted from the reference relational-DB config down to the single
// driver the ledger actually uses.
type Config struct {
	ConnectionString string
	Host             string
	Port             int
	Database         string
	Username         string
	Password         string
	SSLMode          string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	DefaultTimeout time.Duration
}

// NewConfig returns a Config with sensible defaults; callers overlay
// values parsed from the environment (see internal/config).
func NewConfig() *Config {
	return &Config{
		Port:            5432,
		Database:        "ledger",
		SSLMode:         "prefer",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
		DefaultTimeout:  30 * time.Second,
	}
}

// Validate checks the configuration for common errors.
func (c *Config) Validate() error {
	if c.ConnectionString == "" {
		if c.Host == "" {
			return fmt.Errorf("ledgerstore: database host is required")
		}
		if c.Database == "" {
			return fmt.Errorf("ledgerstore: database name is required")
		}
		switch c.SSLMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("ledgerstore: invalid SSL mode: %s", c.SSLMode)
		}
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("ledgerstore: max open connections must be >= 0")
	}
	if c.MaxIdleConns < 0 || c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return fmt.Errorf("ledgerstore: max idle connections out of range")
	}
	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("ledgerstore: default timeout must be positive")
	}
	return nil
}

// DSN builds a postgres connection string, preferring an explicit
// ConnectionString (typically DATABASE_URL) when one is set.
func (c *Config) DSN() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}

	params := url.Values{}
	params.Set("sslmode", c.SSLMode)
	params.Set("application_name", "ledgerd")

	dsn := "postgres://"
	if c.Username != "" {
		dsn += c.Username
		if c.Password != "" {
			dsn += ":" + c.Password
		}
		dsn += "@"
	}
	dsn += c.Host
	if c.Port != 0 && c.Port != 5432 {
		dsn += fmt.Sprintf(":%d", c.Port)
	}
	dsn += "/" + c.Database + "?" + params.Encode()
	return dsn, nil
}

// String renders the config with the password redacted, safe for logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, Database: %s, SSLMode: %s}", c.Host, c.Port, c.Database, c.SSLMode)
}
