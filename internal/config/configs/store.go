package configs

import (
	"fmt"
	"strings"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverRedis    = "redis"
)

// Store selects which backend persists campaigns.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
}

// Normalized returns the lower-cased driver name or an error for an
// unsupported driver.
func (s Store) Normalized() (string, error) {
	d := strings.ToLower(strings.TrimSpace(s.Driver))
	switch d {
	case StoreDriverPostgres, StoreDriverSQLite, StoreDriverRedis:
		return d, nil
	}
	return "", fmt.Errorf("unsupported store driver %q", s.Driver)
}

// SQLite configures the embedded single-node store.
type SQLite struct {
	// Path is the database file. ":memory:" keeps everything in memory.
	Path string `env:"PATH" envDefault:"campaigns.db"`
}

// Redis configures the Redis campaign store.
type Redis struct {
	Addr     string `env:"ADDRESS" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	// MaxRetries bounds optimistic-lock retries of a single record update
	// before it fails with a conflict.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"16"`
}
