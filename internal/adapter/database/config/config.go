// Package config holds the per-connection database settings decoded from app.database.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// TypeDummy marks a datasource that opens no connection. The in-memory repository is used instead.
const TypeDummy = "dummy"

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `yaml:"max_open_conns"`
	MaxIdleConns           int `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Type     string     `yaml:"type"`             // Database type ("postgres", "mysql", "sqlite", "dummy").
	Host     string     `yaml:"host"`             // Database host address.
	Port     int        `yaml:"port"`             // Database port number.
	Database string     `yaml:"database"`         // Database name, or the file/DSN for SQLite.
	User     string     `yaml:"user"`             // Database user.
	Password string     `yaml:"password"`         // Database password.
	Schema   string     `yaml:"schema,omitempty"` // Schema name for PostgreSQL.
	Sslmode  string     `yaml:"sslmode"`          // SSL mode for PostgreSQL.
	Pool     PoolConfig `yaml:"pool"`             // Connection pool settings.
}

// Decode converts one raw entry of app.database into a DatabaseConfig.
// Keys follow the yaml tags, and string values produced by ${VAR} expansion are
// converted to the field type ("5432" -> 5432).
func Decode(raw interface{}) (DatabaseConfig, error) {
	var cfg DatabaseConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, fmt.Errorf("failed to decode database config: %w", err)
	}
	return cfg, nil
}

// Lookup finds and decodes the named connection in a raw app.database map.
func Lookup(configs map[string]interface{}, name string) (DatabaseConfig, error) {
	raw, ok := configs[name]
	if !ok {
		return DatabaseConfig{}, fmt.Errorf("database configuration '%s' not found in app.database", name)
	}
	cfg, err := Decode(raw)
	if err != nil {
		return cfg, fmt.Errorf("connection '%s': %w", name, err)
	}
	return cfg, nil
}
