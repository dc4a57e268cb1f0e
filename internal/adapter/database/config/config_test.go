package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbconfig "github.com/k8poc/backend/internal/adapter/database/config"
)

func TestDecode_YAMLKeys(t *testing.T) {
	raw := map[string]interface{}{
		"type":     "postgres",
		"host":     "pg",
		"port":     "5432",
		"database": "app",
		"user":     "u",
		"password": "p",
		"sslmode":  "disable",
		"pool": map[string]interface{}{
			"max_open_conns":            10,
			"max_idle_conns":            "5",
			"conn_max_lifetime_minutes": 30,
		},
	}
	cfg, err := dbconfig.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "disable", cfg.Sslmode)
	assert.Equal(t, 10, cfg.Pool.MaxOpenConns)
	assert.Equal(t, 5, cfg.Pool.MaxIdleConns)
	assert.Equal(t, 30, cfg.Pool.ConnMaxLifetimeMinutes)
}

func TestDecode_InvalidPort(t *testing.T) {
	_, err := dbconfig.Decode(map[string]interface{}{"port": "not-a-port"})
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	configs := map[string]interface{}{
		"primary": map[string]interface{}{"type": "sqlite", "database": ":memory:"},
	}

	cfg, err := dbconfig.Lookup(configs, "primary")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Type)

	_, err = dbconfig.Lookup(configs, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'missing' not found")
}
