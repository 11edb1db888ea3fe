package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DatabasePassword:       "secret",
		RollingDecayRate:       0.1,
		RollingWindowShort:     5,
		RollingWindowMid:       10,
		RollingWindowLong:      20,
		BatchSize:              100,
		MaterializeParallelism: 4,
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.DatabasePassword = ""
	assert.Error(t, cfg.Validate(), "Password is required")

	cfg = validConfig()
	cfg.RollingDecayRate = 0
	assert.Error(t, cfg.Validate(), "Decay rate must be positive")

	cfg = validConfig()
	cfg.RollingWindowMid = -1
	assert.Error(t, cfg.Validate(), "Window sizes must be positive")

	cfg = validConfig()
	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate(), "Batch size must be positive")

	cfg = validConfig()
	cfg.MaterializeParallelism = 0
	assert.Error(t, cfg.Validate(), "Parallelism must be positive")
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseHost = "db.internal"
	cfg.DatabasePort = 5433
	cfg.DatabaseUser = "nba_user"
	cfg.DatabaseName = "nba_model"
	cfg.DatabaseSSLMode = "require"

	dsn := cfg.DatabaseDSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "dbname=nba_model")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestRedisAddr(t *testing.T) {
	cfg := validConfig()
	cfg.RedisHost = "cache.internal"
	cfg.RedisPort = 6380
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := validConfig()
	cfg.AppEnv = "development"
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.AppEnv = "production"
	assert.True(t, cfg.IsProduction())
}
