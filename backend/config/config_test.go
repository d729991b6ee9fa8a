package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]interface{}) *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, value := range overrides {
		v.Set(key, value)
	}
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.LegacyStatusCodes)
	assert.Equal(t, "host=localhost user=postgres password=postgres dbname=tracks port=5432 sslmode=disable", cfg.PostgresDSN())
}

func TestOverrides(t *testing.T) {
	cfg, err := fromViper(newViper(map[string]interface{}{
		"DB_DRIVER":           "SQLite",
		"LEGACY_STATUS_CODES": "false",
		"LOG_FORMAT":          "Console",
	}))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.False(t, cfg.LegacyStatusCodes)
}

func TestRejectsUnknownDriver(t *testing.T) {
	_, err := fromViper(newViper(map[string]interface{}{"DB_DRIVER": "redis"}))
	assert.Error(t, err)
}

func TestEnvironmentIsRead(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("DB_DRIVER", "memory")

	v := newViper(nil)
	v.AutomaticEnv()
	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.ServerPort)
	assert.Equal(t, "memory", cfg.DBDriver)
}
