package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("CORE_DATABASE_URL")
	os.Unsetenv("CORE_DB_MAX_CONNS")
	os.Unsetenv("HTTP_LISTEN_ADDR")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("WEB_ROOT")
	os.Unsetenv("SOFTWARE_HELPER")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.CoreDatabaseURL)
	assert.Equal(t, int32(8), cfg.CoreDBMaxConns)
	assert.Equal(t, ":8090", cfg.HTTPListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/var/www/clients", cfg.WebRoot)
	assert.Equal(t, "/usr/local/bin/panelengine-sw", cfg.SoftwareHelper)
	assert.Equal(t, "eth0", cfg.NetworkDevice)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CORE_DATABASE_URL", "postgres://localhost:5432/panel")
	t.Setenv("CORE_DB_MAX_CONNS", "16")
	t.Setenv("HTTP_LISTEN_ADDR", ":7071")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("WEB_ROOT", "/srv/www")
	t.Setenv("NETWORK_DEVICE", "ens3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/panel", cfg.CoreDatabaseURL)
	assert.Equal(t, int32(16), cfg.CoreDBMaxConns)
	assert.Equal(t, ":7071", cfg.HTTPListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/www", cfg.WebRoot)
	assert.Equal(t, "ens3", cfg.NetworkDevice)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate("engine"))
	require.Error(t, cfg.Validate("panel-api"))

	cfg.CoreDatabaseURL = "postgres://localhost/panel"
	require.NoError(t, cfg.Validate("engine"))
	require.NoError(t, cfg.Validate("setup"))
}
