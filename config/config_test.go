package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxSize)
	assert.Equal(t, "*", cfg.Server.CORSOrigin)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Empty(t, cfg.Cassandra.Hosts)
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ASANA_SERVER_PORT", "8081")
	t.Setenv("ASANA_JWT_EXPIRY", "2h")
	t.Setenv("DATABASE_URL", "postgres://localhost/asana")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ASANA_CASSANDRA_HOSTS", "10.0.0.1, 10.0.0.2")
	t.Setenv("NODE_ENV", "production")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiry)
	assert.Equal(t, "postgres://localhost/asana", cfg.Database.URL)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Cassandra.Hosts)
	assert.True(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\nlog:\n  level: debug\n"), 0o600))

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url is required")
	assert.Contains(t, err.Error(), "jwt.secret is required")

	cfg.Database.URL = "postgres://x"
	cfg.JWT.Secret = "k"
	cfg.Server.Port = 70000
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ASANA_TEST_DOTENV_KEY=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ASANA_TEST_DOTENV_KEY") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("ASANA_TEST_DOTENV_KEY"))
}
