// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dani6777-2/EcoTechSolutions/pkg/errutil"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ecotech.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	fs.String("as", "", "not configuration")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, uint64(5), cfg.Database.ConnectRetries)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, "sha256", cfg.Auth.Hasher)
	assert.Equal(t, 3, cfg.Auth.MaxLoginAttempts)
	assert.False(t, cfg.Auth.DiscloseFailureReason)
	assert.Equal(t, ThrottleNone, cfg.Auth.Throttle.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Auth.Throttle.Window)
	require.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "postgres://env/ecotech")
	path := writeFile(t, `
database:
  url: postgres://file/ecotech
  connect_timeout: 10s
log:
  format: json
auth:
  hasher: argon2id
  max_login_attempts: 5
  disclose_failure_reason: true
  throttle:
    backend: redis
    max_failures: 4
    window: 2m
redis:
  addr: redis:6379
metrics:
  textfile: /var/lib/node_exporter/ecotech.prom
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/ecotech", cfg.Database.URL, "file wins over DATABASE_URL")
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, uint64(5), cfg.Database.ConnectRetries, "unset keys keep defaults")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "argon2id", cfg.Auth.Hasher)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.True(t, cfg.Auth.DiscloseFailureReason)
	assert.Equal(t, ThrottleConfig{Backend: "redis", MaxFailures: 4, Window: 2 * time.Minute}, cfg.Auth.Throttle)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "/var/lib/node_exporter/ecotech.prom", cfg.Metrics.Textfile)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")
	path := writeFile(t, "auth:\n  max_login_attempts: 5\n  hasher: argon2id\n")
	flags := newFlags(t, "--max-login-attempts=2", "--database-url=postgres://flag/ecotech", "--as=admin")

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, "argon2id", cfg.Auth.Hasher, "unchanged flag does not override file")
	assert.Equal(t, "postgres://flag/ecotech", cfg.Database.URL)
}

func TestLoad_DatabaseURLFallback(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "postgres://env/ecotech")

	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/ecotech", cfg.Database.URL)
	require.NoError(t, cfg.RequireDatabase())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")

	_, err = Load(writeFile(t, "auth: [unclosed"), nil)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestRequireDatabase(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")
	cfg, err := Load("", nil)
	require.NoError(t, err)

	err = cfg.RequireDatabase()
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	errutil.AssertErrorContext(t, err, "key", "database.url")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"unknown hasher", func(c *Config) { c.Auth.Hasher = "md5" }, "auth.hasher"},
		{"zero attempts", func(c *Config) { c.Auth.MaxLoginAttempts = 0 }, "auth.max_login_attempts"},
		{"zero timeout", func(c *Config) { c.Database.ConnectTimeout = 0 }, "database.connect_timeout"},
		{"unknown throttle", func(c *Config) { c.Auth.Throttle.Backend = "memcached" }, "auth.throttle.backend"},
		{"redis without addr", func(c *Config) {
			c.Auth.Throttle.Backend = ThrottleRedis
			c.Redis.Addr = " "
		}, "redis.addr"},
		{"redis zero failures", func(c *Config) {
			c.Auth.Throttle.Backend = ThrottleRedis
			c.Auth.Throttle.MaxFailures = 0
		}, "auth.throttle.max_failures"},
		{"redis zero window", func(c *Config) {
			c.Auth.Throttle.Backend = ThrottleRedis
			c.Auth.Throttle.Window = 0
		}, "auth.throttle.window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("", nil)
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}
}
