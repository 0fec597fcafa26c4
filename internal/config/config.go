// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package config loads ecotech settings from defaults, an optional YAML file,
// command-line flags and the DATABASE_URL environment variable, in increasing
// order of precedence except for DATABASE_URL, which only fills an empty
// database.url.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	"github.com/dani6777-2/EcoTechSolutions/internal/logging"
)

// DatabaseURLEnv is read when no database URL is configured.
const DatabaseURLEnv = "DATABASE_URL"

// Throttle backends.
const (
	ThrottleNone  = "none"
	ThrottleRedis = "redis"
)

// Config is the complete ecotech configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Redis    RedisConfig    `koanf:"redis"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// DatabaseConfig locates PostgreSQL.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	ConnectRetries uint64        `koanf:"connect_retries"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// LogConfig selects log output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// AuthConfig tunes authentication.
type AuthConfig struct {
	Hasher                string         `koanf:"hasher"`
	MaxLoginAttempts      int            `koanf:"max_login_attempts"`
	DiscloseFailureReason bool           `koanf:"disclose_failure_reason"`
	Throttle              ThrottleConfig `koanf:"throttle"`
}

// ThrottleConfig configures the cross-session failure limiter.
type ThrottleConfig struct {
	Backend     string        `koanf:"backend"`
	MaxFailures int           `koanf:"max_failures"`
	Window      time.Duration `koanf:"window"`
}

// RedisConfig locates Redis for the redis throttle backend.
type RedisConfig struct {
	Addr string `koanf:"addr"`
}

// MetricsConfig controls metric export.
type MetricsConfig struct {
	// Textfile, when set, receives the metrics after each command.
	Textfile string `koanf:"textfile"`
}

var defaults = map[string]any{
	"database.connect_retries":     uint64(5),
	"database.connect_timeout":     5 * time.Second,
	"log.format":                   logging.FormatText,
	"log.level":                    "warn",
	"auth.hasher":                  auth.HasherSHA256,
	"auth.max_login_attempts":      auth.DefaultMaxLoginAttempts,
	"auth.disclose_failure_reason": false,
	"auth.throttle.backend":        ThrottleNone,
	"auth.throttle.max_failures":   10,
	"auth.throttle.window":         15 * time.Minute,
	"redis.addr":                   "localhost:6379",
}

// flagKeys maps command-line flag names to configuration keys. Flags not
// listed here are not configuration.
var flagKeys = map[string]string{
	"database-url":            "database.url",
	"log-format":              "log.format",
	"log-level":               "log.level",
	"hasher":                  "auth.hasher",
	"max-login-attempts":      "auth.max_login_attempts",
	"disclose-failure-reason": "auth.disclose_failure_reason",
	"throttle":                "auth.throttle.backend",
	"redis-addr":              "redis.addr",
	"metrics-textfile":        "metrics.textfile",
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("database-url", "", "PostgreSQL URL (default $"+DatabaseURLEnv+")")
	fs.String("log-format", logging.FormatText, "log format: json or text")
	fs.String("log-level", "warn", "log level: debug, info, warn or error")
	fs.String("hasher", auth.HasherSHA256, "password hasher for new hashes: sha256 or argon2id")
	fs.Int("max-login-attempts", auth.DefaultMaxLoginAttempts, "failed attempts allowed per login")
	fs.Bool("disclose-failure-reason", false, "tell users why a login failed")
	fs.String("throttle", ThrottleNone, "cross-session login throttle: none or redis")
	fs.String("redis-addr", "localhost:6379", "Redis address for the redis throttle")
	fs.String("metrics-textfile", "", "write metrics to this file after each command")
}

// Load builds a Config. path may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	if strings.TrimSpace(k.String("database.url")) == "" {
		if env := os.Getenv(DatabaseURLEnv); env != "" {
			if err := k.Set("database.url", env); err != nil {
				return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", "database.url").Wrap(err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrap(err)
	}
	return &cfg, nil
}

// Validate checks values that do not depend on which command runs.
func (c *Config) Validate() error {
	if !logging.ValidFormat(c.Log.Format) {
		return invalid("log.format", "must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "must be debug, info, warn or error")
	}
	if _, err := auth.NewHasher(c.Auth.Hasher); err != nil {
		return invalid("auth.hasher", "must be sha256 or argon2id")
	}
	if c.Auth.MaxLoginAttempts < 1 {
		return invalid("auth.max_login_attempts", "must be at least 1")
	}
	if c.Database.ConnectTimeout <= 0 {
		return invalid("database.connect_timeout", "must be positive")
	}

	switch strings.ToLower(c.Auth.Throttle.Backend) {
	case "", ThrottleNone:
	case ThrottleRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return invalid("redis.addr", "is required by the redis throttle")
		}
		if c.Auth.Throttle.MaxFailures < 1 {
			return invalid("auth.throttle.max_failures", "must be at least 1")
		}
		if c.Auth.Throttle.Window <= 0 {
			return invalid("auth.throttle.window", "must be positive")
		}
	default:
		return invalid("auth.throttle.backend", "must be none or redis")
	}
	return nil
}

// RequireDatabase reports a CONFIG_INVALID error when no database URL is set.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return oops.Code("CONFIG_INVALID").
			With("key", "database.url").
			Errorf("database URL is required: set --database-url, database.url or %s", DatabaseURLEnv)
	}
	return nil
}

func invalid(key, reason string) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf("%s %s", key, reason)
}
