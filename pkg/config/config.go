// Package config loads process configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is consulted when CRATEVAULT_CONFIG is unset.
	DefaultConfigPath = "/etc/cratevault/cratevault.yml"

	defaultBindAddress    = "0.0.0.0"
	defaultPort           = "8000"
	defaultPoolMax        = 8
	defaultTimeoutSeconds = 5
)

// Config holds all server configuration settings.
type Config struct {
	// BindAddress is the listen address.
	BindAddress string `yaml:"bind_address"`

	// Port is the listen port.
	Port string `yaml:"port"`

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string `yaml:"database_url"`

	// DatabasePoolMax bounds the connection pool.
	DatabasePoolMax int `yaml:"database_pool_max"`

	// DatabaseTimeoutSeconds bounds each store operation's wait for a
	// pooled connection.
	DatabaseTimeoutSeconds int `yaml:"database_timeout"`

	// SessionKey is the base64-encoded cookie authentication key. When
	// empty a random key is generated at startup, which invalidates
	// existing sessions on restart.
	SessionKey string `yaml:"session_key"`
}

func newDefault() *Config {
	return &Config{
		BindAddress:            defaultBindAddress,
		Port:                   defaultPort,
		DatabasePoolMax:        defaultPoolMax,
		DatabaseTimeoutSeconds: defaultTimeoutSeconds,
	}
}

// Load reads configuration from the config file, if present, then
// applies environment overrides. A missing file is not an error; the
// defaults plus environment are enough to run.
func Load() (*Config, error) {
	cfg := newDefault()

	path := os.Getenv("CRATEVAULT_CONFIG")
	if path == "" {
		path = DefaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BIND_ADDRESS"); v != "" {
		c.BindAddress = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("DATABASE_POOL_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DatabasePoolMax = n
		}
	}
	if v := os.Getenv("DATABASE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DatabaseTimeoutSeconds = n
		}
	}
	if v := os.Getenv("CRATEVAULT_SESSION_KEY"); v != "" {
		c.SessionKey = v
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return c.BindAddress + ":" + c.Port
}

// DatabaseTimeout returns the acquire timeout as a duration.
func (c *Config) DatabaseTimeout() time.Duration {
	return time.Duration(c.DatabaseTimeoutSeconds) * time.Second
}

// SessionKeyBytes decodes the configured session key, or generates a
// fresh random one when none is configured.
func (c *Config) SessionKeyBytes() ([]byte, error) {
	if c.SessionKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("config: generate session key: %w", err)
		}
		return key, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.SessionKey)
	if err != nil {
		return nil, fmt.Errorf("config: invalid session key: %w", err)
	}
	return key, nil
}
