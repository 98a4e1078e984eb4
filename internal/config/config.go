// Package config loads the cadence configuration from a YAML file and
// CADENCE_* environment variables.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Backends accepted by History.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CADENCE_"

type Config struct {
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	History   HistoryConfig `mapstructure:"history"`
	Redis     RedisConfig   `mapstructure:"redis"`
	HTTP      HTTPConfig    `mapstructure:"http"`
	// LockTTL bounds distributed document locks.
	LockTTL time.Duration `mapstructure:"lock_ttl"`
	// DocumentDuration is the duration of documents created on first use.
	DocumentDuration time.Duration `mapstructure:"document_duration"`
}

type HistoryConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	SQLite  string `mapstructure:"sqlite"`
	// EncryptionKey is a base64 AES-256 key. When set, histories are
	// encrypted at rest.
	EncryptionKey string `mapstructure:"encryption_key"`
	// FallbackKeys decrypt histories written before a key rotation.
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (h HistoryConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if h.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(h.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("encryption_key: %w", err)
	}
	for i, k := range h.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	// Locks enables distributed document locks on the same server.
	Locks bool `mapstructure:"locks"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		History: HistoryConfig{
			Backend: BackendFile,
			Dir:     ".cadence/histories",
			SQLite:  ".cadence/cadence.db",
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "cadence:history:",
		},
		HTTP:             HTTPConfig{Port: 8080},
		LockTTL:          30 * time.Second,
		DocumentDuration: 5 * time.Minute,
	}
}

// envKeys maps environment suffixes to config keys.
var envKeys = map[string][]string{
	"LOG_LEVEL":         {"log_level"},
	"LOG_FORMAT":        {"log_format"},
	"HISTORY_BACKEND":   {"history", "backend"},
	"HISTORY_DIR":       {"history", "dir"},
	"HISTORY_SQLITE":    {"history", "sqlite"},
	"HISTORY_KEY":       {"history", "encryption_key"},
	"REDIS_ADDR":        {"redis", "addr"},
	"REDIS_PASSWORD":    {"redis", "password"},
	"REDIS_DB":          {"redis", "db"},
	"REDIS_PREFIX":      {"redis", "prefix"},
	"REDIS_TTL":         {"redis", "ttl"},
	"REDIS_LOCKS":       {"redis", "locks"},
	"HTTP_PORT":         {"http", "port"},
	"LOCK_TTL":          {"lock_ttl"},
	"DOCUMENT_DURATION": {"document_duration"},
}

// Load reads path (skipped when empty) over the defaults, then applies the
// environment returned by lookup (os.LookupEnv when nil).
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}
	for suffix, keys := range envKeys {
		if v, ok := lookup(EnvPrefix + suffix); ok {
			set(raw, keys, v)
		}
	}

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func set(m map[string]any, keys []string, v string) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = v
}

// Validate rejects unknown backends, malformed keys and non-positive
// durations.
func (c Config) Validate() error {
	switch c.History.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown history backend %q", c.History.Backend)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if _, _, err := c.History.Keys(); err != nil {
		return err
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("lock_ttl must be positive, got %s", c.LockTTL)
	}
	if c.DocumentDuration <= 0 {
		return fmt.Errorf("document_duration must be positive, got %s", c.DocumentDuration)
	}
	return nil
}
