// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (./codescope.yaml, else ~/.config/codescope/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - Project: root directory, extra allowed roots, cache capacity
//   - History: scan history persistence
//   - Server: HTTP API settings for serve mode
//   - Observability: OTLP trace export (see observability.go)
//   - Log: level and format
//
// Security: Sensitive data (API keys) are never logged; config directory uses 0750 permissions.
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidProjectRoot indicates the project root is invalid.
	ErrInvalidProjectRoot = errors.New("invalid project root")

	// ErrInvalidAllowedRoot indicates an extra allowed root is invalid.
	ErrInvalidAllowedRoot = errors.New("invalid allowed root")

	// ErrInvalidCacheCapacity indicates the cache capacity is out of range.
	ErrInvalidCacheCapacity = errors.New("invalid cache capacity")

	// ErrInvalidMaxFileSize indicates the max file size is out of range.
	ErrInvalidMaxFileSize = errors.New("invalid max file size")

	// ErrInvalidHistoryPath indicates the history database path is invalid.
	ErrInvalidHistoryPath = errors.New("invalid history path")

	// ErrInvalidServerAddr indicates the listen address is malformed.
	ErrInvalidServerAddr = errors.New("invalid server address")

	// ErrInvalidRateBurst indicates the rate limit burst is out of range.
	ErrInvalidRateBurst = errors.New("invalid rate burst")

	// ErrInvalidCORSOrigin indicates a CORS origin is malformed.
	ErrInvalidCORSOrigin = errors.New("invalid CORS origin")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

const (
	// DefaultCacheCapacity is the default per-namespace cache entry limit.
	DefaultCacheCapacity = 1000

	// MaxCacheCapacity is the absolute maximum to prevent OOM.
	MaxCacheCapacity = 1_000_000

	// DefaultMaxFileSize caps file reads at 10 MiB.
	DefaultMaxFileSize int64 = 10 * 1024 * 1024

	// MaxAllowedFileSize is the absolute read cap (256 MiB).
	MaxAllowedFileSize int64 = 256 * 1024 * 1024

	// DefaultRateBurst is the default per-IP request burst for serve mode.
	DefaultRateBurst = 60

	// MaxRateBurst is the absolute per-IP burst cap.
	MaxRateBurst = 10_000

	// DefaultServerAddr is the default HTTP API listen address.
	DefaultServerAddr = "localhost:8420"
)

// localConfigFile is the project-local config file checked before the
// global one.
const localConfigFile = "codescope.yaml"

// HistoryConfig controls scan history persistence.
type HistoryConfig struct {
	// Enabled turns scan history recording on (default: true)
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Path overrides the history database location (default: ~/.codescope/history.db)
	Path string `mapstructure:"path" json:"path"`
}

// ServerConfig holds HTTP API settings for serve mode.
type ServerConfig struct {
	// Addr is the listen address (default: localhost:8420)
	Addr string `mapstructure:"addr" json:"addr"`
	// CORSOrigins lists the allowed browser origins
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	// TrustProxy trusts X-Real-IP/X-Forwarded-For headers (set true behind reverse proxy)
	TrustProxy bool `mapstructure:"trust_proxy" json:"trust_proxy"`
	// RateBurst is the per-IP request burst before throttling
	RateBurst int `mapstructure:"rate_burst" json:"rate_burst"`
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `mapstructure:"level" json:"level"`
	// JSON switches output from text to JSON format
	JSON bool `mapstructure:"json" json:"json"`
}

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (API keys, tokens), update the
// owning struct's MarshalJSON.
type Config struct {
	// ProjectRoot is the directory all file access is confined to.
	// Empty means the current working directory at startup.
	ProjectRoot string `mapstructure:"project_root" json:"project_root"`

	// AllowedRoots lists extra directories access is permitted in
	AllowedRoots []string `mapstructure:"allowed_roots" json:"allowed_roots"`

	// CacheCapacity is the per-namespace verdict cache entry limit
	CacheCapacity int `mapstructure:"cache_capacity" json:"cache_capacity"`

	// MaxFileSize caps single-file reads in bytes
	MaxFileSize int64 `mapstructure:"max_file_size" json:"max_file_size"`

	History       HistoryConfig       `mapstructure:"history" json:"history"`
	Server        ServerConfig        `mapstructure:"server" json:"server"`
	Observability ObservabilityConfig `mapstructure:"observability" json:"observability"`
	Log           LogConfig           `mapstructure:"log" json:"log"`
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".config", "codescope")

	// Use 0750 so other local users cannot read the config
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// A project-local codescope.yaml wins over the global config
	if _, err := os.Stat(localConfigFile); err == nil {
		v.SetConfigFile(localConfigFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(configDir)
	}

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{".", configDir})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("cache_capacity", DefaultCacheCapacity)
	v.SetDefault("max_file_size", DefaultMaxFileSize)

	// History defaults
	v.SetDefault("history.enabled", true)

	// Server defaults
	v.SetDefault("server.addr", DefaultServerAddr)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
	// Safe for direct exposure; set true behind reverse proxy
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("server.rate_burst", DefaultRateBurst)

	// Observability defaults
	v.SetDefault("observability.endpoint", "localhost:4318")
	v.SetDefault("observability.environment", "dev")
	v.SetDefault("observability.service_name", "codescope")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// bindEnvVariables binds environment overrides explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("project_root", "CODESCOPE_PROJECT_ROOT")
	mustBind("cache_capacity", "CODESCOPE_CACHE_CAPACITY")
	mustBind("max_file_size", "CODESCOPE_MAX_FILE_SIZE")

	mustBind("history.enabled", "CODESCOPE_HISTORY_ENABLED")
	mustBind("history.path", "CODESCOPE_HISTORY_PATH")

	mustBind("server.addr", "CODESCOPE_ADDR")
	mustBind("server.cors_origins", "CODESCOPE_CORS_ORIGINS")
	mustBind("server.trust_proxy", "CODESCOPE_TRUST_PROXY")
	mustBind("server.rate_burst", "CODESCOPE_RATE_BURST")

	mustBind("observability.api_key", "CODESCOPE_OTLP_API_KEY")
	mustBind("observability.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	mustBind("log.level", "CODESCOPE_LOG_LEVEL")
	mustBind("log.json", "CODESCOPE_LOG_JSON")
}

// maskedValue is the placeholder for masked sensitive data.
// Using ████████ (full block U+2588) to avoid substring matching:
// "****" leaks secrets containing "*", "[REDACTED]" leaks ones
// containing "A", "D", "E", etc.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging.
// Shows first 2 and last 2 characters, masks the rest.
// SECURITY: secrets of 8 chars or fewer are fully masked to prevent
// substring matching.
//
// THREAT MODEL: this defends against accidental logging of real
// secrets. It is not cryptographically secure; if logs are
// compromised, rotate secrets.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	prefix := make([]byte, 2)
	suffix := make([]byte, 2)
	copy(prefix, s[:2])
	copy(suffix, s[len(s)-2:])
	return string(prefix) + "<" + maskedValue + ">" + string(suffix)
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
