// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultClientTimeout is the default per-fetch timeout for source clients.
	DefaultClientTimeout = 15 * time.Second

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultTransportIdleConnTimeout is the default idle connection timeout.
	DefaultTransportIdleConnTimeout = 90 * time.Second

	// DefaultCacheTTLSeconds is the default lifetime of a cached result set.
	DefaultCacheTTLSeconds = 60

	// DefaultSuggestLimit is the default page size for suggestion requests.
	DefaultSuggestLimit = 5

	// DefaultSuggestMaxLimit is the largest page size a request may ask for.
	DefaultSuggestMaxLimit = 100

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Cache     CacheConfig     `koanf:"cache"     validate:"required"`
	Sources   SourcesConfig   `koanf:"sources"   validate:"required"`
	Suggest   SuggestConfig   `koanf:"suggest"   validate:"required"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for the quote sources.
type ClientConfig struct {
	Timeout   time.Duration   `koanf:"timeout"   validate:"required,min=100ms"`
	UserAgent string          `koanf:"user_agent"`
	Transport TransportConfig `koanf:"transport" validate:"required"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// CacheConfig contains Redis result cache settings.
type CacheConfig struct {
	Host       string `koanf:"host"        validate:"required"`
	Port       int    `koanf:"port"        validate:"required,min=1,max=65535"`
	DB         int    `koanf:"db"          validate:"min=0,max=15"`
	TTLSeconds int    `koanf:"ttl_seconds" validate:"required,min=1"`
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Addr returns the host:port address of the Redis server.
func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SourcesConfig contains configuration for the upstream quote sources.
type SourcesConfig struct {
	Wikiquote   WikiquoteConfig   `koanf:"wikiquote"   validate:"required"`
	Brainyquote BrainyquoteConfig `koanf:"brainyquote" validate:"required"`
}

// WikiquoteConfig contains the Wikiquote MediaWiki API settings.
type WikiquoteConfig struct {
	APIURL string `koanf:"api_url" validate:"required,url"`
	Locale string `koanf:"locale"  validate:"required"`
}

// BrainyquoteConfig contains the BrainyQuote site settings.
type BrainyquoteConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

// SuggestConfig contains suggestion paging settings.
type SuggestConfig struct {
	DefaultLimit int `koanf:"default_limit" validate:"required,min=1"`
	MaxLimit     int `koanf:"max_limit"     validate:"required,min=1"`
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quote-suggestions",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quote-suggestions",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "15s",
		"client.user_agent":                        "quote-suggestions/1.0",
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.ttl_seconds": DefaultCacheTTLSeconds,

		"sources.wikiquote.api_url": "https://en.wikiquote.org/w/api.php",
		"sources.wikiquote.locale":  "en",
		"sources.brainyquote.base_url": "https://www.brainyquote.com",

		"suggest.default_limit": DefaultSuggestLimit,
		"suggest.max_limit":     DefaultSuggestMaxLimit,
	}
}

// Load loads configuration with the following precedence (highest to lowest):
//  1. Legacy environment variables (DEFAULT_CACHE_TTL, REDIS_HOST, REDIS_PORT)
//  2. Environment variables (APP_ prefix)
//  3. Profile config file (configs/{profile}.yaml)
//  4. Base config file (configs/base.yaml)
//  5. Default values
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := fmt.Sprintf("configs/%s.yaml", profile)

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "APP_")),
			"_",
			".",
		)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// 5. Legacy environment variables kept for deployment compatibility.
	err = loadLegacyEnv(k)
	if err != nil {
		return nil, fmt.Errorf("loading legacy env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// legacyEnvKeys maps pre-existing deployment variables onto config paths.
var legacyEnvKeys = map[string]string{
	"DEFAULT_CACHE_TTL": "cache.ttl_seconds",
	"REDIS_HOST":        "cache.host",
	"REDIS_PORT":        "cache.port",
}

// loadLegacyEnv applies the legacy variables on top of everything else.
func loadLegacyEnv(k *koanf.Koanf) error {
	overrides := make(map[string]any)

	for name, path := range legacyEnvKeys {
		if val, ok := os.LookupEnv(name); ok && val != "" {
			overrides[path] = val
		}
	}

	if len(overrides) == 0 {
		return nil
	}

	return k.Load(confmap.Provider(overrides, "."), nil)
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
