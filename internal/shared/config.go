package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Cache backends understood by [CacheConfig.Backend].
const (
	CacheBackendMemory = "memory"
	CacheBackendBolt   = "bolt"
	CacheBackendRedis  = "redis"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Cache       CacheConfig       `toml:"cache"`
	HTTP        HTTPConfig        `toml:"http"`
	Logging     LoggingConfig     `toml:"logging"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// CacheConfig selects and configures the response cache store.
type CacheConfig struct {
	Backend  string      `toml:"backend"`
	TTL      string      `toml:"ttl"`
	BoltPath string      `toml:"bolt_path"`
	Redis    RedisConfig `toml:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	DB       int    `toml:"db"`
	Password string `toml:"password"`
}

// HTTPConfig contains upstream transport settings.
type HTTPConfig struct {
	ConnectTimeout string  `toml:"connect_timeout"`
	ReadTimeout    string  `toml:"read_timeout"`
	RateLimit      float64 `toml:"rate_limit"`
}

// LoggingConfig contains log settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides credentials and connection settings from the environment.
//
// Recognised variables: SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_REDIRECT_URI,
// SPOTILYTICS_REDIS_ADDR, SPOTILYTICS_CACHE_BACKEND and SPOTILYTICS_RATE_LIMIT.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("SPOTIFY_CLIENT_ID", &c.Credentials.Spotify.ClientID)
	set("SPOTIFY_CLIENT_SECRET", &c.Credentials.Spotify.ClientSecret)
	set("SPOTIFY_REDIRECT_URI", &c.Credentials.Spotify.RedirectURI)
	set("SPOTILYTICS_REDIS_ADDR", &c.Cache.Redis.Addr)
	set("SPOTILYTICS_CACHE_BACKEND", &c.Cache.Backend)

	if v, ok := lookup("SPOTILYTICS_RATE_LIMIT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.HTTP.RateLimit = f
		}
	}
}

// CacheTTL returns the configured cache lifetime, defaulting to 24 hours.
func (c CacheConfig) CacheTTL() time.Duration {
	return parseDuration(c.TTL, 24*time.Hour)
}

// Timeouts returns the connect and read timeouts, each defaulting to five seconds.
func (h HTTPConfig) Timeouts() (connect, read time.Duration) {
	return parseDuration(h.ConnectTimeout, 5*time.Second), parseDuration(h.ReadTimeout, 5*time.Second)
}

// Map returns the credentials in the map form used by the OAuth helpers.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Configured reports whether both client id and secret are set to non-placeholder values.
func (s SpotifyConfig) Configured() bool {
	return s.ClientID != "" && s.ClientSecret != "" && s.ClientID != "your_spotify_client_id"
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
