package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the service configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
	Fetch  FetchConfig  `toml:"fetch"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr"`                   // e.g. ":8080"
	MCPPath     string   `toml:"mcp_path"`               // MCP endpoint path
	CORSOrigins []string `toml:"cors_origins,omitempty"` // allowed origins, empty allows all
	Timeout     string   `toml:"timeout"`                // per-request timeout (e.g., "30s")
}

type DataConfig struct {
	RawRoot     string `toml:"raw_root"`     // dataset directory
	DerivedRoot string `toml:"derived_root"` // written reports
	DatasetFile string `toml:"dataset_file"` // relative to raw_root
	Watch       bool   `toml:"watch"`        // reload on file change
}

type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	Backend  string `toml:"backend"` // "memory" or "redis"
	TTL      string `toml:"ttl"`
	MaxSize  int    `toml:"max_size"` // memory backend only, 0 = unlimited
	RedisURL string `toml:"redis_url"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // logrus level name
	Format string `toml:"format"` // "text" or "json"
}

type FetchConfig struct {
	URL         string `toml:"url"`          // remote dataset location, empty disables refresh
	MinInterval string `toml:"min_interval"` // minimum spacing between requests
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			MCPPath: "/mcp",
			Timeout: "30s",
		},
		Data: DataConfig{
			RawRoot:     "data/raw",
			DerivedRoot: "data/derived",
			DatasetFile: "nba_stats.json",
			Watch:       true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     "10m",
			MaxSize: 512,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Fetch: FetchConfig{
			MinInterval: "2s",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = "redis"
	}
	if v := os.Getenv("FANTASY_LAB_DATASET_URL"); v != "" {
		c.Fetch.URL = v
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if _, err := time.ParseDuration(c.Server.Timeout); err != nil {
		return fmt.Errorf("invalid server timeout %q: %w", c.Server.Timeout, err)
	}
	if c.Data.RawRoot == "" || c.Data.DatasetFile == "" {
		return fmt.Errorf("data raw_root and dataset_file are required")
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}
	if c.Cache.MaxSize < 0 {
		return fmt.Errorf("cache max size cannot be negative: %d", c.Cache.MaxSize)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.Enabled && c.Cache.RedisURL == "" {
			return fmt.Errorf("redis cache backend requires redis_url")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if _, err := time.ParseDuration(c.Fetch.MinInterval); err != nil {
		return fmt.Errorf("invalid fetch min interval %q: %w", c.Fetch.MinInterval, err)
	}
	return nil
}

func (c *Config) GetServerTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.Timeout)
}

func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

func (c *Config) GetFetchInterval() (time.Duration, error) {
	return time.ParseDuration(c.Fetch.MinInterval)
}

func (c *Config) AllowedOrigins() []string {
	if len(c.Server.CORSOrigins) == 0 {
		return []string{"*"}
	}
	return c.Server.CORSOrigins
}
