package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TUERULEBASE_"

// Config holds runtime settings for the CLI and servers.
type Config struct {
	Store         string     `yaml:"store"`
	SQLite        SQLiteConf `yaml:"sqlite"`
	Redis         RedisConf  `yaml:"redis"`
	HTTP          HTTPConf   `yaml:"http"`
	LogLevel      string     `yaml:"log_level"`
	Seed          string     `yaml:"seed"`
	MaxCodeLength int        `yaml:"max_code_length"`
}

type SQLiteConf struct {
	Path string `yaml:"path"`
}

type RedisConf struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	// LockTTL bounds how long a crashed writer can hold the tree lock.
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type HTTPConf struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Store:         StoreMemory,
		SQLite:        SQLiteConf{Path: "tuerulebase.db"},
		Redis:         RedisConf{Addr: "localhost:6379", Prefix: "tuerulebase:", LockTTL: 5 * time.Second},
		HTTP:          HTTPConf{Addr: ":8080"},
		LogLevel:      "info",
		MaxCodeLength: 256,
	}
}

// Load reads path over the defaults (a missing path is only an error when
// it was named explicitly), then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if data, err := os.ReadFile("tuerulebase.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse tuerulebase.yaml: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
		return nil
	}

	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("STORE", &c.Store)
	str("SQLITE_PATH", &c.SQLite.Path)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	str("REDIS_PREFIX", &c.Redis.Prefix)
	str("HTTP_ADDR", &c.HTTP.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("SEED", &c.Seed)
	if err := num("REDIS_DB", &c.Redis.DB); err != nil {
		return err
	}
	if err := dur("REDIS_LOCK_TTL", &c.Redis.LockTTL); err != nil {
		return err
	}
	return num("MAX_CODE_LENGTH", &c.MaxCodeLength)
}

// Validate checks the store backend and log level.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want memory, sqlite or redis)", c.Store)
	}
	if c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis lock_ttl must be positive, got %s", c.Redis.LockTTL)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
