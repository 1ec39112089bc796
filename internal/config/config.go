// Package config loads the onboard configuration.
//
// Sources are applied in order, later ones winning: built-in defaults, the
// YAML file, a .env file next to it, then ONBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ONBOARD_"

// Config is the full service configuration.
type Config struct {
	HTTP         HTTP         `yaml:"http"`
	Log          Log          `yaml:"log"`
	Store        Store        `yaml:"store"`
	Dispatch     Dispatch     `yaml:"dispatch"`
	Organization Organization `yaml:"organization"`
	Templates    Templates    `yaml:"templates"`
	Metrics      Metrics      `yaml:"metrics"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Store struct {
	Driver   string   `yaml:"driver"`
	Redis    Redis    `yaml:"redis"`
	Postgres Postgres `yaml:"postgres"`
	// EncryptionKey enables encryption at rest of user documents when set.
	// It must decode (base64) to 32 bytes.
	EncryptionKey string `yaml:"encryption_key"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type Postgres struct {
	DSN string `yaml:"dsn"`
}

// Dispatch selects where actions go: "log" or "redis" (stream outbox).
type Dispatch struct {
	Driver string `yaml:"driver"`
	// MaxLen caps the outbox stream when Driver is redis.
	MaxLen int64 `yaml:"max_len"`
}

// Organization seeds the organization singleton on first start.
type Organization struct {
	Name         string `yaml:"name"`
	Timezone     string `yaml:"timezone"`
	NewHireEmail bool   `yaml:"new_hire_email"`
}

type Templates struct {
	Dir string `yaml:"dir"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP:  HTTP{Addr: ":8080"},
		Log:   Log{Level: "info"},
		Store: Store{Driver: DriverMemory, Redis: Redis{Addr: "localhost:6379", Prefix: "onboard:"}},
		Dispatch: Dispatch{
			Driver: "log",
			MaxLen: 10000,
		},
		Organization: Organization{Name: "Onboard", Timezone: "UTC"},
		Metrics:      Metrics{Enabled: true},
	}
}

// Load reads path (optional) and the environment. A missing file is not an
// error unless it was named explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = "onboard.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	// The process environment wins over .env.
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"HTTP_ADDR":             &cfg.HTTP.Addr,
		"LOG_LEVEL":             &cfg.Log.Level,
		"STORE_DRIVER":          &cfg.Store.Driver,
		"STORE_ENCRYPTION_KEY":  &cfg.Store.EncryptionKey,
		"REDIS_ADDR":            &cfg.Store.Redis.Addr,
		"REDIS_PASSWORD":        &cfg.Store.Redis.Password,
		"REDIS_PREFIX":          &cfg.Store.Redis.Prefix,
		"POSTGRES_DSN":          &cfg.Store.Postgres.DSN,
		"DISPATCH_DRIVER":       &cfg.Dispatch.Driver,
		"ORGANIZATION_NAME":     &cfg.Organization.Name,
		"ORGANIZATION_TIMEZONE": &cfg.Organization.Timezone,
		"TEMPLATES_DIR":         &cfg.Templates.Dir,
	}
	for key, dst := range str {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREDIS_DB: %w", EnvPrefix, err)
		}
		cfg.Store.Redis.DB = n
	}
	if v, ok := lookup(EnvPrefix + "DISPATCH_MAX_LEN"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sDISPATCH_MAX_LEN: %w", EnvPrefix, err)
		}
		cfg.Dispatch.MaxLen = n
	}
	for key, dst := range map[string]*bool{
		"ORGANIZATION_NEW_HIRE_EMAIL": &cfg.Organization.NewHireEmail,
		"METRICS_ENABLED":             &cfg.Metrics.Enabled,
	} {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate checks the values that cannot be fixed later.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverMemory, DriverRedis:
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			errs = append(errs, errors.New("store.postgres.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	switch c.Dispatch.Driver {
	case "log":
	case "redis":
		if c.Store.Driver != DriverRedis {
			errs = append(errs, errors.New("the redis dispatcher needs the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown dispatch driver %q", c.Dispatch.Driver))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}
