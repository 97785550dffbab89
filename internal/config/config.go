// Package config loads server configuration from defaults, an optional YAML
// file and environment variables, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is only suitable for local development.
const DefaultJWTSecret = "splitgroup-dev-secret"

// Config is the server configuration.
type Config struct {
	Port      int           `yaml:"port"`
	DBPath    string        `yaml:"db_path"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	LogLevel  string        `yaml:"log_level"`
	Redis     Redis         `yaml:"redis"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// Redis configures the balance cache. An empty Addr selects the in-memory cache.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:      8080,
		DBPath:    "./data/splitgroup.db",
		JWTSecret: DefaultJWTSecret,
		TokenTTL:  24 * time.Hour,
		LogLevel:  "info",
		CacheTTL:  5 * time.Minute,
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// SPLITGROUP_CONFIG if set, then environment overrides.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("SPLITGROUP_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (c *Config) applyEnv() error {
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)

	var err error
	if c.Port, err = envInt("PORT", c.Port); err != nil {
		return err
	}
	if c.Redis.DB, err = envInt("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.TokenTTL, err = envDuration("TOKEN_TTL", c.TokenTTL); err != nil {
		return err
	}
	if c.CacheTTL, err = envDuration("CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	return nil
}

func envInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("port out of range: %d", c.Port)
	case c.DBPath == "":
		return errors.New("db_path is required")
	case c.JWTSecret == "":
		return errors.New("jwt_secret is required")
	case c.TokenTTL <= 0:
		return fmt.Errorf("token_ttl must be positive: %s", c.TokenTTL)
	case c.CacheTTL <= 0:
		return fmt.Errorf("cache_ttl must be positive: %s", c.CacheTTL)
	}
	return nil
}

// Addr is the listen address for the configured port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
