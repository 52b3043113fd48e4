// Package config loads runtime settings from BLOGHUB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "BLOGHUB"

// Session backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds runtime configuration for the client.
type Config struct {
	APIURL         string        `envconfig:"API_URL" default:"http://localhost:3000"`
	WebURL         string        `envconfig:"WEB_URL" default:"http://localhost:5173"`
	StateDir       string        `envconfig:"STATE_DIR"`
	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"file"`
	RedisAddr      string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisProfile   string        `envconfig:"REDIS_PROFILE" default:"default"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`
}

// Load reads configuration from the environment and fills derived defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config.Load: home dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".bloghub")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.StateDir, "bloghub.log")
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")
	cfg.SessionBackend = strings.ToLower(cfg.SessionBackend)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.SessionBackend {
	case BackendFile, BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.SessionBackend))
	}
	if err := checkHTTPURL("API_URL", c.APIURL); err != nil {
		errs = append(errs, err)
	}
	if c.WebURL != "" {
		if err := checkHTTPURL("WEB_URL", c.WebURL); err != nil {
			errs = append(errs, err)
		}
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.SessionBackend == BackendRedis && c.RedisAddr == "" {
		errs = append(errs, errors.New("redis backend needs REDIS_ADDR"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SessionDir is where the file backend keeps its keys.
func (c *Config) SessionDir() string {
	return filepath.Join(c.StateDir, "session")
}

func checkHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
	}
	return nil
}
