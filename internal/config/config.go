package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Addr           string         `yaml:"addr"`
	JWTSecret      string         `yaml:"jwt_secret"`
	APITimeout     time.Duration  `yaml:"timeout"`
	DatabasePath   string         `yaml:"database_path"`
	TokenDuration  time.Duration  `yaml:"token_duration"`
	MigrateOnStart bool           `yaml:"migrate_on_start"`
	LogLevel       string         `yaml:"log_level"`
	Tracker        TrackerConfig  `yaml:"tracker"`
	Workers        WorkerConfig   `yaml:"workers"`
	Alerts         AlertsConfig   `yaml:"alerts"`
	Notifier       NotifierConfig `yaml:"notifier"`
}

type TrackerConfig struct {
	// LookupConcurrency bounds parallel job lookups while joining interests to jobs.
	LookupConcurrency int `yaml:"lookup_concurrency"`
	// StrictTransitions enables the guarded status workflow instead of the permissive one.
	StrictTransitions bool `yaml:"strict_transitions"`
}

type WorkerConfig struct {
	Count       int `yaml:"count"`
	MaxAttempts int `yaml:"max_attempts"`
}

type AlertsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

type NotifierConfig struct {
	// Kind is "log" or "email".
	Kind  string      `yaml:"kind"`
	Email EmailConfig `yaml:"email"`
}

type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	Subject  string `yaml:"subject"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:           getEnv("JOBBOARD_ADDR", ":8080"),
		JWTSecret:      getEnv("JOBBOARD_JWT_SECRET", insecureJWTSecret),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("JOBBOARD_DATABASE_PATH", "jobboard.db"),
		TokenDuration:  1 * time.Hour,
		MigrateOnStart: true,
		LogLevel:       getEnv("JOBBOARD_LOG_LEVEL", "info"),
		Alerts:         AlertsConfig{Enabled: true},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	return cfg, nil
}

// Validate checks required settings and fills defaults for optional sections.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == insecureJWTSecret && !IsDevelopment() {
		return errors.New("jwt_secret uses the insecure default; set JOBBOARD_JWT_SECRET")
	}
	if c.APITimeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = time.Hour
	}

	if c.Tracker.LookupConcurrency <= 0 {
		c.Tracker.LookupConcurrency = 8
	}
	if c.Workers.Count <= 0 {
		c.Workers.Count = 2
	}
	if c.Workers.MaxAttempts <= 0 {
		c.Workers.MaxAttempts = 3
	}
	if c.Alerts.Interval <= 0 {
		c.Alerts.Interval = time.Hour
	}
	if c.Alerts.Timeout <= 0 {
		c.Alerts.Timeout = 30 * time.Second
	}

	switch strings.ToLower(c.Notifier.Kind) {
	case "":
		c.Notifier.Kind = "log"
	case "log":
	case "email":
		e := &c.Notifier.Email
		if e.Host == "" || e.From == "" {
			return errors.New("notifier.email requires host and from")
		}
		if e.Port == 0 {
			e.Port = 587
		}
		if e.Subject == "" {
			e.Subject = "Application deadlines approaching"
		}
	default:
		return fmt.Errorf("unknown notifier kind %q", c.Notifier.Kind)
	}

	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsDevelopment reports whether JOBBOARD_ENV is set to development.
func IsDevelopment() bool {
	return strings.EqualFold(os.Getenv("JOBBOARD_ENV"), "development")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
