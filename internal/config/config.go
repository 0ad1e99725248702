package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"probook/internal/catalog"
)

// Storage backends selectable via storage.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	Storage struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		Redis   struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Backup BackupConfig `yaml:"backup"`

	Server struct {
		Port           int     `yaml:"port"`
		APIKey         string  `yaml:"api_key"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
	} `yaml:"server"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Booking struct {
		// FlagConflictOverrides records saves that went through despite a
		// detected conflict: a warn log, a counter, and an event.
		FlagConflictOverrides bool `yaml:"flag_conflict_overrides"`
	} `yaml:"booking"`

	Seed struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"seed"`

	// Services overrides the built-in catalog when non-empty.
	Services []catalog.Service `yaml:"services"`
}

// BackupConfig controls the periodic store backup.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Interval returns the backup interval, defaulting to 24h.
func (b BackupConfig) Interval() time.Duration {
	if b.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(b.IntervalHours) * time.Hour
}

// Load reads the YAML config at path, expanding ${ENV_VAR} placeholders.
// An empty path falls back to configs/config.yaml; a missing file yields
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case BackendSQLite:
			c.Storage.Path = "data/bookings.db"
		default:
			c.Storage.Path = "data/bookings.json"
		}
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitRPS <= 0 {
		c.Server.RateLimitRPS = 20
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 40
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// Catalog builds the service catalog from config, falling back to the
// built-in set when no services are configured.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	if len(c.Services) == 0 {
		return catalog.Default(), nil
	}
	return catalog.New(c.Services)
}
