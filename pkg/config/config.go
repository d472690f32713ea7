package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// UnmarshalYAML accepts the window as a duration string ("1m", "30s").
func (r *RateLimitConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Requests int    `yaml:"requests"`
		Window   string `yaml:"window"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.Requests = raw.Requests

	if raw.Window != "" {
		window, err := time.ParseDuration(raw.Window)
		if err != nil {
			return err
		}
		r.Window = window
	}

	return nil
}

type CacheConfig struct {
	TTL     time.Duration
	Enabled bool
}

// UnmarshalYAML accepts the ttl as a duration string ("3s").
func (c *CacheConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		TTL     string `yaml:"ttl"`
		Enabled bool   `yaml:"enabled"`
	}

	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Enabled = raw.Enabled

	if raw.TTL != "" {
		ttl, err := time.ParseDuration(raw.TTL)
		if err != nil {
			return err
		}
		c.TTL = ttl
	}

	return nil
}

type AppConfig struct {
	Environment string `yaml:"environment"`

	Port        string `yaml:"port"`
	MetricsPort string `yaml:"metrics_port"`

	DatabaseDriver string `yaml:"database_driver"`
	DatabasePath   string `yaml:"database_path"`
	DatabaseURL    string `yaml:"database_url"`
	MigrationsPath string `yaml:"migrations_path"`

	RedisURL string `yaml:"redis_url"`

	OTLPEndpoint string `yaml:"otlp_endpoint"`

	RateLimitEnabled bool                       `yaml:"rate_limit_enabled"`
	RateLimitConfigs map[string]RateLimitConfig `yaml:"rate_limits"`

	CacheEnabled bool                   `yaml:"cache_enabled"`
	CacheConfigs map[string]CacheConfig `yaml:"caches"`
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Environment: "development",

		Port:        "8080",
		MetricsPort: "9091",

		DatabaseDriver: "sqlite",
		DatabasePath:   "database.db",

		// empty means each store adapter applies its own default
		// (db/migrations for sqlite, infra/migrations for postgres)
		MigrationsPath: "",

		OTLPEndpoint: "localhost:4317",

		RateLimitEnabled: false,
		RateLimitConfigs: map[string]RateLimitConfig{
			"/api/todos": {
				Requests: 100,
				Window:   time.Minute,
			},
		},

		CacheEnabled: false,
		CacheConfigs: map[string]CacheConfig{
			"/api/todos": {
				TTL:     3 * time.Second,
				Enabled: true,
			},
		},
	}
}

// Load resolves config in three layers: code defaults, an optional YAML
// file named by CONFIG_FILE, then individual environment overrides.
func Load() (*AppConfig, error) {
	cfg := GetDefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)

		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setFromEnv(&cfg.Environment, "APP_ENV")
	setFromEnv(&cfg.Port, "PORT")
	setFromEnv(&cfg.MetricsPort, "METRICS_PORT")
	setFromEnv(&cfg.DatabaseDriver, "DATABASE_DRIVER")
	setFromEnv(&cfg.DatabasePath, "DATABASE_PATH")
	setFromEnv(&cfg.DatabaseURL, "DATABASE_URL")
	setFromEnv(&cfg.MigrationsPath, "MIGRATIONS_PATH")
	setFromEnv(&cfg.RedisURL, "REDIS_URL")
	setFromEnv(&cfg.OTLPEndpoint, "OTLP_ENDPOINT")

	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		cfg.RateLimitEnabled = v == "true" || v == "1"
	}

	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = v == "true" || v == "1"
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
