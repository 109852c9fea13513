package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultActivitiesCount = 10
	MinActivitiesCount     = 5
	MaxActivitiesCount     = 50
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// garmin connect
	GarminBaseURL        string `toml:"garmin_base_url"`
	GarminRequestTimeout string `toml:"garmin_request_timeout"`
	DetailsCacheSizeMB   int    `toml:"details_cache_size_mb"`
	DetailsCacheExpire   string `toml:"details_cache_expire"`

	// sessions
	SessionTTL          string `toml:"session_ttl"`
	SessionScanInterval string `toml:"session_scan_interval"`
	SecureCookies       bool   `toml:"secure_cookies"`

	// origins allowed to call the JSON api from a browser
	AllowedOrigins []string `toml:"allowed_origins"`

	// redis, used for the login rate limiter
	RedisHost                   string `toml:"redis_host"`
	RedisPort                   string `toml:"redis_port"`
	LoginRateLimitAllowedPerMin int    `toml:"login_rate_limit_allowed_per_min"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		if t.Development == nil {
			return nil, errors.New("development config missing")
		}
		t.Development.Environment = "development"
		return t.Development, nil
	case "prod", "production":
		if t.Production == nil {
			return nil, errors.New("production config missing")
		}
		t.Production.Environment = "production"
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = 8501
	}
	if c.GarminBaseURL == "" {
		c.GarminBaseURL = "https://connectapi.garmin.com"
	}
	if c.DetailsCacheSizeMB == 0 {
		c.DetailsCacheSizeMB = 50
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
}

func (c *Config) validate() error {
	for name, d := range map[string]string{
		"garmin_request_timeout": c.GarminRequestTimeout,
		"details_cache_expire":   c.DetailsCacheExpire,
		"session_ttl":            c.SessionTTL,
		"session_scan_interval":  c.SessionScanInterval,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}
	return nil
}

// RequestTimeout bounds a single call to garmin connect.
func (c *Config) RequestTimeout() time.Duration {
	return parseDurationOr(c.GarminRequestTimeout, 30*time.Second)
}

func (c *Config) CacheExpire() time.Duration {
	return parseDurationOr(c.DetailsCacheExpire, time.Hour)
}

func (c *Config) SessionMaxIdle() time.Duration {
	return parseDurationOr(c.SessionTTL, 2*time.Hour)
}

func (c *Config) SessionScanEvery() time.Duration {
	return parseDurationOr(c.SessionScanInterval, 10*time.Minute)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
