package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	SessionMemory   = "memory"
	SessionRedis    = "redis"
	SessionPostgres = "postgres"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// APIBaseURL vacío => API sandbox en memoria.
	APIBaseURL   string        `mapstructure:"API_BASE_URL"`
	APIKey       string        `mapstructure:"API_KEY"`
	APIKeyHeader string        `mapstructure:"API_KEY_HEADER"`
	APITimeout   time.Duration `mapstructure:"API_TIMEOUT"`

	LoginURL string `mapstructure:"LOGIN_URL"`

	SessionBackend string `mapstructure:"SESSION_BACKEND"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB"`
	DBDSN          string `mapstructure:"DB_DSN"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`
}

var keys = []string{
	"PORT", "ENV",
	"API_BASE_URL", "API_KEY", "API_KEY_HEADER", "API_TIMEOUT",
	"LOGIN_URL",
	"SESSION_BACKEND", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "DB_DSN",
	"LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
}

// Load lee env vars (y .env si existe) con defaults, y valida.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("API_KEY_HEADER", "X-API-Key")
	v.SetDefault("API_TIMEOUT", "10s")
	v.SetDefault("LOGIN_URL", "/login")
	v.SetDefault("SESSION_BACKEND", SessionMemory)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("APP_NAME", "medication-dashboard")

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// el .env es opcional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	cfg.APIBaseURL = strings.TrimSpace(cfg.APIBaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesSandbox indica que no hay API remoto configurado.
func (c *Config) UsesSandbox() bool {
	return c.APIBaseURL == ""
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) Validate() error {
	var errs []error

	switch c.SessionBackend {
	case SessionMemory:
	case SessionRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when SESSION_BACKEND=redis"))
		}
	case SessionPostgres:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required when SESSION_BACKEND=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be memory, redis or postgres, got %q", c.SessionBackend))
	}

	if c.APIBaseURL != "" {
		u, err := url.Parse(c.APIBaseURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.APIBaseURL))
		}
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("API_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
