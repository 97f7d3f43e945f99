package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string        `mapstructure:"PORT"`
	Env              string        `mapstructure:"ENV"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	DBSchema         string        `mapstructure:"DB_SCHEMA"`
	DBMaxConns       int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	AuthSigningKey   string        `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer       string        `mapstructure:"AUTH_ISSUER"`
	AuthAccessTTL    time.Duration `mapstructure:"AUTH_ACCESS_TTL"`
	AuthRefreshTTL   time.Duration `mapstructure:"AUTH_REFRESH_TTL"`
	PasswordResetTTL time.Duration `mapstructure:"PASSWORD_RESET_TTL"`
	PasswordResetURL string        `mapstructure:"PASSWORD_RESET_URL"`
	MailFrom         string        `mapstructure:"MAIL_FROM"`
	CORSOrigins      []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS     float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int           `mapstructure:"RATE_LIMIT_BURST"`
	SlotLockTTL      time.Duration `mapstructure:"SLOT_LOCK_TTL"`
	BodyLimit        string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout   time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_SCHEMA", "consultorio")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("AUTH_ISSUER", "consultorio")
	v.SetDefault("AUTH_ACCESS_TTL", "60m")
	v.SetDefault("AUTH_REFRESH_TTL", "168h")
	v.SetDefault("PASSWORD_RESET_TTL", "30m")
	v.SetDefault("PASSWORD_RESET_URL", "http://localhost:5173/reset-password")
	v.SetDefault("MAIL_FROM", "no-reply@consultorio.local")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("SLOT_LOCK_TTL", "5s")
	v.SetDefault("BODY_LIMIT", "2M")
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_SCHEMA", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"REDIS_URL", "AUTH_SIGNING_KEY", "AUTH_ISSUER", "AUTH_ACCESS_TTL",
		"AUTH_REFRESH_TTL", "PASSWORD_RESET_TTL", "PASSWORD_RESET_URL", "MAIL_FROM",
		"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SLOT_LOCK_TTL", "BODY_LIMIT",
		"REQUEST_TIMEOUT",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() && cfg.AuthSigningKey == "" {
		log.Println("WARNING: AUTH_SIGNING_KEY is empty, using an insecure development key.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		cfg.AuthSigningKey = devSigningKey
	}

	return cfg, nil
}

const devSigningKey = "consultorio-development-signing-key-000"

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if len(c.AuthSigningKey) < 32 {
		return fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes, got %d", len(c.AuthSigningKey))
	}
	if c.IsProduction() && c.AuthSigningKey == devSigningKey {
		return fmt.Errorf("AUTH_SIGNING_KEY must be set explicitly in production")
	}
	if c.AuthAccessTTL <= 0 {
		return fmt.Errorf("AUTH_ACCESS_TTL must be positive")
	}
	if c.AuthRefreshTTL <= c.AuthAccessTTL {
		return fmt.Errorf("AUTH_REFRESH_TTL must be longer than AUTH_ACCESS_TTL")
	}
	if c.PasswordResetTTL <= 0 {
		return fmt.Errorf("PASSWORD_RESET_TTL must be positive")
	}
	if c.DBSchema == "" {
		return fmt.Errorf("DB_SCHEMA is required")
	}
	return nil
}
