package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"8080" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	RedisURL    string `env:"REDIS_URL"`

	SummaryCacheTTL time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"5m" validate:"min=0"`
	SweepSchedule   string        `env:"SWEEP_SCHEDULE" envDefault:"@every 10m" validate:"required"`
	DefaultTimezone string        `env:"DEFAULT_TIMEZONE" envDefault:"UTC" validate:"required,timezone"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	// Each credential kind has its own key so that tokens never cross-validate.
	JWTSecret           string `env:"JWT_SECRET,required"            validate:"required,min=32"`
	RefreshTokenSecret  string `env:"REFRESH_TOKEN_SECRET,required"  validate:"required,min=32,nefield=JWTSecret"`
	ResetPasswordSecret string `env:"RESET_PASSWORD_SECRET,required" validate:"required,min=32,nefield=JWTSecret,nefield=RefreshTokenSecret"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	CookieSecure       bool     `env:"COOKIE_SECURE" envDefault:"true"`

	AuthRateLimit float64 `env:"AUTH_RATE_LIMIT" envDefault:"1" validate:"gt=0"`
	AuthRateBurst int     `env:"AUTH_RATE_BURST" envDefault:"5" validate:"min=1"`

	// EchoOTP returns generated codes in the /send-otp response. Local only.
	EchoOTP bool `env:"OTP_ECHO" envDefault:"false"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.EchoOTP && cfg.Env != "local" {
		return nil, errors.New("invalid config: OTP_ECHO is only allowed with ENV=local")
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
