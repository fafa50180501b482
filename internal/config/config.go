package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/Simplici0/gr24/internal/labels"
	"github.com/Simplici0/gr24/internal/pricing"
)

const (
	defaultDBPath   = "./dev.db"
	defaultPort     = "8080"
	defaultEnv      = "dev"
	defaultLogLevel = "info"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	AdminEmail    string
	AdminPassword string
	SessionSecret string
	DBPath        string
	Port          string
	LogLevel      string

	DefaultLanguage labels.Language
	DivisionScale   int32

	OTLPEndpoint string
	OTLPInsecure bool

	// Warnings collects problems found while loading, for logging once a logger exists.
	Warnings []string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_, _ = loadDotEnv(".env")

	cfg := Config{
		Env:           strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV"))),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		OTLPEndpoint:  strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	cfg.DefaultLanguage = labels.Default
	if raw := os.Getenv("DEFAULT_LANGUAGE"); raw != "" {
		lang, err := labels.ParseLanguage(raw)
		if err != nil {
			cfg.warn("DEFAULT_LANGUAGE " + strconv.Quote(raw) + " is not supported, using " + string(labels.Default))
		} else {
			cfg.DefaultLanguage = lang
		}
	}

	cfg.DivisionScale = pricing.DefaultConfig().DivisionScale
	if raw := os.Getenv("PRICING_DIVISION_SCALE"); raw != "" {
		scale, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || scale <= 0 {
			cfg.warn("PRICING_DIVISION_SCALE must be a positive integer, using default")
		} else {
			cfg.DivisionScale = int32(scale)
		}
	}

	if raw := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); raw != "" {
		insecure, err := strconv.ParseBool(raw)
		if err != nil {
			cfg.warn("OTEL_EXPORTER_OTLP_INSECURE must be a boolean, ignoring")
		}
		cfg.OTLPInsecure = insecure
	}

	if cfg.AdminEmail == "" {
		cfg.warn("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		cfg.warn("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		cfg.warn("SESSION_SECRET is not set")
	}

	return cfg
}

func (c *Config) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

// IsDev reports whether the app runs in the local development environment.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv || c.Env == "development"
}

// Pricing returns the calculation settings derived from the configuration.
func (c Config) Pricing() pricing.Config {
	cfg := pricing.DefaultConfig()
	if c.DivisionScale > 0 {
		cfg.DivisionScale = c.DivisionScale
	}
	return cfg
}
