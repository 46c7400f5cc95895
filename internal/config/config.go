package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all runtime configuration, populated from environment variables.
type Config struct {
	Port        string `env:"PORT,            default=5050"`
	Env         string `env:"ENV,             default=development"`
	LogLevel    string `env:"LOG_LEVEL,       default=info"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH,     default=data.sqlite"`
	CORSOrigins string `env:"CORS_ORIGINS,    default=http://localhost:5173"`

	// Notify selects the outbound notification provider for reset tokens.
	Notify string `env:"NOTIFY_PROVIDER, default=log"`
}

// Load reads configuration from the environment. Call after godotenv has run.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Production reports whether the server runs with production hardening
// (secure cookies, no debug reset tokens in responses).
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Origins returns the CORS allow-list as a slice.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
