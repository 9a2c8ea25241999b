package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. Both binaries (the terminal client and the
// gateway) read the same struct; each only consults the sections it needs:
//   - api.go: backend endpoint and request timeout
//   - polling.go: analysis job polling budget
//   - auth.go: cookie names, CSRF header, login path, protected prefixes
//   - http.go: gateway HTTP server configuration
//   - redis.go: job status cache
//   - observability.go: StatsD metrics
type AppConfig struct {
	// IsDev controls development mode behavior (debug logging, static files from disk).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel is the minimum slog level (debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	API     APIConfig
	Polling PollingConfig
	Auth    AuthConfig
	HTTP    HTTPConfig
	Gateway GatewayConfig
	Redis   RedisConfig `envPrefix:"REDIS_"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Polling.Sanitize()
	c.Auth.Sanitize()
	c.HTTP.Sanitize()
	c.Gateway.Sanitize()
	c.Redis.Sanitize()
	c.Observability.Sanitize()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
