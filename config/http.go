package config

import (
	"strings"
	"time"
)

// HTTPConfig contains gateway HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":3000"`

	// CompressionEnabled enables gzip compression for text-based assets.
	CompressionEnabled bool `env:"HTTP_COMPRESSION_ENABLED" envDefault:"false"`

	// CompressionLevel is the gzip compression level (1-9).
	// Default is 6 (standard gzip default).
	CompressionLevel int `env:"HTTP_COMPRESSION_LEVEL" envDefault:"6"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr = strings.TrimSpace(h.Addr); h.Addr == "" {
		h.Addr = ":3000"
	}
	// Clamp compression level to valid gzip range (1-9)
	if h.CompressionLevel < 1 {
		h.CompressionLevel = 1
	}
	if h.CompressionLevel > 9 {
		h.CompressionLevel = 9
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = 10 * time.Second
	}
}

// GatewayConfig contains settings specific to the edge gateway.
type GatewayConfig struct {
	// StaticDir holds the built page assets served for non-API paths.
	StaticDir string `env:"GATEWAY_STATIC_DIR" envDefault:"web/static"`

	// JobCacheTTL is how long completed job statuses stay cached.
	// Zero disables the cache.
	JobCacheTTL time.Duration `env:"GATEWAY_JOB_CACHE_TTL" envDefault:"10m"`
}

// Sanitize applies guardrails to gateway configuration values.
func (g *GatewayConfig) Sanitize() {
	g.StaticDir = strings.TrimSpace(g.StaticDir)
	if g.JobCacheTTL < 0 {
		g.JobCacheTTL = 0
	}
}
