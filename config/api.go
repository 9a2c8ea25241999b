package config

import (
	"strings"
	"time"
)

// APIConfig describes how the client reaches the fortunes backend.
type APIConfig struct {
	// BaseURL is the origin the client talks to. For the terminal client this
	// is usually the gateway, which proxies /api/* to the backend.
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:3000"`

	// ProxyTarget is the backend origin the gateway forwards /api/* to.
	ProxyTarget string `env:"API_PROXY_TARGET" envDefault:"http://localhost:8000"`

	// RequestTimeout bounds a single HTTP round trip.
	RequestTimeout time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"30s"`

	// HistoryLimit is the page size requested from the history endpoint.
	HistoryLimit int `env:"API_HISTORY_LIMIT" envDefault:"50"`
}

// Sanitize applies guardrails to API configuration values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	a.ProxyTarget = strings.TrimRight(strings.TrimSpace(a.ProxyTarget), "/")
	if a.RequestTimeout <= 0 {
		a.RequestTimeout = 30 * time.Second
	}
	if a.HistoryLimit <= 0 {
		a.HistoryLimit = 50
	}
}
