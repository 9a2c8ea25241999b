// Package httpx is the gateway's HTTP layer: the route guard in front of
// pages, the /api reverse proxy and the health endpoint.
package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/fortunes/fortunes-web/internal/guard"
)

// RouterServices holds everything the gateway router needs.
type RouterServices struct {
	Guard *guard.Guard
	// API handles /api/*; typically NewAPIProxy.
	API http.Handler
	// Pages holds the static page assets.
	Pages fs.FS
	// Health is optional; it reports cache availability on /healthz.
	Health HealthChecker
	// Compression is nil when gzip is disabled.
	Compression *CompressionConfig
	Logger      *slog.Logger
}

// NewRouter wires routes and the middleware chain:
// Recover -> RequestID -> Logging -> Compression -> mux.
func NewRouter(s RouterServices) http.Handler {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", healthHandler(s.Health))
	if s.API != nil {
		mux.Handle(apiPrefix, s.API)
	}

	pages := pageHandler(s.Pages)
	if s.Guard != nil {
		pages = s.Guard.Middleware()(pages)
	}
	mux.Handle("/", pages)

	var h http.Handler = mux
	if s.Compression != nil {
		cfg := *s.Compression
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		h = Compression(cfg)(h)
	}
	h = Logging(logger)(h)
	h = RequestID()(h)
	return Recover(logger)(h)
}
