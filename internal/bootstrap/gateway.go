package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/fortunes/fortunes-web/config"
	redisadapter "github.com/fortunes/fortunes-web/internal/adapters/redis"
	"github.com/fortunes/fortunes-web/internal/core"
	"github.com/fortunes/fortunes-web/internal/guard"
	httpx "github.com/fortunes/fortunes-web/internal/http"
)

// Gateway is the edge server's handler plus the resources it owns.
type Gateway struct {
	Handler http.Handler
	closers []func() error
}

// Close releases the gateway's connections.
func (g *Gateway) Close() error {
	var first error
	for _, c := range g.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// BuildGateway wires guard, API proxy, job status cache and page assets.
func BuildGateway(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	gw := &Gateway{}

	target, err := url.Parse(cfg.API.ProxyTarget)
	if err != nil {
		return nil, fmt.Errorf("parse proxy target: %w", err)
	}

	var (
		cache  httpx.JobCache
		health httpx.HealthChecker
	)
	if cfg.Redis.Enabled() && cfg.Gateway.JobCacheTTL > 0 {
		client := redisadapter.NewClient(cfg.Redis)
		gw.closers = append(gw.closers, client.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			// The cache is an optimisation; polls fall through to the backend.
			logger.WarnContext(ctx, "redis unavailable, job status cache degraded", "addr", cfg.Redis.URI, "error", err)
		}
		cancel()

		jobCache := core.NewJobStatusCache(core.JobStatusCacheOptions{
			Cache:  redisadapter.NewCacheRepo(client),
			TTL:    cfg.Gateway.JobCacheTTL,
			Prefix: cfg.Redis.Prefix,
			Logger: logger,
		})
		cache, health = jobCache, jobCache
		logger.InfoContext(ctx, "job status cache enabled", "ttl", cfg.Gateway.JobCacheTTL)
	}

	proxy, err := httpx.NewAPIProxy(httpx.ProxyOptions{Target: target, Cache: cache, Logger: logger})
	if err != nil {
		_ = gw.Close()
		return nil, err
	}

	services := httpx.RouterServices{
		Guard: guard.New(guard.Options{
			Prefixes:     cfg.Auth.ProtectedPrefixes,
			AccessCookie: cfg.Auth.AccessCookie,
			LoginPath:    cfg.Auth.LoginPath,
			Logger:       logger,
		}),
		API:    proxy,
		Health: health,
		Logger: logger,
	}
	if cfg.Gateway.StaticDir != "" {
		services.Pages = os.DirFS(cfg.Gateway.StaticDir)
	}
	if cfg.HTTP.CompressionEnabled {
		logger.InfoContext(ctx, "HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel}
	}

	gw.Handler = httpx.NewRouter(services)
	return gw, nil
}
