// Command fortunes-gateway is the edge server in front of the fortunes
// backend. It guards page routes, proxies /api/* and serves page assets.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fortunes/fortunes-web/internal/bootstrap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger(bootstrap.LoggerOptions{})
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.InitLogger(bootstrap.LoggerOptions{Level: cfg.LogLevel})
	logger.InfoContext(ctx, "starting fortunes gateway",
		"addr", cfg.HTTP.Addr,
		"proxy_target", cfg.API.ProxyTarget,
		"static_dir", cfg.Gateway.StaticDir,
		"redis", cfg.Redis.Enabled())

	gw, err := bootstrap.BuildGateway(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := gw.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close gateway resources failed", "error", cerr)
		}
	}()

	server := bootstrap.NewHTTPServer(cfg.HTTP.Addr, gw.Handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bootstrap.ServeHTTP(server, logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		return bootstrap.ShutdownHTTPServer(context.WithoutCancel(gctx), server, cfg.HTTP.ShutdownTimeout, logger)
	})
	return g.Wait()
}
