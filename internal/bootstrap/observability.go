package bootstrap

import (
	"log/slog"

	"github.com/fortunes/fortunes-web/config"
	"github.com/fortunes/fortunes-web/internal/observability/statsd"
)

// BuildMetrics returns the StatsD sink, or nil when metrics are disabled or
// the sink cannot be dialed. Metrics never block startup.
func BuildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig, component string) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled:    true,
		Address:    cfg.StatsdAddress,
		Prefix:     cfg.Prefix,
		Logger:     logger,
		GlobalTags: map[string]string{"component": component},
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}
