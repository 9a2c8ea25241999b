package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fortunes/fortunes-web/config"
	"github.com/fortunes/fortunes-web/internal/analysis"
	"github.com/fortunes/fortunes-web/internal/apiclient"
	"github.com/fortunes/fortunes-web/internal/auth"
	"github.com/fortunes/fortunes-web/internal/core"
	"github.com/fortunes/fortunes-web/internal/guard"
	"github.com/fortunes/fortunes-web/internal/navigation"
	"github.com/fortunes/fortunes-web/internal/observability/statsd"
	"github.com/fortunes/fortunes-web/internal/poll"
	"github.com/fortunes/fortunes-web/internal/session"
)

// TabDeps holds what the terminal client supplies to BuildTab.
type TabDeps struct {
	Config   *config.AppConfig
	Notifier core.Notifier
	Metrics  statsd.Sink
	Logger   *slog.Logger
}

// Tab is one browsing context: a cookie jar shared by an API client, the
// session holder, the router and the analysis engine.
type Tab struct {
	API     *apiclient.Client
	Guard   *guard.Guard
	Router  *navigation.Router
	Session *session.Holder
	Auth    *auth.Service
	Engine  *analysis.Engine
	History *analysis.History
}

// BuildTab wires a Tab from configuration.
func BuildTab(deps TabDeps) (*Tab, error) {
	if deps.Config == nil {
		return nil, errors.New("tab config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := guard.New(guard.Options{
		Prefixes:     cfg.Auth.ProtectedPrefixes,
		AccessCookie: cfg.Auth.AccessCookie,
		LoginPath:    cfg.Auth.LoginPath,
		Logger:       logger,
	})

	client, err := apiclient.New(apiclient.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.RequestTimeout,
		LoginPath:  cfg.Auth.LoginPath,
		CSRFCookie: cfg.Auth.CSRFCookie,
		CSRFHeader: cfg.Auth.CSRFHeader,
		Metrics:    deps.Metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build api client: %w", err)
	}

	router := navigation.New(navigation.Options{Guard: g, Cookies: client, Logger: logger})
	client.SetNavigator(router)

	holder := session.New(session.Options{
		API:       client,
		Navigator: router,
		LoginPath: cfg.Auth.LoginPath,
		Logger:    logger,
	})

	history := analysis.NewHistory(analysis.HistoryOptions{
		API:    client,
		Limit:  cfg.API.HistoryLimit,
		Logger: logger,
	})
	engine, err := analysis.NewEngine(analysis.EngineOptions{
		API:      client,
		History:  history,
		Notifier: deps.Notifier,
		Policy: poll.Policy{
			Interval:    cfg.Polling.Interval,
			Timeout:     cfg.Polling.Timeout,
			MaxAttempts: cfg.Polling.MaxAttempts,
		},
		FailFast:     cfg.Polling.FailFast,
		JobIDPath:    cfg.Polling.JobIDPath,
		RecordIDPath: cfg.Polling.RecordIDPath,
		Metrics:      deps.Metrics,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build analysis engine: %w", err)
	}

	return &Tab{
		API:     client,
		Guard:   g,
		Router:  router,
		Session: holder,
		Auth:    auth.New(auth.Options{API: client, Session: holder, Locator: router, Logger: logger}),
		Engine:  engine,
		History: history,
	}, nil
}

// Start performs the initial session refresh.
func (t *Tab) Start(ctx context.Context) {
	t.Session.Start(ctx)
}
