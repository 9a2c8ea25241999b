package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fortunes/fortunes-web/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInitLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := InitLogger(LoggerOptions{Level: "warn", Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://gateway:3000/")
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("AUTH_PROTECTED_PREFIXES", "/profile; settings")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://gateway:3000", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Polling.Interval)
	assert.Equal(t, []string{"/profile", "/settings"}, cfg.Auth.ProtectedPrefixes)
}

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestBuildTab(t *testing.T) {
	cfg := testConfig(t)
	tab, err := BuildTab(TabDeps{Config: &cfg})
	require.NoError(t, err)

	assert.Equal(t, "/", tab.Router.CurrentPath())
	assert.True(t, tab.Session.Loading())
	assert.False(t, tab.Engine.Busy())

	// No access cookie yet, so the guard sends protected pages to login.
	assert.Equal(t, "/login?next=%2Fanalysis", tab.Router.Go(context.Background(), "/analysis"))
}

func TestBuildTab_RequiresConfig(t *testing.T) {
	_, err := BuildTab(TabDeps{})
	require.Error(t, err)
}

func TestBuildGateway_WithoutRedis(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	}))
	t.Cleanup(backend.Close)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "login.html"), []byte("<h1>login</h1>"), 0o600))

	cfg := testConfig(t)
	cfg.API.ProxyTarget = backend.URL
	cfg.Gateway.StaticDir = dir
	cfg.Redis.URI = ""

	gw, err := BuildGateway(context.Background(), &cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })

	rec := httptest.NewRecorder()
	gw.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/1", nil))
	assert.JSONEq(t, `{"path":"/api/v1/jobs/1"}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	gw.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok","cache":"disabled"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	gw.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Contains(t, rec.Body.String(), "login")

	rec = httptest.NewRecorder()
	gw.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestShutdownHTTPServer_Nil(t *testing.T) {
	require.NoError(t, ShutdownHTTPServer(context.Background(), nil, time.Second, nil))
}
