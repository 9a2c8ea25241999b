package httpx

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/fortunes/fortunes-web/internal/guard"
	"github.com/stretchr/testify/assert"
)

func testPages() fstest.MapFS {
	return fstest.MapFS{
		"index.html":    {Data: []byte("<h1>home</h1>")},
		"login.html":    {Data: []byte("<h1>login</h1>")},
		"analysis.html": {Data: []byte("<h1>analysis</h1>")},
		"app.js":        {Data: []byte("console.log(1)")},
	}
}

func newTestRouter(api http.Handler) http.Handler {
	return NewRouter(RouterServices{
		Guard: guard.New(guard.Options{}),
		API:   api,
		Pages: testPages(),
	})
}

func TestRouter_GuardRedirectsProtectedPages(t *testing.T) {
	h := newTestRouter(nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/analysis?tab=history", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fanalysis", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/analysis", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "jwt"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis")
}

func TestRouter_PublicPages(t *testing.T) {
	h := newTestRouter(nil)

	for path, want := range map[string]string{
		"/":       "home",
		"/login":  "login",
		"/app.js": "console.log",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), want, path)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_APIBypassesGuard(t *testing.T) {
	var called bool
	h := newTestRouter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusUnauthorized)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRouter_Healthz(t *testing.T) {
	h := newTestRouter(nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.JSONEq(t, `{"status":"ok","cache":"disabled"}`, string(body))
}

func TestRouter_CompressionEnabled(t *testing.T) {
	h := NewRouter(RouterServices{
		Pages:       testPages(),
		Compression: &CompressionConfig{Level: 6},
	})
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}
