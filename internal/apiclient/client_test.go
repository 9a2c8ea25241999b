package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fortunes/fortunes-web/internal/mocks"
	"github.com/fortunes/fortunes-web/internal/observability/statsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type captured struct {
	method string
	path   string
	header http.Header
	body   string
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *[]captured) {
	t.Helper()
	var seen []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		seen = append(seen, captured{method: r.Method, path: r.URL.RequestURI(), header: r.Header.Clone(), body: string(b)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func newClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	opts.BaseURL = baseURL
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func setCookie(t *testing.T, c *Client, name, value string) {
	t.Helper()
	c.jar.SetCookies(c.base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

func TestClient_CSRFInjection(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	c := newClient(t, srv.URL, Options{})
	setCookie(t, c, "csrf_token", "abc123")
	ctx := context.Background()

	_, err := c.Fetch(ctx, PostJSON("/api/v1/analyze/enqueue", map[string]any{"a": 1}))
	require.NoError(t, err)
	_, err = c.Fetch(ctx, Get("/api/v1/auth/me"))
	require.NoError(t, err)

	require.Len(t, *seen, 2)
	assert.Equal(t, "abc123", (*seen)[0].header.Get("x-csrf-token"))
	assert.Empty(t, (*seen)[1].header.Get("x-csrf-token"))
}

func TestClient_CSRFSkippedForSafeMethods(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	c := newClient(t, srv.URL, Options{})
	setCookie(t, c, "csrf_token", "abc123")

	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		_, err := c.Fetch(context.Background(), Request{Method: m, Path: "/x"})
		require.NoError(t, err)
	}
	for _, s := range *seen {
		assert.Empty(t, s.header.Get("x-csrf-token"), s.method)
	}
}

func TestClient_CallerCSRFHeaderWins(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		check  string
		want   string
	}{
		{"canonical", http.Header{"X-Csrf-Token": {"mine"}}, "x-csrf-token", "mine"},
		{"lowercase raw key", http.Header{"x-csrf-token": {"mine"}}, "x-csrf-token", "mine"},
		{"xsrf alias", http.Header{"X-XSRF-TOKEN": {"mine"}}, "x-xsrf-token", "mine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, seen := newServer(t, http.StatusOK, `{}`)
			c := newClient(t, srv.URL, Options{})
			setCookie(t, c, "csrf_token", "abc123")

			_, err := c.Fetch(context.Background(), Request{Method: http.MethodDelete, Path: "/api/v1/analyses/1", Header: tt.header})
			require.NoError(t, err)
			require.Len(t, *seen, 1)
			assert.Equal(t, tt.want, (*seen)[0].header.Get(tt.check))
			if tt.check != "x-csrf-token" {
				assert.Empty(t, (*seen)[0].header.Get("x-csrf-token"))
			}
		})
	}
}

func TestClient_NoCSRFCookieNoHeader(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	c := newClient(t, srv.URL, Options{})

	_, err := c.Fetch(context.Background(), PostJSON("/x", map[string]string{}))
	require.NoError(t, err)
	assert.Empty(t, (*seen)[0].header.Get("x-csrf-token"))
}

func TestClient_UnauthorizedRedirect(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
	ctrl := gomock.NewController(t)
	nav := mocks.NewMockNavigator(ctrl)
	c := newClient(t, srv.URL, Options{Navigator: nav})

	nav.EXPECT().CurrentPath().Return("/analysis?tab=history")
	nav.EXPECT().Navigate(gomock.Any(), "/login?next=%2Fanalysis")

	resp, err := c.Fetch(context.Background(), Get("/api/v1/analyses"))
	assert.Nil(t, resp)
	require.ErrorIs(t, err, ErrRedirectedToLogin)
	assert.True(t, IsRedirected(err))
}

func TestClient_UnauthorizedRedirectOnWrite(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{}`)
	ctrl := gomock.NewController(t)
	nav := mocks.NewMockNavigator(ctrl)
	c := newClient(t, srv.URL, Options{Navigator: nav})

	nav.EXPECT().CurrentPath().Return("/profile")
	nav.EXPECT().Navigate(gomock.Any(), "/login?next=%2Fprofile")

	_, err := c.Fetch(context.Background(), PostJSON("/api/v1/auth/update", map[string]string{}))
	require.ErrorIs(t, err, ErrRedirectedToLogin)
}

func TestClient_UnauthorizedInline(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnauthorized, `{"detail":"Not authenticated"}`)
	ctrl := gomock.NewController(t)
	nav := mocks.NewMockNavigator(ctrl) // no calls expected
	c := newClient(t, srv.URL, Options{Navigator: nav})

	resp, err := c.FetchInline(context.Background(), Get("/api/v1/auth/me"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.JSONEq(t, `{"detail":"Not authenticated"}`, resp.Text())
}

func TestClient_NonSuccessIsNotError(t *testing.T) {
	srv, _ := newServer(t, http.StatusUnprocessableEntity, `{"detail":"birth_date is invalid"}`)
	c := newClient(t, srv.URL, Options{})

	resp, err := c.Fetch(context.Background(), PostJSON("/api/v1/analyze/enqueue", map[string]string{}))
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "birth_date is invalid", resp.Detail())
	assert.Equal(t, "422 Unprocessable Entity", resp.Status())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := newClient(t, base, Options{})
	_, err := c.Fetch(context.Background(), Get("/api/v1/auth/me"))
	require.Error(t, err)
}

func TestClient_RequestShape(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK, `{}`)
	sink := &statsd.Memory{}
	c := newClient(t, srv.URL, Options{Metrics: sink})
	ctx := context.Background()

	_, err := c.Fetch(ctx, PostForm("/api/v1/auth/login", url.Values{"username": {"a"}, "password": {"p w"}}))
	require.NoError(t, err)
	_, err = c.Fetch(ctx, Request{Method: "get", Path: "/api/v1/analyses", Query: url.Values{"limit": {"50"}}})
	require.NoError(t, err)

	require.Len(t, *seen, 2)
	login := (*seen)[0]
	assert.Equal(t, http.MethodPost, login.method)
	assert.Equal(t, "application/x-www-form-urlencoded", login.header.Get("Content-Type"))
	assert.Equal(t, "password=p+w&username=a", login.body)
	assert.NotEmpty(t, login.header.Get(RequestIDHeader))

	list := (*seen)[1]
	assert.Equal(t, http.MethodGet, list.method)
	assert.Equal(t, "/api/v1/analyses?limit=50", list.path)

	lines := sink.Lines()
	require.NotEmpty(t, lines)
	joined := strings.Join(lines, "\n")
	assert.Contains(t, joined, "api.request:1|c")
	assert.Contains(t, joined, "route:/api/v1/auth/login")
}

func TestResponse_Detail(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"detail":"X"}`, "X"},
		{`{"detail":[{"msg":"bad"}]}`, `[{"msg":"bad"}]`},
		{`plain text`, "plain text"},
		{`{"other":1}`, `{"other":1}`},
	}
	for _, tt := range tests {
		r := &Response{StatusCode: 422, Body: []byte(tt.body)}
		assert.Equal(t, tt.want, r.Detail())
	}
}

func TestRouteTemplate(t *testing.T) {
	assert.Equal(t, "/api/v1/jobs/:id", RouteTemplate("/api/v1/jobs/42"))
	assert.Equal(t, "/api/v1/jobs/:id", RouteTemplate("/api/v1/jobs/3f1c2a4e-9b1d-4c6f-8a2b-1234567890ab"))
	assert.Equal(t, "/api/v1/analyses", RouteTemplate("/api/v1/analyses"))
}

func TestNew_RequiresAbsoluteBase(t *testing.T) {
	_, err := New(Options{BaseURL: "localhost"})
	require.Error(t, err)
}

func TestClient_Cookie(t *testing.T) {
	c := newClient(t, "http://example.test", Options{})
	assert.Empty(t, c.Cookie("access_token"))
	setCookie(t, c, "access_token", "tok")
	assert.Equal(t, "tok", c.Cookie("access_token"))
}
