// Package apiclient wraps net/http for calls against the fortunes backend.
//
// Every request carries the tab's cookies. Unsafe requests mirror the CSRF
// cookie into the CSRF header (double-submit). A 401 is handled according to
// an explicit UnauthorizedPolicy chosen by the caller.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/fortunes/fortunes-web/internal/core"
	apperrors "github.com/fortunes/fortunes-web/internal/errors"
	"github.com/fortunes/fortunes-web/internal/observability/metrics"
	"github.com/fortunes/fortunes-web/internal/observability/statsd"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// UnauthorizedPolicy selects how a 401 response is handled.
type UnauthorizedPolicy int

const (
	// RedirectOnUnauthorized navigates to the login page and ends the call path.
	RedirectOnUnauthorized UnauthorizedPolicy = iota
	// ReturnUnauthorized hands the 401 response back to the caller untouched.
	ReturnUnauthorized
)

func (p UnauthorizedPolicy) String() string {
	if p == ReturnUnauthorized {
		return "return"
	}
	return "redirect"
}

// ErrRedirectedToLogin is returned when a 401 triggered a login redirect.
// Callers should stop processing; the navigator has already moved on.
var ErrRedirectedToLogin = apperrors.Unauthorized("session expired, redirected to login")

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-Id"

const maxBodyBytes = 8 << 20

// Options bundles dependencies for New.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// Jar holds the tab's cookies. A fresh jar is created when nil.
	Jar http.CookieJar

	// Navigator receives the login redirect. Required for RedirectOnUnauthorized.
	Navigator core.Navigator

	LoginPath  string
	CSRFCookie string
	CSRFHeader string

	Metrics statsd.Sink
	Logger  *slog.Logger

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client issues requests with cookies, CSRF mirroring and 401 policies.
type Client struct {
	base       *url.URL
	http       *http.Client
	jar        http.CookieJar
	nav        core.Navigator
	loginPath  string
	csrfCookie string
	csrfHeader string
	metrics    statsd.Sink
	logger     *slog.Logger
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	jar := opts.Jar
	if jar == nil {
		jar, err = NewJar()
		if err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		base:       base,
		jar:        jar,
		nav:        opts.Navigator,
		loginPath:  defaultString(opts.LoginPath, "/login"),
		csrfCookie: defaultString(opts.CSRFCookie, "csrf_token"),
		csrfHeader: defaultString(opts.CSRFHeader, "x-csrf-token"),
		metrics:    opts.Metrics,
		logger:     logger.With("component", "apiclient"),
	}
	c.http = &http.Client{
		Jar:       jar,
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
	}
	return c, nil
}

// NewJar creates an in-memory cookie jar using the public suffix list.
func NewJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// SetNavigator wires the navigator after construction; the router and the
// client depend on each other.
func (c *Client) SetNavigator(nav core.Navigator) {
	c.nav = nav
}

// Fetch performs req and redirects to the login page on 401.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	return c.Do(ctx, req, RedirectOnUnauthorized)
}

// FetchInline performs req and returns a 401 response to the caller.
func (c *Client) FetchInline(ctx context.Context, req Request) (*Response, error) {
	return c.Do(ctx, req, ReturnUnauthorized)
}

// Do performs req. Only transport failures produce an error (network,
// timeout or canceled AppErrors), except for ErrRedirectedToLogin under
// RedirectOnUnauthorized.
func (c *Client) Do(ctx context.Context, req Request, policy UnauthorizedPolicy) (*Response, error) {
	method := req.method()
	target := c.resolve(req)

	body, contentType, err := req.body()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid request body")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid request")
	}
	for k, vs := range req.Header {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(RequestIDHeader, requestID)
	c.applyCSRF(httpReq, method, target)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		mapped := apperrors.MapTransportError(err)
		c.emit(method, target.Path, 0, time.Since(start), mapped)
		c.logger.DebugContext(ctx, "api request failed",
			"method", method, "path", target.Path, "request_id", requestID, "error", err)
		return nil, mapped
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		mapped := apperrors.MapTransportError(err)
		c.emit(method, target.Path, resp.StatusCode, time.Since(start), mapped)
		return nil, mapped
	}
	c.emit(method, target.Path, resp.StatusCode, time.Since(start), nil)

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}
	c.logger.DebugContext(ctx, "api request",
		"method", method, "path", target.Path, "status", resp.StatusCode, "request_id", requestID)

	if resp.StatusCode == http.StatusUnauthorized && policy == RedirectOnUnauthorized {
		c.redirectToLogin(ctx)
		return nil, ErrRedirectedToLogin
	}
	return out, nil
}

// Cookie returns the value of the named cookie the jar would send to the base URL.
func (c *Client) Cookie(name string) string {
	return cookieValue(c.jar, c.base, name)
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *Client) applyCSRF(req *http.Request, method string, target *url.URL) {
	if isSafeMethod(method) || hasCSRFHeader(req.Header, c.csrfHeader) {
		return
	}
	if token := cookieValue(c.jar, target, c.csrfCookie); token != "" {
		req.Header.Set(c.csrfHeader, token)
	}
}

func (c *Client) redirectToLogin(ctx context.Context) {
	if c.nav == nil {
		c.logger.WarnContext(ctx, "401 received but no navigator configured")
		return
	}
	next := c.nav.CurrentPath()
	if i := strings.IndexAny(next, "?#"); i >= 0 {
		next = next[:i]
	}
	if next == "" {
		next = "/"
	}
	c.nav.Navigate(ctx, LoginURL(c.loginPath, next))
}

func (c *Client) resolve(req Request) *url.URL {
	ref, err := url.Parse(req.Path)
	if err != nil {
		ref = &url.URL{Path: req.Path}
	}
	u := c.base.ResolveReference(&url.URL{Path: c.base.Path + ref.Path, RawQuery: ref.RawQuery})
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u
}

func (c *Client) emit(method, path string, status int, d time.Duration, err error) {
	metrics.EmitAPIRequest(c.metrics, metrics.APIMetric{
		Method:   method,
		Route:    RouteTemplate(path),
		Status:   status,
		Duration: d,
		Err:      err,
	})
}

// LoginURL builds the login location carrying the return path.
func LoginURL(loginPath, next string) string {
	return loginPath + "?" + url.Values{"next": {next}}.Encode()
}

// RouteTemplate replaces id-like path segments so metric tags stay bounded.
func RouteTemplate(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if isIDSegment(p) {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func isIDSegment(s string) bool {
	if s == "" {
		return false
	}
	if _, err := uuid.Parse(s); err == nil {
		return true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return len(s) >= 20
		}
	}
	return true
}

func cookieValue(jar http.CookieJar, u *url.URL, name string) string {
	if jar == nil || u == nil {
		return ""
	}
	for _, ck := range jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// IsRedirected reports whether err is the login redirect sentinel.
func IsRedirected(err error) bool {
	return errors.Is(err, ErrRedirectedToLogin)
}
