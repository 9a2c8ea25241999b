// Package navigation tracks the terminal client's current location. Every
// move passes through the route guard, so protected pages are never shown
// without an access cookie.
package navigation

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/fortunes/fortunes-web/internal/core"
	"github.com/fortunes/fortunes-web/internal/guard"
)

// CookieSource reads a cookie the tab would send to the backend.
type CookieSource interface {
	Cookie(name string) string
}

// Options bundles dependencies for New.
type Options struct {
	Guard   *guard.Guard
	Cookies CookieSource
	Start   string
	Logger  *slog.Logger
}

// Router holds the current location.
type Router struct {
	guard   *guard.Guard
	cookies CookieSource
	logger  *slog.Logger

	mu        sync.RWMutex
	location  string
	listeners []func(string)
}

var _ core.Navigator = (*Router)(nil)

// New creates a Router positioned at opts.Start (default "/").
func New(opts Options) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := opts.Start
	if start == "" {
		start = "/"
	}
	return &Router{
		guard:    opts.Guard,
		cookies:  opts.Cookies,
		logger:   logger.With("component", "navigation"),
		location: start,
	}
}

// Go moves to target after consulting the guard and returns the location
// actually reached, which is the login page when the guard refuses.
func (r *Router) Go(ctx context.Context, target string) string {
	target = SafePath(target)
	final := target
	if r.guard != nil {
		token := ""
		if r.cookies != nil {
			token = r.cookies.Cookie(r.guard.AccessCookie())
		}
		if d := r.guard.Check(target, token); !d.Allow {
			r.logger.DebugContext(ctx, "navigation blocked by guard", "target", target, "redirect", d.Redirect)
			final = d.Redirect
		}
	}

	r.mu.Lock()
	r.location = final
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(final)
	}
	return final
}

// Navigate implements core.Navigator.
func (r *Router) Navigate(ctx context.Context, target string) {
	r.Go(ctx, target)
}

// CurrentPath implements core.Navigator. It includes the query string.
func (r *Router) CurrentPath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.location
}

// Path returns the current location without its query string.
func (r *Router) Path() string {
	p := r.CurrentPath()
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		return p[:i]
	}
	return p
}

// Query returns the named query parameter of the current location.
func (r *Router) Query(name string) string {
	u, err := url.Parse(r.CurrentPath())
	if err != nil {
		return ""
	}
	return u.Query().Get(name)
}

// Next returns the post-login destination carried in the "next" parameter.
func (r *Router) Next() string {
	return SafePath(r.Query("next"))
}

// OnChange registers fn to run after every location change.
func (r *Router) OnChange(fn func(location string)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// SafePath keeps a location inside the app: absolute URLs, scheme-relative
// references and relative paths collapse to "/".
func SafePath(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(candidate, "//") {
		return "/"
	}
	return candidate
}
