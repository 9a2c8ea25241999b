// Package guard implements the coarse route guard: protected paths require a
// non-empty access cookie, otherwise the visitor is sent to the login page
// with a "next" parameter. The token itself is never validated here; the
// backend's 401 is authoritative.
package guard

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DefaultProtectedPrefixes are the pages that require a session.
var DefaultProtectedPrefixes = []string{"/profile", "/settings", "/analysis"}

// Decision is the outcome of a guard check.
type Decision struct {
	Allow bool
	// Redirect is the login location when Allow is false.
	Redirect string
}

// Options bundles configuration for New.
type Options struct {
	Prefixes     []string
	AccessCookie string
	LoginPath    string
	Logger       *slog.Logger
}

// Guard checks navigation targets against the protected prefixes.
type Guard struct {
	prefixes     []string
	accessCookie string
	loginPath    string
	logger       *slog.Logger
}

// New creates a Guard. Empty options fall back to the defaults.
func New(opts Options) *Guard {
	prefixes := opts.Prefixes
	if len(prefixes) == 0 {
		prefixes = DefaultProtectedPrefixes
	}
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{
		prefixes:     cleaned,
		accessCookie: opts.AccessCookie,
		loginPath:    opts.LoginPath,
		logger:       logger.With("component", "guard"),
	}
	if g.accessCookie == "" {
		g.accessCookie = "access_token"
	}
	if g.loginPath == "" {
		g.loginPath = "/login"
	}
	return g
}

// IsProtected reports whether path falls under a protected prefix.
// A prefix matches itself and anything below it ("/profile", "/profile/edit")
// but not siblings that merely share characters ("/profiles").
func (g *Guard) IsProtected(path string) bool {
	for _, p := range g.prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// Check decides whether path may be shown to a visitor holding accessToken.
// Only presence of the token is checked.
func (g *Guard) Check(path, accessToken string) Decision {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if !g.IsProtected(path) || accessToken != "" {
		return Decision{Allow: true}
	}
	return Decision{Redirect: g.loginPath + "?" + url.Values{"next": {path}}.Encode()}
}

// AccessCookie returns the name of the presence-checked cookie.
func (g *Guard) AccessCookie() string { return g.accessCookie }

// Middleware applies the guard to incoming page requests, redirecting with 303.
func (g *Guard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if ck, err := r.Cookie(g.accessCookie); err == nil {
				token = ck.Value
			}

			d := g.Check(r.URL.Path, token)
			g.logger.DebugContext(r.Context(), "route guard",
				"path", r.URL.Path,
				"protected", g.IsProtected(r.URL.Path),
				"token_present", token != "",
				"allow", d.Allow,
			)
			if !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
