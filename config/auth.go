package config

import "strings"

// AuthConfig groups the session-authentication contract shared with the backend.
type AuthConfig struct {
	// AccessCookie is presence-checked by the route guard.
	AccessCookie string `env:"AUTH_ACCESS_COOKIE" envDefault:"access_token"`

	// CSRFCookie is mirrored into CSRFHeader on unsafe requests.
	CSRFCookie string `env:"AUTH_CSRF_COOKIE" envDefault:"csrf_token"`
	CSRFHeader string `env:"AUTH_CSRF_HEADER" envDefault:"x-csrf-token"`

	// LoginPath is where unauthenticated navigation is sent.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`

	// ProtectedPrefixes lists path prefixes that require an access cookie.
	ProtectedPrefixes []string `env:"AUTH_PROTECTED_PREFIXES" envDefault:"/profile;/settings;/analysis" envSeparator:";"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.AccessCookie = strings.TrimSpace(a.AccessCookie)
	a.CSRFCookie = strings.TrimSpace(a.CSRFCookie)
	a.CSRFHeader = strings.ToLower(strings.TrimSpace(a.CSRFHeader))
	if a.AccessCookie == "" {
		a.AccessCookie = "access_token"
	}
	if a.CSRFCookie == "" {
		a.CSRFCookie = "csrf_token"
	}
	if a.CSRFHeader == "" {
		a.CSRFHeader = "x-csrf-token"
	}
	if a.LoginPath = strings.TrimSpace(a.LoginPath); !strings.HasPrefix(a.LoginPath, "/") {
		a.LoginPath = "/login"
	}

	prefixes := make([]string, 0, len(a.ProtectedPrefixes))
	for _, p := range a.ProtectedPrefixes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		prefixes = append(prefixes, p)
	}
	a.ProtectedPrefixes = prefixes
}
