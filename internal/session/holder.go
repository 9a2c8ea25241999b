// Package session holds the tab's authentication state. A single Holder is
// constructed at startup and passed by reference; it is the only writer of
// the current user.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fortunes/fortunes-web/internal/apiclient"
	"github.com/fortunes/fortunes-web/internal/core"
	"github.com/fortunes/fortunes-web/internal/domain/account"
	apperrors "github.com/fortunes/fortunes-web/internal/errors"
	"golang.org/x/sync/singleflight"
)

const (
	mePath     = "/api/v1/auth/me"
	logoutPath = "/api/v1/auth/logout"
)

// API is the subset of the HTTP client the holder needs.
type API interface {
	FetchInline(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

// Options bundles dependencies for New.
type Options struct {
	API       API
	Navigator core.Navigator
	LoginPath string
	Logger    *slog.Logger
}

// Holder owns the current user and loading flag.
type Holder struct {
	api       API
	nav       core.Navigator
	loginPath string
	logger    *slog.Logger

	mu      sync.RWMutex
	user    *account.User
	loading bool

	group     singleflight.Group
	startOnce sync.Once

	subsMu sync.Mutex
	subs   map[int]func(*account.User)
	nextID int
}

// New creates a Holder. Loading starts true until the first refresh completes.
func New(opts Options) *Holder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Holder{
		api:       opts.API,
		nav:       opts.Navigator,
		loginPath: loginPath,
		logger:    logger.With("component", "session"),
		loading:   true,
		subs:      make(map[int]func(*account.User)),
	}
}

// User returns a copy of the current user, or nil when logged out.
func (h *Holder) User() *account.User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return nil
	}
	u := *h.user
	return &u
}

// Loading reports whether a refresh is in progress.
func (h *Holder) Loading() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loading
}

// Start performs the initial refresh. Later calls are no-ops.
func (h *Holder) Start(ctx context.Context) {
	h.startOnce.Do(func() {
		if _, err := h.Refresh(ctx); err != nil {
			h.logger.DebugContext(ctx, "initial session refresh found no user", "error", err)
		}
	})
}

// Refresh asks the backend who is logged in. On 200 the user is stored and
// the raw payload returned. Any other outcome clears the user and returns a
// nil payload with the reason. Concurrent calls share one request.
func (h *Holder) Refresh(ctx context.Context) (map[string]any, error) {
	v, err, _ := h.group.Do("me", func() (any, error) {
		h.setLoading(true)
		defer h.setLoading(false)

		payload, err := h.fetchMe(ctx)
		if err != nil {
			h.setUser(nil)
			return nil, err
		}
		h.setUser(account.UserFromPayload(payload))
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	payload, _ := v.(map[string]any)
	return payload, nil
}

func (h *Holder) fetchMe(ctx context.Context) (map[string]any, error) {
	resp, err := h.api.FetchInline(ctx, apiclient.Get(mePath))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, apperrors.Unauthorized("not logged in")
		}
		return nil, apperrors.Failedf("who am i: %s", resp.Status())
	}
	var payload map[string]any
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFailed, "who am i")
	}
	if payload == nil {
		return nil, apperrors.Failed("who am i: empty payload")
	}
	return payload, nil
}

// SetUser replaces the current user, e.g. after a profile update.
func (h *Holder) SetUser(u *account.User) {
	if u != nil {
		cp := *u
		u = &cp
	}
	h.setUser(u)
}

// Logout ends the session. The backend call is best effort; local state is
// cleared and the tab sent to the login page regardless. Safe to call repeatedly.
func (h *Holder) Logout(ctx context.Context) {
	if h.api != nil {
		resp, err := h.api.FetchInline(ctx, apiclient.Request{Method: http.MethodPost, Path: logoutPath})
		switch {
		case err != nil:
			h.logger.WarnContext(ctx, "logout request failed", "error", err)
		case !resp.OK():
			h.logger.DebugContext(ctx, "logout request rejected", "status", resp.StatusCode)
		}
	}
	h.setUser(nil)
	if h.nav != nil {
		h.nav.Navigate(ctx, h.loginPath)
	}
}

// Subscribe registers fn to be called after every user change.
// The returned function removes the subscription.
func (h *Holder) Subscribe(fn func(*account.User)) func() {
	h.subsMu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.subsMu.Unlock()

	return func() {
		h.subsMu.Lock()
		delete(h.subs, id)
		h.subsMu.Unlock()
	}
}

func (h *Holder) setLoading(v bool) {
	h.mu.Lock()
	h.loading = v
	h.mu.Unlock()
}

func (h *Holder) setUser(u *account.User) {
	h.mu.Lock()
	h.user = u
	h.mu.Unlock()

	h.subsMu.Lock()
	fns := make([]func(*account.User), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.subsMu.Unlock()

	for _, fn := range fns {
		fn(h.User())
	}
}
