package core

import (
	"context"
)

// This file contains the ports the client components depend on.
// Concrete implementations live in navigation, cmd/fortunes and the adapters.

// Navigator moves the current tab to another location.
// The HTTP client uses it for 401 redirects and the session holder for logout.
type Navigator interface {
	// Navigate replaces the current location with target (path plus optional query).
	Navigate(ctx context.Context, target string)
	// CurrentPath returns the path (and query) of the current location.
	CurrentPath() string
}

// Notifier surfaces a single user-visible message.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, message string) { f(ctx, message) }

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(ctx context.Context, prompt string) bool
