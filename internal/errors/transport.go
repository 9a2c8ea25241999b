package errors

import (
	"context"
	"errors"
	"net"
	"net/url"
)

// MapTransportError maps errors returned by an HTTP round trip to AppError instances.
// It handles the failure modes a client can observe without a response:
// - context.DeadlineExceeded or a net.Error timeout → Timeout
// - context.Canceled → Canceled
// - everything else (DNS, refused connections, TLS) → Network
//
// Returns nil when err is nil. AppErrors pass through unchanged.
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCodeCanceled, "request canceled")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeTimeout, "request timed out")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Wrap(err, ErrCodeTimeout, "request timed out")
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Wrapf(err, ErrCodeNetwork, "%s %s failed", urlErr.Op, urlErr.URL)
	}

	return Wrap(err, ErrCodeNetwork, "network error")
}
