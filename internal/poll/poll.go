// Package poll runs a wait-then-check loop under an explicit retry policy and
// reports a discriminated Result instead of ad hoc nils.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/fortunes/fortunes-web/internal/errors"
	"github.com/sethvargo/go-retry"
)

// Kind discriminates a poll Result.
type Kind int

const (
	// KindSuccess means a check reported Done.
	KindSuccess Kind = iota
	// KindTimeout means the budget (deadline or attempts) ran out.
	KindTimeout
	// KindFailed means a check aborted or the caller canceled.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

// State is what a single check observed.
type State int

const (
	// Pending keeps polling.
	Pending State = iota
	// Done stops polling successfully.
	Done
	// Abort stops polling with a failure.
	Abort
)

// Step is the result of one check.
type Step struct {
	State   State
	Payload any
	Reason  string
}

// CheckFunc performs one status check. A returned error is treated as
// transient: it is recorded and polling continues.
type CheckFunc func(ctx context.Context) (Step, error)

// Policy bounds a poll. The deadline is measured from the call to Poll.
type Policy struct {
	Interval time.Duration
	Timeout  time.Duration
	// MaxAttempts caps the number of checks; zero means deadline only.
	MaxAttempts uint64
}

// Default polling budget.
const (
	DefaultInterval = 5 * time.Second
	DefaultTimeout  = 5 * time.Minute
)

func (p Policy) normalized() Policy {
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	return p
}

// Result is the outcome of Poll.
type Result struct {
	Kind     Kind
	Payload  any
	Attempts int
	Elapsed  time.Duration
	// Err explains a Timeout or Failed result. For a timeout it wraps the
	// last transient error, if any.
	Err error
}

type abortError struct{ reason string }

func (e *abortError) Error() string { return e.reason }

var errPending = errors.New("not ready")

// Poll waits Interval, runs check, and repeats until check reports Done or
// Abort, the budget runs out, or ctx is canceled. Checks never overlap.
func Poll(ctx context.Context, p Policy, check CheckFunc) Result {
	p = p.normalized()
	start := time.Now()

	pollCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	var (
		res     Result
		lastErr error
	)

	var b retry.Backoff = retry.NewConstant(p.Interval)
	if p.MaxAttempts > 0 {
		b = retry.WithMaxRetries(p.MaxAttempts-1, b)
	}

	err := sleep(pollCtx, p.Interval)
	if err == nil {
		err = retry.Do(pollCtx, b, func(ctx context.Context) error {
			res.Attempts++
			step, cerr := check(ctx)
			if cerr != nil {
				lastErr = cerr
				return retry.RetryableError(cerr)
			}
			switch step.State {
			case Done:
				res.Payload = step.Payload
				return nil
			case Abort:
				return &abortError{reason: step.Reason}
			default:
				return retry.RetryableError(errPending)
			}
		})
	}
	res.Elapsed = time.Since(start)

	var abort *abortError
	switch {
	case err == nil:
		res.Kind = KindSuccess
	case errors.As(err, &abort):
		res.Kind = KindFailed
		res.Err = apperrors.Failed(abort.reason)
	case ctx.Err() != nil:
		res.Kind = KindFailed
		res.Err = apperrors.MapTransportError(ctx.Err())
	default:
		// Deadline reached or attempts exhausted.
		res.Kind = KindTimeout
		res.Err = timeoutError(res.Attempts, lastErr)
	}
	return res
}

func timeoutError(attempts int, last error) error {
	msg := fmt.Sprintf("no terminal status after %d checks", attempts)
	if last != nil {
		return apperrors.Wrap(last, apperrors.ErrCodeTimeout, msg)
	}
	return &apperrors.AppError{Code: apperrors.ErrCodeTimeout, Message: msg}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
