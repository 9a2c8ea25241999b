package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/fortunes/fortunes-web/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{Interval: 5 * time.Millisecond, Timeout: 500 * time.Millisecond}
}

func TestPoll_SuccessAfterPending(t *testing.T) {
	var calls int
	res := Poll(context.Background(), fastPolicy(), func(context.Context) (Step, error) {
		calls++
		if calls < 3 {
			return Step{State: Pending}, nil
		}
		return Step{State: Done, Payload: "result"}, nil
	})

	assert.Equal(t, KindSuccess, res.Kind)
	assert.Equal(t, "result", res.Payload)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, calls)
	assert.NoError(t, res.Err)
}

func TestPoll_WaitsBeforeFirstCheck(t *testing.T) {
	start := time.Now()
	var first time.Duration
	res := Poll(context.Background(), Policy{Interval: 30 * time.Millisecond, Timeout: time.Second},
		func(context.Context) (Step, error) {
			first = time.Since(start)
			return Step{State: Done}, nil
		})
	require.Equal(t, KindSuccess, res.Kind)
	assert.GreaterOrEqual(t, first, 30*time.Millisecond)
}

func TestPoll_TransientErrorsAreSwallowed(t *testing.T) {
	var calls int
	res := Poll(context.Background(), fastPolicy(), func(context.Context) (Step, error) {
		calls++
		if calls == 1 {
			return Step{}, errors.New("connection reset")
		}
		return Step{State: Done, Payload: 1}, nil
	})
	assert.Equal(t, KindSuccess, res.Kind)
	assert.Equal(t, 2, res.Attempts)
}

func TestPoll_TimeoutByDeadline(t *testing.T) {
	res := Poll(context.Background(), Policy{Interval: 5 * time.Millisecond, Timeout: 40 * time.Millisecond},
		func(context.Context) (Step, error) {
			return Step{State: Pending}, nil
		})
	assert.Equal(t, KindTimeout, res.Kind)
	assert.Nil(t, res.Payload)
	assert.True(t, apperrors.IsTimeout(res.Err))
	assert.Positive(t, res.Attempts)
}

func TestPoll_TimeoutKeepsLastError(t *testing.T) {
	boom := errors.New("502 bad gateway")
	res := Poll(context.Background(), Policy{Interval: 5 * time.Millisecond, Timeout: 30 * time.Millisecond},
		func(context.Context) (Step, error) {
			return Step{}, boom
		})
	assert.Equal(t, KindTimeout, res.Kind)
	assert.ErrorIs(t, res.Err, boom)
}

func TestPoll_MaxAttempts(t *testing.T) {
	var calls atomic.Int32
	p := fastPolicy()
	p.MaxAttempts = 3
	res := Poll(context.Background(), p, func(context.Context) (Step, error) {
		calls.Add(1)
		return Step{State: Pending}, nil
	})
	assert.Equal(t, KindTimeout, res.Kind)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, res.Attempts)
}

func TestPoll_Abort(t *testing.T) {
	res := Poll(context.Background(), fastPolicy(), func(context.Context) (Step, error) {
		return Step{State: Abort, Reason: "job failed"}, nil
	})
	assert.Equal(t, KindFailed, res.Kind)
	assert.Equal(t, 1, res.Attempts)
	assert.EqualError(t, res.Err, "job failed")
}

func TestPoll_ParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int
	res := Poll(ctx, fastPolicy(), func(context.Context) (Step, error) {
		calls++
		return Step{State: Done}, nil
	})
	assert.Equal(t, KindFailed, res.Kind)
	assert.Zero(t, calls)
	assert.True(t, apperrors.IsCanceled(res.Err))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "success", KindSuccess.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "failed", KindFailed.String())
}
