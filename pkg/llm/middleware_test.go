package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	var calls int32
	inner := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", &Error{Kind: KindServer, StatusCode: 502, Message: "flaky"}
		}
		return "ok", nil
	})

	out, err := WithRetry(inner, 4, time.Millisecond).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestWithRetry_GivesUpAndReturnsLastError(t *testing.T) {
	var calls int32
	inner := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", &Error{Kind: KindClient, StatusCode: 400, Message: "bad"}
	})

	_, err := WithRetry(inner, 4, time.Millisecond).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrClient)
	assert.EqualValues(t, 4, atomic.LoadInt32(&calls))
}

func TestWithRetry_NonPositiveDelayDoesNotPanic(t *testing.T) {
	for _, delay := range []time.Duration{0, -time.Second} {
		var calls int32
		inner := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
			atomic.AddInt32(&calls, 1)
			return "", &Error{Kind: KindServer, StatusCode: 500, Message: "down"}
		})

		var err error
		require.NotPanics(t, func() {
			_, err = WithRetry(inner, 3, delay).Complete(context.Background(), "p")
		})
		assert.ErrorIs(t, err, ErrServer)
		assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	}
}

func TestWithRetry_SingleAttemptIsPassThrough(t *testing.T) {
	inner := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("x")
	})
	c := WithRetry(inner, 1, time.Second)
	_, isFunc := c.(ClientFunc)
	assert.True(t, isFunc)
}

func TestWithTimeout_ConvertsDeadlineToTimeoutError(t *testing.T) {
	inner := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	start := time.Now()
	_, err := WithTimeout(inner, 20*time.Millisecond).Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWithTimeout_PassesResultThrough(t *testing.T) {
	inner := ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "echo:" + prompt, nil
	})
	out, err := WithTimeout(inner, time.Second).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "echo:p", out)
}
