package fallback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainFirstSuccessWins(t *testing.T) {
	calls := 0
	strategies := []Strategy[string]{
		{Name: "first", Run: func(context.Context) (string, error) {
			calls++
			return "", errors.New("no luck")
		}},
		{Name: "second", Run: func(context.Context) (string, error) {
			calls++
			return "value", nil
		}},
		{Name: "third", Run: func(context.Context) (string, error) {
			calls++
			return "unreached", nil
		}},
	}

	v, name, err := Chain(context.Background(), strategies)
	require.NoError(t, err)
	assert.Equal(t, "value", v)
	assert.Equal(t, "second", name)
	assert.Equal(t, 2, calls, "later strategies must not run after a success")
}

func TestChainExhausted(t *testing.T) {
	strategies := []Strategy[int]{
		{Name: "a", Run: func(context.Context) (int, error) { return 0, errors.New("a failed") }},
		{Name: "b", Run: func(context.Context) (int, error) { return 0, errors.New("b failed") }},
	}

	_, _, err := Chain(context.Background(), strategies)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), "a failed")
	assert.Contains(t, err.Error(), "b failed")
}

func TestChainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	_, _, err := Chain(ctx, []Strategy[int]{
		{Name: "a", Run: func(context.Context) (int, error) { ran = true; return 1, nil }},
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	v, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		func(context.Context) (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("transient")
			}
			return "ok", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustsBudget(t *testing.T) {
	attempts := 0
	_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond},
		func(context.Context) (int, error) {
			attempts++
			return 0, errors.New("still broken")
		})
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestRetryNonRetryableFailsFast(t *testing.T) {
	fatal := errors.New("bad credentials")
	attempts := 0
	_, err := Retry(context.Background(),
		RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, Retryable: func(err error) bool {
			return !errors.Is(err, fatal)
		}},
		func(context.Context) (int, error) {
			attempts++
			return 0, fatal
		})
	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, attempts)
}

func TestRetryHonorsCancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, RetryPolicy{MaxAttempts: 10, BaseDelay: time.Hour},
		func(context.Context) (int, error) {
			attempts++
			return 0, errors.New("transient")
		})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}
