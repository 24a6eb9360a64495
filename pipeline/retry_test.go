package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	t.Run("clean first attempt retries nothing", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return nil
		}, 3, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("recovers from transient failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("backend overloaded")
			}
			return nil
		}, 5, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausted budget surfaces the last error", func(t *testing.T) {
		calls := 0
		down := errors.New("backend down")
		err := RetryWithBackoff(context.Background(), func() error {
			calls++
			return down
		}, 3, time.Millisecond)
		require.ErrorIs(t, err, down)
		assert.Equal(t, 3, calls, "budget caps the attempts")
	})

	t.Run("delays grow between attempts", func(t *testing.T) {
		var gaps []time.Duration
		last := time.Now()
		err := RetryWithBackoff(context.Background(), func() error {
			now := time.Now()
			gaps = append(gaps, now.Sub(last))
			last = now
			if len(gaps) < 4 {
				return errors.New("not yet")
			}
			return nil
		}, 5, 10*time.Millisecond)
		require.NoError(t, err)
		require.Len(t, gaps, 4)
		// gaps[0] is the instant first call; the sleeps after it double.
		assert.Greater(t, gaps[2], gaps[1])
		assert.Greater(t, gaps[3], gaps[2])
	})

	t.Run("non-positive budget is rejected", func(t *testing.T) {
		for _, budget := range []int{0, -1} {
			calls := 0
			err := RetryWithBackoff(context.Background(), func() error {
				calls++
				return nil
			}, budget, time.Millisecond)
			assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
			assert.Zero(t, calls)
		}
	})
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	t.Run("cancellation stops further attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			cancel()
			return errors.New("still failing")
		}, 10, time.Millisecond)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls, "the cancel lands before the next attempt")
	})

	t.Run("deadline cuts the backoff sleep short", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := RetryWithBackoff(ctx, func() error {
			return errors.New("still failing")
		}, 10, time.Hour)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second, "must not sit out the full delay")
	})
}
