package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vkbackup/pkg/config"
	errs "vkbackup/pkg/errors"
	"vkbackup/pkg/logger"
)

func fastConfig(attempts int) *Config {
	return &Config{
		MaxAttempts: attempts,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   1 * time.Second,
		Multiplier: 2.0,
	}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 0},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, 1 * time.Second},
		{9, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, backoff.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.3,
	}

	for i := 0; i < 50; i++ {
		delay := backoff.NextDelay(2)
		assert.GreaterOrEqual(t, delay, 140*time.Millisecond)
		assert.LessOrEqual(t, delay, 260*time.Millisecond)
	}
}

func TestErrorTypeBackoff(t *testing.T) {
	etb := NewErrorTypeBackoff(&ExponentialBackoff{BaseDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2})

	assert.Equal(t, 5*time.Second, etb.ForError(errs.ErrorTypeRateLimit).NextDelay(1))
	assert.Equal(t, 2*time.Second, etb.ForError(errs.ErrorTypeServerError).NextDelay(1))
	assert.Equal(t, time.Second, etb.ForError(errs.ErrorTypeNetwork).NextDelay(1))
	assert.Equal(t, time.Second, etb.NextDelay(1))
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	var retried []int

	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		retried = append(retried, attempt)
	}

	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errs.FromStatus("disk", 503)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoGivesUp(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(2), func(ctx context.Context) error {
		attempts++
		return errs.New("vk", errs.ErrorTypeNetwork, 0, "connection reset")
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, err.Error(), "giving up after 2 attempts")

	var apiErr *errs.Error
	assert.True(t, errors.As(err, &apiErr))
}

func TestDoSingleAttemptByDefault(t *testing.T) {
	attempts := 0
	sentinel := errs.New("disk", errs.ErrorTypeServerError, 500, "boom")

	err := Do(context.Background(), nil, func(ctx context.Context) error {
		attempts++
		return sentinel
	})

	assert.Equal(t, 1, attempts)
	assert.Same(t, sentinel, err)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		return errs.FromStatus("disk", 401)
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoPlainErrorsAreNotRetried(t *testing.T) {
	attempts := 0
	_ = Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		attempts++
		return errors.New("disk full")
	})
	assert.Equal(t, 1, attempts)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Minute},
		OnRetry: func(int, error, time.Duration) {
			cancel()
		},
	}

	err := Do(ctx, cfg, func(ctx context.Context) error {
		return errs.FromStatus("vk", 429)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	href, err := DoWithResult(context.Background(), fastConfig(3), func(ctx context.Context) (string, error) {
		attempts++
		if attempts == 1 {
			return "", errs.FromStatus("disk", 502)
		}
		return "https://uploader.example/put", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "https://uploader.example/put", href)
}

func TestFromConfig(t *testing.T) {
	tl := logger.NewTestLogger()
	cfg := FromConfig(config.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}, tl)

	attempts := 0
	err := Do(context.Background(), cfg, func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errs.FromStatus("disk", 500)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
}

func TestDefaultRetryIf(t *testing.T) {
	assert.False(t, DefaultRetryIf(nil))
	assert.False(t, DefaultRetryIf(context.Canceled))
	assert.True(t, DefaultRetryIf(errs.FromStatus("vk", 429)))
	assert.False(t, DefaultRetryIf(errs.FromStatus("vk", 404)))
}
