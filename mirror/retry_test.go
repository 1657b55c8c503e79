package mirror_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/pagemirror"
	"github.com/fwojciec/pagemirror/mirror"
	"github.com/fwojciec/pagemirror/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDelay is used for fast unit tests.
var noDelay = mirror.RetryPolicy{Retries: 2}

func transient(url string) error {
	return &pagemirror.FetchError{URL: url, Kind: pagemirror.Transient, StatusCode: 503}
}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) ([]byte, error) {
			attempts++
			return []byte("<html>content</html>"), nil
		}

		body, err := mirror.FetchWithRetry(context.Background(), "https://example.com", fetch, noDelay, nil)

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", string(body))
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries transient failures and succeeds", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) ([]byte, error) {
			attempts++
			if attempts < 3 {
				return nil, transient(url)
			}
			return []byte("ok"), nil
		}

		body, err := mirror.FetchWithRetry(context.Background(), "https://example.com", fetch, noDelay, nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) ([]byte, error) {
			attempts++
			return nil, transient(url)
		}

		_, err := mirror.FetchWithRetry(context.Background(), "https://example.com/a", fetch, noDelay, nil)

		var exhausted *pagemirror.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 3, exhausted.Attempts) // 1 initial + 2 retries
		assert.Equal(t, "https://example.com/a", exhausted.URL)
		assert.Equal(t, 3, attempts)

		var fe *pagemirror.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, 503, fe.StatusCode)
	})

	t.Run("does not retry non-retryable failures", func(t *testing.T) {
		t.Parallel()

		for _, kind := range []pagemirror.FetchErrorKind{pagemirror.NotFound, pagemirror.ServerError} {
			var attempts int
			fetch := func(ctx context.Context, url string) ([]byte, error) {
				attempts++
				return nil, &pagemirror.FetchError{URL: url, Kind: kind}
			}

			_, err := mirror.FetchWithRetry(context.Background(), "https://example.com", fetch, noDelay, nil)

			require.Error(t, err)
			assert.Equal(t, 1, attempts, "kind %s", kind)
			var exhausted *pagemirror.RetryExhaustedError
			assert.False(t, errors.As(err, &exhausted), "kind %s", kind)
		}
	})

	t.Run("does not retry application errors", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) ([]byte, error) {
			attempts++
			return nil, pagemirror.Errorf(pagemirror.EINVALID, "invalid URL %q", url)
		}

		_, err := mirror.FetchWithRetry(context.Background(), "https://exa mple.com", fetch, noDelay, nil)

		require.Error(t, err)
		assert.Equal(t, pagemirror.EINVALID, pagemirror.ErrorCode(err))
		assert.Equal(t, 1, attempts)
	})

	t.Run("zero retries makes a single attempt", func(t *testing.T) {
		t.Parallel()

		var attempts int
		fetch := func(ctx context.Context, url string) ([]byte, error) {
			attempts++
			return nil, errors.New("connection reset")
		}

		_, err := mirror.FetchWithRetry(context.Background(), "https://example.com", fetch, mirror.RetryPolicy{}, nil)

		var exhausted *pagemirror.RetryExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, 1, exhausted.Attempts)
		assert.Equal(t, 1, attempts)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var attempts int
		fetch := func(ctx context.Context, url string) ([]byte, error) {
			attempts++
			cancel()
			return nil, transient(url)
		}

		_, err := mirror.FetchWithRetry(ctx, "https://example.com", fetch, noDelay, nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})

	t.Run("cancellation interrupts the delay", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		fetch := func(ctx context.Context, url string) ([]byte, error) {
			return nil, transient(url)
		}
		policy := mirror.RetryPolicy{Retries: 2, Delay: time.Minute}

		start := time.Now()
		_, err := mirror.FetchWithRetry(ctx, "https://example.com", fetch, policy, nil)

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("waits between attempts", func(t *testing.T) {
		t.Parallel()

		fetch := func(ctx context.Context, url string) ([]byte, error) {
			return nil, transient(url)
		}
		policy := mirror.RetryPolicy{Retries: 2, Delay: 20 * time.Millisecond, Jitter: 5 * time.Millisecond}

		start := time.Now()
		_, err := mirror.FetchWithRetry(context.Background(), "https://example.com", fetch, policy, nil)

		require.Error(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("logs each retry", func(t *testing.T) {
		t.Parallel()

		fetch := func(ctx context.Context, url string) ([]byte, error) {
			return nil, transient(url)
		}

		var logs []string
		logger := func(format string, args ...any) {
			logs = append(logs, format)
		}

		_, err := mirror.FetchWithRetry(context.Background(), "https://example.com/page", fetch, noDelay, logger)

		require.Error(t, err)
		assert.Len(t, logs, 2)
	})
}

func TestDefaultRetryPolicy(t *testing.T) {
	t.Parallel()

	policy := mirror.DefaultRetryPolicy()

	assert.Equal(t, 2, policy.Retries)
	assert.Equal(t, 3*time.Second, policy.Delay)
	assert.Equal(t, 300*time.Millisecond, policy.Jitter)
}

func TestRetryFetcher(t *testing.T) {
	t.Parallel()

	var attempts int
	next := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string) ([]byte, error) {
			attempts++
			if attempts == 1 {
				return nil, transient(url)
			}
			return []byte("body"), nil
		},
	}

	body, err := mirror.NewRetryFetcher(next, noDelay, nil).Fetch(context.Background(), "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, "body", string(body))
	assert.Equal(t, 2, attempts)
}
