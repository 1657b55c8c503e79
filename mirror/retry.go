package mirror

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/fwojciec/pagemirror"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) ([]byte, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// RetryPolicy bounds how often and how patiently a failed fetch is retried.
type RetryPolicy struct {
	// Retries is the number of attempts after the first.
	Retries int

	// Delay is the fixed pause between attempts.
	Delay time.Duration

	// Jitter is the upper bound of a random duration added to each delay.
	Jitter time.Duration
}

// DefaultRetryPolicy returns the policy for fetch retries: 2 retries,
// 3s apart, with up to 300ms of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Retries: 2,
		Delay:   3 * time.Second,
		Jitter:  300 * time.Millisecond,
	}
}

func (p RetryPolicy) wait(ctx context.Context) error {
	d := p.Delay
	if p.Jitter > 0 {
		d += rand.N(p.Jitter)
	}
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FetchWithRetry attempts to fetch a URL, retrying retryable failures.
// Whether an error is retryable is decided by pagemirror.IsRetryable alone;
// the policy only decides how many times and how long to wait.
// A non-retryable error is returned as soon as it occurs. When every attempt
// fails, the result is a *pagemirror.RetryExhaustedError wrapping the last error.
// The logger function, if provided, is called for each retry attempt.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, policy RetryPolicy, logger LogFunc) ([]byte, error) {
	maxAttempts := max(policy.Retries, 0) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := fetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !pagemirror.IsRetryable(err) {
			return nil, err
		}

		// Don't wait after the last attempt
		if attempt == maxAttempts {
			break
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", url, attempt+1, err)
		}

		if err := policy.wait(ctx); err != nil {
			return nil, err
		}
	}

	return nil, &pagemirror.RetryExhaustedError{
		URL:      url,
		Attempts: maxAttempts,
		Err:      lastErr,
	}
}

// Ensure RetryFetcher implements pagemirror.Fetcher at compile time.
var _ pagemirror.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher wraps a Fetcher with FetchWithRetry.
type RetryFetcher struct {
	next   pagemirror.Fetcher
	policy RetryPolicy
	logger LogFunc
}

// NewRetryFetcher creates a RetryFetcher. A nil logger disables retry logging.
func NewRetryFetcher(next pagemirror.Fetcher, policy RetryPolicy, logger LogFunc) *RetryFetcher {
	return &RetryFetcher{next: next, policy: policy, logger: logger}
}

// Fetch fetches url, retrying according to the policy.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return FetchWithRetry(ctx, url, f.next.Fetch, f.policy, f.logger)
}
