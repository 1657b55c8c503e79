package pagemirror

import "context"

// Fetcher retrieves the raw bytes at a URL.
// Implementations must not transcode the body.
type Fetcher interface {
	// Fetch performs a GET request and returns the response body.
	// Failures should be reported as *FetchError so callers can decide
	// whether to retry.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
