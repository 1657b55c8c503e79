// Package http provides an HTTP-based implementation of pagemirror.Fetcher.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/pagemirror"
)

// DefaultFetchTimeout is the default timeout for a single HTTP request.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps how many bytes are read from one response.
const DefaultMaxBodySize = 50 << 20

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "pagemirror/1.0"

// Ensure Fetcher implements pagemirror.Fetcher at compile time.
var _ pagemirror.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves raw response bodies using HTTP GET requests.
// Bodies are returned byte-for-byte, so it is safe for images and other
// binary assets.
type Fetcher struct {
	client      *http.Client
	transport   http.RoundTripper
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for each HTTP request.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTransport sets the round tripper used by the underlying client.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// WithMaxBodySize caps the number of bytes read from a response.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: f.transport,
	}

	return f
}

// Fetch retrieves the body at the given URL.
// Failures are returned as *pagemirror.FetchError, except cancellation of ctx
// by the caller, which is returned unchanged.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pagemirror.Errorf(pagemirror.EINVALID, "invalid URL %q: %v", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, ClassifyTransportError(url, err)
	}
	defer resp.Body.Close()

	if err := ClassifyStatus(url, resp.StatusCode); err != nil {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &pagemirror.FetchError{URL: url, Kind: pagemirror.Transient, Err: err}
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, &pagemirror.FetchError{
			URL:  url,
			Kind: pagemirror.ServerError,
			Err:  fmt.Errorf("response exceeds %d bytes", f.maxBodySize),
		}
	}

	return body, nil
}

// ClassifyStatus maps an HTTP status code to a fetch error.
// It returns nil for 2xx responses.
func ClassifyStatus(url string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return &pagemirror.FetchError{URL: url, Kind: pagemirror.NotFound, StatusCode: code}
	case code == http.StatusInternalServerError:
		return &pagemirror.FetchError{URL: url, Kind: pagemirror.ServerError, StatusCode: code}
	default:
		return &pagemirror.FetchError{URL: url, Kind: pagemirror.Transient, StatusCode: code}
	}
}

// ClassifyTransportError maps a client error to a fetch error.
// Timeouts are transient; every other transport failure, including name
// resolution and refused connections, means the host is unreachable.
func ClassifyTransportError(url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &pagemirror.FetchError{URL: url, Kind: pagemirror.Transient, Err: err}
	}
	return &pagemirror.FetchError{URL: url, Kind: pagemirror.Unreachable, Err: err}
}
