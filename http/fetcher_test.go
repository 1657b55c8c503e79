package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/pagemirror"
	pmhttp "github.com/fwojciec/pagemirror/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body bytes unchanged", func(t *testing.T) {
		t.Parallel()

		payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0xfe, 0x0d, 0x0a}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(payload)
		}))
		defer server.Close()

		fetcher := pmhttp.NewFetcher()

		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, payload, body)
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
		}))
		defer server.Close()

		fetcher := pmhttp.NewFetcher(pmhttp.WithUserAgent("test-agent/2"))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "test-agent/2", got)
	})

	t.Run("timeout is transient", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		// Use a very short timeout that will expire before server responds
		fetcher := pmhttp.NewFetcher(pmhttp.WithTimeout(10 * time.Millisecond))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		var fe *pagemirror.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, pagemirror.Transient, fe.Kind)
		assert.True(t, pagemirror.IsRetryable(err))
	})

	t.Run("returns context error when caller cancels", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
		}))
		defer server.Close()

		fetcher := pmhttp.NewFetcher()

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, pagemirror.IsRetryable(err))
	})

	t.Run("malformed URL is invalid and not retryable", func(t *testing.T) {
		t.Parallel()

		_, err := pmhttp.NewFetcher().Fetch(context.Background(), "://missing-scheme")

		require.Error(t, err)
		assert.Equal(t, pagemirror.EINVALID, pagemirror.ErrorCode(err))
		assert.False(t, pagemirror.IsRetryable(err))
	})

	t.Run("non-existent host is retryable", func(t *testing.T) {
		t.Parallel()

		fetcher := pmhttp.NewFetcher(pmhttp.WithTimeout(2 * time.Second))

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		var fe *pagemirror.FetchError
		require.ErrorAs(t, err, &fe)
		assert.True(t, pagemirror.IsRetryable(err))
	})

	t.Run("refused connection is unreachable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		fetcher := pmhttp.NewFetcher()

		_, err := fetcher.Fetch(context.Background(), url)
		var fe *pagemirror.FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, pagemirror.Unreachable, fe.Kind)
	})

	t.Run("classifies status codes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			status    int
			kind      pagemirror.FetchErrorKind
			retryable bool
		}{
			{http.StatusNotFound, pagemirror.NotFound, false},
			{http.StatusInternalServerError, pagemirror.ServerError, false},
			{http.StatusServiceUnavailable, pagemirror.Transient, true},
			{http.StatusForbidden, pagemirror.Transient, true},
			{http.StatusTooManyRequests, pagemirror.Transient, true},
		}

		for _, tt := range tests {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := pmhttp.NewFetcher().Fetch(context.Background(), server.URL)
			server.Close()

			var fe *pagemirror.FetchError
			require.ErrorAs(t, err, &fe, "status %d", tt.status)
			assert.Equal(t, tt.kind, fe.Kind, "status %d", tt.status)
			assert.Equal(t, tt.status, fe.StatusCode)
			assert.Equal(t, tt.retryable, pagemirror.IsRetryable(err), "status %d", tt.status)
			assert.Contains(t, err.Error(), server.URL)
		}
	})

	t.Run("rejects bodies over the size limit", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(make([]byte, 64))
		}))
		defer server.Close()

		fetcher := pmhttp.NewFetcher(pmhttp.WithMaxBodySize(32))

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.False(t, pagemirror.IsRetryable(err))
	})

	t.Run("uses custom transport", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
		defer server.Close()

		var calls int
		rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			return http.DefaultTransport.RoundTrip(r)
		})

		fetcher := pmhttp.NewFetcher(pmhttp.WithTransport(rt))

		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
		assert.Equal(t, 1, calls)
	})
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	assert.NoError(t, pmhttp.ClassifyStatus("https://example.com/", http.StatusOK))
	assert.NoError(t, pmhttp.ClassifyStatus("https://example.com/", http.StatusNoContent))
	assert.Error(t, pmhttp.ClassifyStatus("https://example.com/", http.StatusMovedPermanently))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// Compile-time verification that Fetcher implements pagemirror.Fetcher
var _ pagemirror.Fetcher = (*pmhttp.Fetcher)(nil)
