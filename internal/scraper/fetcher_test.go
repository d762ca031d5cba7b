package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(maxRetries int) *Fetcher {
	f := NewFetcher(FetcherOptions{
		Delay:      time.Millisecond,
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
	})
	f.policy.InitialBackoff = time.Millisecond
	f.policy.MaxBackoff = 5 * time.Millisecond
	return f
}

func TestFetcher_RetriesTransientThenSucceeds(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	body, err := newTestFetcher(3).FetchBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetcher_ExhaustsAttemptsOnPersistentFailure(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestFetcher(2).FetchBytes(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, FetchErrorHTTPStatus, fetchErr.Kind)
	assert.Equal(t, 500, fetchErr.StatusCode)
	// maxRetries=2 means 3 attempts total
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetcher_NoRetryOnClientError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(3).FetchBytes(context.Background(), srv.URL)
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 404, fetchErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "client errors must fail without retry")
}

func TestFetcher_CourtesyDelayAfterEveryFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(FetcherOptions{
		Delay:      50 * time.Millisecond,
		Timeout:    time.Second,
		MaxRetries: 0,
	})

	start := time.Now()
	_, err := f.FetchBytes(context.Background(), srv.URL)
	require.NoError(t, err)
	// The pause applies even when no further fetch follows
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestFetcher_ZeroOptionsGetDefaultRetries(t *testing.T) {
	f := NewFetcher(FetcherOptions{})
	// Matches the configured default of 3 retries, 4 attempts total
	assert.Equal(t, 4, f.policy.MaxAttempts())
}

func TestFetcher_ContextCancelledBeforeFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestFetcher(0).FetchBytes(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_FetchParsesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>Heart Health Study</h1></body></html>`))
	}))
	defer srv.Close()

	doc, err := newTestFetcher(0).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Heart Health Study", doc.Find("h1").Text())
}
