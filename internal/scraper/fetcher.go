package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/medwire/internal/common"
)

// FetcherOptions configure a page fetcher
type FetcherOptions struct {
	UserAgent  string
	Delay      time.Duration // Courtesy pause after every successful fetch
	Timeout    time.Duration
	MaxRetries int
}

// Fetcher downloads pages with retry on transient failures and a
// courtesy delay between requests to the source
type Fetcher struct {
	client    *http.Client
	userAgent string
	policy    *RetryPolicy
	limiter   *rate.Limiter
	logger    arbor.ILogger
}

// NewFetcher creates a fetcher from options, filling zero values with
// sensible defaults
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "medwire/" + common.GetVersion()
	}

	limiter := rate.NewLimiter(rate.Every(opts.Delay), 1)
	// Drain the initial token so the first post-fetch wait observes the
	// full courtesy delay
	limiter.Allow()

	return &Fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		policy:    NewRetryPolicy(opts.MaxRetries),
		limiter:   limiter,
		logger:    common.GetLogger(),
	}
}

// Fetch downloads a URL and parses it into a goquery document
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// FetchBytes downloads a URL with retry on transient failures. The
// courtesy delay applies after every successful fetch, including the
// last of a run.
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < f.policy.MaxAttempts(); attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := f.doRequest(ctx, url)
		if err == nil {
			// Courtesy pause. A cancellation here is surfaced by the
			// caller at its next checkpoint, not by discarding the page.
			_ = f.limiter.Wait(ctx)
			return body, nil
		}
		lastErr = err

		if !f.policy.IsRetryable(err) {
			f.logger.Debug().
				Str("url", url).
				Int("attempt", attempt+1).
				Err(err).
				Msg("Non-retryable fetch error, failing immediately")
			return nil, err
		}

		if attempt < f.policy.MaxAttempts()-1 {
			backoff := f.policy.CalculateBackoff(attempt)
			f.logger.Debug().
				Str("url", url).
				Int("attempt", attempt+1).
				Dur("backoff", backoff).
				Err(err).
				Msg("Retrying fetch after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	f.logger.Warn().
		Str("url", url).
		Int("max_attempts", f.policy.MaxAttempts()).
		Err(lastErr).
		Msg("All fetch attempts exhausted")

	return nil, lastErr
}

func (f *Fetcher) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorNetwork, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyRequestError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Kind: FetchErrorHTTPStatus, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrorNetwork, URL: url, Err: err}
	}
	return body, nil
}

func classifyRequestError(url string, err error) *FetchError {
	kind := FetchErrorNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		kind = FetchErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = FetchErrorTimeout
	}
	return &FetchError{Kind: kind, URL: url, Err: err}
}
