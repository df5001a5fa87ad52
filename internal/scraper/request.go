package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/fr4nk3nst1ner/salarystats/internal/client"
)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = time.Second
)

// Option configures a Source
type Option func(*requester)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *requester) {
		r.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *requester) {
		r.logger = logger
	}
}

// WithRetries sets how many times a transport failure is retried and the
// initial backoff, which doubles on every attempt.
func WithRetries(max int, backoff time.Duration) Option {
	return func(r *requester) {
		r.maxRetries = max
		r.retryBackoff = backoff
	}
}

// requester performs JSON GET requests with retry on transport failures
type requester struct {
	source       string
	httpClient   *http.Client
	logger       zerolog.Logger
	maxRetries   int
	retryBackoff time.Duration
}

func newRequester(source string, opts ...Option) *requester {
	r := &requester{
		source:       source,
		httpClient:   client.CreateHTTPClient(client.DefaultTimeout),
		logger:       zerolog.Nop(),
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("source", source).Logger()
	return r
}

// getJSON fetches endpoint and decodes the body into dest
func (r *requester) getJSON(ctx context.Context, page int, endpoint string, query url.Values, headers http.Header, dest any) error {
	body, err := r.doWithRetry(ctx, page, endpoint, query, headers)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return &FetchError{Kind: ErrSchema, Source: r.source, Page: page, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// doWithRetry performs a request with exponential backoff retry.
func (r *requester) doWithRetry(ctx context.Context, page int, endpoint string, query url.Values, headers http.Header) ([]byte, error) {
	var lastErr error
	backoff := r.retryBackoff

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoff
			if backoff > 0 {
				// jitter: backoff * (0.5 to 1.5)
				wait = backoff/2 + time.Duration(rand.Int63n(int64(backoff)))
			}
			r.logger.Debug().
				Int("attempt", attempt).
				Int("page", page).
				Dur("backoff", wait).
				Msg("retrying request")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}

			backoff *= 2
		}

		body, err := r.doRequest(ctx, page, endpoint, query, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}

		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) || !fetchErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (r *requester) doRequest(ctx context.Context, page int, endpoint string, query url.Values, headers http.Header) ([]byte, error) {
	fullURL := endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, values := range client.GetAPIHeaders() {
		req.Header[key] = values
	}
	for key, values := range headers {
		req.Header[key] = values
	}

	r.logger.Debug().Int("page", page).Str("url", endpoint).Msg("fetching page")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, Source: r.source, Page: page, Err: err}
	}
	defer resp.Body.Close()

	body, err := client.ReadResponseBody(resp)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, Source: r.source, Page: page, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, &FetchError{
			Kind:       classifyStatus(resp.StatusCode),
			Source:     r.source,
			Page:       page,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	return body, nil
}
