package client

import (
	"compress/gzip"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds every request made by the job service clients
	DefaultTimeout = 15 * time.Second

	// UserAgent identifies the tool; HeadHunter rejects requests without one
	UserAgent = "salarystats/1.0 (+https://github.com/fr4nk3nst1ner/salarystats)"
)

// CreateProxyHTTPClient creates an HTTP client that routes through proxyURL.
// An empty or unparsable proxy falls back to a direct client.
func CreateProxyHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	if proxyURL == "" {
		return CreateHTTPClient(timeout)
	}

	proxy, err := url.Parse(proxyURL)
	if err != nil {
		return CreateHTTPClient(timeout)
	}

	transport := newTransport()
	transport.Proxy = http.ProxyURL(proxy)

	return &http.Client{
		Transport: transport,
		Timeout:   normalizeTimeout(timeout),
	}
}

// CreateHTTPClient creates a standard HTTP client
func CreateHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: newTransport(),
		Timeout:   normalizeTimeout(timeout),
	}
}

func newTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		ForceAttemptHTTP2:   true,
	}
}

func normalizeTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}

// GetAPIHeaders returns the headers sent with every JSON API request
func GetAPIHeaders() http.Header {
	headers := http.Header{}
	headers.Set("User-Agent", UserAgent)
	headers.Set("Accept", "application/json")
	headers.Set("Accept-Encoding", "gzip")
	return headers
}

// ReadResponseBody reads the response body, handling gzip compression if necessary
func ReadResponseBody(resp *http.Response) ([]byte, error) {
	var reader io.ReadCloser
	var err error

	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer reader.Close()
	default:
		reader = resp.Body
	}

	return io.ReadAll(reader)
}
