package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/quantmind-br/offsync/internal/domain"
)

// Client is a stealth HTTP client using tls-client
type Client struct {
	tlsClient tls_client.HttpClient
	userAgent string
	retry     RetryPolicy
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	Timeout         time.Duration
	MaxRetries      int
	UserAgent       string
	ProxyURL        string
	FollowRedirects bool
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		FollowRedirects: true,
	}
}

// NewClient creates a new stealth HTTP client
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	tlsOpts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(opts.Timeout.Seconds())),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithRandomTLSExtensionOrder(),
	}

	if !opts.FollowRedirects {
		tlsOpts = append(tlsOpts, tls_client.WithNotFollowRedirects())
	}
	if opts.ProxyURL != "" {
		tlsOpts = append(tlsOpts, tls_client.WithProxyUrl(opts.ProxyURL))
	}

	tlsClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), tlsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tls client: %w", err)
	}

	retry := DefaultRetryPolicy()
	retry.MaxRetries = opts.MaxRetries

	return &Client{
		tlsClient: tlsClient,
		userAgent: opts.UserAgent,
		retry:     retry,
	}, nil
}

// Get fetches content from a URL
func (c *Client) Get(ctx context.Context, url string) (*domain.Response, error) {
	return c.GetWithHeaders(ctx, url, nil)
}

// GetWithHeaders fetches content with custom headers, retrying transient failures
func (c *Client) GetWithHeaders(ctx context.Context, url string, extraHeaders map[string]string) (*domain.Response, error) {
	return Retry(ctx, c.retry, func() (*domain.Response, error) {
		return c.Do(ctx, http.MethodGet, url, extraHeaders, nil)
	})
}

// Head issues a single HEAD request without retries
func (c *Client) Head(ctx context.Context, url string) (*domain.Response, error) {
	return c.Do(ctx, http.MethodHead, url, nil, nil)
}

// Do performs one request. Status codes >= 400 are returned as errors;
// retryable ones are wrapped in domain.RetryableError.
func (c *Client) Do(ctx context.Context, method, targetURL string, extraHeaders map[string]string, body []byte) (*domain.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := fhttp.NewRequestWithContext(ctx, method, targetURL, reader)
	if err != nil {
		return nil, &domain.FetchError{URL: targetURL, Err: fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)}
	}

	for k, v := range StealthHeaders(c.userAgent) {
		req.Header.Set(k, v)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.tlsClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.FetchError{
			URL: targetURL,
			Err: fmt.Errorf("request failed: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fetchErr := &domain.FetchError{
			URL:        targetURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		}
		if ShouldRetryStatus(resp.StatusCode) {
			return nil, &domain.RetryableError{
				Err:        fetchErr,
				RetryAfter: int(ParseRetryAfter(resp.Header.Get("Retry-After")).Seconds()),
			}
		}
		return nil, fetchErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Convert fhttp.Header to http.Header
	headers := make(http.Header, len(resp.Header))
	for k, v := range resp.Header {
		headers[k] = v
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &domain.Response{
		StatusCode:  resp.StatusCode,
		Body:        data,
		Headers:     headers,
		ContentType: resp.Header.Get("Content-Type"),
		URL:         finalURL,
	}, nil
}

// Close releases client resources
func (c *Client) Close() error {
	// tls-client keeps no resources that need explicit release
	return nil
}
