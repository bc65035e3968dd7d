// Package apiclient is the REST client used for write requests against the
// site. Mutating requests are rejected locally while offline.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

// Options configures a Client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
	UserAgent string
	// Checker answers whether writes must be rejected; nil never rejects
	Checker domain.OfflineChecker
	Logger  *utils.Logger
}

// Client wraps resty with an offline write guard
type Client struct {
	client  *resty.Client
	checker domain.OfflineChecker
	logger  *utils.Logger
}

// New creates a Client
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout)
	if opts.Transport != nil {
		cli.SetTransport(opts.Transport)
	}
	if opts.UserAgent != "" {
		cli.SetHeader("User-Agent", opts.UserAgent)
	}

	c := &Client{
		client:  cli,
		checker: opts.Checker,
		logger:  logger.WithComponent("apiclient"),
	}
	cli.OnBeforeRequest(c.guard)
	return c
}

// Resty returns the underlying client; the write guard stays installed
func (c *Client) Resty() *resty.Client {
	return c.client
}

// IsMutating reports whether method changes server state
func IsMutating(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (c *Client) offline() bool {
	return c.checker != nil && c.checker.IsOffline()
}

func (c *Client) guard(_ *resty.Client, req *resty.Request) error {
	if IsMutating(req.Method) && c.offline() {
		c.logger.Warn().Str("method", req.Method).Str("url", req.URL).Msg("Rejected write while offline")
		return fmt.Errorf("%w: %s %s", domain.ErrOffline, req.Method, req.URL)
	}
	return nil
}

// Do sends one request. body is encoded as JSON when non-nil and a 2xx
// JSON response is decoded into result when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) (*resty.Response, error) {
	if IsMutating(method) && c.offline() {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrOffline, method, path)
	}

	req := c.client.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(strings.ToUpper(method), path)
	if err != nil {
		if errors.Is(err, domain.ErrOffline) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// the shared transport reports error statuses as *domain.FetchError
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) && fetchErr.StatusCode > 0 {
			return nil, statusError(fetchErr.URL, fetchErr.StatusCode, "")
		}
		return nil, domain.NewFetchError(path, 0, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return resp, statusError(resp.Request.URL, resp.StatusCode(), string(resp.Body()))
	}
	return resp, nil
}

// Get sends a GET request; reads are never blocked
func (c *Client) Get(ctx context.Context, path string, result any) (*resty.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post sends a POST request
func (c *Client) Post(ctx context.Context, path string, body, result any) (*resty.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Put sends a PUT request
func (c *Client) Put(ctx context.Context, path string, body, result any) (*resty.Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, result)
}

// Delete sends a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*resty.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// statusError maps an HTTP error status onto the domain sentinels
func statusError(url string, status int, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		body = http.StatusText(status)
	}

	switch status {
	case http.StatusNotFound:
		return domain.NewFetchError(url, status, fmt.Errorf("%w: %s", domain.ErrNotFound, body))
	case http.StatusTooManyRequests:
		return domain.NewFetchError(url, status, fmt.Errorf("%w: %s", domain.ErrRateLimited, body))
	default:
		return domain.NewFetchError(url, status, errors.New(body))
	}
}
