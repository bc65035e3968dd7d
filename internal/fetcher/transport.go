package fetcher

import (
	"bytes"
	"io"
	"net/http"

	"github.com/quantmind-br/offsync/internal/domain"
)

// StealthTransport is an http.RoundTripper backed by the stealth client,
// so resty and other standard clients share its TLS fingerprint and retries
type StealthTransport struct {
	client *Client
}

// NewStealthTransport creates a new StealthTransport
func NewStealthTransport(client *Client) *StealthTransport {
	return &StealthTransport{client: client}
}

// RoundTrip implements http.RoundTripper
func (t *StealthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	extraHeaders := make(map[string]string)
	for k, v := range req.Header {
		if len(v) > 0 {
			extraHeaders[k] = v[0]
		}
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	ctx := req.Context()
	url := req.URL.String()

	var (
		resp *domain.Response
		err  error
	)
	if req.Method == http.MethodGet {
		resp, err = t.client.GetWithHeaders(ctx, url, extraHeaders)
	} else {
		resp, err = t.client.Do(ctx, req.Method, url, extraHeaders, body)
	}
	if err != nil {
		return nil, err
	}
	return toHTTPResponse(req, resp.StatusCode, resp.Headers, resp.Body), nil
}

func toHTTPResponse(req *http.Request, status int, headers http.Header, body []byte) *http.Response {
	if headers == nil {
		headers = make(http.Header)
	}
	// The body is already decompressed; a stale Content-Encoding would make
	// the caller try to decode it again.
	headers.Del("Content-Encoding")

	return &http.Response{
		Status:        http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// Transport returns the StealthTransport as http.RoundTripper
func (c *Client) Transport() http.RoundTripper {
	return NewStealthTransport(c)
}
