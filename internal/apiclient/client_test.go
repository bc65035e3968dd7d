package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/fetcher"
	"github.com/quantmind-br/offsync/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type offlineFlag struct{ atomic.Bool }

func (f *offlineFlag) IsOffline() bool { return f.Load() }

func newCountingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/api/missing/":
			http.NotFound(w, r)
		case "/api/busy/":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"stat":"ok"}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestIsMutating(t *testing.T) {
	for _, m := range []string{"POST", "put", "PATCH", "DELETE"} {
		assert.True(t, IsMutating(m), m)
	}
	for _, m := range []string{"GET", "HEAD", "OPTIONS"} {
		assert.False(t, IsMutating(m), m)
	}
}

func TestClient_OnlineWrites(t *testing.T) {
	var hits atomic.Int32
	server := newCountingServer(t, &hits)
	flag := &offlineFlag{}
	c := New(Options{BaseURL: server.URL + "/", Checker: flag})

	var out struct {
		Stat string `json:"stat"`
	}
	_, err := c.Post(context.Background(), "/api/review-requests/", map[string]string{"summary": "x"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Stat)
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_OfflineRejectsWrites(t *testing.T) {
	var hits atomic.Int32
	server := newCountingServer(t, &hits)
	flag := &offlineFlag{}
	flag.Store(true)
	c := New(Options{BaseURL: server.URL, Checker: flag})
	ctx := context.Background()

	_, err := c.Post(ctx, "/api/review-requests/", map[string]string{"summary": "x"}, nil)
	assert.ErrorIs(t, err, domain.ErrOffline)
	_, err = c.Put(ctx, "/api/review-requests/1/", map[string]string{}, nil)
	assert.ErrorIs(t, err, domain.ErrOffline)
	_, err = c.Delete(ctx, "/api/review-requests/1/")
	assert.ErrorIs(t, err, domain.ErrOffline)
	_, err = c.Do(ctx, http.MethodPatch, "/api/review-requests/1/", nil, nil)
	assert.ErrorIs(t, err, domain.ErrOffline)

	assert.Zero(t, hits.Load(), "rejected requests never reach the network")

	_, err = c.Get(ctx, "/api/review-requests/", nil)
	assert.NoError(t, err, "reads are still attempted")
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_GuardOnRawResty(t *testing.T) {
	var hits atomic.Int32
	server := newCountingServer(t, &hits)
	flag := &offlineFlag{}
	flag.Store(true)
	c := New(Options{BaseURL: server.URL, Checker: flag})

	_, err := c.Resty().R().SetBody(`{}`).Post("/api/comments/")

	assert.ErrorIs(t, err, domain.ErrOffline)
	assert.Zero(t, hits.Load())
}

func TestClient_CheckerMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockOfflineChecker(ctrl)
	checker.EXPECT().IsOffline().Return(true).AnyTimes()

	c := New(Options{BaseURL: "http://unused.invalid", Checker: checker})
	_, err := c.Post(context.Background(), "/x", nil, nil)

	assert.ErrorIs(t, err, domain.ErrOffline)
}

func TestClient_NilCheckerNeverRejects(t *testing.T) {
	var hits atomic.Int32
	server := newCountingServer(t, &hits)
	c := New(Options{BaseURL: server.URL})

	_, err := c.Delete(context.Background(), "/api/x/")

	require.NoError(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_HTTPErrors(t *testing.T) {
	var hits atomic.Int32
	server := newCountingServer(t, &hits)
	c := New(Options{BaseURL: server.URL})
	ctx := context.Background()

	_, err := c.Get(ctx, "/api/missing/", nil)
	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.Get(ctx, "/api/busy/", nil)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, domain.IsRetryable(err))
}

func TestClient_HTTPErrorsThroughStealthTransport(t *testing.T) {
	var hits atomic.Int32
	server := newCountingServer(t, &hits)
	stealth, err := fetcher.NewClient(fetcher.ClientOptions{Timeout: 5 * time.Second, MaxRetries: 0})
	require.NoError(t, err)

	c := New(Options{BaseURL: server.URL, Transport: stealth.Transport()})
	ctx := context.Background()

	_, err = c.Get(ctx, "/api/missing/", nil)
	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = c.Post(ctx, "/api/busy/", map[string]string{}, nil)
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	var out struct {
		Stat string `json:"stat"`
	}
	_, err = c.Get(ctx, "/api/review-requests/", &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Stat)
}
