package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// TestServer is a wrapper around httptest.Server that counts requests per path
type TestServer struct {
	*httptest.Server
	mux *http.ServeMux

	mu   sync.Mutex
	hits map[string]int
}

// NewTestServer creates a new test HTTP server
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	ts := &TestServer{
		mux:  http.NewServeMux(),
		hits: make(map[string]int),
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.hits[r.URL.Path]++
		ts.mu.Unlock()
		ts.mux.ServeHTTP(w, r)
	}))

	t.Cleanup(func() {
		ts.Server.Close()
	})

	return ts
}

// Hits returns how many requests were made for path
func (ts *TestServer) Hits(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits[path]
}

// Handle registers a handler for a specific path
func (ts *TestServer) Handle(t *testing.T, path string, handler http.Handler) {
	t.Helper()
	ts.mux.Handle(path, handler)
}

// HandleString registers a handler that returns a string response
func (ts *TestServer) HandleString(t *testing.T, path, contentType, body string) {
	t.Helper()
	ts.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	})
}

// HandleHTML registers a handler that returns HTML content
func (ts *TestServer) HandleHTML(t *testing.T, path, htmlBody string) {
	t.Helper()
	ts.HandleString(t, path, "text/html; charset=utf-8", htmlBody)
}

// Handle404 registers a handler that returns 404 Not Found
func (ts *TestServer) Handle404(t *testing.T, path string) {
	t.Helper()
	ts.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
	})
}

// Handle500 registers a handler that returns 500 Internal Server Error
func (ts *TestServer) Handle500(t *testing.T, path string) {
	t.Helper()
	ts.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	})
}
