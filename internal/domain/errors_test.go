package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSentinelErrors verifies sentinel errors are defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrCacheMiss", ErrCacheMiss, "cache miss"},
		{"ErrRateLimited", ErrRateLimited, "rate limited"},
		{"ErrTimeout", ErrTimeout, "timeout"},
		{"ErrInvalidURL", ErrInvalidURL, "invalid URL"},
		{"ErrPermissionDenied", ErrPermissionDenied, "permission denied"},
		{"ErrOffline", ErrOffline, "offline"},
		{"ErrSyncInProgress", ErrSyncInProgress, "already in progress"},
		{"ErrSyncCancelled", ErrSyncCancelled, "cancelled"},
		{"ErrInvalidManifest", ErrInvalidManifest, "invalid manifest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.Contains(t, tt.err.Error(), tt.check)
		})
	}
}

// TestFetchError tests FetchError methods
func TestFetchError(t *testing.T) {
	t.Run("Error with status code", func(t *testing.T) {
		err := NewFetchError("https://example.com", 503, errors.New("connection failed"))

		assert.Contains(t, err.Error(), "https://example.com")
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "connection failed")
	})

	t.Run("Error without status code", func(t *testing.T) {
		err := &FetchError{URL: "https://example.com", Err: errors.New("connection refused")}

		assert.Contains(t, err.Error(), "connection refused")
		assert.NotContains(t, err.Error(), "status")
	})
}

// TestRetryableError tests RetryableError formatting
func TestRetryableError(t *testing.T) {
	withDelay := &RetryableError{Err: errors.New("too many requests"), RetryAfter: 120}
	assert.Contains(t, withDelay.Error(), "retry after 120s")

	withoutDelay := &RetryableError{Err: errors.New("gateway timeout")}
	assert.Contains(t, withoutDelay.Error(), "retryable error")
	assert.NotContains(t, withoutDelay.Error(), "retry after")
}

// TestIsRetryable tests the IsRetryable function
func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"RetryableError", &RetryableError{Err: errors.New("error")}, true},
		{"429", &FetchError{StatusCode: 429, Err: errors.New("x")}, true},
		{"502", &FetchError{StatusCode: 502, Err: errors.New("x")}, true},
		{"503", &FetchError{StatusCode: 503, Err: errors.New("x")}, true},
		{"504", &FetchError{StatusCode: 504, Err: errors.New("x")}, true},
		{"520 cloudflare", &FetchError{StatusCode: 520, Err: errors.New("x")}, true},
		{"530 cloudflare", &FetchError{StatusCode: 530, Err: errors.New("x")}, true},
		{"404", &FetchError{StatusCode: 404, Err: errors.New("x")}, false},
		{"500", &FetchError{StatusCode: 500, Err: errors.New("x")}, false},
		{"ErrRateLimited", ErrRateLimited, true},
		{"wrapped ErrTimeout", fmt.Errorf("probe: %w", ErrTimeout), true},
		{"generic", errors.New("some error"), false},
		{"ErrPermissionDenied", ErrPermissionDenied, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(tt.err))
		})
	}
}

// TestValidationError tests ValidationError methods
func TestValidationError(t *testing.T) {
	err := NewValidationError("site.root_url", "must be an absolute URL")

	assert.Equal(t, "site.root_url", err.Field)
	assert.Contains(t, err.Error(), "validation error for site.root_url")
}

func TestErrorWrapping(t *testing.T) {
	base := errors.New("base")

	t.Run("FetchError", func(t *testing.T) {
		assert.ErrorIs(t, &FetchError{URL: "http://example.com", Err: base}, base)
	})

	t.Run("RetryableError", func(t *testing.T) {
		assert.ErrorIs(t, &RetryableError{Err: base}, base)
	})

	t.Run("CaptureError", func(t *testing.T) {
		err := &CaptureError{URL: "/a", Err: base}
		assert.ErrorIs(t, err, base)
		assert.Contains(t, err.Error(), "capture failed for /a")
	})

	t.Run("ManifestError exposes inner FetchError", func(t *testing.T) {
		err := &ManifestError{URL: "/m", Err: &FetchError{URL: "/m", StatusCode: 404, Err: base}}

		var fetchErr *FetchError
		assert.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, 404, fetchErr.StatusCode)
		assert.Contains(t, err.Error(), "manifest /m")
	})
}
