package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss indicates the resource is not in the local store
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited indicates rate limiting was encountered
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")

	// ErrInvalidURL indicates an invalid URL was provided
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPermissionDenied indicates local storage permission was not granted
	ErrPermissionDenied = errors.New("local storage permission denied")

	// ErrOffline indicates a write was rejected because the application is offline
	ErrOffline = errors.New("offline: request rejected")

	// ErrSyncInProgress indicates a synchronization pass is already running
	ErrSyncInProgress = errors.New("synchronization already in progress")

	// ErrSyncCancelled indicates the pass was halted by going back online
	ErrSyncCancelled = errors.New("synchronization cancelled")

	// ErrInvalidManifest indicates a manifest document could not be used
	ErrInvalidManifest = errors.New("invalid manifest")
)

// FetchError represents an error during fetching
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err        error
	RetryAfter int // Seconds to wait before retry, 0 if unknown
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("retryable error (retry after %ds): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.StatusCode {
		case 429, 503, 502, 504:
			return true
		}
		// Cloudflare origin errors
		if fetchErr.StatusCode >= 520 && fetchErr.StatusCode <= 530 {
			return true
		}
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// CaptureError represents a failed capture of a single resource
type CaptureError struct {
	URL string
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture failed for %s: %v", e.URL, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// ManifestError represents a failed manifest list or manifest fetch
type ManifestError struct {
	URL string
	Err error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.URL, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
