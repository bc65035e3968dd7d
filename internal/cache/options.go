package cache

import (
	"time"

	"github.com/quantmind-br/offsync/internal/domain"
)

// Ensure BadgerCache implements domain.CaptureStore
var _ domain.CaptureStore = (*BadgerCache)(nil)

// entry is the stored form of a captured resource
type entry struct {
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	CapturedAt  time.Time `json:"captured_at"`
}

func entryFromResource(res *domain.Resource) entry {
	capturedAt := res.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}
	return entry{
		URL:         res.URL,
		ContentType: res.ContentType,
		Body:        res.Body,
		CapturedAt:  capturedAt,
	}
}

func (e entry) resource() *domain.Resource {
	return &domain.Resource{
		URL:         e.URL,
		ContentType: e.ContentType,
		Body:        e.Body,
		CapturedAt:  e.CapturedAt,
	}
}

// Options contains cache configuration options
type Options struct {
	Directory string
	InMemory  bool
	Logger    bool
	// GCInterval controls value log garbage collection; zero disables it
	GCInterval time.Duration
}

// DefaultOptions returns default cache options
func DefaultOptions() Options {
	return Options{
		GCInterval: 5 * time.Minute,
	}
}
