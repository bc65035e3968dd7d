package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/quantmind-br/offsync/internal/cache"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/stretchr/testify/require"
)

// NewBadgerCache creates an in-memory BadgerDB capture store for testing
func NewBadgerCache(t *testing.T) *cache.BadgerCache {
	t.Helper()

	c, err := cache.NewBadgerCache(cache.Options{
		InMemory: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		c.Close()
	})

	return c
}

// NewResource creates a captured resource
func NewResource(url, contentType, body string) *domain.Resource {
	return &domain.Resource{
		URL:         url,
		ContentType: contentType,
		Body:        []byte(body),
		CapturedAt:  time.Now(),
	}
}

// PutResources stores every resource in store
func PutResources(t *testing.T, store domain.CaptureStore, resources ...*domain.Resource) {
	t.Helper()

	for _, res := range resources {
		require.NoError(t, store.Put(context.Background(), res))
	}
}

// VerifyCaptured verifies that url resolves to body in store
func VerifyCaptured(t *testing.T, store domain.CaptureStore, url, body string) {
	t.Helper()

	res, err := store.Get(context.Background(), url)
	require.NoError(t, err, "expected %s to be captured", url)
	require.Equal(t, body, string(res.Body))
}
