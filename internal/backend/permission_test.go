package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticPolicies(t *testing.T) {
	ctx := context.Background()

	allowed, err := AllowAll{}.Allowed(ctx)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = DenyAll{}.Allowed(ctx)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestConsentFile(t *testing.T) {
	ctx := context.Background()
	policy := NewConsentFile(filepath.Join(t.TempDir(), "nested", "consent"))

	allowed, err := policy.Allowed(ctx)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, policy.Grant())
	allowed, err = policy.Allowed(ctx)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.FileExists(t, policy.Path())

	require.NoError(t, policy.Revoke())
	require.NoError(t, policy.Revoke(), "revoking twice is fine")
	allowed, err = policy.Allowed(ctx)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestConsentFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConsentFile(filepath.Join(t.TempDir(), "consent")).Allowed(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
