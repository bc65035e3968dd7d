package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// ReadFile returns the content of path
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
