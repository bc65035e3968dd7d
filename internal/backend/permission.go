package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PermissionPolicy decides whether resources may be stored locally
type PermissionPolicy interface {
	Allowed(ctx context.Context) (bool, error)
}

// AllowAll grants local storage unconditionally
type AllowAll struct{}

// Allowed implements PermissionPolicy
func (AllowAll) Allowed(context.Context) (bool, error) { return true, nil }

// DenyAll refuses local storage
type DenyAll struct{}

// Allowed implements PermissionPolicy
func (DenyAll) Allowed(context.Context) (bool, error) { return false, nil }

// ConsentFile grants local storage once the user has recorded consent in
// a marker file
type ConsentFile struct {
	path string
}

// NewConsentFile creates a policy backed by the marker at path
func NewConsentFile(path string) *ConsentFile {
	return &ConsentFile{path: path}
}

// Path returns the marker file location
func (c *ConsentFile) Path() string {
	return c.path
}

// Allowed reports whether the marker exists
func (c *ConsentFile) Allowed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(c.path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to check consent: %w", err)
	}
}

// Grant records consent
func (c *ConsentFile) Grant() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create consent directory: %w", err)
	}
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(c.path, []byte(stamp), 0600); err != nil {
		return fmt.Errorf("failed to write consent: %w", err)
	}
	return nil
}

// Revoke removes recorded consent
func (c *ConsentFile) Revoke() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to revoke consent: %w", err)
	}
	return nil
}
