package offline

import "sync/atomic"

// Token is a soft cancellation flag. It is checked between manifests and
// between downloads; an operation already in flight always completes.
type Token struct {
	cancelled atomic.Bool
}

// Cancel marks the token cancelled
func (t *Token) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called
func (t *Token) Cancelled() bool {
	return t.cancelled.Load()
}
