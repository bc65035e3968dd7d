// Package connectivity turns platform network signals into the
// GoOffline/GoOnline calls of the offline controller.
package connectivity

import (
	"context"

	"github.com/quantmind-br/offsync/internal/domain"
)

// Listener receives "went offline" and "came back online" notifications
type Listener interface {
	GoOffline(ctx context.Context) error
	GoOnline(ctx context.Context) bool
}

// Static is a fixed connectivity signal
type Static bool

// Online implements domain.Connectivity
func (s Static) Online() bool { return bool(s) }

type combined []domain.Connectivity

// All is online only while every signal is online
func All(signals ...domain.Connectivity) domain.Connectivity {
	return combined(signals)
}

func (c combined) Online() bool {
	for _, s := range c {
		if s != nil && !s.Online() {
			return false
		}
	}
	return true
}

// notify delivers a transition to l
func notify(ctx context.Context, l Listener, online bool) error {
	if l == nil {
		return nil
	}
	if online {
		l.GoOnline(ctx)
		return nil
	}
	return l.GoOffline(ctx)
}
