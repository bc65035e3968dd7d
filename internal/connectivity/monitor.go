package connectivity

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

// DefaultInterval is the probe interval used when none is configured
const DefaultInterval = 15 * time.Second

// Prober issues a lightweight request against the probe URL
type Prober interface {
	Head(ctx context.Context, url string) (*domain.Response, error)
}

// MonitorOptions configures a Monitor
type MonitorOptions struct {
	Prober   Prober
	URL      string
	Interval time.Duration
	Logger   *utils.Logger
}

// Monitor probes a URL periodically. A successful HEAD means the platform
// is online.
type Monitor struct {
	prober   Prober
	url      string
	interval time.Duration
	logger   *utils.Logger
	online   atomic.Bool
}

// NewMonitor creates a Monitor that starts out online
func NewMonitor(opts MonitorOptions) *Monitor {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	m := &Monitor{
		prober:   opts.Prober,
		url:      opts.URL,
		interval: interval,
		logger:   logger.WithComponent("connectivity").WithURL(opts.URL),
	}
	m.online.Store(true)
	return m
}

// Online implements domain.Connectivity
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Probe checks the URL once and records the result. It reports whether
// the platform is online and whether that changed.
func (m *Monitor) Probe(ctx context.Context) (online, changed bool) {
	_, err := m.prober.Head(ctx, m.url)
	if err != nil && ctx.Err() != nil {
		// shutting down; keep the last known state
		return m.Online(), false
	}

	online = err == nil
	previous := m.online.Swap(online)
	if previous != online {
		event := m.logger.Info()
		if err != nil {
			event = m.logger.Warn().Err(err)
		}
		event.Bool("online", online).Msg("Connectivity changed")
	}
	return online, previous != online
}

// Run probes until ctx is done and forwards every transition to l. An
// unreachable platform on the first probe is forwarded even when an
// earlier Probe already recorded it.
func (m *Monitor) Run(ctx context.Context, l Listener) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for first := true; ; first = false {
		if online, changed := m.Probe(ctx); changed || (first && !online && ctx.Err() == nil) {
			if err := notify(ctx, l, online); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Error().Err(err).Msg("Going offline failed")
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
