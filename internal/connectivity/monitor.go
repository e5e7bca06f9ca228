// Package connectivity supplies the online/offline signal the retry manager
// listens to. There is no ambient network event to hook in a headless client,
// so reachability is probed on a ticker and edge transitions are published.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/pvictorino/supportchat/internal/bus"
	"github.com/pvictorino/supportchat/internal/transport"
	"go.uber.org/zap"
)

// DefaultProbeInterval keeps the probe cheaper than the poll loop.
const DefaultProbeInterval = 5 * time.Second

// ProbeFunc checks server reachability; transport.Client.Probe fits.
type ProbeFunc func(ctx context.Context) error

// Monitor tracks connectivity and publishes net.online / net.offline on
// transitions. The initial state is offline, so a reachable server at
// startup produces one net.online event and with it the opportunistic drain.
type Monitor struct {
	probe    ProbeFunc
	interval time.Duration
	bus      *bus.Bus
	logger   *zap.Logger

	mu     sync.Mutex
	online bool

	cancel context.CancelFunc
}

// NewMonitor creates a monitor. Pass interval <= 0 for the default.
func NewMonitor(probe ProbeFunc, interval time.Duration, b *bus.Bus, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		bus:      b,
		logger:   logger,
	}
}

// Start probes immediately and then on every tick.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.probeOnce(ctx)
		for {
			select {
			case <-ticker.C:
				m.probeOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the probe loop.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Online returns the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *Monitor) probeOnce(ctx context.Context) {
	err := m.probe(ctx)
	// A rejected request still proves the server is reachable; only
	// connectivity-class failures count as offline.
	online := err == nil || !transport.IsUnavailable(err)

	m.mu.Lock()
	changed := online != m.online
	m.online = online
	m.mu.Unlock()

	if !changed {
		return
	}
	kind := bus.KindNetOffline
	if online {
		kind = bus.KindNetOnline
	}
	m.logger.Info("connectivity changed", zap.Bool("online", online))
	m.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now()})
}
