// Package retry replays queued text sends once connectivity returns.
package retry

import (
	"context"
	"time"

	"github.com/pvictorino/supportchat/internal/bus"
	"github.com/pvictorino/supportchat/internal/cache"
	"github.com/pvictorino/supportchat/internal/chat"
	"github.com/pvictorino/supportchat/internal/transport"
	"go.uber.org/zap"
)

// Target is the open conversation a drain reconciles into.
type Target interface {
	Scope() string
	ConfirmRetry(localID, content string, confirmed chat.Message)
	PollNow()
}

// Manager drains the persisted offline queue. Drains run strictly
// sequentially: queued entries are user utterances and their order matters.
type Manager struct {
	store  *cache.Store
	client transport.Client
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
}

// NewManager creates a retry manager.
func NewManager(store *cache.Store, client transport.Client, b *bus.Bus, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		client: client,
		bus:    b,
		logger: logger,
	}
}

// Start subscribes to online transitions and drains the target's queue on
// each one.
func (m *Manager) Start(ctx context.Context, target Target) {
	ctx, m.cancel = context.WithCancel(ctx)
	ch, unsub := m.bus.Subscribe(bus.KindNetOnline, 8)

	go func() {
		defer unsub()
		for {
			select {
			case <-ch:
				m.Drain(ctx, target)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the online watcher.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Drain replays the queue for the target's scope, oldest first. Each entry is
// removed as soon as its resend succeeds, so a crash mid-drain loses at most
// the in-flight entry. A failed entry stays queued and the loop moves on.
// Returns the number of entries that went through.
func (m *Manager) Drain(ctx context.Context, target Target) int {
	scope := target.Scope()
	entries, err := m.store.LoadQueue(scope)
	if err != nil {
		m.logger.Error("failed to read offline queue", zap.String("scope", scope), zap.Error(err))
		return 0
	}
	if len(entries) == 0 {
		return 0
	}

	succeeded := 0
	for _, entry := range entries {
		confirmed, err := m.client.SendMessage(ctx, scope, transport.SendRequest{Content: entry.Content})
		if err != nil {
			m.logger.Warn("retry send failed, keeping entry",
				zap.String("scope", scope),
				zap.String("local_id", entry.LocalID),
				zap.Error(err))
			continue
		}
		if err := m.store.RemoveQueue(scope, entry.LocalID); err != nil {
			m.logger.Error("failed to remove drained entry", zap.String("local_id", entry.LocalID), zap.Error(err))
		}
		target.ConfirmRetry(entry.LocalID, entry.Content, *confirmed)
		succeeded++
	}

	m.bus.Publish(bus.Event{
		Kind:      bus.KindQueueDrained,
		Timestamp: time.Now(),
		Payload: bus.DrainReport{
			Scope:     scope,
			Succeeded: succeeded,
			Remaining: len(entries) - succeeded,
		},
	})

	if succeeded > 0 {
		// Retries have server-side effects; one out-of-band poll picks up
		// anything they produced.
		target.PollNow()
	}
	return succeeded
}
