// Package session owns one conversation scope end to end: the cached thread,
// the poll loop and the optimistic send pipeline. A session is created by
// whatever mounts the conversation view and lives between Open and Close;
// switching scope means closing one session and opening another.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pvictorino/supportchat/internal/bus"
	"github.com/pvictorino/supportchat/internal/cache"
	"github.com/pvictorino/supportchat/internal/chat"
	"github.com/pvictorino/supportchat/internal/transport"
	"go.uber.org/zap"
)

// DefaultPollInterval matches the reference client's 3 second delta fetch.
const DefaultPollInterval = 3 * time.Second

// Session presents a single, consistent, ordered thread for one scope while
// polling for deltas and applying optimistic sends. All thread mutations go
// through the merge-and-persist step under the session mutex.
type Session struct {
	scope    string
	store    *cache.Store
	client   transport.Client
	bus      *bus.Bus
	logger   *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	msgs    []chat.Message
	cursor  int64
	loading bool
	opened  bool
	closed  bool

	cancel  context.CancelFunc
	pollNow chan struct{}
}

// New creates a session for a scope. Pass interval <= 0 for the default.
func New(scope string, store *cache.Store, client transport.Client, b *bus.Bus, logger *zap.Logger, interval time.Duration) *Session {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Session{
		scope:    scope,
		store:    store,
		client:   client,
		bus:      b,
		logger:   logger,
		interval: interval,
		pollNow:  make(chan struct{}, 1),
	}
}

// Scope returns the user or ticket id this session is bound to.
func (s *Session) Scope() string {
	return s.scope
}

// Open loads the cached thread and starts the poll loop. If the cache was
// empty the first poll doubles as the initial backfill and Loading reports
// true until it completes.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.opened || s.closed {
		s.mu.Unlock()
		return errors.New("session already opened")
	}
	s.opened = true

	msgs, cursor, err := s.store.LoadThread(s.scope)
	if err != nil {
		// A broken cache is a cold start, never fatal.
		s.logger.Warn("cache unreadable, starting cold", zap.String("scope", s.scope), zap.Error(err))
		msgs, cursor = nil, 0
	}
	s.msgs = msgs
	s.cursor = cursor
	s.loading = len(msgs) == 0
	s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
	return nil
}

// Close stops the poll loop. In-flight requests are not aborted; their
// results are discarded when they arrive, so a late response for this scope
// can never leak into whichever scope the view shows next.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Messages returns a copy of the current ordered thread.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Loading reports whether the initial backfill is still outstanding.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Cursor returns the current poll watermark.
func (s *Session) Cursor() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// PollNow wakes the poll loop without waiting for the next tick.
func (s *Session) PollNow() {
	select {
	case s.pollNow <- struct{}{}:
	default:
	}
}

func (s *Session) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.pollOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.pollOnce(ctx)
		case <-s.pollNow:
			s.pollOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// pollOnce fetches the delta past the cursor and merges it. Fetch failures
// are swallowed: polling retries indefinitely on the next tick.
func (s *Session) pollOnce(ctx context.Context) {
	s.mu.Lock()
	cursor := s.cursor
	s.mu.Unlock()

	msgs, err := s.client.FetchMessages(ctx, s.scope, cursor)
	if err != nil {
		s.logger.Warn("poll failed", zap.String("scope", s.scope), zap.Error(err))
		return
	}
	s.applyFetch(msgs)
}

// applyFetch merges a poll result into the thread. Safe to call with results
// that raced a send or another poll: the merge is idempotent on server ids.
func (s *Session) applyFetch(incoming []chat.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	changed := false
	if len(incoming) > 0 {
		s.msgs = chat.Merge(s.msgs, incoming)
		s.advanceCursorLocked()
		s.persistLocked()
		changed = true
	}
	backfilled := s.loading
	s.loading = false
	s.mu.Unlock()

	if backfilled {
		s.publish(bus.KindThreadLoaded, s.scope)
	}
	if changed {
		s.publish(bus.KindThreadUpdated, s.scope)
	}
}

// Send appends an optimistic placeholder and dispatches the real send in the
// background. Fire-and-forget: the UI observes progress via the thread.
func (s *Session) Send(content string, payload chat.Payload) {
	content = strings.TrimSpace(content)
	if content == "" && payload == nil {
		return
	}
	display := content
	if display == "" {
		display = payload.Placeholder()
	}

	placeholder := chat.Message{
		LocalID:   uuid.NewString(),
		Scope:     s.scope,
		Sender:    chat.RoleUser,
		Content:   display,
		Payload:   payload,
		CreatedAt: time.Now().UnixMilli(),
		Status:    chat.StatusSending,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.msgs = append(s.msgs, placeholder)
	s.mu.Unlock()
	s.publish(bus.KindThreadUpdated, s.scope)

	// The send deliberately outlives Close so a user message is never
	// aborted mid-flight; a stale result is discarded by the closed check.
	go s.dispatch(placeholder, transport.SendRequest{Content: content, Payload: payload})
}

func (s *Session) dispatch(placeholder chat.Message, req transport.SendRequest) {
	confirmed, err := s.client.SendMessage(context.Background(), s.scope, req)
	if err != nil {
		s.failSend(placeholder, err)
		return
	}
	s.confirmSend(placeholder.LocalID, *confirmed)
}

// confirmSend replaces the placeholder with the server record. If a poll
// already delivered the same server id, the placeholder is dropped instead so
// the thread holds exactly one copy.
func (s *Session) confirmSend(localID string, confirmed chat.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.resolveLocked(s.indexByLocalID(localID), confirmed)
	s.mu.Unlock()
	s.publish(bus.KindThreadUpdated, s.scope)
}

func (s *Session) failSend(placeholder chat.Message, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if idx := s.indexByLocalID(placeholder.LocalID); idx >= 0 {
		_ = s.msgs[idx].Transition(chat.StatusError)
	}
	plainText := placeholder.Payload == nil
	if plainText {
		entry := cache.QueueEntry{
			LocalID:    placeholder.LocalID,
			Content:    placeholder.Content,
			EnqueuedAt: time.Now().UnixMilli(),
		}
		if qerr := s.store.AppendQueue(s.scope, entry); qerr != nil {
			s.logger.Error("failed to persist queue entry", zap.String("scope", s.scope), zap.Error(qerr))
		}
	}
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Warn("send failed",
		zap.String("scope", s.scope),
		zap.String("local_id", placeholder.LocalID),
		zap.Bool("queued", plainText),
		zap.Error(err))

	if plainText {
		s.publish(bus.KindMessageQueued, bus.QueuedNotice{Scope: s.scope, LocalID: placeholder.LocalID})
	} else {
		s.publish(bus.KindMessageFailed, bus.FailedNotice{Scope: s.scope, LocalID: placeholder.LocalID, Reason: err.Error()})
	}
	s.publish(bus.KindThreadUpdated, s.scope)
}

// ConfirmRetry reconciles a drained queue entry with its server record. The
// local copy is located by localId; if the placeholder was evicted (thread
// reloaded from an older cache write) it falls back to the oldest errored
// message with matching content. Kept for read-compatibility only: entries
// written by this code always carry the localId.
func (s *Session) ConfirmRetry(localID, content string, confirmed chat.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	idx := s.indexByLocalID(localID)
	if idx < 0 {
		for i, m := range s.msgs {
			if m.Status == chat.StatusError && m.Content == content {
				idx = i
				break
			}
		}
	}
	s.resolveLocked(idx, confirmed)
	s.mu.Unlock()
	s.publish(bus.KindThreadUpdated, s.scope)
}

// resolveLocked installs a confirmed server record over the local copy at
// idx (-1 if none), restores ordering, advances the cursor and persists.
func (s *Session) resolveLocked(idx int, confirmed chat.Message) {
	if dupe := s.indexByID(confirmed.ID); dupe >= 0 {
		if idx >= 0 && idx != dupe {
			s.msgs = append(s.msgs[:idx], s.msgs[idx+1:]...)
		}
	} else if idx >= 0 {
		s.msgs[idx] = confirmed
	} else {
		s.msgs = append(s.msgs, confirmed)
	}
	s.msgs = chat.Merge(s.msgs, nil)
	s.advanceCursorLocked()
	s.persistLocked()
}

// advanceCursorLocked recomputes the watermark over the full thread, never
// over a delta alone, so a racing update cannot move it backward.
func (s *Session) advanceCursorLocked() {
	if c := chat.Cursor(s.msgs); c > s.cursor {
		s.cursor = c
	}
}

func (s *Session) persistLocked() {
	if err := s.store.SaveThread(s.scope, s.msgs, s.cursor); err != nil {
		s.logger.Error("failed to persist thread", zap.String("scope", s.scope), zap.Error(err))
	}
}

func (s *Session) publish(kind string, payload any) {
	s.bus.Publish(bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

func (s *Session) indexByLocalID(localID string) int {
	for i, m := range s.msgs {
		if m.LocalID != "" && m.LocalID == localID {
			return i
		}
	}
	return -1
}

func (s *Session) indexByID(id int64) int {
	if id == 0 {
		return -1
	}
	for i, m := range s.msgs {
		if m.ID == id {
			return i
		}
	}
	return -1
}
