package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pvictorino/supportchat/internal/chat"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestThreadRoundTrip(t *testing.T) {
	s := testStore(t)

	msgs := []chat.Message{
		{ID: 1, Scope: "u1", Sender: chat.RoleSupport, Content: "hello", CreatedAt: 1000, Status: chat.StatusSent},
		{LocalID: "x", Scope: "u1", Sender: chat.RoleUser, Content: "bye", CreatedAt: 2000, Status: chat.StatusError},
	}
	if err := s.SaveThread("u1", msgs, 1000); err != nil {
		t.Fatal(err)
	}

	got, cursor, err := s.LoadThread("u1")
	if err != nil {
		t.Fatal(err)
	}
	if cursor != 1000 {
		t.Errorf("cursor = %d, want 1000", cursor)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].LocalID != "x" {
		t.Errorf("thread = %+v", got)
	}
	if got[1].Status != chat.StatusError {
		t.Errorf("status = %q, want error preserved across reload", got[1].Status)
	}
}

func TestLoadThreadColdStart(t *testing.T) {
	s := testStore(t)

	msgs, cursor, err := s.LoadThread("nobody")
	if err != nil {
		t.Fatal(err)
	}
	if msgs != nil || cursor != 0 {
		t.Errorf("got (%v, %d), want empty cold start", msgs, cursor)
	}
}

func TestLoadThreadCorruptReadsAsEmpty(t *testing.T) {
	s := testStore(t)

	if err := s.put("chat_messages:u1", []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	msgs, cursor, err := s.LoadThread("u1")
	if err != nil {
		t.Fatalf("corrupt cache must never be fatal: %v", err)
	}
	if msgs != nil || cursor != 0 {
		t.Errorf("got (%v, %d), want cold start", msgs, cursor)
	}
}

func TestQueueAppendRemovePreservesOrder(t *testing.T) {
	s := testStore(t)
	now := time.Now().UnixMilli()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.AppendQueue("u1", QueueEntry{LocalID: id, Content: "m-" + id, EnqueuedAt: now}); err != nil {
			t.Fatal(err)
		}
	}
	// Duplicate localId is a no-op.
	if err := s.AppendQueue("u1", QueueEntry{LocalID: "b", Content: "dup"}); err != nil {
		t.Fatal(err)
	}

	if err := s.RemoveQueue("u1", "b"); err != nil {
		t.Fatal(err)
	}

	entries, err := s.LoadQueue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].LocalID != "a" || entries[1].LocalID != "c" {
		t.Errorf("queue = %+v, want [a c]", entries)
	}
}

func TestQueueScopesAreIndependent(t *testing.T) {
	s := testStore(t)

	if err := s.AppendQueue("u1", QueueEntry{LocalID: "a", Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	entries, err := s.LoadQueue("u2")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scope u2 sees %d entries, want 0", len(entries))
	}
}
