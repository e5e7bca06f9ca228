package chat

import (
	"reflect"
	"testing"
)

func confirmed(id, createdAt int64, content string) Message {
	return Message{ID: id, Content: content, CreatedAt: createdAt, Status: StatusSent}
}

func TestMergeDedupesByServerID(t *testing.T) {
	existing := []Message{confirmed(1, 1000, "one"), confirmed(2, 2000, "two")}
	incoming := []Message{confirmed(2, 2000, "two"), confirmed(3, 3000, "three")}

	out := Merge(existing, incoming)
	if len(out) != 3 {
		t.Fatalf("got %d messages, want 3", len(out))
	}
	for i, want := range []int64{1, 2, 3} {
		if out[i].ID != want {
			t.Errorf("out[%d].ID = %d, want %d", i, out[i].ID, want)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	existing := []Message{confirmed(1, 1000, "a")}
	incoming := []Message{confirmed(2, 500, "b"), confirmed(3, 1500, "c")}

	once := Merge(existing, incoming)
	twice := Merge(once, incoming)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("merge not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeKeepsAscendingOrder(t *testing.T) {
	existing := []Message{confirmed(5, 5000, "e"), confirmed(1, 1000, "a")}
	incoming := []Message{confirmed(3, 3000, "c"), confirmed(2, 2000, "b")}

	out := Merge(existing, incoming)
	for i := 1; i < len(out); i++ {
		if out[i].CreatedAt < out[i-1].CreatedAt {
			t.Fatalf("thread not sorted at %d: %+v", i, out)
		}
	}
}

func TestMergeLeavesPlaceholdersAlone(t *testing.T) {
	placeholder := Message{LocalID: "x", Content: "hi", CreatedAt: 2000, Status: StatusSending}
	other := Message{LocalID: "y", Content: "hi", CreatedAt: 2100, Status: StatusSending}
	existing := []Message{confirmed(1, 1000, "a"), placeholder, other}

	// Two unconfirmed messages share ID 0; they must not dedupe each other,
	// and unconfirmed incoming entries are ignored entirely.
	out := Merge(existing, []Message{{LocalID: "z", CreatedAt: 2200, Status: StatusSending}})
	if len(out) != 3 {
		t.Fatalf("got %d messages, want 3", len(out))
	}
	if out[1].LocalID != "x" || out[2].LocalID != "y" {
		t.Errorf("placeholders disturbed: %+v", out)
	}
}

func TestMergeStableForEqualTimestamps(t *testing.T) {
	existing := []Message{confirmed(1, 1000, "first")}
	incoming := []Message{confirmed(2, 1000, "second"), confirmed(3, 1000, "third")}

	out := Merge(existing, incoming)
	for i, want := range []int64{1, 2, 3} {
		if out[i].ID != want {
			t.Errorf("out[%d].ID = %d, want %d (stable sort)", i, out[i].ID, want)
		}
	}
}

func TestCursorIgnoresUnconfirmed(t *testing.T) {
	msgs := []Message{
		confirmed(1, 1000, "a"),
		{LocalID: "x", Content: "pending", CreatedAt: 9999, Status: StatusSending},
		confirmed(2, 2000, "b"),
	}
	if got := Cursor(msgs); got != 2000 {
		t.Errorf("Cursor = %d, want 2000 (placeholder clock must not advance it)", got)
	}
	if got := Cursor(nil); got != 0 {
		t.Errorf("Cursor(nil) = %d, want 0", got)
	}
}

func TestTransitionTable(t *testing.T) {
	m := Message{Status: StatusSending}
	if err := m.Transition(StatusSent); err != nil {
		t.Fatalf("sending->sent: %v", err)
	}
	if err := m.Transition(StatusError); err == nil {
		t.Error("sent->error allowed, want rejection")
	}

	m = Message{Status: StatusError}
	if err := m.Transition(StatusSending); err == nil {
		t.Error("error->sending allowed, want rejection (retry must not re-run the pipeline)")
	}
	if err := m.Transition(StatusSent); err != nil {
		t.Fatalf("error->sent: %v", err)
	}
}
