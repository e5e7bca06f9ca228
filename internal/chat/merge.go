package chat

import "sort"

// Merge inserts incoming messages into the ordered thread without duplication.
// The dedup key is the server id: an incoming message is dropped if a message
// with the same id is already held, and unconfirmed incoming messages are
// ignored (placeholders enter the thread through the send pipeline, which
// replaces them by localId). The result is stably sorted by CreatedAt.
//
// Merge is pure and idempotent: Merge(Merge(a, b), b) == Merge(a, b).
func Merge(existing, incoming []Message) []Message {
	seen := make(map[int64]struct{}, len(existing))
	for _, m := range existing {
		if m.Confirmed() {
			seen[m.ID] = struct{}{}
		}
	}

	out := make([]Message, len(existing), len(existing)+len(incoming))
	copy(out, existing)

	for _, m := range incoming {
		if !m.Confirmed() {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out
}

// Cursor returns the newest confirmed CreatedAt in the thread, or 0 when no
// confirmed message has been observed. Placeholder timestamps come from the
// client clock and never advance the cursor.
func Cursor(msgs []Message) int64 {
	var max int64
	for _, m := range msgs {
		if m.Confirmed() && m.CreatedAt > max {
			max = m.CreatedAt
		}
	}
	return max
}
