package cache

import "encoding/json"

// QueueEntry is one pending retry: a plain-text send that failed transport.
// A queue entry exists iff the corresponding message is in error state and
// carries no structured payload.
type QueueEntry struct {
	LocalID    string `json:"localId"`
	Content    string `json:"content"`
	EnqueuedAt int64  `json:"enqueuedAt"`
}

// LoadQueue reads the persisted offline queue for a scope, oldest first.
// A missing or unreadable entry is an empty queue.
func (s *Store) LoadQueue(scope string) ([]QueueEntry, error) {
	raw, err := s.get(queueKeyPrefix + scope)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	var entries []QueueEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

// SaveQueue replaces the persisted queue for a scope.
func (s *Store) SaveQueue(scope string, entries []QueueEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.put(queueKeyPrefix+scope, raw)
}

// AppendQueue adds one entry to the back of the scope's queue. Entries with a
// localId already present are ignored so a double failure can't double-queue.
func (s *Store) AppendQueue(scope string, entry QueueEntry) error {
	entries, err := s.LoadQueue(scope)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.LocalID == entry.LocalID {
			return nil
		}
	}
	return s.SaveQueue(scope, append(entries, entry))
}

// RemoveQueue deletes the entry with the given localId, preserving order.
// Called per entry as the drain succeeds, so a crash mid-drain loses at most
// the in-flight entry.
func (s *Store) RemoveQueue(scope, localID string) error {
	entries, err := s.LoadQueue(scope)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.LocalID != localID {
			kept = append(kept, e)
		}
	}
	return s.SaveQueue(scope, kept)
}
