package cache

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pvictorino/supportchat/internal/chat"
)

// Key layout mirrors the browser-client localStorage namespace so the cache
// stays an opaque blob to everything outside this package.
const (
	threadKeyPrefix = "chat_messages:"
	queueKeyPrefix  = "offline_queue:"
)

type threadBlob struct {
	Messages []chat.Message `json:"messages"`
	Cursor   int64          `json:"cursor"`
}

// LoadThread reads the cached thread for a scope. A missing or unreadable
// entry is a cold start, not an error: the caller gets an empty thread and a
// zero cursor and re-fetches from the server.
func (s *Store) LoadThread(scope string) ([]chat.Message, int64, error) {
	raw, err := s.get(threadKeyPrefix + scope)
	if err != nil {
		return nil, 0, err
	}
	if raw == nil {
		return nil, 0, nil
	}
	var blob threadBlob
	if err := json.Unmarshal(raw, &blob); err != nil {
		// Corrupt cache content reads as empty.
		return nil, 0, nil
	}
	return blob.Messages, blob.Cursor, nil
}

// SaveThread writes the thread and cursor for a scope in one entry.
func (s *Store) SaveThread(scope string, msgs []chat.Message, cursor int64) error {
	raw, err := json.Marshal(threadBlob{Messages: msgs, Cursor: cursor})
	if err != nil {
		return err
	}
	return s.put(threadKeyPrefix+scope, raw)
}

func (s *Store) get(key string) ([]byte, error) {
	var raw []byte
	err := s.QueryRow(`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Store) put(key string, raw []byte) error {
	now := time.Now().UnixMilli()
	_, err := s.Exec(`
		INSERT INTO cache_entries (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, raw, now)
	return err
}
