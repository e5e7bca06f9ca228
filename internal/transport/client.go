// Package transport defines the server API consumed by the sync core and a
// REST adapter for it. Request plumbing, auth and server semantics live on
// the other side of this boundary.
package transport

import (
	"context"
	"errors"

	"github.com/pvictorino/supportchat/internal/chat"
)

// ErrUnavailable marks connectivity-class failures (refused, timed out,
// server down). Only sends failing with this class are eligible for the
// offline queue.
var ErrUnavailable = errors.New("transport unavailable")

// IsUnavailable reports whether err is a connectivity-class failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// SendRequest is the outgoing half of a message creation.
type SendRequest struct {
	Content string
	Payload chat.Payload // nil for plain text
}

// Client is the conversation API consumed by the session and retry manager.
type Client interface {
	// FetchMessages returns messages with CreatedAt strictly after the given
	// cursor, ordered ascending. A zero cursor fetches the full history.
	FetchMessages(ctx context.Context, scope string, after int64) ([]chat.Message, error)

	// SendMessage creates a message and returns the server-confirmed record.
	SendMessage(ctx context.Context, scope string, req SendRequest) (*chat.Message, error)

	// Probe checks server reachability; used by the connectivity monitor.
	Probe(ctx context.Context) error
}
