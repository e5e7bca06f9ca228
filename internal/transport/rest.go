package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pvictorino/supportchat/internal/chat"
)

// REST talks to the back-office support API over HTTP. The auth token rides
// on every request; the server rejects unauthenticated calls upstream.
type REST struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewREST creates a REST client for the given API root.
func NewREST(baseURL, token string, timeout time.Duration) *REST {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &REST{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (r *REST) messagesURL(scope string) string {
	return r.baseURL + "/support/conversations/" + url.PathEscape(scope) + "/messages"
}

// FetchMessages implements Client.
func (r *REST) FetchMessages(ctx context.Context, scope string, after int64) ([]chat.Message, error) {
	u := r.messagesURL(scope)
	if after > 0 {
		u += "?after=" + strconv.FormatInt(after, 10)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var msgs []chat.Message
	if err := r.do(req, &msgs); err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	for i := range msgs {
		msgs[i].Scope = scope
		msgs[i].Status = chat.StatusSent
	}
	return msgs, nil
}

// SendMessage implements Client.
func (r *REST) SendMessage(ctx context.Context, scope string, sreq SendRequest) (*chat.Message, error) {
	body, err := json.Marshal(chat.Message{Content: sreq.Content, Payload: sreq.Payload})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.messagesURL(scope), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var msg chat.Message
	if err := r.do(req, &msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	msg.Scope = scope
	msg.Status = chat.StatusSent
	msg.LocalID = ""
	return &msg, nil
}

// Probe implements Client.
func (r *REST) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	return r.do(req, nil)
}

func (r *REST) do(req *http.Request, out any) error {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: server returned %s", ErrUnavailable, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
