package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pvictorino/supportchat/internal/chat"
)

func TestFetchMessagesCursorAndAuth(t *testing.T) {
	var gotPath, gotAfter, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAfter = r.URL.Query().Get("after")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]chat.Message{
			{ID: 1, Sender: chat.RoleSupport, Content: "hi", CreatedAt: 1000},
		})
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "tok-1", time.Second)
	msgs, err := c.FetchMessages(context.Background(), "user-42", 900)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/support/conversations/user-42/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAfter != "900" {
		t.Errorf("after = %q, want 900", gotAfter)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("auth = %q", gotAuth)
	}
	if len(msgs) != 1 || msgs[0].Scope != "user-42" || msgs[0].Status != chat.StatusSent {
		t.Errorf("msgs = %+v, want scope and sent status stamped", msgs)
	}
}

func TestSendMessageReturnsConfirmedRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in chat.Message
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chat.Message{ID: 9, Sender: chat.RoleUser, Content: in.Content, CreatedAt: 4242})
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "", time.Second)
	msg, err := c.SendMessage(context.Background(), "t-7", SendRequest{Content: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID != 9 || msg.CreatedAt != 4242 || msg.Status != chat.StatusSent {
		t.Errorf("msg = %+v", msg)
	}
}

func TestErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("after") {
		case "1":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "", time.Second)

	_, err := c.FetchMessages(context.Background(), "s", 1)
	if !IsUnavailable(err) {
		t.Errorf("502 classified as %v, want unavailable", err)
	}

	_, err = c.FetchMessages(context.Background(), "s", 2)
	if err == nil || IsUnavailable(err) {
		t.Errorf("422 classified as %v, want plain failure", err)
	}

	// Connection refused is unavailable too.
	dead := NewREST("http://127.0.0.1:1", "", 200*time.Millisecond)
	if err := dead.Probe(context.Background()); !IsUnavailable(err) {
		t.Errorf("refused probe classified as %v, want unavailable", err)
	}
}
