package chat

import (
	"encoding/json"
	"testing"
)

func TestMessagePayloadRoundTrip(t *testing.T) {
	m := Message{
		ID:        7,
		Scope:     "user-42",
		Sender:    RoleSupport,
		Content:   "[order]",
		Payload:   CardPayload{Kind: CardOrder, Title: "Order #991", Ref: "991"},
		CreatedAt: 5000,
		Status:    StatusSent,
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}

	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}

	card, ok := got.Payload.(CardPayload)
	if !ok {
		t.Fatalf("payload decoded as %T, want CardPayload", got.Payload)
	}
	if card.Kind != CardOrder || card.Ref != "991" {
		t.Errorf("card = %+v, want order snapshot preserved", card)
	}
}

func TestMessageUnknownPayloadType(t *testing.T) {
	raw := `{"id":1,"scope":"s","sender":"user","content":"","payload":{"type":"hologram","data":{}},"createdAt":1}`
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err == nil {
		t.Error("unknown payload type decoded without error")
	}
}

func TestPlaceholders(t *testing.T) {
	cases := []struct {
		p    Payload
		want string
	}{
		{ImagePayload{URL: "u"}, "[image]"},
		{VideoPayload{URL: "u"}, "[video]"},
		{CardPayload{Kind: CardProduct}, "[product]"},
		{CardPayload{Kind: CardTemplate}, "[template]"},
		{QuickButtonsPayload{}, "[buttons]"},
	}
	for _, c := range cases {
		if got := c.p.Placeholder(); got != c.want {
			t.Errorf("%T.Placeholder() = %q, want %q", c.p, got, c.want)
		}
	}
}
