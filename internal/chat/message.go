package chat

import (
	"encoding/json"
	"fmt"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser    Role = "user"
	RoleSupport Role = "support"
	RoleSystem  Role = "system"
)

// DeliveryStatus is the client-local delivery state of a message.
// It is never sent to the server.
type DeliveryStatus string

const (
	StatusSending DeliveryStatus = "sending"
	StatusSent    DeliveryStatus = "sent"
	StatusError   DeliveryStatus = "error"
)

// Message is one unit of conversation content.
type Message struct {
	ID        int64          // server-assigned; 0 until confirmed
	LocalID   string         // client-assigned, only on locally created messages
	Scope     string         // user or ticket id owning the thread
	Sender    Role
	Content   string
	Payload   Payload // nil for plain text
	CreatedAt int64   // unix milliseconds; client clock while sending
	Status    DeliveryStatus
}

// Confirmed reports whether the server has acknowledged this message.
func (m *Message) Confirmed() bool {
	return m.ID != 0
}

type messageJSON struct {
	ID        int64            `json:"id"`
	LocalID   string           `json:"localId,omitempty"`
	Scope     string           `json:"scope"`
	Sender    Role             `json:"sender"`
	Content   string           `json:"content"`
	Payload   *payloadEnvelope `json:"payload,omitempty"`
	CreatedAt int64            `json:"createdAt"`
	Status    DeliveryStatus   `json:"status,omitempty"`
}

// MarshalJSON wraps the payload in a type-tagged envelope.
func (m Message) MarshalJSON() ([]byte, error) {
	mj := messageJSON{
		ID:        m.ID,
		LocalID:   m.LocalID,
		Scope:     m.Scope,
		Sender:    m.Sender,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Status:    m.Status,
	}
	if m.Payload != nil {
		env, err := wrapPayload(m.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		mj.Payload = env
	}
	return json.Marshal(mj)
}

// UnmarshalJSON decodes the type-tagged payload envelope back into the union.
func (m *Message) UnmarshalJSON(data []byte) error {
	var mj messageJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	m.ID = mj.ID
	m.LocalID = mj.LocalID
	m.Scope = mj.Scope
	m.Sender = mj.Sender
	m.Content = mj.Content
	m.CreatedAt = mj.CreatedAt
	m.Status = mj.Status
	m.Payload = nil
	if mj.Payload != nil {
		p, err := unwrapPayload(mj.Payload)
		if err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		m.Payload = p
	}
	return nil
}
