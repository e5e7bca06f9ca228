package chat

import (
	"encoding/json"
	"fmt"
)

// ContentType discriminates the structured payload variants.
type ContentType string

const (
	ContentText         ContentType = "text"
	ContentImage        ContentType = "image"
	ContentVideo        ContentType = "video"
	ContentCard         ContentType = "card"
	ContentQuickButtons ContentType = "quick_buttons"
)

// Payload is structured, non-text message content. Payloads are snapshots
// taken at send time and are never revalidated against live data.
type Payload interface {
	ContentType() ContentType
	// Placeholder is the human-readable stand-in shown when the message
	// body is empty, so the thread never renders a blank bubble.
	Placeholder() string
}

// ImagePayload carries an uploaded image attachment URL.
type ImagePayload struct {
	URL string `json:"url"`
}

func (ImagePayload) ContentType() ContentType { return ContentImage }
func (ImagePayload) Placeholder() string      { return "[image]" }

// VideoPayload carries an uploaded video attachment URL.
type VideoPayload struct {
	URL string `json:"url"`
}

func (VideoPayload) ContentType() ContentType { return ContentVideo }
func (VideoPayload) Placeholder() string      { return "[video]" }

// CardKind distinguishes the card variants a merchant can push into a chat.
type CardKind string

const (
	CardProduct  CardKind = "product"
	CardOrder    CardKind = "order"
	CardTemplate CardKind = "template"
)

// CardPayload is a point-in-time snapshot of a product, order or template.
type CardPayload struct {
	Kind     CardKind `json:"kind"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Ref      string   `json:"ref,omitempty"`
}

func (CardPayload) ContentType() ContentType { return ContentCard }

func (c CardPayload) Placeholder() string {
	switch c.Kind {
	case CardProduct:
		return "[product]"
	case CardOrder:
		return "[order]"
	case CardTemplate:
		return "[template]"
	}
	return "[card]"
}

// QuickButton is a single tappable reply option.
type QuickButton struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// QuickButtonsPayload offers the customer a set of canned replies.
type QuickButtonsPayload struct {
	Buttons []QuickButton `json:"buttons"`
}

func (QuickButtonsPayload) ContentType() ContentType { return ContentQuickButtons }
func (QuickButtonsPayload) Placeholder() string      { return "[buttons]" }

// payloadEnvelope is the wire/cache form: {"type": ..., "data": ...}.
type payloadEnvelope struct {
	Type ContentType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

func wrapPayload(p Payload) (*payloadEnvelope, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return &payloadEnvelope{Type: p.ContentType(), Data: data}, nil
}

func unwrapPayload(env *payloadEnvelope) (Payload, error) {
	switch env.Type {
	case ContentImage:
		var p ImagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ContentVideo:
		var p VideoPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ContentCard:
		var p CardPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case ContentQuickButtons:
		var p QuickButtonsPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown payload type %q", env.Type)
}
