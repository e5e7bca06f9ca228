package chat

import (
	"fmt"
	"slices"
)

// validTransitions defines allowed delivery-status transitions.
// error -> sent is reachable only through a retry, never by re-sending.
var validTransitions = map[DeliveryStatus][]DeliveryStatus{
	StatusSending: {StatusSent, StatusError},
	StatusError:   {StatusSent},
}

// Transition attempts to move the message to a new delivery status.
// Returns an error if the transition is invalid.
func (m *Message) Transition(to DeliveryStatus) error {
	allowed := validTransitions[m.Status]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid delivery transition from %s to %s", m.Status, to)
	}
	m.Status = to
	return nil
}
