package service

import (
	"errors"
	"fmt"

	"github.com/gohl7/validator/hl7"
)

// ErrUnresolvableStructure is returned when no message structure identifier
// can be determined for a message.
var ErrUnresolvableStructure = errors.New("unresolvable message structure")

// StructureResolver determines which message structure grammar applies to a
// parsed message: the explicit structure component of the message type field
// when present, else a trigger map lookup on (message code, trigger event).
// An explicit value always wins and is never cross-checked against the map.
type StructureResolver struct {
	Triggers TriggerLookup
}

// NewStructureResolver returns a resolver backed by the given trigger map.
func NewStructureResolver(triggers TriggerLookup) *StructureResolver {
	return &StructureResolver{Triggers: triggers}
}

// Resolve returns the message structure identifier for msg. A bare "ACK"
// message type, with or without an empty trigger event, resolves to "ACK";
// any other message type without both a trigger event and an explicit
// structure is unresolvable.
func (r *StructureResolver) Resolve(msg *hl7.Message) (string, error) {
	header := msg.Header()
	if header == nil {
		return "", fmt.Errorf("%w: message has no MSH segment", ErrUnresolvableStructure)
	}

	messageType, ok := header.Field(9)
	if !ok || messageType.Absent() {
		return "", fmt.Errorf("%w: message type field is empty", ErrUnresolvableStructure)
	}

	code := header.ComponentValue(9, 1)
	trigger := header.ComponentValue(9, 2)
	structure := header.ComponentValue(9, 3)

	if structure != "" {
		return structure, nil
	}
	if code == "" {
		return "", fmt.Errorf("%w: message code component is empty", ErrUnresolvableStructure)
	}
	if trigger == "" {
		if code == "ACK" {
			return "ACK", nil
		}
		return "", fmt.Errorf("%w: message type %q has no trigger event and no explicit structure", ErrUnresolvableStructure, code)
	}

	if r.Triggers != nil {
		if s, ok := r.Triggers.Lookup(code, trigger); ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: no structure for %s^%s", ErrUnresolvableStructure, code, trigger)
}
