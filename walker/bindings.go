package walker

import (
	hl7validator "github.com/gohl7/validator"
)

// Leaf is one terminal value reached during a segment walk, with its full
// coordinate and resolved typing. The four leaf validation layers consume
// leaves independently.
type Leaf struct {
	// Location is the leaf's coordinate in the message.
	Location hl7validator.Location

	// Value is the raw leaf string, escape sequences intact.
	Value string

	// Type is the resolved primitive data type name.
	Type string

	// Table is the associated HL7/User table identifier, or "".
	Table string

	// Owner is the data type whose slot this leaf fills. For a whole
	// primitive field it is the field's own type.
	Owner string

	// Slot is the zero-based position within Owner; 0 for a whole
	// primitive field value.
	Slot int

	// Siblings holds the raw values of all slots of the owning element,
	// including this one. Nil for a whole primitive field.
	Siblings []string
}

// FieldValue is the raw text of one field repetition, consumed by the
// field-length layer.
type FieldValue struct {
	Location hl7validator.Location
	Segment  string
	Field    int
	Raw      string
}

// CodedElement is one repetition or component whose data type carries
// primary and alternate code / coding-system pairs, consumed by the
// value-set layer. Values are the element's slot values in order.
type CodedElement struct {
	// Locator is the field or component locator, e.g. "OBX-3" or "PID-10.1".
	Locator  string
	Location hl7validator.Location
	Values   []string
}

// Bindings collects everything the leaf phases consume from a walk.
type Bindings struct {
	Leaves      []Leaf
	FieldValues []FieldValue
	Coded       []CodedElement
}

// Reset empties the bindings for reuse, keeping capacity.
func (b *Bindings) Reset() {
	b.Leaves = b.Leaves[:0]
	b.FieldValues = b.FieldValues[:0]
	b.Coded = b.Coded[:0]
}
