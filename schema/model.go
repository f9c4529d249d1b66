// Package schema builds the in-memory grammar for HL7 v2.xml message
// structures, segments and data types from a schema directory's XSD
// documents.
package schema

import "errors"

// ErrUnknownStructure is returned when a resolved message structure
// identifier has no matching schema document.
var ErrUnknownStructure = errors.New("unknown message structure")

// NodeKind discriminates the two grammar node variants.
type NodeKind int

const (
	// KindSegment is a reference to a segment definition.
	KindSegment NodeKind = iota
	// KindGroup is a reference to a nested segment group.
	KindGroup
)

// Node is one entry in a group's ordered child sequence: either a segment
// reference or a nested group reference, with occurrence bounds. References
// are names resolved against the owning Structure or the Model, never owned
// pointers, so recursive grammars carry no ownership cycles.
type Node struct {
	Kind NodeKind

	// Ref is the segment name (KindSegment) or group name (KindGroup).
	Ref string

	// Min is the minimum number of occurrences.
	Min int

	// Max is the maximum number of occurrences; -1 means unbounded.
	Max int
}

// Unbounded reports whether the node has no upper occurrence bound.
func (n Node) Unbounded() bool {
	return n.Max < 0
}

// Group is an ordered, repeatable sequence of segment and group references.
type Group struct {
	Name   string
	Choice bool
	Nodes  []Node
}

// Structure is the compiled grammar for one message structure identifier
// (e.g. "ADT_A01"). Groups are held in a flat arena keyed by reference name;
// traversal follows names through Group().
type Structure struct {
	ID     string
	Root   *Group
	groups map[string]*Group
}

// NewStructure assembles a structure from a root group and its referenced
// groups, for callers building grammars outside the XSD loader.
func NewStructure(id string, root *Group, groups map[string]*Group) *Structure {
	if groups == nil {
		groups = make(map[string]*Group)
	}
	return &Structure{ID: id, Root: root, groups: groups}
}

// Group resolves a group reference within this structure.
func (s *Structure) Group(ref string) (*Group, bool) {
	g, ok := s.groups[ref]
	return g, ok
}

// SegmentRule describes one segment definition: its name and the ordered
// field slots it declares.
type SegmentRule struct {
	Name   string
	Fields []FieldRule
}

// FieldRule describes one field slot of a segment definition.
type FieldRule struct {
	// Ref is the schema name of the field, e.g. "PID.3".
	Ref string

	// Type is the data type name, e.g. "CX". The special value "varies"
	// stays symbolic until resolved against the carrying segment.
	Type string

	// Table is the associated HL7/User table identifier, or "".
	Table string

	// Min is the minimum number of occurrences (1 = required).
	Min int

	// Max is the maximum number of repetitions; -1 means unbounded.
	Max int
}

// Repeatable reports whether the field may repeat.
func (f FieldRule) Repeatable() bool {
	return f.Max < 0 || f.Max > 1
}

// DataTypeRule describes a data type: a name plus ordered component slots.
// A rule with no components is primitive and its value is validated
// directly; composite slots reference other data types by name.
type DataTypeRule struct {
	Name       string
	Components []ComponentRule
}

// Primitive reports whether the type has no component structure.
func (d *DataTypeRule) Primitive() bool {
	return len(d.Components) == 0
}

// ComponentRule describes one component slot of a composite data type.
type ComponentRule struct {
	// Ref is the schema name of the slot, e.g. "CX.4".
	Ref string

	// Type is the slot's data type name.
	Type string

	// Table is the associated table identifier, or "".
	Table string

	// Min is the minimum number of occurrences (1 = required).
	Min int
}

// VariesType is the placeholder type of fields whose real type is carried
// elsewhere in the message (OBX-5, MFE-4).
const VariesType = "varies"

// CodedTypes are the data types carrying primary and alternate code /
// coding-system pairs, subject to value set validation.
var CodedTypes = map[string]bool{
	"CE":  true,
	"CF":  true,
	"CNE": true,
	"CWE": true,
}
