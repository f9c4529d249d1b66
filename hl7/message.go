package hl7

// Message is an ordered sequence of segment occurrences in document order.
// It is created by Parse and never mutated afterwards.
type Message struct {
	Segments   []*Segment
	Delimiters Delimiters
}

// Segment is a named record with an ordered sequence of field slots.
// Fields[0] holds the segment name itself, so Fields[n] is SEG-n in HL7
// terms. For MSH the field separator occupies slot 1 and the encoding
// characters slot 2, mirroring MSH-1 and MSH-2.
type Segment struct {
	Name   string
	Fields []Field
}

// Field is an ordered sequence of repetition values. An empty field is the
// special absent state: raw text is empty and Repetitions is nil, which is
// distinct from one zero-length repetition.
type Field struct {
	Raw         string
	Repetitions []Repetition
}

// Absent reports whether the field carries no value at all.
func (f Field) Absent() bool {
	return len(f.Repetitions) == 0
}

// Repetition is an ordered sequence of components. A repetition with no
// component separator present is a single implicit component.
type Repetition struct {
	Raw        string
	Components []Component
}

// Component is an ordered sequence of subcomponent strings (the leaf data).
// A component with no subcomponent separator is a single implicit
// subcomponent holding the raw string.
type Component struct {
	Raw           string
	Subcomponents []string
}

// Field returns the field at HL7 field number n (SEG-n) and whether the
// segment has that slot.
func (s *Segment) Field(n int) (Field, bool) {
	if n < 0 || n >= len(s.Fields) {
		return Field{}, false
	}
	return s.Fields[n], true
}

// FieldValue returns the raw text of field n, or "" when the slot is missing
// or absent.
func (s *Segment) FieldValue(n int) string {
	f, ok := s.Field(n)
	if !ok {
		return ""
	}
	return f.Raw
}

// ComponentValue returns the raw text of component c (1-based) of the first
// repetition of field n, or "" when any level is missing. Fields without a
// component separator are treated as a single implicit component.
func (s *Segment) ComponentValue(n, c int) string {
	f, ok := s.Field(n)
	if !ok || f.Absent() {
		return ""
	}
	comps := f.Repetitions[0].Components
	if c < 1 || c > len(comps) {
		return ""
	}
	return comps[c-1].Raw
}

// Header returns the message's first segment when it is an MSH, else nil.
func (m *Message) Header() *Segment {
	if len(m.Segments) == 0 || m.Segments[0].Name != "MSH" {
		return nil
	}
	return m.Segments[0]
}

// Segment returns the first segment with the given name, or nil.
func (m *Message) Segment(name string) *Segment {
	for _, s := range m.Segments {
		if s.Name == name {
			return s
		}
	}
	return nil
}
