package hl7

import (
	"fmt"
	"strings"
)

// Parse tokenizes raw message text into a Message tree using the given
// delimiters. Splitting is purely structural: escape sequences are left
// intact inside leaf values and are never treated as delimiters, because a
// conformant sender escapes any delimiter character occurring in data.
// Empty trailing lines are dropped. Parse fails with ErrEmptyMessage when no
// segments remain and with ErrShortSegment when a line cannot carry a
// segment name.
func Parse(raw string, d Delimiters) (*Message, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\r")
	raw = strings.ReplaceAll(raw, "\n", "\r")
	raw = strings.TrimRight(raw, "\r")

	if raw == "" {
		return nil, ErrEmptyMessage
	}

	lines := strings.Split(raw, "\r")
	msg := &Message{
		Segments:   make([]*Segment, 0, len(lines)),
		Delimiters: d,
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		seg, err := parseSegment(line, d)
		if err != nil {
			return nil, err
		}
		msg.Segments = append(msg.Segments, seg)
	}

	if len(msg.Segments) == 0 {
		return nil, ErrEmptyMessage
	}
	return msg, nil
}

func parseSegment(line string, d Delimiters) (*Segment, error) {
	if len(line) < 3 {
		return nil, fmt.Errorf("%w: segment line %q shorter than a segment name", ErrShortSegment, line)
	}

	name := line[0:3]
	parts := strings.Split(line, string(d.Field))

	seg := &Segment{Name: name}
	if name == "MSH" {
		// MSH-1 is the field separator itself; re-insert it so that field
		// numbering lines up with the schema (MSH-2 = encoding characters).
		rest := parts[1:]
		parts = make([]string, 0, len(rest)+2)
		parts = append(parts, name, string(d.Field))
		parts = append(parts, rest...)
	}

	seg.Fields = make([]Field, len(parts))
	for i, raw := range parts {
		// Slot 0 (the name), MSH-1 and MSH-2 are structural values; the
		// encoding characters must never be split on their own separators.
		if i == 0 || (name == "MSH" && (i == 1 || i == 2)) {
			seg.Fields[i] = literalField(raw)
			continue
		}
		seg.Fields[i] = parseField(raw, d)
	}
	return seg, nil
}

// literalField wraps a raw value as a single repetition/component/subcomponent.
func literalField(raw string) Field {
	if raw == "" {
		return Field{}
	}
	return Field{
		Raw: raw,
		Repetitions: []Repetition{{
			Raw:        raw,
			Components: []Component{{Raw: raw, Subcomponents: []string{raw}}},
		}},
	}
}

func parseField(raw string, d Delimiters) Field {
	if raw == "" {
		return Field{} // absent, not a zero-length repetition
	}

	var reps []string
	if d.Repetition != 0 {
		reps = strings.Split(raw, string(d.Repetition))
	} else {
		reps = []string{raw}
	}

	f := Field{Raw: raw, Repetitions: make([]Repetition, len(reps))}
	for i, r := range reps {
		f.Repetitions[i] = ParseRepetition(r, d)
	}
	return f
}

// ParseRepetition tokenizes one repetition's raw text into components and
// subcomponents. Splitting a field into repetitions is type-blind, so the
// walker uses this to re-read a free-text field whose literal repetition
// separators must not split it.
func ParseRepetition(raw string, d Delimiters) Repetition {
	comps := strings.Split(raw, string(d.Component))

	rep := Repetition{Raw: raw, Components: make([]Component, len(comps))}
	for i, c := range comps {
		rep.Components[i] = parseComponent(c, d)
	}
	return rep
}

func parseComponent(raw string, d Delimiters) Component {
	if d.Subcomponent == 0 {
		return Component{Raw: raw, Subcomponents: []string{raw}}
	}
	return Component{
		Raw:           raw,
		Subcomponents: strings.Split(raw, string(d.Subcomponent)),
	}
}
