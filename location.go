package hl7validator

import "strconv"

// Location identifies one value in a parsed HL7 message. Every coordinate
// (segment occurrence, field, repetition, component, subcomponent) uniquely
// addresses one leaf string across the whole message tree; all validators
// report findings with this coordinate.
//
// Segment occurrence is 0-based over the whole message. Field numbers follow
// HL7 convention: field n is SEG-n, with slot 0 holding the segment name.
// Repetition is 0-based; component and subcomponent are 1-based per HL7
// terminology. A coordinate of -1 means "not applicable at this level".
type Location struct {
	// Segment is the 3-character segment name (e.g. "PID").
	Segment string `json:"segment,omitempty"`

	// Occurrence is the 0-based index of the segment within the message.
	Occurrence int `json:"occurrence"`

	// Field is the HL7 field number within the segment, -1 if unset.
	Field int `json:"field"`

	// Repetition is the 0-based repetition index, -1 if unset.
	Repetition int `json:"repetition"`

	// Component is the 1-based component number, -1 if unset.
	Component int `json:"component"`

	// Subcomponent is the 1-based subcomponent number, -1 if unset.
	Subcomponent int `json:"subcomponent"`
}

// NewLocation returns a Location for a segment occurrence with all finer
// coordinates unset.
func NewLocation(segment string, occurrence int) Location {
	return Location{
		Segment:      segment,
		Occurrence:   occurrence,
		Field:        -1,
		Repetition:   -1,
		Component:    -1,
		Subcomponent: -1,
	}
}

// AtField returns a copy of the location narrowed to a field.
func (l Location) AtField(field int) Location {
	l.Field = field
	l.Repetition = -1
	l.Component = -1
	l.Subcomponent = -1
	return l
}

// AtRepetition returns a copy of the location narrowed to a repetition.
func (l Location) AtRepetition(rep int) Location {
	l.Repetition = rep
	l.Component = -1
	l.Subcomponent = -1
	return l
}

// AtComponent returns a copy of the location narrowed to a component.
func (l Location) AtComponent(comp int) Location {
	l.Component = comp
	l.Subcomponent = -1
	return l
}

// AtSubcomponent returns a copy of the location narrowed to a subcomponent.
func (l Location) AtSubcomponent(sub int) Location {
	l.Subcomponent = sub
	return l
}

// FieldCode returns the HL7 locator for the field, e.g. "PID-5", or the
// segment name alone when no field is set.
func (l Location) FieldCode() string {
	if l.Field < 0 {
		return l.Segment
	}
	return l.Segment + "-" + strconv.Itoa(l.Field)
}

// ComponentCode returns the HL7 locator for the component, e.g. "PID-5.1".
func (l Location) ComponentCode() string {
	if l.Component < 0 {
		return l.FieldCode()
	}
	return l.FieldCode() + "." + strconv.Itoa(l.Component)
}

// String renders the location in HL7 locator style, e.g. "PID-5[1].1.2 (segment 4)".
func (l Location) String() string {
	if l.Segment == "" {
		return ""
	}
	s := l.Segment
	if l.Field >= 0 {
		s += "-" + strconv.Itoa(l.Field)
		if l.Repetition > 0 {
			s += "[" + strconv.Itoa(l.Repetition) + "]"
		}
		if l.Component >= 0 {
			s += "." + strconv.Itoa(l.Component)
			if l.Subcomponent >= 0 {
				s += "." + strconv.Itoa(l.Subcomponent)
			}
		}
	}
	return s + " (segment " + strconv.Itoa(l.Occurrence+1) + ")"
}
