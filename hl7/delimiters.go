// Package hl7 parses HL7 v2.x vertical-bar messages into value trees.
package hl7

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedHeader is returned when the MSH segment is missing, too short,
// or carries no usable encoding characters.
var ErrMalformedHeader = errors.New("malformed message header")

// ErrEmptyMessage is returned when parsing produces no segments.
var ErrEmptyMessage = errors.New("empty message")

// ErrShortSegment is returned when a segment line is shorter than a
// three-character segment name.
var ErrShortSegment = errors.New("short segment line")

// Delimiters holds the five structural delimiter characters a message
// declares in its header segment. Escape and Subcomponent may be zero when
// the encoding characters field is shorter than four characters.
type Delimiters struct {
	Field        byte
	Component    byte
	Repetition   byte
	Escape       byte
	Subcomponent byte
}

// DefaultDelimiters returns the conventional delimiter set |^~\&.
func DefaultDelimiters() Delimiters {
	return Delimiters{
		Field:        '|',
		Component:    '^',
		Repetition:   '~',
		Escape:       '\\',
		Subcomponent: '&',
	}
}

// minHeaderLen is the shortest first segment that can still carry a segment
// name, a field separator and two encoding characters: "MSH|^~".
const minHeaderLen = 6

// ResolveDelimiters extracts the structural delimiters from the first segment
// of raw message text. The byte after the 3-character segment name is the
// field separator; the encoding characters field that follows declares the
// component, repetition, escape and subcomponent separators in that order.
// The escape and subcomponent separators are optional.
func ResolveDelimiters(raw string) (Delimiters, error) {
	line := raw
	if i := strings.IndexAny(raw, "\r\n"); i >= 0 {
		line = raw[:i]
	}

	if len(line) < minHeaderLen {
		return Delimiters{}, fmt.Errorf("%w: first segment shorter than %d characters", ErrMalformedHeader, minHeaderLen)
	}
	if line[0:3] != "MSH" {
		return Delimiters{}, fmt.Errorf("%w: first segment is %q, not MSH", ErrMalformedHeader, line[0:3])
	}

	d := Delimiters{Field: line[3]}

	rest := line[4:]
	enc := rest
	if i := strings.IndexByte(rest, d.Field); i >= 0 {
		enc = rest[:i]
	}
	if len(enc) < 2 {
		return Delimiters{}, fmt.Errorf("%w: encoding characters field %q shorter than 2 characters", ErrMalformedHeader, enc)
	}

	d.Component = enc[0]
	d.Repetition = enc[1]
	if len(enc) >= 3 {
		d.Escape = enc[2]
	}
	if len(enc) >= 4 {
		d.Subcomponent = enc[3]
	}
	return d, nil
}

// StripMLLP removes a Minimal Lower Layer Protocol frame (VT ... FS CR) from
// raw message text when one is present.
func StripMLLP(raw string) string {
	if len(raw) >= 3 && raw[0] == 0x0b && raw[len(raw)-2] == 0x1c && raw[len(raw)-1] == 0x0d {
		return raw[1 : len(raw)-2]
	}
	return raw
}
