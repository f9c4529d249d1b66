package hl7

import (
	"strconv"
	"strings"
)

// Escape sequence well-formedness and decoding. HL7 escape sequences are
// delimited by the escape character: \F\ \S\ \T\ \R\ \E\ stand for the five
// structural delimiters, \Xdd..\ for hex-encoded characters, and formatting
// sequences such as \H\, \N\ and \.br\ are reserved markers that survive
// decoding untouched.

// DecodeEscapes rewrites the delimiter and hex escape sequences in a leaf
// value to their literal characters. Reserved formatting markers and
// sequences that are not well formed are returned unchanged.
func DecodeEscapes(s string, d Delimiters) string {
	if d.Escape == 0 || !strings.ContainsRune(s, rune(d.Escape)) {
		return s
	}

	esc := string(d.Escape)
	var b strings.Builder
	b.Grow(len(s))

	for {
		start := strings.Index(s, esc)
		if start < 0 {
			b.WriteString(s)
			break
		}
		end := strings.Index(s[start+1:], esc)
		if end < 0 {
			// Unterminated sequence: keep the remainder verbatim.
			b.WriteString(s)
			break
		}
		end += start + 1

		b.WriteString(s[:start])
		body := s[start+1 : end]
		if lit, ok := decodeBody(body, d); ok {
			b.WriteString(lit)
		} else {
			// Reserved marker or malformed body: keep it, escape characters included.
			b.WriteString(s[start : end+1])
		}
		s = s[end+1:]
	}
	return b.String()
}

func decodeBody(body string, d Delimiters) (string, bool) {
	switch body {
	case "F":
		return string(d.Field), true
	case "S":
		return string(d.Component), true
	case "T":
		return string(d.Subcomponent), true
	case "R":
		return string(d.Repetition), true
	case "E":
		return string(d.Escape), true
	}
	if len(body) > 1 && body[0] == 'X' {
		return decodeHex(body[1:])
	}
	return "", false
}

func decodeHex(hex string) (string, bool) {
	if len(hex) == 0 || len(hex)%2 != 0 {
		return "", false
	}
	var b strings.Builder
	for i := 0; i < len(hex); i += 2 {
		n, err := strconv.ParseUint(hex[i:i+2], 16, 8)
		if err != nil {
			return "", false
		}
		b.WriteByte(byte(n))
	}
	return b.String(), true
}

// WellFormedEscapes reports whether every escape sequence in s is terminated
// and, for \X..\ sequences, carries an even number of hex digits.
func WellFormedEscapes(s string, d Delimiters) bool {
	if d.Escape == 0 {
		return true
	}

	esc := string(d.Escape)
	for {
		start := strings.Index(s, esc)
		if start < 0 {
			return true
		}
		end := strings.Index(s[start+1:], esc)
		if end < 0 {
			return false
		}
		end += start + 1

		body := s[start+1 : end]
		if len(body) > 1 && body[0] == 'X' {
			if _, ok := decodeHex(body[1:]); !ok {
				return false
			}
		}
		s = s[end+1:]
	}
}
