package hl7

import (
	"errors"
	"testing"
)

const sampleADT = "MSH|^~\\&|SENDAPP|SENDFAC|RECVAPP|RECVFAC|20240101120000||ADT^A01|MSG001|P|2.4\r" +
	"EVN|A01|20240101120000\r" +
	"PID|1||12345^^^HOSP^MR~67890^^^HOSP^PI||Smith^John^Q||19700101|M\r"

func mustParse(t *testing.T, raw string) *Message {
	t.Helper()
	d, err := ResolveDelimiters(raw)
	if err != nil {
		t.Fatalf("ResolveDelimiters() error = %v", err)
	}
	msg, err := Parse(raw, d)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return msg
}

func TestParseSegments(t *testing.T) {
	msg := mustParse(t, sampleADT)

	if len(msg.Segments) != 3 {
		t.Fatalf("Parse() produced %d segments; want 3", len(msg.Segments))
	}
	for i, want := range []string{"MSH", "EVN", "PID"} {
		if msg.Segments[i].Name != want {
			t.Errorf("segment %d name = %q; want %q", i, msg.Segments[i].Name, want)
		}
	}
}

func TestParseMSHFieldNumbering(t *testing.T) {
	msg := mustParse(t, sampleADT)
	msh := msg.Header()
	if msh == nil {
		t.Fatal("Header() returned nil")
	}

	// MSH-1 is the field separator, MSH-2 the encoding characters.
	if got := msh.FieldValue(1); got != "|" {
		t.Errorf("MSH-1 = %q; want %q", got, "|")
	}
	if got := msh.FieldValue(2); got != `^~\&` {
		t.Errorf("MSH-2 = %q; want %q", got, `^~\&`)
	}
	if got := msh.FieldValue(9); got != "ADT^A01" {
		t.Errorf("MSH-9 = %q; want %q", got, "ADT^A01")
	}
	if got := msh.ComponentValue(9, 2); got != "A01" {
		t.Errorf("MSH-9.2 = %q; want %q", got, "A01")
	}
}

func TestParseRepetitions(t *testing.T) {
	msg := mustParse(t, sampleADT)
	pid := msg.Segment("PID")
	if pid == nil {
		t.Fatal("PID segment not found")
	}

	f, ok := pid.Field(3)
	if !ok {
		t.Fatal("PID-3 slot missing")
	}
	if len(f.Repetitions) != 2 {
		t.Fatalf("PID-3 has %d repetitions; want 2", len(f.Repetitions))
	}
	if f.Repetitions[1].Raw != "67890^^^HOSP^PI" {
		t.Errorf("PID-3[1] = %q", f.Repetitions[1].Raw)
	}
	if got := f.Repetitions[0].Components[0].Raw; got != "12345" {
		t.Errorf("PID-3[0].1 = %q; want %q", got, "12345")
	}
}

func TestParseAbsentField(t *testing.T) {
	msg := mustParse(t, sampleADT)
	pid := msg.Segment("PID")

	f, ok := pid.Field(2)
	if !ok {
		t.Fatal("PID-2 slot missing")
	}
	if !f.Absent() {
		t.Errorf("empty PID-2 should be absent, got %d repetitions", len(f.Repetitions))
	}
}

func TestParseSubcomponents(t *testing.T) {
	raw := "MSH|^~\\&|APP|FAC|||20240101||ORU^R01|1|P|2.4\r" +
		"OBX|1|CE|8867-4^Heart rate^LN&2.69|||\r"
	msg := mustParse(t, raw)
	obx := msg.Segment("OBX")

	f, _ := obx.Field(3)
	comps := f.Repetitions[0].Components
	if len(comps) != 3 {
		t.Fatalf("OBX-3 has %d components; want 3", len(comps))
	}
	subs := comps[2].Subcomponents
	if len(subs) != 2 || subs[0] != "LN" || subs[1] != "2.69" {
		t.Errorf("OBX-3.3 subcomponents = %v", subs)
	}
}

func TestParseImplicitComponent(t *testing.T) {
	msg := mustParse(t, sampleADT)
	evn := msg.Segment("EVN")

	f, _ := evn.Field(1)
	if len(f.Repetitions) != 1 {
		t.Fatalf("EVN-1 repetitions = %d; want 1", len(f.Repetitions))
	}
	comps := f.Repetitions[0].Components
	if len(comps) != 1 || comps[0].Raw != "A01" {
		t.Errorf("EVN-1 should be a single implicit component, got %v", comps)
	}
	if len(comps[0].Subcomponents) != 1 || comps[0].Subcomponents[0] != "A01" {
		t.Errorf("EVN-1.1 should be a single implicit subcomponent, got %v", comps[0].Subcomponents)
	}
}

func TestParseDropsTrailingEmptyLines(t *testing.T) {
	msg := mustParse(t, sampleADT+"\r\r\n\r")
	if len(msg.Segments) != 3 {
		t.Errorf("trailing blank lines should be dropped, got %d segments", len(msg.Segments))
	}
}

func TestParseEmptyMessage(t *testing.T) {
	_, err := Parse("", DefaultDelimiters())
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Parse(\"\") error = %v; want ErrEmptyMessage", err)
	}

	_, err = Parse("\r\n\r\n", DefaultDelimiters())
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Parse(blank) error = %v; want ErrEmptyMessage", err)
	}
}

func TestParseShortSegmentLine(t *testing.T) {
	raw := "MSH|^~\\&|APP|FAC|||20240101||ADT^A01|1|P|2.4\rPI\r"
	_, err := Parse(raw, DefaultDelimiters())
	if !errors.Is(err, ErrShortSegment) {
		t.Errorf("Parse(short line) error = %v; want ErrShortSegment", err)
	}
	if errors.Is(err, ErrEmptyMessage) {
		t.Error("a short segment line is not an empty message")
	}
}

func TestParseEscapedDelimitersNotSplit(t *testing.T) {
	raw := "MSH|^~\\&|APP|FAC|||20240101||ADT^A01|1|P|2.4\r" +
		"NTE|1||Baker \\T\\ Sons\r"
	msg := mustParse(t, raw)
	nte := msg.Segment("NTE")

	f, _ := nte.Field(3)
	comps := f.Repetitions[0].Components
	if len(comps) != 1 {
		t.Fatalf("escaped subcomponent separator split the value: %v", comps)
	}
	// The escape sequence survives splitting; decoding happens on leaf values.
	if comps[0].Raw != `Baker \T\ Sons` {
		t.Errorf("NTE-3 = %q", comps[0].Raw)
	}
}
