package hl7validator

import "testing"

func TestHL7VersionIsKnown(t *testing.T) {
	tests := []struct {
		version HL7Version
		want    bool
	}{
		{V23, true},
		{V231, true},
		{V24, true},
		{V25, true},
		{V251, true},
		{V26, true},
		{HL7Version("2.9"), false},
		{HL7Version(""), false},
	}

	for _, tt := range tests {
		if got := tt.version.IsKnown(); got != tt.want {
			t.Errorf("IsKnown(%q) = %v; want %v", tt.version, got, tt.want)
		}
	}
}

func TestHL7VersionString(t *testing.T) {
	if V24.String() != "2.4" {
		t.Errorf("String() = %q; want %q", V24.String(), "2.4")
	}
}
