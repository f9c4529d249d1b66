package hl7validator

// HL7Version labels the HL7 v2.x release a schema directory was built for.
// The validator never enforces that a message belongs to the labelled version;
// the tag identifies the grammar in reports and logs only.
type HL7Version string

// Common HL7 v2.x versions with published v2.xml schemas.
const (
	V23  HL7Version = "2.3"
	V231 HL7Version = "2.3.1"
	V24  HL7Version = "2.4"
	V25  HL7Version = "2.5"
	V251 HL7Version = "2.5.1"
	V26  HL7Version = "2.6"
)

// String returns the version string.
func (v HL7Version) String() string {
	return string(v)
}

// IsKnown returns true if this is a version the project ships schemas for.
func (v HL7Version) IsKnown() bool {
	switch v {
	case V23, V231, V24, V25, V251, V26:
		return true
	default:
		return false
	}
}
