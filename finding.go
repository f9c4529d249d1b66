package hl7validator

// Severity represents the severity of a validation finding.
type Severity string

const (
	// SeverityFatal indicates the message could not be validated at all.
	SeverityFatal Severity = "fatal"
	// SeverityError indicates a structural or semantic violation.
	SeverityError Severity = "error"
	// SeverityWarning indicates a potential problem that should be reviewed.
	SeverityWarning Severity = "warning"
	// SeverityInformation indicates informational feedback.
	SeverityInformation Severity = "information"
)

// FindingType categorizes a validation finding.
type FindingType string

const (
	// FindingUnexpectedSegment indicates a segment the message structure does not expect.
	FindingUnexpectedSegment FindingType = "unexpected-segment"
	// FindingMissingSegment indicates a mandatory segment was not found.
	FindingMissingSegment FindingType = "missing-segment"
	// FindingMissingGroup indicates a mandatory segment group was not found.
	FindingMissingGroup FindingType = "missing-group"
	// FindingExcessField indicates a segment carries more fields than its definition declares.
	FindingExcessField FindingType = "excess-field"
	// FindingMissingField indicates a required field is empty.
	FindingMissingField FindingType = "missing-field"
	// FindingUnexpectedRepetition indicates a repetition beyond the field's cardinality.
	FindingUnexpectedRepetition FindingType = "unexpected-repetition"
	// FindingExcessComponent indicates a component beyond the data type's declared slots.
	FindingExcessComponent FindingType = "excess-component"
	// FindingMissingComponent indicates a required component is empty.
	FindingMissingComponent FindingType = "missing-component"
	// FindingExcessSubcomponent indicates a subcomponent beyond the declared subslots.
	FindingExcessSubcomponent FindingType = "excess-subcomponent"
	// FindingMissingSubcomponent indicates a required subcomponent is empty.
	FindingMissingSubcomponent FindingType = "missing-subcomponent"
	// FindingInvalidFormat indicates a value violating its primitive type's grammar.
	FindingInvalidFormat FindingType = "invalid-format"
	// FindingInvalidCode indicates a value absent from its associated HL7/User table.
	FindingInvalidCode FindingType = "invalid-code"
	// FindingFieldTooLong indicates a field value exceeding its maximum length.
	FindingFieldTooLong FindingType = "field-too-long"
	// FindingDataTypeTooLong indicates a component value exceeding its data type length.
	FindingDataTypeTooLong FindingType = "datatype-too-long"
	// FindingInvalidValueSetCode indicates a code absent from the value set bound
	// to its locator and coding system.
	FindingInvalidValueSetCode FindingType = "invalid-value-set-code"
	// FindingProcessing indicates an internal processing problem.
	FindingProcessing FindingType = "processing"
)

// Finding represents a single validation finding with its full coordinate.
type Finding struct {
	// Severity of the finding
	Severity Severity `json:"severity"`

	// Type identifying the category of finding
	Type FindingType `json:"type"`

	// Diagnostics contains human-readable details about the finding
	Diagnostics string `json:"diagnostics,omitempty"`

	// Location is the coordinate of the value in error
	Location Location `json:"location"`

	// Value is the offending raw value, when one exists
	Value string `json:"value,omitempty"`

	// Phase is the validation phase that generated this finding
	Phase string `json:"phase,omitempty"`
}

// IsError returns true if this is an error or fatal finding.
func (f Finding) IsError() bool {
	return f.Severity == SeverityError || f.Severity == SeverityFatal
}

// IsWarning returns true if this is a warning.
func (f Finding) IsWarning() bool {
	return f.Severity == SeverityWarning
}

// String returns a human-readable representation of the finding.
func (f Finding) String() string {
	loc := f.Location.String()
	if loc != "" {
		loc = " at " + loc
	}
	return string(f.Severity) + ": " + f.Diagnostics + loc
}

// FindingBuilder provides a fluent API for building findings.
type FindingBuilder struct {
	finding Finding
}

// NewFinding creates a new FindingBuilder.
func NewFinding(severity Severity, typ FindingType) *FindingBuilder {
	return &FindingBuilder{
		finding: Finding{
			Severity: severity,
			Type:     typ,
		},
	}
}

// Error creates an error finding.
func Error(typ FindingType) *FindingBuilder {
	return NewFinding(SeverityError, typ)
}

// Warning creates a warning finding.
func Warning(typ FindingType) *FindingBuilder {
	return NewFinding(SeverityWarning, typ)
}

// Info creates an informational finding.
func Info(typ FindingType) *FindingBuilder {
	return NewFinding(SeverityInformation, typ)
}

// Diagnostics sets the diagnostic message.
func (b *FindingBuilder) Diagnostics(msg string) *FindingBuilder {
	b.finding.Diagnostics = msg
	return b
}

// At sets the coordinate.
func (b *FindingBuilder) At(loc Location) *FindingBuilder {
	b.finding.Location = loc
	return b
}

// Value sets the offending raw value.
func (b *FindingBuilder) Value(v string) *FindingBuilder {
	b.finding.Value = v
	return b
}

// Phase sets the validation phase.
func (b *FindingBuilder) Phase(phase string) *FindingBuilder {
	b.finding.Phase = phase
	return b
}

// Build returns the constructed finding.
func (b *FindingBuilder) Build() Finding {
	return b.finding
}
