package phase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/hl7"
	"github.com/gohl7/validator/pipeline"
	"github.com/gohl7/validator/walker"
)

// Primitive type grammars from the v2 datatype definitions. DTM and TM allow
// a trailing timezone offset; fractional seconds carry up to four digits.
var (
	dtPattern  = regexp.MustCompile(`^[12]\d{3}((0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])?)?$`)
	dtmPattern = regexp.MustCompile(`^[12]\d{3}((0[1-9]|1[0-2])((0[1-9]|[12]\d|3[01])(([01]\d|2[0-4])([0-5]\d([0-5]\d(\.\d{1,4})?)?)?)?)?)?([-+]?(0\d|1[0-3])[0-5]\d)?$`)
	nmPattern  = regexp.MustCompile(`^[-+]?\d+(\.\d*)?$`)
	riPattern  = regexp.MustCompile(`^([01]\d|2[0-4])[0-5]\d(,([01]\d|2[0-4])[0-5]\d)*$`)
	siPattern  = regexp.MustCompile(`^\d{1,4}$`)
	tmPattern  = regexp.MustCompile(`^([01]\d|2[0-4])([0-5]\d([0-5]\d(\.\d{1,4})?)?)?([-+]?(0\d|1[0-3])[0-5]\d)?$`)
	tnPattern  = regexp.MustCompile(`^(\d\d)?((\d{3}))?\d{3}-\d{4}(X\d{4})?(B\d{4})?(C.*)?$`)
	ts2Pattern = regexp.MustCompile(`^[YLDMHS]$`)
	hexPattern = regexp.MustCompile(`^[A-Fa-f0-9]*$`)
	b64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)
)

var snComparators = map[string]bool{
	"<": true, ">": true, "=": true, "<=": true, ">=": true, "<>": true,
}

// Format applies the primitive data-type grammars to every leaf binding.
// Position-dependent rules (ED encoding and payload, SN comparator and
// separator, TS timestamp and precision, RI interval, XTN phone number) key
// on the leaf's owning composite type and slot; everything else keys on the
// leaf's own primitive type.
type Format struct{}

// NewFormat creates the format validation phase.
func NewFormat() *Format {
	return &Format{}
}

// Name returns the phase name.
func (f *Format) Name() string {
	return "format"
}

// Validate checks every leaf against its data-type grammar.
func (f *Format) Validate(_ context.Context, pctx *pipeline.Context) []hl7validator.Finding {
	if pctx.Options != nil && !pctx.Options.ValidateFormats {
		return nil
	}

	var findings []hl7validator.Finding
	for i := range pctx.Bindings.Leaves {
		leaf := &pctx.Bindings.Leaves[i]
		if leaf.Value == "" {
			continue
		}
		if diag := checkLeafFormat(leaf, pctx.Delimiters); diag != "" {
			findings = append(findings, hl7validator.Error(hl7validator.FindingInvalidFormat).
				Diagnostics(diag).
				At(leaf.Location).
				Value(leaf.Value).
				Phase("format").
				Build())
		}
	}
	return findings
}

// checkLeafFormat returns a diagnostic for a malformed value, or "".
func checkLeafFormat(leaf *walker.Leaf, d hl7.Delimiters) string {
	v := leaf.Value

	switch leaf.Type {
	case "DT":
		if !dtPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted date %q", v)
		}
		return ""
	case "DTM":
		if !dtmPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted date/time %q", v)
		}
		return ""
	}

	switch {
	case leaf.Owner == "ED" && leaf.Slot == 3:
		if v != "Hex" && v != "Base64" {
			return fmt.Sprintf("illegal encapsulated data encoding %q", v)
		}
		return ""
	case leaf.Owner == "ED" && leaf.Slot == 4:
		return checkEncapsulatedData(leaf)
	case leaf.Owner == "RI" && leaf.Slot == 1:
		if !riPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted time interval %q", v)
		}
		return ""
	case leaf.Owner == "SN" && leaf.Slot == 0:
		if !snComparators[v] {
			return fmt.Sprintf("illegally formatted numeric comparator %q", v)
		}
		return ""
	case leaf.Owner == "SN" && leaf.Slot == 2:
		if len(v) > 1 || !strings.Contains("+-/.:", v) {
			return fmt.Sprintf("illegally formatted numeric separator %q", v)
		}
		return ""
	case leaf.Owner == "TS" && leaf.Slot == 0:
		if !dtmPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted date/time %q", v)
		}
		return ""
	case leaf.Owner == "TS" && leaf.Slot == 1:
		if !ts2Pattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted degree of precision %q", v)
		}
		return ""
	case leaf.Owner == "XTN" && leaf.Slot == 0:
		if !tnPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted telephone number %q", v)
		}
		return ""
	}

	switch leaf.Type {
	case "NM":
		if !nmPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted number %q", v)
		}
	case "SI":
		if !siPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted sequence identifier %q", v)
		}
	case "TM":
		if !tmPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted time %q", v)
		}
	case "TN":
		if !tnPattern.MatchString(v) {
			return fmt.Sprintf("illegally formatted telephone number %q", v)
		}
	case "TX", "FT", "CF":
		if !hl7.WellFormedEscapes(v, d) {
			return fmt.Sprintf("malformed escape sequence in %q", v)
		}
	}
	return ""
}

// checkEncapsulatedData validates the ED payload against the encoding named
// by the sibling ED-4 component. Without a readable encoding no check is
// possible.
func checkEncapsulatedData(leaf *walker.Leaf) string {
	if len(leaf.Siblings) < 4 {
		return ""
	}
	encoding := leaf.Siblings[3]
	if encoding == "" {
		return ""
	}
	v := leaf.Value
	if encoding == "Hex" {
		if len(v)%2 != 0 || !hexPattern.MatchString(v) {
			return "illegally formatted Hex data"
		}
		return ""
	}
	if len(v)%4 != 0 || !b64Pattern.MatchString(v) {
		return "illegally formatted Base64 encoded data"
	}
	return ""
}
