package phase

import (
	"context"
	"fmt"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/pipeline"
	"github.com/gohl7/validator/service"
	"github.com/gohl7/validator/walker"
)

// ValueSet checks the code/coding-system pairs of coded elements (CE, CF,
// CNE, CWE) against the configured value sets. The primary pair lives in
// components 1 and 3, the alternate pair in components 4 and 6; each is
// checked independently. A (locator, system) combination the value-set
// table never mentions is not an error.
type ValueSet struct {
	sets service.ValueSetLookup
}

// NewValueSet creates the value-set validation phase.
func NewValueSet(sets service.ValueSetLookup) *ValueSet {
	return &ValueSet{sets: sets}
}

// Name returns the phase name.
func (v *ValueSet) Name() string {
	return "value-set"
}

// Validate checks both coding pairs of every coded element.
func (v *ValueSet) Validate(_ context.Context, pctx *pipeline.Context) []hl7validator.Finding {
	if v.sets == nil {
		return nil
	}
	if pctx.Options != nil && !pctx.Options.ValidateValueSets {
		return nil
	}

	var findings []hl7validator.Finding
	for i := range pctx.Bindings.Coded {
		ce := &pctx.Bindings.Coded[i]
		if f := v.checkPair(ce, 1, 3); f != nil {
			findings = append(findings, *f)
		}
		if f := v.checkPair(ce, 4, 6); f != nil {
			findings = append(findings, *f)
		}
	}
	return findings
}

// checkPair validates one (code, coding system) component pair, numbered
// 1-based within the coded element.
func (v *ValueSet) checkPair(ce *walker.CodedElement, codeComp, systemComp int) *hl7validator.Finding {
	code := componentAt(ce.Values, codeComp)
	system := componentAt(ce.Values, systemComp)
	if code == "" || system == "" {
		return nil
	}
	member, known := v.sets.Contains(ce.Locator, system, code)
	if !known || member {
		return nil
	}
	f := hl7validator.Error(hl7validator.FindingInvalidValueSetCode).
		Diagnostics(fmt.Sprintf("code %q is not in coding system %q for %s", code, system, ce.Locator)).
		At(ce.Location).
		Value(code).
		Phase("value-set").
		Build()
	return &f
}

func componentAt(values []string, n int) string {
	if n > len(values) {
		return ""
	}
	return values[n-1]
}
