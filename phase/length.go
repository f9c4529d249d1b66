package phase

import (
	"context"
	"fmt"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/pipeline"
	"github.com/gohl7/validator/service"
)

// FieldLength checks the raw text of every field repetition against the
// per-segment field length table.
type FieldLength struct {
	limits service.FieldLengthLookup
}

// NewFieldLength creates the field-length validation phase.
func NewFieldLength(limits service.FieldLengthLookup) *FieldLength {
	return &FieldLength{limits: limits}
}

// Name returns the phase name.
func (f *FieldLength) Name() string {
	return "field-length"
}

// Validate checks every field repetition against its length limit.
func (f *FieldLength) Validate(_ context.Context, pctx *pipeline.Context) []hl7validator.Finding {
	if f.limits == nil {
		return nil
	}
	if pctx.Options != nil && !pctx.Options.ValidateFieldLengths {
		return nil
	}

	var findings []hl7validator.Finding
	for i := range pctx.Bindings.FieldValues {
		fv := &pctx.Bindings.FieldValues[i]
		limit, ok := f.limits.Limit(fv.Segment, fv.Field)
		if !ok || len(fv.Raw) <= limit {
			continue
		}
		findings = append(findings, hl7validator.Warning(hl7validator.FindingFieldTooLong).
			Diagnostics(fmt.Sprintf("%s exceeds maximum length %d (got %d)", fv.Location.FieldCode(), limit, len(fv.Raw))).
			At(fv.Location).
			Value(fv.Raw).
			Phase("field-length").
			Build())
	}
	return findings
}

// DataTypeLength checks every leaf against the per-datatype component
// length table, keyed by the owning composite type and the leaf's slot
// within it. Slot 0 of a primitive field is the whole value.
type DataTypeLength struct {
	limits service.DataTypeLengthLookup
}

// NewDataTypeLength creates the data-type length validation phase.
func NewDataTypeLength(limits service.DataTypeLengthLookup) *DataTypeLength {
	return &DataTypeLength{limits: limits}
}

// Name returns the phase name.
func (d *DataTypeLength) Name() string {
	return "datatype-length"
}

// Validate checks every leaf against its data-type component limit.
func (d *DataTypeLength) Validate(_ context.Context, pctx *pipeline.Context) []hl7validator.Finding {
	if d.limits == nil {
		return nil
	}
	if pctx.Options != nil && !pctx.Options.ValidateDataTypeLengths {
		return nil
	}

	var findings []hl7validator.Finding
	for i := range pctx.Bindings.Leaves {
		leaf := &pctx.Bindings.Leaves[i]
		if leaf.Owner == "" || leaf.Value == "" {
			continue
		}
		limit, ok := d.limits.Limit(leaf.Owner, leaf.Slot)
		if !ok || len(leaf.Value) <= limit {
			continue
		}
		findings = append(findings, hl7validator.Warning(hl7validator.FindingDataTypeTooLong).
			Diagnostics(fmt.Sprintf("%s component %d exceeds maximum length %d (got %d)", leaf.Owner, leaf.Slot+1, limit, len(leaf.Value))).
			At(leaf.Location).
			Value(leaf.Value).
			Phase("datatype-length").
			Build())
	}
	return findings
}
