package phase

import (
	"context"
	"fmt"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/pipeline"
	"github.com/gohl7/validator/service"
)

// CodeTable checks leaf values against their associated HL7 or user-defined
// code tables. A leaf without a table id, or whose table id the loaded
// tables never mention, is skipped.
type CodeTable struct {
	tables service.CodeTableLookup
}

// NewCodeTable creates the code-table validation phase.
func NewCodeTable(tables service.CodeTableLookup) *CodeTable {
	return &CodeTable{tables: tables}
}

// Name returns the phase name.
func (c *CodeTable) Name() string {
	return "code-table"
}

// Validate checks table membership for every tagged leaf.
func (c *CodeTable) Validate(_ context.Context, pctx *pipeline.Context) []hl7validator.Finding {
	if c.tables == nil {
		return nil
	}
	if pctx.Options != nil && !pctx.Options.ValidateCodeTables {
		return nil
	}

	var findings []hl7validator.Finding
	for i := range pctx.Bindings.Leaves {
		leaf := &pctx.Bindings.Leaves[i]
		if leaf.Table == "" || leaf.Value == "" {
			continue
		}
		member, known := c.tables.Contains(leaf.Table, leaf.Value)
		if !known || member {
			continue
		}
		findings = append(findings, hl7validator.Error(hl7validator.FindingInvalidCode).
			Diagnostics(fmt.Sprintf("value %q is not in table %s", leaf.Value, leaf.Table)).
			At(leaf.Location).
			Value(leaf.Value).
			Phase("code-table").
			Build())
	}
	return findings
}
