// Package service defines small, composable interfaces between the
// validation phases and their collaborators: the schema model and the
// reference tables. Following Go's philosophy of small interfaces, each
// interface has one or two methods, implemented by schema.Model and the
// refdata tables respectively.
package service

import "github.com/gohl7/validator/schema"

// StructureProvider resolves message structure identifiers to compiled
// grammars.
type StructureProvider interface {
	Structure(id string) (*schema.Structure, error)
}

// SegmentProvider resolves segment names to their definitions.
type SegmentProvider interface {
	SegmentDef(name string) (*schema.SegmentRule, bool)
}

// DataTypeProvider resolves data type names to their rules.
type DataTypeProvider interface {
	DataType(name string) (*schema.DataTypeRule, bool)
}

// SchemaProvider is the full grammar surface the structural phase needs.
type SchemaProvider interface {
	StructureProvider
	SegmentProvider
	DataTypeProvider
}

// CodeTableLookup answers code table membership. A known=false result means
// the table itself is unknown and no check applies.
type CodeTableLookup interface {
	Contains(table, code string) (member, known bool)
}

// FieldLengthLookup answers maximum lengths for (segment, field) pairs.
type FieldLengthLookup interface {
	Limit(segment string, field int) (int, bool)
}

// DataTypeLengthLookup answers maximum lengths for (data type, slot) pairs;
// slot 0 of a primitive type covers the whole value.
type DataTypeLengthLookup interface {
	Limit(dataType string, slot int) (int, bool)
}

// ValueSetLookup answers value set membership at a field or component
// locator for a given coding system. A known=false result means no value
// set is bound there and no check applies.
type ValueSetLookup interface {
	Contains(locator, system, code string) (member, known bool)
}

// TriggerLookup resolves (message code, trigger event) pairs to message
// structure identifiers.
type TriggerLookup interface {
	Lookup(code, trigger string) (string, bool)
}
