// Package walker traverses matched segments against their definitions,
// emitting every terminal value with its resolved data type, table binding
// and full coordinate, and reporting shape deviations (excess or missing
// fields, repetitions, components and subcomponents) along the way.
package walker

import (
	"fmt"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/hl7"
	"github.com/gohl7/validator/pool"
	"github.com/gohl7/validator/schema"
	"github.com/gohl7/validator/service"
)

// explicitNull is the HL7 convention for "delete this value"; it is never
// validated.
const explicitNull = `""`

// Walker walks segment occurrences against segment definitions.
type Walker struct {
	types service.DataTypeProvider
}

// New returns a Walker resolving data types through the given provider.
func New(types service.DataTypeProvider) *Walker {
	return &Walker{types: types}
}

// WalkSegment walks one segment occurrence against its definition, appending
// leaf bindings to b and shape findings to report. The delimiters are those
// the message was parsed with.
func (w *Walker) WalkSegment(seg *hl7.Segment, occurrence int, rule *schema.SegmentRule, d hl7.Delimiters, b *Bindings, report *hl7validator.Report) {
	loc := hl7validator.NewLocation(seg.Name, occurrence)

	declared := len(rule.Fields)
	if len(seg.Fields)-1 > declared {
		first := declared + 1
		report.Add(hl7validator.Error(hl7validator.FindingExcessField).
			Diagnostics(fmt.Sprintf("segment %s declares %d fields", seg.Name, declared)).
			At(loc.AtField(first)).
			Value(seg.FieldValue(first)).
			Build())
	}

	lb := pool.AcquireLocatorBuilder()
	defer lb.Release()

	for n := 1; n <= declared; n++ {
		fr := rule.Fields[n-1]
		field, ok := seg.Field(n)
		floc := loc.AtField(n)

		if !ok || field.Absent() {
			if fr.Min > 0 {
				report.Add(hl7validator.Error(hl7validator.FindingMissingField).
					Diagnostics(fmt.Sprintf("missing required field %s", floc.FieldCode())).
					At(floc).
					Build())
			}
			continue
		}

		fieldType := fr.Type
		if fieldType == schema.VariesType {
			fieldType = resolveVaries(seg, fr.Ref)
		}

		reps := field.Repetitions
		if fieldType == "FT" && len(reps) > 1 {
			// Free text may carry a literal repetition separator; the field
			// is a single repetition.
			reps = []hl7.Repetition{hl7.ParseRepetition(field.Raw, d)}
		}

		if len(reps) > 1 && !fr.Repeatable() {
			report.Add(hl7validator.Error(hl7validator.FindingUnexpectedRepetition).
				Diagnostics(fmt.Sprintf("field %s does not repeat", floc.FieldCode())).
				At(floc.AtRepetition(1)).
				Build())
		}

		fieldLocator := lb.Segment(seg.Name).Field(n).String()

		for j, rep := range reps {
			rloc := floc.AtRepetition(j)
			if rep.Raw == explicitNull {
				continue
			}
			b.FieldValues = append(b.FieldValues, FieldValue{
				Location: rloc,
				Segment:  seg.Name,
				Field:    n,
				Raw:      rep.Raw,
			})
			w.walkRepetition(rep, rloc, fieldLocator, fieldType, fr.Table, lb, b, report)
		}
	}
}

// walkRepetition descends one repetition of a field with the given resolved
// data type.
func (w *Walker) walkRepetition(rep hl7.Repetition, rloc hl7validator.Location, fieldLocator, fieldType, table string, lb *pool.LocatorBuilder, b *Bindings, report *hl7validator.Report) {
	dt, ok := w.types.DataType(fieldType)
	if !ok || dt.Primitive() {
		// The whole repetition is one leaf.
		if len(rep.Components) > 1 {
			report.Add(hl7validator.Error(hl7validator.FindingExcessComponent).
				Diagnostics(fmt.Sprintf("data type %s has no components", fieldType)).
				At(rloc.AtComponent(2)).
				Value(rep.Components[1].Raw).
				Build())
		} else if len(rep.Components) == 1 && len(rep.Components[0].Subcomponents) > 1 {
			report.Add(hl7validator.Error(hl7validator.FindingExcessSubcomponent).
				Diagnostics(fmt.Sprintf("data type %s has no subcomponents", fieldType)).
				At(rloc.AtComponent(1).AtSubcomponent(2)).
				Value(rep.Components[0].Subcomponents[1]).
				Build())
		}
		b.Leaves = append(b.Leaves, Leaf{
			Location: rloc,
			Value:    rep.Raw,
			Type:     fieldType,
			Table:    table,
			Owner:    fieldType,
			Slot:     0,
		})
		return
	}

	rawComponents := componentValues(rep)

	if schema.CodedTypes[fieldType] {
		b.Coded = append(b.Coded, CodedElement{
			Locator:  fieldLocator,
			Location: rloc,
			Values:   rawComponents,
		})
	}

	if len(rep.Components) > len(dt.Components) {
		first := len(dt.Components) + 1
		report.Add(hl7validator.Error(hl7validator.FindingExcessComponent).
			Diagnostics(fmt.Sprintf("data type %s declares %d components", fieldType, len(dt.Components))).
			At(rloc.AtComponent(first)).
			Value(rep.Components[first-1].Raw).
			Build())
	}

	for k := 0; k < len(dt.Components); k++ {
		cr := dt.Components[k]
		cloc := rloc.AtComponent(k + 1)

		var comp hl7.Component
		if k < len(rep.Components) {
			comp = rep.Components[k]
		}
		if comp.Raw == "" {
			if cr.Min > 0 {
				report.Add(hl7validator.Error(hl7validator.FindingMissingComponent).
					Diagnostics(fmt.Sprintf("missing required component %s", cloc.ComponentCode())).
					At(cloc).
					Build())
			}
			continue
		}
		if comp.Raw == explicitNull {
			continue
		}

		w.walkComponent(comp, cloc, fieldType, k, cr, rawComponents, lb, b, report)
	}
}

// walkComponent descends one component slot of a composite field type.
func (w *Walker) walkComponent(comp hl7.Component, cloc hl7validator.Location, fieldType string, slot int, cr schema.ComponentRule, siblings []string, lb *pool.LocatorBuilder, b *Bindings, report *hl7validator.Report) {
	cdt, ok := w.types.DataType(cr.Type)
	if !ok || cdt.Primitive() {
		if len(comp.Subcomponents) > 1 {
			report.Add(hl7validator.Error(hl7validator.FindingExcessSubcomponent).
				Diagnostics(fmt.Sprintf("data type %s has no subcomponents", cr.Type)).
				At(cloc.AtSubcomponent(2)).
				Value(comp.Subcomponents[1]).
				Build())
		}
		b.Leaves = append(b.Leaves, Leaf{
			Location: cloc,
			Value:    comp.Raw,
			Type:     cr.Type,
			Table:    cr.Table,
			Owner:    fieldType,
			Slot:     slot,
			Siblings: siblings,
		})
		return
	}

	// Composite component: the leaves are its subcomponents.
	if schema.CodedTypes[cr.Type] {
		mark := lb.Len()
		lb.Component(cloc.Component)
		b.Coded = append(b.Coded, CodedElement{
			Locator:  lb.String(),
			Location: cloc,
			Values:   comp.Subcomponents,
		})
		lb.Truncate(mark)
	}

	if len(comp.Subcomponents) > len(cdt.Components) {
		first := len(cdt.Components) + 1
		report.Add(hl7validator.Error(hl7validator.FindingExcessSubcomponent).
			Diagnostics(fmt.Sprintf("data type %s declares %d subcomponents", cr.Type, len(cdt.Components))).
			At(cloc.AtSubcomponent(first)).
			Value(comp.Subcomponents[first-1]).
			Build())
	}

	for l := 0; l < len(cdt.Components); l++ {
		sr := cdt.Components[l]
		sloc := cloc.AtSubcomponent(l + 1)

		var value string
		if l < len(comp.Subcomponents) {
			value = comp.Subcomponents[l]
		}
		if value == "" {
			if sr.Min > 0 {
				report.Add(hl7validator.Error(hl7validator.FindingMissingSubcomponent).
					Diagnostics(fmt.Sprintf("missing required subcomponent %s.%d", sloc.ComponentCode(), l+1)).
					At(sloc).
					Build())
			}
			continue
		}
		if value == explicitNull {
			continue
		}

		b.Leaves = append(b.Leaves, Leaf{
			Location: sloc,
			Value:    value,
			Type:     sr.Type,
			Table:    sr.Table,
			Owner:    cr.Type,
			Slot:     l,
			Siblings: comp.Subcomponents,
		})
	}
}

// resolveVaries resolves the symbolic "varies" type from the value that
// carries it elsewhere in the segment: OBX-5 is typed by OBX-2, MFE-4 by
// MFE-5. An unresolvable varies falls back to ST.
func resolveVaries(seg *hl7.Segment, ref string) string {
	var carrier int
	switch {
	case seg.Name == "OBX" && ref == "OBX.5":
		carrier = 2
	case seg.Name == "MFE" && ref == "MFE.4":
		carrier = 5
	default:
		return "ST"
	}
	if t := seg.FieldValue(carrier); t != "" {
		return t
	}
	return "ST"
}

func componentValues(rep hl7.Repetition) []string {
	out := make([]string, len(rep.Components))
	for i, c := range rep.Components {
		out[i] = c.Raw
	}
	return out
}
