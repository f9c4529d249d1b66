package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentflare-ai/go-xmldom"

	"github.com/gohl7/validator/cache"
)

// XSDNamespace is the XML Schema namespace.
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// Model holds the grammar for a whole schema directory: segment and data
// type definitions loaded eagerly, message structures loaded lazily on first
// use and kept in an LRU cache. A Model is immutable after Load and may be
// shared across goroutines.
type Model struct {
	dir        string
	segments   map[string]*SegmentRule
	types      map[string]*DataTypeRule
	structures *cache.Cache[string, *Structure]
}

// Load builds a Model from the schema directory, which must contain an xsd/
// subfolder with segments.xsd, fields.xsd and datatypes.xsd. Message
// structure documents (<ID>.xsd) in the same subfolder are loaded on demand.
func Load(dir string, structureCacheSize int) (*Model, error) {
	xsdDir := filepath.Join(dir, "xsd")
	if fi, err := os.Stat(xsdDir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("schema directory %s has no xsd subfolder", dir)
	}

	fieldAttrs, err := loadAttributeGroups(filepath.Join(xsdDir, "fields.xsd"))
	if err != nil {
		return nil, err
	}

	m := &Model{
		dir:        dir,
		types:      make(map[string]*DataTypeRule),
		segments:   make(map[string]*SegmentRule),
		structures: cache.New[string, *Structure](structureCacheSize),
	}

	if err := m.loadDataTypes(filepath.Join(xsdDir, "datatypes.xsd")); err != nil {
		return nil, err
	}
	if err := m.loadSegments(filepath.Join(xsdDir, "segments.xsd"), fieldAttrs); err != nil {
		return nil, err
	}
	return m, nil
}

// SegmentDef returns the definition of the named segment.
func (m *Model) SegmentDef(name string) (*SegmentRule, bool) {
	s, ok := m.segments[name]
	return s, ok
}

// DataType returns the rule for the named data type.
func (m *Model) DataType(name string) (*DataTypeRule, bool) {
	t, ok := m.types[name]
	return t, ok
}

// Structure returns the compiled grammar for a message structure identifier,
// loading its schema document on first use. It fails with ErrUnknownStructure
// when no document matches.
func (m *Model) Structure(id string) (*Structure, error) {
	return m.structures.GetOrCompute(id, func() (*Structure, error) {
		return m.loadStructure(id)
	})
}

// --- document loading ---

func decodeFile(path string) (xmldom.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open schema document %s: %w", path, err)
	}
	defer f.Close()

	doc, err := xmldom.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("cannot parse schema document %s: %w", path, err)
	}

	root := doc.DocumentElement()
	if root == nil {
		return nil, fmt.Errorf("schema document %s has no root element", path)
	}
	if string(root.NamespaceURI()) != XSDNamespace || string(root.LocalName()) != "schema" {
		return nil, fmt.Errorf("schema document %s is not an XML Schema", path)
	}
	return root, nil
}

func childElements(el xmldom.Element) []xmldom.Element {
	children := el.Children()
	out := make([]xmldom.Element, 0, children.Length())
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		out = append(out, child)
	}
	return out
}

func attr(el xmldom.Element, name string) string {
	return string(el.GetAttribute(xmldom.DOMString(name)))
}

func isXSD(el xmldom.Element, local string) bool {
	return string(el.NamespaceURI()) == XSDNamespace && string(el.LocalName()) == local
}

// findChild returns the first direct child with the given XSD local name.
func findChild(el xmldom.Element, local string) xmldom.Element {
	for _, child := range childElements(el) {
		if isXSD(child, local) {
			return child
		}
	}
	return nil
}

// parseOccurs interprets a cardinality attribute; "unbounded" maps to -1.
func parseOccurs(s string, def int) int {
	switch s {
	case "":
		return def
	case "unbounded":
		return -1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// elementAttrs holds the Type/Table pair fixed on a *.ATTRIBUTES group.
type elementAttrs struct {
	Type  string
	Table string
}

// loadAttributeGroups reads every "<ref>.ATTRIBUTES" group in a document
// into a map keyed by ref.
func loadAttributeGroups(path string) (map[string]elementAttrs, error) {
	root, err := decodeFile(path)
	if err != nil {
		return nil, err
	}
	return attributeGroups(root), nil
}

func attributeGroups(root xmldom.Element) map[string]elementAttrs {
	out := make(map[string]elementAttrs)
	for _, child := range childElements(root) {
		if !isXSD(child, "attributeGroup") {
			continue
		}
		name := attr(child, "name")
		ref, ok := strings.CutSuffix(name, ".ATTRIBUTES")
		if !ok {
			continue
		}

		var ea elementAttrs
		for _, a := range childElements(child) {
			if !isXSD(a, "attribute") {
				continue
			}
			switch attr(a, "name") {
			case "Type":
				ea.Type = attr(a, "fixed")
			case "Table":
				ea.Table = attr(a, "fixed")
			}
		}
		out[ref] = ea
	}
	return out
}

// loadDataTypes builds the data type rules from datatypes.xsd. Composite
// types are complex types whose name carries no dot and whose sequence lists
// the component slots; everything else is primitive and needs no entry
// beyond its name.
func (m *Model) loadDataTypes(path string) error {
	root, err := decodeFile(path)
	if err != nil {
		return err
	}

	attrs := attributeGroups(root)

	for _, child := range childElements(root) {
		if !isXSD(child, "complexType") {
			continue
		}
		name := attr(child, "name")
		if name == "" || strings.Contains(name, ".") {
			continue
		}

		rule := &DataTypeRule{Name: name}

		// FT declares a sequence for embedded formatting but has no
		// component structure; keep it primitive.
		if name != "FT" {
			if seq := findChild(child, "sequence"); seq != nil {
				for _, el := range childElements(seq) {
					if !isXSD(el, "element") {
						continue
					}
					ref := attr(el, "ref")
					if ref == "" {
						continue
					}
					cr := ComponentRule{
						Ref: ref,
						Min: parseOccurs(attr(el, "minOccurs"), 0),
					}
					if ea, ok := attrs[ref]; ok {
						cr.Type = ea.Type
						cr.Table = ea.Table
					}
					rule.Components = append(rule.Components, cr)
				}
			}
		}
		m.types[name] = rule
	}
	return nil
}

// loadSegments builds the segment rules from segments.xsd, taking each
// field's data type and table from the fields.xsd attribute groups.
func (m *Model) loadSegments(path string, fieldAttrs map[string]elementAttrs) error {
	root, err := decodeFile(path)
	if err != nil {
		return err
	}

	for _, child := range childElements(root) {
		if !isXSD(child, "complexType") {
			continue
		}
		name, ok := strings.CutSuffix(attr(child, "name"), ".CONTENT")
		if !ok || len(name) != 3 {
			continue
		}

		seq := findChild(child, "sequence")
		if seq == nil {
			continue
		}

		rule := &SegmentRule{Name: name}
		for _, el := range childElements(seq) {
			if !isXSD(el, "element") {
				continue
			}
			ref := attr(el, "ref")
			if ref == "" {
				continue
			}
			fr := FieldRule{
				Ref: ref,
				Min: parseOccurs(attr(el, "minOccurs"), 0),
				Max: parseOccurs(attr(el, "maxOccurs"), 1),
			}
			if ea, ok := fieldAttrs[ref]; ok {
				fr.Type = ea.Type
				fr.Table = ea.Table
			}
			rule.Fields = append(rule.Fields, fr)
		}
		m.segments[name] = rule
	}
	return nil
}

// loadStructure compiles the grammar for one message structure document.
func (m *Model) loadStructure(id string) (*Structure, error) {
	path := filepath.Join(m.dir, "xsd", id+".xsd")
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStructure, id)
	}

	root, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	s := &Structure{ID: id, groups: make(map[string]*Group)}

	for _, child := range childElements(root) {
		if !isXSD(child, "complexType") {
			continue
		}
		name, ok := strings.CutSuffix(attr(child, "name"), ".CONTENT")
		if !ok {
			continue
		}

		group, err := parseGroupContent(name, child)
		if err != nil {
			return nil, fmt.Errorf("structure %s: %w", id, err)
		}
		if name == id {
			s.Root = group
		} else {
			s.groups[name] = group
		}
	}

	if s.Root == nil {
		return nil, fmt.Errorf("%w: %s declares no %s.CONTENT type", ErrUnknownStructure, id, id)
	}
	return s, nil
}

func parseGroupContent(name string, el xmldom.Element) (*Group, error) {
	group := &Group{Name: name}

	seq := findChild(el, "sequence")
	if seq == nil {
		seq = findChild(el, "choice")
		if seq == nil {
			return nil, fmt.Errorf("group %s has neither sequence nor choice", name)
		}
		group.Choice = true
	}

	for _, child := range childElements(seq) {
		if !isXSD(child, "element") {
			continue
		}
		ref := attr(child, "ref")
		if ref == "" {
			return nil, fmt.Errorf("group %s contains an element without ref", name)
		}

		node := Node{
			Ref: ref,
			Min: parseOccurs(attr(child, "minOccurs"), 1),
			Max: parseOccurs(attr(child, "maxOccurs"), 1),
		}
		// Segment references are bare 3-character names; anything longer
		// designates a nested group.
		if len(ref) > 3 {
			node.Kind = KindGroup
		} else {
			node.Kind = KindSegment
		}
		group.Nodes = append(group.Nodes, node)
	}
	return group, nil
}
