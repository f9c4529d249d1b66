package phase

import (
	"context"
	"fmt"

	hl7validator "github.com/gohl7/validator"
	"github.com/gohl7/validator/hl7"
	"github.com/gohl7/validator/pipeline"
	"github.com/gohl7/validator/schema"
	"github.com/gohl7/validator/service"
	"github.com/gohl7/validator/walker"
)

// Structure matches the segment sequence against the structure grammar with
// a greedy, single-pass, backtracking-free grouping match, then walks every
// matched segment. The walk emits the leaf, field-value and coded-element
// bindings all leaf phases consume, so this phase must complete before any
// of them runs.
type Structure struct {
	schema service.SchemaProvider
	walk   *walker.Walker
}

// NewStructure creates the structural validation phase.
func NewStructure(p service.SchemaProvider) *Structure {
	return &Structure{schema: p, walk: walker.New(p)}
}

// Name returns the phase name.
func (s *Structure) Name() string {
	return "structure"
}

// Validate matches pctx.Message against pctx.Structure.
func (s *Structure) Validate(_ context.Context, pctx *pipeline.Context) []hl7validator.Finding {
	if pctx.Message == nil || pctx.Structure == nil {
		return nil
	}

	m := &matcher{
		schema:    s.schema,
		walk:      s.walk,
		pctx:      pctx,
		segments:  pctx.Message.Segments,
		structure: pctx.Structure,
		known:     segmentNames(pctx.Structure),
	}

	m.matchGroup(pctx.Structure.Root)

	// Whatever the grammar did not consume is anomalous.
	for m.pos < len(m.segments) {
		m.unexpected()
		m.pos++
	}

	return m.findings
}

// matcher holds the cursor state for one match run.
type matcher struct {
	schema    service.SchemaProvider
	walk      *walker.Walker
	pctx      *pipeline.Context
	segments  []*hl7.Segment
	structure *schema.Structure

	// known lists every segment name the grammar mentions anywhere; a
	// segment outside it can never be absorbed later and is skipped with
	// a single finding.
	known map[string]bool

	pos      int
	findings []hl7validator.Finding
}

// peek returns the name of the next unconsumed segment, or "".
func (m *matcher) peek() string {
	if m.pos < len(m.segments) {
		return m.segments[m.pos].Name
	}
	return ""
}

// matchGroup matches one occurrence of a group's child sequence.
func (m *matcher) matchGroup(g *schema.Group) {
	if g.Choice {
		for _, node := range g.Nodes {
			if m.nodeStarts(node, m.peek()) {
				m.matchNode(node)
				return
			}
		}
		return
	}
	for _, node := range g.Nodes {
		m.matchNode(node)
	}
}

func (m *matcher) matchNode(node schema.Node) {
	if node.Kind == schema.KindSegment {
		m.matchSegmentNode(node)
		return
	}
	m.matchGroupNode(node)
}

// matchSegmentNode consumes consecutive segments named node.Ref up to the
// node's upper bound. When a mandatory occurrence is unmet, segments the
// grammar never mentions are skipped (one finding each) and the node is
// retried; otherwise a MissingSegment finding is reported once and matching
// moves on.
func (m *matcher) matchSegmentNode(node schema.Node) {
	count := 0
	for {
		if m.peek() == node.Ref && (node.Unbounded() || count < node.Max) {
			m.consume()
			count++
			continue
		}
		if count >= node.Min {
			return
		}
		if m.skipUnknown() {
			continue
		}
		m.findings = append(m.findings, hl7validator.Error(hl7validator.FindingMissingSegment).
			Diagnostics(fmt.Sprintf("expected segment %s", node.Ref)).
			At(hl7validator.NewLocation(node.Ref, m.pos)).
			Phase(m.phaseName()).
			Build())
		return
	}
}

// matchGroupNode matches group occurrences while the next segment can start
// the group, up to the node's upper bound.
func (m *matcher) matchGroupNode(node schema.Node) {
	g, ok := m.structure.Group(node.Ref)
	if !ok {
		m.findings = append(m.findings, hl7validator.Error(hl7validator.FindingProcessing).
			Diagnostics(fmt.Sprintf("structure %s references undeclared group %s", m.structure.ID, node.Ref)).
			Phase(m.phaseName()).
			Build())
		return
	}
	starters := m.groupStarters(g)

	count := 0
	for {
		for (node.Unbounded() || count < node.Max) && starters[m.peek()] {
			before := m.pos
			m.matchGroup(g)
			count++
			if m.pos == before {
				break
			}
		}
		if count >= node.Min {
			return
		}
		if m.skipUnknown() {
			continue
		}
		m.findings = append(m.findings, hl7validator.Error(hl7validator.FindingMissingGroup).
			Diagnostics(fmt.Sprintf("expected segment group %s", node.Ref)).
			At(hl7validator.NewLocation(node.Ref, m.pos)).
			Phase(m.phaseName()).
			Build())
		return
	}
}

// nodeStarts reports whether a segment name is a valid start of a node.
func (m *matcher) nodeStarts(node schema.Node, name string) bool {
	if name == "" {
		return false
	}
	if node.Kind == schema.KindSegment {
		return node.Ref == name
	}
	g, ok := m.structure.Group(node.Ref)
	if !ok {
		return false
	}
	return m.groupStarters(g)[name]
}

// groupStarters returns the segment names that can begin an occurrence of a
// group: the starters of every child up to and including the first
// mandatory one (all children for a choice group).
func (m *matcher) groupStarters(g *schema.Group) map[string]bool {
	starters := make(map[string]bool)
	m.collectStarters(g, starters, make(map[string]bool))
	return starters
}

func (m *matcher) collectStarters(g *schema.Group, set, visited map[string]bool) {
	if visited[g.Name] {
		return
	}
	visited[g.Name] = true

	for _, node := range g.Nodes {
		if node.Kind == schema.KindSegment {
			set[node.Ref] = true
		} else if sub, ok := m.structure.Group(node.Ref); ok {
			m.collectStarters(sub, set, visited)
		}
		if node.Min > 0 && !g.Choice {
			return
		}
	}
}

// consume walks the current segment against its definition and advances.
func (m *matcher) consume() {
	seg := m.segments[m.pos]
	rule, ok := m.schema.SegmentDef(seg.Name)
	if !ok {
		m.findings = append(m.findings, hl7validator.Warning(hl7validator.FindingProcessing).
			Diagnostics(fmt.Sprintf("segment %s has no definition", seg.Name)).
			At(hl7validator.NewLocation(seg.Name, m.pos)).
			Phase(m.phaseName()).
			Build())
	} else {
		m.walk.WalkSegment(seg, m.pos, rule, m.pctx.Delimiters, m.pctx.Bindings, m.pctx.Report)
	}
	m.pos++
}

// skipUnknown consumes segments the grammar never mentions, reporting each
// once, and reports whether anything was skipped.
func (m *matcher) skipUnknown() bool {
	skipped := false
	for name := m.peek(); name != "" && !m.known[name]; name = m.peek() {
		m.unexpected()
		m.pos++
		skipped = true
	}
	return skipped
}

func (m *matcher) unexpected() {
	seg := m.segments[m.pos]
	m.findings = append(m.findings, hl7validator.Error(hl7validator.FindingUnexpectedSegment).
		Diagnostics(fmt.Sprintf("segment %s is not expected here", seg.Name)).
		At(hl7validator.NewLocation(seg.Name, m.pos)).
		Phase(m.phaseName()).
		Build())
}

func (m *matcher) phaseName() string {
	return "structure"
}

// segmentNames collects every segment name referenced anywhere in a
// structure grammar.
func segmentNames(s *schema.Structure) map[string]bool {
	names := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(g *schema.Group)
	visit = func(g *schema.Group) {
		for _, n := range g.Nodes {
			if n.Kind == schema.KindSegment {
				names[n.Ref] = true
				continue
			}
			if visited[n.Ref] {
				continue
			}
			visited[n.Ref] = true
			if sub, ok := s.Group(n.Ref); ok {
				visit(sub)
			}
		}
	}
	visit(s.Root)
	return names
}
