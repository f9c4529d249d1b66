package pipeline

// PhaseGroup represents a group of phases that can be executed together.
// Phases in the same group have the same priority level.
type PhaseGroup struct {
	// Priority is the execution priority of this group
	Priority PhasePriority

	// Phases contains all phases in this group
	Phases []*PhaseConfig

	// Parallel indicates if phases in this group can run concurrently
	Parallel bool
}

// PhaseCount returns the number of phases in the group.
func (g *PhaseGroup) PhaseCount() int {
	return len(g.Phases)
}

// Names returns the names of all phases in the group.
func (g *PhaseGroup) Names() []string {
	names := make([]string, len(g.Phases))
	for i, cfg := range g.Phases {
		names[i] = cfg.Phase.Name()
	}
	return names
}

// StandardGroups defines the standard phase execution groups. The structural
// phase must run alone and first: it matches the segment sequence against
// the grammar and emits the leaf bindings every other phase consumes. The
// four leaf layers are independent of each other and may run concurrently.
var StandardGroups = []struct {
	Priority PhasePriority
	Parallel bool
	Phases   []PhaseID
}{
	{
		Priority: PriorityFirst,
		Parallel: false,
		Phases:   []PhaseID{PhaseIDStructure},
	},
	{
		Priority: PriorityNormal,
		Parallel: true,
		Phases: []PhaseID{
			PhaseIDFormat,
			PhaseIDCodeTable,
			PhaseIDFieldLength,
			PhaseIDDataTypeLength,
			PhaseIDValueSet,
		},
	},
}
