package core

// RawSubgraph groups the branches of one decision point before the
// principal activity has been reconstructed from topology.
type RawSubgraph struct {
	ID       SubgraphID
	Branches BranchSet
}

// Subgraph is a decision point with its principal (branching) activity
// resolved. Exactly one of its branches must be selected whenever the
// principal activity is scheduled.
type Subgraph struct {
	RawSubgraph
	PrincipalActivity ActivityID
}

// InstanceCore holds the fields shared by raw and resolved instances.
type InstanceCore struct {
	Name       string
	Resources  []int // capacity per resource type
	Activities []Activity
}

// ActivityByID returns the activity with the given ID, or nil.
// Activities are dense and ordered by ID.
func (c *InstanceCore) ActivityByID(id ActivityID) *Activity {
	if id < 0 || int(id) >= len(c.Activities) {
		return nil
	}
	return &c.Activities[id]
}

// Sink returns the conventional sink activity (last by ID), or nil for an
// empty instance.
func (c *InstanceCore) Sink() *Activity {
	if len(c.Activities) == 0 {
		return nil
	}
	return &c.Activities[len(c.Activities)-1]
}

// RawInstance is an instance as parsed from benchmark files, before
// principal activity reconstruction.
type RawInstance struct {
	InstanceCore
	Subgraphs []RawSubgraph
}

// Instance is a fully resolved instance, ready for model building and
// validation. Instances are immutable after construction and safe to share
// across goroutines.
type Instance struct {
	InstanceCore
	Subgraphs []Subgraph
}

// AltParams describes the alternative-structure complexity metadata carried
// by ASlib benchmark files.
type AltParams struct {
	Flex   float64
	Nested float64
	Linked float64
}

// AslibFiles records the source files of an ASlib instance.
type AslibFiles struct {
	FileA string
	FileB string
}

// AslibInstance is an RCPSP-AS instance with a makespan (Cmax) objective.
type AslibInstance struct {
	Instance
	Params AltParams
	Files  *AslibFiles
}

// WtDueDate is a due date and weight for a monitored activity under the
// weighted-tardiness objective.
type WtDueDate struct {
	DueDate int
	Weight  int
}

// WtGenParams are the generation parameters recorded in a weighted-tardiness
// companion file.
type WtGenParams struct {
	ActivitiesInJob  int
	JobsInInstance   int
	InstanceStartLag float64
	ResourceOverlap  float64
	WeightMin        int
	WeightMax        int
}

// WtFiles records the source files of a weighted-tardiness instance.
type WtFiles struct {
	FileA  string
	FileB  string
	FileWT string
}

// WtInstance is an RCPSP-AS instance with a weighted-tardiness objective.
// Unlike Cmax instances it may have multiple sink activities.
type WtInstance struct {
	Instance
	DueDates map[ActivityID]WtDueDate
	Params   WtGenParams
	Files    *WtFiles
}
