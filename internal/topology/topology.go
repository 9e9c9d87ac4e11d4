// Package topology reconstructs the principal (branching) activity of every
// alternative subgraph from raw successor/branch structure and certifies the
// well-formedness of the resulting instance.
//
// Benchmark files record which activities belong to which branches but never
// which activity triggers a branch choice. An activity is the principal of a
// subgraph iff each of its immediate successors belongs to exactly one
// branch, those branches are pairwise disjoint, and together they are
// exactly the subgraph's branch set.
package topology

import (
	"errors"
	"fmt"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
)

// ErrNotTopological is returned when a successor ID is not strictly greater
// than its predecessor's ID.
var ErrNotTopological = errors.New("topology: activities not in topological order")

// ErrBranchNumbering is returned when non-root branch IDs are not
// consecutive integers starting at 1 across all subgraphs.
var ErrBranchNumbering = errors.New("topology: branch ids must be consecutive from 1")

// ErrUnreachableSink is returned when some activity cannot reach the sink.
var ErrUnreachableSink = errors.New("topology: activities not reachable from sink")

// ErrSinkBranches is returned when the sink belongs to a non-root branch.
var ErrSinkBranches = errors.New("topology: sink must belong only to the root branch")

// ErrMultiplePrincipals is returned when two distinct activities both
// qualify as principal for the same subgraph.
var ErrMultiplePrincipals = errors.New("topology: subgraph has multiple branching activities")

// ErrNoPrincipal is returned when no activity qualifies as principal for a
// subgraph.
var ErrNoPrincipal = errors.New("topology: subgraph has no branching activity")

// ErrPrincipalInSubgraph is returned when a principal activity belongs to a
// branch of its own subgraph.
var ErrPrincipalInSubgraph = errors.New("topology: branching activity belongs to its own subgraph")

// ErrNoDominance is returned when the principal activity cannot reach every
// activity of its subgraph via successor edges.
var ErrNoDominance = errors.New("topology: branching activity does not dominate its subgraph")

// Option configures reconstruction.
type Option func(*options)

type options struct {
	multipleSinks bool
}

// WithMultipleSinks skips the single-sink reachability and sink-branch
// checks. Weighted-tardiness instances may have several sink activities.
func WithMultipleSinks() Option {
	return func(o *options) { o.multipleSinks = true }
}

// Reconstruct infers the principal activity of every subgraph and returns a
// resolved Instance. Every violation is fatal: the raw instance cannot be
// partially reconstructed and must be discarded on error.
func Reconstruct(raw *core.RawInstance, opts ...Option) (*core.Instance, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := verifyBranchNumbering(raw.Subgraphs); err != nil {
		return nil, err
	}
	reverse, err := buildReverse(raw.Activities)
	if err != nil {
		return nil, err
	}
	if !o.multipleSinks {
		if err := verifySink(raw, reverse); err != nil {
			return nil, err
		}
	}

	principals, err := findPrincipals(raw)
	if err != nil {
		return nil, err
	}

	subgraphs := make([]core.Subgraph, len(raw.Subgraphs))
	for i, sg := range raw.Subgraphs {
		if err := verifyDominance(raw, principals[i], sg); err != nil {
			return nil, err
		}
		subgraphs[i] = core.Subgraph{RawSubgraph: sg, PrincipalActivity: principals[i]}
	}

	return &core.Instance{InstanceCore: raw.InstanceCore, Subgraphs: subgraphs}, nil
}

// verifyBranchNumbering checks that subgraph branch sets partition
// {1..total} with no overlaps and no gaps.
func verifyBranchNumbering(subgraphs []core.RawSubgraph) error {
	total := 0
	seen := make(core.BranchSet)
	for _, sg := range subgraphs {
		total += len(sg.Branches)
		for b := range sg.Branches {
			if seen[b] {
				return fmt.Errorf("%w: branch %d appears in more than one subgraph", ErrBranchNumbering, b)
			}
			seen[b] = true
		}
	}
	for b := core.BranchID(1); int(b) <= total; b++ {
		if !seen[b] {
			return fmt.Errorf("%w: got %v", ErrBranchNumbering, seen.Sorted())
		}
	}
	if len(seen) != total {
		return fmt.Errorf("%w: got %v", ErrBranchNumbering, seen.Sorted())
	}
	return nil
}

// buildReverse builds the reverse adjacency structure while checking
// topological numbering.
func buildReverse(activities []core.Activity) ([][]core.ActivityID, error) {
	reverse := make([][]core.ActivityID, len(activities))
	for i := range activities {
		act := &activities[i]
		for succ := range act.Successors {
			if succ <= act.ID {
				return nil, fmt.Errorf("%w: edge %d -> %d", ErrNotTopological, act.ID, succ)
			}
			if int(succ) >= len(activities) {
				return nil, fmt.Errorf("%w: edge %d -> %d is out of range", ErrNotTopological, act.ID, succ)
			}
			reverse[succ] = append(reverse[succ], act.ID)
		}
	}
	return reverse, nil
}

// verifySink checks that every activity reaches the designated sink (last
// activity by ID) and that the sink belongs only to the root branch.
func verifySink(raw *core.RawInstance, reverse [][]core.ActivityID) error {
	sink := raw.Sink()
	if sink == nil {
		return nil
	}

	seen := make([]bool, len(raw.Activities))
	seen[sink.ID] = true
	queue := []core.ActivityID{sink.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, pred := range reverse[id] {
			if !seen[pred] {
				seen[pred] = true
				queue = append(queue, pred)
			}
		}
	}
	for i, ok := range seen {
		if !ok {
			return fmt.Errorf("%w: activity %d cannot reach sink %d", ErrUnreachableSink, i, sink.ID)
		}
	}

	if len(sink.Branches) != 1 || !sink.InBranch(core.RootBranch) {
		return fmt.Errorf("%w: sink %d belongs to branches %v", ErrSinkBranches, sink.ID, sink.Branches.Sorted())
	}
	return nil
}

// findPrincipals runs the single matching pass over all activities and
// enforces that the subgraph -> principal mapping is a bijection.
func findPrincipals(raw *core.RawInstance) ([]core.ActivityID, error) {
	principals := make([]core.ActivityID, len(raw.Subgraphs))
	found := make([]bool, len(raw.Subgraphs))

	for i := range raw.Activities {
		act := &raw.Activities[i]
		union, ok := successorBranchUnion(raw, act)
		if !ok {
			continue
		}
		for sgIdx := range raw.Subgraphs {
			if !raw.Subgraphs[sgIdx].Branches.Equal(union) {
				continue
			}
			if found[sgIdx] {
				return nil, fmt.Errorf("%w: subgraph %d matches activities %d and %d",
					ErrMultiplePrincipals, raw.Subgraphs[sgIdx].ID, principals[sgIdx], act.ID)
			}
			principals[sgIdx] = act.ID
			found[sgIdx] = true
			break
		}
	}

	for i, ok := range found {
		if !ok {
			return nil, fmt.Errorf("%w: subgraph %d", ErrNoPrincipal, raw.Subgraphs[i].ID)
		}
	}
	return principals, nil
}

// successorBranchUnion returns the union of the successors' branch sets if
// the activity is a candidate principal: at least one successor, every
// successor in exactly one branch, and all those branches pairwise disjoint.
func successorBranchUnion(raw *core.RawInstance, act *core.Activity) (core.BranchSet, bool) {
	if len(act.Successors) == 0 {
		return nil, false
	}
	union := make(core.BranchSet, len(act.Successors))
	for succ := range act.Successors {
		branches := raw.Activities[succ].Branches
		if len(branches) != 1 {
			return nil, false
		}
		for b := range branches {
			if union[b] {
				return nil, false // overlapping successor branches
			}
			union[b] = true
		}
	}
	return union, true
}

// verifyDominance checks the per-subgraph post-condition: the principal is
// not a member of its own subgraph and forward-reaches every activity that
// belongs to any of the subgraph's branches.
func verifyDominance(raw *core.RawInstance, principal core.ActivityID, sg core.RawSubgraph) error {
	required := make(map[core.ActivityID]bool)
	for i := range raw.Activities {
		if raw.Activities[i].Branches.Intersects(sg.Branches) {
			required[raw.Activities[i].ID] = true
		}
	}
	if required[principal] {
		return fmt.Errorf("%w: activity %d is inside subgraph %d", ErrPrincipalInSubgraph, principal, sg.ID)
	}

	seen := map[core.ActivityID]bool{principal: true}
	queue := []core.ActivityID{principal}
	for len(queue) > 0 && len(required) > 0 {
		id := queue[0]
		queue = queue[1:]
		for succ := range raw.Activities[id].Successors {
			if seen[succ] {
				continue
			}
			delete(required, succ)
			seen[succ] = true
			queue = append(queue, succ)
		}
	}
	if len(required) > 0 {
		missing := make([]core.ActivityID, 0, len(required))
		for id := range required {
			missing = append(missing, id)
		}
		for i := 1; i < len(missing); i++ {
			for j := i; j > 0 && missing[j] < missing[j-1]; j-- {
				missing[j], missing[j-1] = missing[j-1], missing[j]
			}
		}
		return fmt.Errorf("%w: activity %d does not reach %v in subgraph %d",
			ErrNoDominance, principal, missing, sg.ID)
	}
	return nil
}

// Principals returns the subgraph -> principal mapping of a resolved
// instance, in subgraph order.
func Principals(inst *core.Instance) []core.ActivityID {
	out := make([]core.ActivityID, len(inst.Subgraphs))
	for i, sg := range inst.Subgraphs {
		out[i] = sg.PrincipalActivity
	}
	return out
}
