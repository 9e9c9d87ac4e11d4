// Package core defines domain models for RCPSP-AS and RCPSP with time-offs.
package core

// ActivityID is a unique activity identifier. Benchmark files number
// activities from 1; internally IDs are dense and 0-based.
type ActivityID int

// BranchID identifies one alternative branch. Branch 0 is the root branch
// and is always selected.
type BranchID int

// RootBranch is the implicit always-selected branch.
const RootBranch BranchID = 0

// SubgraphID identifies an alternative subgraph (decision point).
type SubgraphID int

// BranchSet is a set of branch IDs.
type BranchSet map[BranchID]bool

// NewBranchSet builds a set from branch IDs.
func NewBranchSet(ids ...BranchID) BranchSet {
	s := make(BranchSet, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// Equal reports whether two branch sets contain the same branches.
func (s BranchSet) Equal(other BranchSet) bool {
	if len(s) != len(other) {
		return false
	}
	for b := range s {
		if !other[b] {
			return false
		}
	}
	return true
}

// Intersects reports whether the sets share any branch.
func (s BranchSet) Intersects(other BranchSet) bool {
	for b := range s {
		if other[b] {
			return true
		}
	}
	return false
}

// Sorted returns the branches in ascending order.
func (s BranchSet) Sorted() []BranchID {
	out := make([]BranchID, 0, len(s))
	for b := range s {
		out = append(out, b)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
