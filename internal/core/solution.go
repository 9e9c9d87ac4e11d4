package core

// Segment is one contiguous execution interval [Start, End) of a task on a
// fixed set of resource units.
type Segment struct {
	Start int
	End   int
	Units []UnitID
}

// UsesUnit reports whether the segment claims the given unit.
func (s Segment) UsesUnit(u UnitID) bool {
	for _, id := range s.Units {
		if id == u {
			return true
		}
	}
	return false
}

// TaskAssignment is the placement of one task: an ordered list of disjoint
// segments.
type TaskAssignment struct {
	Task     TaskID
	Segments []Segment
}

// Start returns the earliest segment start, or 0 for an empty assignment.
func (a *TaskAssignment) Start() int {
	if len(a.Segments) == 0 {
		return 0
	}
	min := a.Segments[0].Start
	for _, s := range a.Segments[1:] {
		if s.Start < min {
			min = s.Start
		}
	}
	return min
}

// End returns the latest segment end, or 0 for an empty assignment.
func (a *TaskAssignment) End() int {
	end := 0
	for _, s := range a.Segments {
		if s.End > end {
			end = s.End
		}
	}
	return end
}

// TotalWork is the summed length of all segments.
func (a *TaskAssignment) TotalWork() int {
	work := 0
	for _, s := range a.Segments {
		work += s.End - s.Start
	}
	return work
}

// AllUnits returns the set of units claimed by any segment.
func (a *TaskAssignment) AllUnits() map[UnitID]bool {
	units := make(map[UnitID]bool)
	for _, s := range a.Segments {
		for _, u := range s.Units {
			units[u] = true
		}
	}
	return units
}

// IsDummy reports whether the assignment carries no work: no segments, or
// zero-length segments only.
func (a *TaskAssignment) IsDummy() bool {
	for _, s := range a.Segments {
		if s.End != s.Start {
			return false
		}
	}
	return true
}

// Solution maps every placed task to its assignment. Solutions are
// immutable validator input.
type Solution struct {
	Assignments map[TaskID]*TaskAssignment
	Makespan    int
}

// NewSolution builds a solution from raw per-task segments and computes the
// makespan (max end over all assignments).
func NewSolution(segments map[TaskID][]Segment) *Solution {
	sol := &Solution{Assignments: make(map[TaskID]*TaskAssignment, len(segments))}
	for tid, segs := range segments {
		a := &TaskAssignment{Task: tid, Segments: segs}
		sol.Assignments[tid] = a
		if end := a.End(); end > sol.Makespan {
			sol.Makespan = end
		}
	}
	return sol
}

// SortedTasks returns the assigned task IDs in ascending order.
func (s *Solution) SortedTasks() []TaskID {
	out := make([]TaskID, 0, len(s.Assignments))
	for tid := range s.Assignments {
		out = append(out, tid)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
