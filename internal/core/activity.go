package core

// Activity is a unit of work in the project network.
// Duration 0 marks a dummy (milestone) activity.
type Activity struct {
	ID           ActivityID
	Duration     int
	Successors   map[ActivityID]bool // precedence edges i -> j
	Branches     BranchSet           // scheduled iff one of these branches is selected
	Requirements []int               // demand per resource type
}

// InBranch reports whether the activity belongs to branch b.
func (a *Activity) InBranch(b BranchID) bool {
	return a.Branches[b]
}

// SortedSuccessors returns successor IDs in ascending order.
func (a *Activity) SortedSuccessors() []ActivityID {
	out := make([]ActivityID, 0, len(a.Successors))
	for s := range a.Successors {
		out = append(out, s)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
