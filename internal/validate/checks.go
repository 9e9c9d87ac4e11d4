package validate

import (
	"fmt"
	"sort"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
)

// checkCompleteness verifies every real task appears in the solution.
// Zero-duration placeholder tasks may be absent.
func (v *Validator) checkCompleteness(sol *core.Solution) []string {
	var out []string
	for _, id := range v.sortedTaskIDs() {
		if v.tasks[id].Duration == 0 {
			continue
		}
		if _, ok := sol.Assignments[id]; !ok {
			out = append(out, fmt.Sprintf("task %d is missing from solution", id))
		}
	}
	return out
}

// checkWorkAmounts verifies each placed task accumulates exactly its
// duration of work across its segments.
func (v *Validator) checkWorkAmounts(sol *core.Solution) []string {
	var out []string
	for _, id := range v.sortedTaskIDs() {
		task := v.tasks[id]
		a, ok := sol.Assignments[id]
		if !ok || task.Duration == 0 {
			continue
		}
		if work := a.TotalWork(); work != task.Duration {
			out = append(out, fmt.Sprintf("task %d: work done (%d) != required duration (%d)", id, work, task.Duration))
		}
	}
	return out
}

// checkPrecedences verifies predecessor end <= successor start for every
// arc. Zero-duration tasks with no segments float and are not checked.
func (v *Validator) checkPrecedences(sol *core.Solution) []string {
	var out []string
	for _, arc := range v.precedences {
		pa, ok := sol.Assignments[arc.Pred]
		if !ok {
			continue
		}
		sa, ok := sol.Assignments[arc.Succ]
		if !ok {
			continue
		}
		if v.tasks[arc.Pred].Duration == 0 && len(pa.Segments) == 0 {
			continue
		}
		if v.tasks[arc.Succ].Duration == 0 && len(sa.Segments) == 0 {
			continue
		}
		if pa.End() > sa.Start() {
			out = append(out, fmt.Sprintf("precedence violated: task %d ends at %d, task %d starts at %d",
				arc.Pred, pa.End(), arc.Succ, sa.Start()))
		}
	}
	return out
}

type usage struct {
	start, end int
	task       core.TaskID
}

// checkResourceConflicts verifies no unit serves two tasks at once.
func (v *Validator) checkResourceConflicts(sol *core.Solution) []string {
	byUnit := make(map[core.UnitID][]usage)
	for _, id := range v.sortedTaskIDs() {
		a, ok := sol.Assignments[id]
		if !ok {
			continue
		}
		for _, seg := range a.Segments {
			for _, u := range seg.Units {
				byUnit[u] = append(byUnit[u], usage{seg.Start, seg.End, id})
			}
		}
	}

	units := make([]core.UnitID, 0, len(byUnit))
	for u := range byUnit {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i] < units[j] })

	var out []string
	for _, u := range units {
		usages := byUnit[u]
		sort.Slice(usages, func(i, j int) bool {
			if usages[i].start != usages[j].start {
				return usages[i].start < usages[j].start
			}
			return usages[i].task < usages[j].task
		})
		for i := range usages {
			for j := i + 1; j < len(usages); j++ {
				a, b := usages[i], usages[j]
				if a.start < b.end && b.start < a.end {
					out = append(out, fmt.Sprintf("resource %d conflict: task %d [%d,%d) overlaps task %d [%d,%d)",
						u, a.task, a.start, a.end, b.task, b.start, b.end))
				}
			}
		}
	}
	return out
}

// checkNoMigration verifies each task keeps the same unit set across all
// its segments. One finding per task.
func (v *Validator) checkNoMigration(sol *core.Solution) []string {
	var out []string
	for _, id := range v.sortedTaskIDs() {
		a, ok := sol.Assignments[id]
		if !ok || len(a.Segments) == 0 {
			continue
		}
		first := unitSet(a.Segments[0].Units)
		for _, seg := range a.Segments[1:] {
			if cur := unitSet(seg.Units); !sameUnitSet(first, cur) {
				out = append(out, fmt.Sprintf("task %d: migration detected, resources changed from %v to %v",
					id, sortedUnits(first), sortedUnits(cur)))
				break
			}
		}
	}
	return out
}

// checkNoDelays verifies consecutive segments of each task are contiguous.
func (v *Validator) checkNoDelays(sol *core.Solution) []string {
	var out []string
	for _, id := range v.sortedTaskIDs() {
		a, ok := sol.Assignments[id]
		if !ok {
			continue
		}
		for i := 0; i+1 < len(a.Segments); i++ {
			if end, next := a.Segments[i].End, a.Segments[i+1].Start; end != next {
				out = append(out, fmt.Sprintf("task %d: gap detected between %d and %d", id, end, next))
			}
		}
	}
	return out
}

// checkCalendarContinuous verifies every assigned unit is available at each
// instant of each segment. One finding per unit per segment.
func (v *Validator) checkCalendarContinuous(sol *core.Solution) []string {
	var out []string
	for _, id := range v.sortedTaskIDs() {
		a, ok := sol.Assignments[id]
		if !ok {
			continue
		}
		for _, seg := range a.Segments {
			for _, u := range seg.Units {
				for t := seg.Start; t < seg.End; t++ {
					if !v.available(u, t) {
						out = append(out, fmt.Sprintf("task %d: resource %d unavailable at time %d during execution [%d,%d)",
							id, u, t, seg.Start, seg.End))
						break
					}
				}
			}
		}
	}
	return out
}

// checkAggregateCapacity verifies per-type demand never exceeds the number
// of available units, evaluated at every breakpoint. Breakpoints are 0,
// all segment bounds and all calendar step times. marker is inserted after
// the type id in violation messages.
func (v *Validator) checkAggregateCapacity(sol *core.Solution, typeIDs []core.TypeID, marker string) []string {
	points := v.breakpoints(sol)

	var out []string
	for _, typeID := range typeIDs {
		units, ok := v.types[typeID]
		if !ok {
			continue
		}
		for i := 0; i+1 < len(points); i++ {
			t := points[i]

			capacity := 0
			for _, u := range units {
				if v.available(u, t) {
					capacity++
				}
			}

			demand := 0
			for _, id := range v.taskOrder {
				a, ok := sol.Assignments[id]
				if !ok {
					continue
				}
				for _, seg := range a.Segments {
					if seg.Start <= t && t < seg.End {
						demand += v.tasks[id].Requirements[typeID]
					}
				}
			}

			if demand > capacity {
				out = append(out, fmt.Sprintf("type %d%s over capacity at time %d: demand=%d, capacity=%d",
					typeID, marker, t, demand, capacity))
			}
		}
	}
	return out
}

// checkBlockedResources verifies no other task touches a task's units
// anywhere inside its whole span, pauses included.
func (v *Validator) checkBlockedResources(sol *core.Solution) []string {
	ids := v.placedOrder(sol)

	var out []string
	for _, id := range ids {
		a := sol.Assignments[id]
		if len(a.Segments) == 0 {
			continue
		}
		held := a.AllUnits()
		spanStart, spanEnd := a.Start(), a.End()

		for _, otherID := range ids {
			if otherID == id {
				continue
			}
			for _, seg := range sol.Assignments[otherID].Segments {
				if max(spanStart, seg.Start) >= min(spanEnd, seg.End) {
					continue
				}
				var shared []core.UnitID
				for _, u := range seg.Units {
					if held[u] {
						shared = append(shared, u)
					}
				}
				if len(shared) > 0 {
					sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })
					out = append(out, fmt.Sprintf("task %d blocks resources %v during [%d,%d), but task %d uses them at [%d,%d)",
						id, shared, spanStart, spanEnd, otherID, seg.Start, seg.End))
				}
			}
		}
	}
	return out
}

// checkWorkDuringAvailability verifies work is only claimed at instants
// where every assigned unit of the segment is available.
func (v *Validator) checkWorkDuringAvailability(sol *core.Solution) []string {
	var out []string
	for _, id := range v.sortedTaskIDs() {
		a, ok := sol.Assignments[id]
		if !ok {
			continue
		}
		for _, seg := range a.Segments {
			if len(seg.Units) == 0 {
				continue
			}
			for t := seg.Start; t < seg.End; t++ {
				all := true
				for _, u := range seg.Units {
					if !v.available(u, t) {
						all = false
						break
					}
				}
				if !all {
					out = append(out, fmt.Sprintf("task %d: work claimed at time %d but not all resources %v are available",
						id, t, seg.Units))
					break
				}
			}
		}
	}
	return out
}

// checkSegmentsInAvailability verifies each segment lies entirely inside an
// availability window of each of its units.
func (v *Validator) checkSegmentsInAvailability(sol *core.Solution) []string {
	var out []string
	for _, id := range v.sortedTaskIDs() {
		a, ok := sol.Assignments[id]
		if !ok {
			continue
		}
		for _, seg := range a.Segments {
			for _, u := range seg.Units {
				windows := v.calendars[u].Windows(core.DefaultHorizon)
				contained := false
				for _, w := range windows {
					if w.Start <= seg.Start && seg.End <= w.End {
						contained = true
						break
					}
				}
				if !contained {
					out = append(out, fmt.Sprintf("task %d segment [%d,%d) with resource %d not contained in any availability window",
						id, seg.Start, seg.End, u))
				}
			}
		}
	}
	return out
}

// checkHeterogeneous applies no-migration and blocked-style availability
// rules to fixed-type units, and aggregate capacity to migrating types.
func (v *Validator) checkHeterogeneous(sol *core.Solution, part Partition) []string {
	var out []string
	for _, id := range v.sortedTaskIDs() {
		a, ok := sol.Assignments[id]
		if !ok || len(a.Segments) == 0 {
			continue
		}

		fixedUnits := make(map[core.UnitID]bool)
		for _, seg := range a.Segments {
			for _, u := range seg.Units {
				if part.Fixed[v.unitType[u]] {
					fixedUnits[u] = true
				}
			}
		}

		// Fixed-type units must be identical in every segment.
		var expected map[core.UnitID]bool
		for i, seg := range a.Segments {
			segFixed := make(map[core.UnitID]bool)
			for _, u := range seg.Units {
				if part.Fixed[v.unitType[u]] {
					segFixed[u] = true
				}
			}
			if i == 0 {
				expected = segFixed
			} else if !sameUnitSet(expected, segFixed) {
				out = append(out, fmt.Sprintf("task %d: fixed-type resources changed from %v to %v",
					id, sortedUnits(expected), sortedUnits(segFixed)))
			}
		}

		// Fixed units stay held across the whole span, so they must be
		// available throughout it.
		if len(fixedUnits) > 0 {
			start, end := a.Start(), a.End()
			for _, u := range sortedUnits(fixedUnits) {
				for t := start; t < end; t++ {
					if !v.available(u, t) {
						out = append(out, fmt.Sprintf("task %d: fixed resource %d unavailable at time %d during execution",
							id, u, t))
						break
					}
				}
			}
		}
	}

	var migrating []core.TypeID
	for _, typeID := range v.typeOrder {
		if part.Migrating[typeID] {
			migrating = append(migrating, typeID)
		}
	}
	out = append(out, v.checkAggregateCapacity(sol, migrating, " (migration)")...)
	return out
}

// breakpoints collects the sorted candidate instants where demand or
// capacity can change.
func (v *Validator) breakpoints(sol *core.Solution) []int {
	seen := map[int]bool{0: true}
	for _, a := range sol.Assignments {
		for _, seg := range a.Segments {
			seen[seg.Start] = true
			seen[seg.End] = true
		}
	}
	for _, cal := range v.calendars {
		for _, step := range cal {
			seen[step.Time] = true
		}
	}
	points := make([]int, 0, len(seen))
	for t := range seen {
		points = append(points, t)
	}
	sort.Ints(points)
	return points
}

// placedOrder returns the sorted task IDs present in the solution.
func (v *Validator) placedOrder(sol *core.Solution) []core.TaskID {
	var ids []core.TaskID
	for _, id := range v.sortedTaskIDs() {
		if _, ok := sol.Assignments[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func unitSet(units []core.UnitID) map[core.UnitID]bool {
	s := make(map[core.UnitID]bool, len(units))
	for _, u := range units {
		s[u] = true
	}
	return s
}

func sameUnitSet(a, b map[core.UnitID]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for u := range a {
		if !b[u] {
			return false
		}
	}
	return true
}

func sortedUnits(s map[core.UnitID]bool) []core.UnitID {
	out := make([]core.UnitID, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
