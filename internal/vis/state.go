// Package vis implements a Gio-based Gantt viewer for validated schedules:
// one row per resource unit, execution segments as bars, calendar
// unavailability shaded, and validation violations marked.
package vis

import (
	"sort"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

// Bar is one drawn segment: a task occupying one unit for an interval.
type Bar struct {
	Task  core.TaskID
	Unit  core.UnitID
	Start int
	End   int
}

// State is the immutable scene plus the mutable view cursor.
type State struct {
	Instance *core.FlatInstance
	Solution *core.Solution
	Report   *validate.Report
	Policy   validate.Policy

	Units   []core.UnitID
	RowOf   map[core.UnitID]int
	Bars    []Bar
	Horizon int

	// Cursor is the highlighted instant on the timeline.
	Cursor float64
}

// NewState precomputes the row layout and bar list for drawing.
func NewState(inst *core.FlatInstance, sol *core.Solution, rep *validate.Report, policy validate.Policy) *State {
	st := &State{
		Instance: inst,
		Solution: sol,
		Report:   rep,
		Policy:   policy,
		RowOf:    make(map[core.UnitID]int),
	}

	for _, rt := range inst.Types {
		for _, u := range rt.Units {
			st.RowOf[u] = len(st.Units)
			st.Units = append(st.Units, u)
		}
	}

	for _, tid := range sol.SortedTasks() {
		for _, seg := range sol.Assignments[tid].Segments {
			if seg.End == seg.Start {
				continue
			}
			for _, u := range seg.Units {
				st.Bars = append(st.Bars, Bar{Task: tid, Unit: u, Start: seg.Start, End: seg.End})
			}
		}
	}
	sort.Slice(st.Bars, func(i, j int) bool {
		if st.Bars[i].Unit != st.Bars[j].Unit {
			return st.Bars[i].Unit < st.Bars[j].Unit
		}
		return st.Bars[i].Start < st.Bars[j].Start
	})

	st.Horizon = sol.Makespan
	if st.Horizon < 1 {
		st.Horizon = 1
	}
	return st
}

// OffWindows returns the unavailability intervals of a unit clipped to the
// horizon.
func (s *State) OffWindows(u core.UnitID) []core.Window {
	cal := s.calendarOf(u)
	if len(cal) == 0 {
		return nil
	}

	var off []core.Window
	prev := 0
	for _, w := range cal.Windows(s.Horizon) {
		if w.Start > prev {
			off = append(off, core.Window{Start: prev, End: w.Start})
		}
		prev = w.End
	}
	if prev < s.Horizon {
		off = append(off, core.Window{Start: prev, End: s.Horizon})
	}
	return off
}

func (s *State) calendarOf(u core.UnitID) core.Calendar {
	for _, unit := range s.Instance.Units {
		if unit.ID == u {
			return unit.Calendar
		}
	}
	return nil
}

// SeekTo clamps and sets the cursor.
func (s *State) SeekTo(t float64) {
	if t < 0 {
		t = 0
	}
	if t > float64(s.Horizon) {
		t = float64(s.Horizon)
	}
	s.Cursor = t
}

// Step moves the cursor by whole time units.
func (s *State) Step(delta int) {
	s.SeekTo(s.Cursor + float64(delta))
}

// ActiveTasks returns the tasks executing at the cursor, sorted.
func (s *State) ActiveTasks() []core.TaskID {
	t := int(s.Cursor)
	seen := make(map[core.TaskID]bool)
	var out []core.TaskID
	for _, bar := range s.Bars {
		if bar.Start <= t && t < bar.End && !seen[bar.Task] {
			seen[bar.Task] = true
			out = append(out, bar.Task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
