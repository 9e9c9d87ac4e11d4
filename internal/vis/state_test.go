package vis

import (
	"reflect"
	"testing"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

func testState() *State {
	inst := &core.FlatInstance{
		Name: "view",
		Tasks: []core.Task{
			{ID: 0, Duration: 4, Requirements: map[core.TypeID]int{0: 1}},
			{ID: 1, Duration: 2, Requirements: map[core.TypeID]int{0: 1}},
		},
		Types: []core.ResourceType{{ID: 0, Units: []core.UnitID{0, 1}}},
		Units: []core.ResourceUnit{
			{ID: 0, Calendar: core.Calendar{{Time: 0, Value: 100}, {Time: 2, Value: 0}, {Time: 3, Value: 100}}},
			{ID: 1},
		},
	}
	sol := core.NewSolution(map[core.TaskID][]core.Segment{
		0: {{Start: 0, End: 2, Units: []core.UnitID{0}}, {Start: 3, End: 5, Units: []core.UnitID{0}}},
		1: {{Start: 1, End: 3, Units: []core.UnitID{1}}},
	})
	return NewState(inst, sol, nil, validate.MigrationDelay)
}

func TestNewStateLayout(t *testing.T) {
	st := testState()

	if st.Horizon != 5 {
		t.Errorf("Horizon = %d, want 5", st.Horizon)
	}
	if len(st.Units) != 2 || st.RowOf[1] != 1 {
		t.Errorf("row layout wrong: units=%v rows=%v", st.Units, st.RowOf)
	}

	want := []Bar{
		{Task: 0, Unit: 0, Start: 0, End: 2},
		{Task: 0, Unit: 0, Start: 3, End: 5},
		{Task: 1, Unit: 1, Start: 1, End: 3},
	}
	if !reflect.DeepEqual(st.Bars, want) {
		t.Errorf("Bars = %v, want %v", st.Bars, want)
	}
}

func TestStateOffWindows(t *testing.T) {
	st := testState()

	off := st.OffWindows(0)
	if want := []core.Window{{Start: 2, End: 3}}; !reflect.DeepEqual(off, want) {
		t.Errorf("OffWindows(0) = %v, want %v", off, want)
	}
	if off := st.OffWindows(1); off != nil {
		t.Errorf("OffWindows(1) = %v, want none", off)
	}
}

func TestStateCursor(t *testing.T) {
	st := testState()

	st.SeekTo(99)
	if st.Cursor != 5 {
		t.Errorf("cursor clamped to %v, want 5", st.Cursor)
	}
	st.SeekTo(-3)
	if st.Cursor != 0 {
		t.Errorf("cursor clamped to %v, want 0", st.Cursor)
	}

	st.SeekTo(1)
	if got := st.ActiveTasks(); !reflect.DeepEqual(got, []core.TaskID{0, 1}) {
		t.Errorf("ActiveTasks at 1 = %v", got)
	}
	st.Step(1)
	if got := st.ActiveTasks(); !reflect.DeepEqual(got, []core.TaskID{1}) {
		t.Errorf("ActiveTasks at 2 = %v", got)
	}
}
