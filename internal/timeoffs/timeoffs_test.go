package timeoffs

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
)

const sample = `# Tier: small | topology: random_dag

# HEADER: <num_tasks> <num_types> <num_units>
4 2 3

# RESOURCE TYPES
0 2 0 1
1 1 2

# RESOURCE UNITS (Calendars)
0 4 0 100 2 0 3 100 12 0
1 2 0 100 10 0
2 0

# TASKS
0 0 0
1 4 2
 0 1
 1 0
2 2 1
 0 2
3 0 0

# PRECEDENCES
4
0 1
0 2
1 3
2 3
`

func TestParseInstance(t *testing.T) {
	inst, err := ParseInstance(strings.NewReader(sample), "sample")
	require.NoError(t, err)

	assert.Equal(t, "sample", inst.Name)
	require.Len(t, inst.Tasks, 4)
	require.Len(t, inst.Types, 2)
	require.Len(t, inst.Units, 3)
	require.Len(t, inst.Precedences, 4)

	assert.Equal(t, []core.UnitID{0, 1}, inst.Types[0].Units)
	assert.Equal(t, []core.UnitID{2}, inst.Types[1].Units)

	assert.Equal(t, core.Calendar{
		{Time: 0, Value: 100}, {Time: 2, Value: 0}, {Time: 3, Value: 100}, {Time: 12, Value: 0},
	}, inst.Units[0].Calendar)
	assert.Empty(t, inst.Units[2].Calendar)

	// Zero-quantity requirement lines are dropped on parse.
	task1 := inst.Tasks[1]
	assert.Equal(t, 4, task1.Duration)
	assert.Equal(t, map[core.TypeID]int{0: 1}, task1.Requirements)
	assert.Equal(t, map[core.TypeID]int{0: 2}, inst.Tasks[2].Requirements)

	assert.Equal(t, core.Arc{Pred: 2, Succ: 3}, inst.Precedences[3])
}

func TestWriteInstanceRoundTrip(t *testing.T) {
	inst, err := ParseInstance(strings.NewReader(sample), "sample")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteInstance(&buf, inst, "Tier: small | topology: random_dag"))

	back, err := ParseInstance(&buf, "sample")
	require.NoError(t, err)
	assert.Equal(t, inst, back)
}

func TestParseInstanceErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"short header", "4 2\n"},
		{"bad type line", "1 1 1\n0 2 0\n"},
		{"bad calendar", "1 1 1\n0 1 0\n0 2 0 100\n"},
		{"non-numeric", "1 1 one\n"},
		{"truncated tasks", "2 1 1\n0 1 0\n0 0\n0 0 0\n"},
		{"negative header count", "-1 0 0\n"},
		{"negative requirement count", "1 0 0\n0 2 -1\n0\n"},
		{"negative precedence count", "1 0 0\n0 2 0\n-1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseInstance(strings.NewReader(tc.input), "bad")
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestSolutionRoundTrip(t *testing.T) {
	sol := core.NewSolution(map[core.TaskID][]core.Segment{
		0: nil,
		1: {{Start: 3, End: 5, Units: []core.UnitID{0, 2}}, {Start: 6, End: 8, Units: []core.UnitID{0, 2}}},
		7: {{Start: 0, End: 4, Units: []core.UnitID{1}}},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteSolution(&buf, sol))

	back, err := ParseSolution(&buf)
	require.NoError(t, err)

	require.Len(t, back.Assignments, 3)
	assert.Equal(t, sol.Makespan, back.Makespan)
	assert.Equal(t, []core.TaskID{0, 1, 7}, back.SortedTasks())

	a1 := back.Assignments[1]
	require.Len(t, a1.Segments, 2)
	assert.Equal(t, core.Segment{Start: 3, End: 5, Units: []core.UnitID{0, 2}}, a1.Segments[0])
	assert.Equal(t, 4, a1.TotalWork())
}

func TestParseSolutionLiteral(t *testing.T) {
	const doc = `{"2": [[3, 5, [0, 2]], [6, 8, [0, 2]]], "5": []}`
	sol, err := ParseSolution(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 8, sol.Makespan)
	require.Contains(t, sol.Assignments, core.TaskID(2))
	assert.Equal(t, []core.UnitID{0, 2}, sol.Assignments[2].Segments[1].Units)
	assert.True(t, sol.Assignments[5].IsDummy())
}

func TestParseSolutionRejectsBadSegment(t *testing.T) {
	_, err := ParseSolution(strings.NewReader(`{"1": [[3, 5]]}`))
	assert.Error(t, err)

	_, err = ParseSolution(strings.NewReader(`{"x": []}`))
	assert.Error(t, err)
}
