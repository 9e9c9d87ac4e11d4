package rcp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/topology"
)

// diamondA is a six-activity instance with one resource: the third
// activity fans out into two single-activity branches.
const diamondA = `6 1
4
0 0 1 2
2 1 1 3
3 1 2 4 5
4 2 1 6
1 1 1 6
0 0 0
`

const diamondB = `0.4 0.0 0.0
1
2 2 3
1 1
1 1
1 1
1 2
1 3
1 1
`

// diamondBNoParams is the b file layout of the weighted-tardiness set,
// which carries no parameter line.
const diamondBNoParams = `1
2 2 3
1 1
1 1
1 1
1 2
1 3
1 1
`

const diamondWT = `5 2 0.25 0.5 1 10
2
4 3 12
5 1 9
`

func TestParseAslib(t *testing.T) {
	inst, err := ParseAslib(strings.NewReader(diamondA), strings.NewReader(diamondB), "diamond", nil)
	require.NoError(t, err)

	assert.Equal(t, "diamond", inst.Name)
	assert.Equal(t, []int{4}, inst.Resources)
	require.Len(t, inst.Activities, 6)
	assert.Equal(t, core.AltParams{Flex: 0.4}, inst.Params)

	// IDs are converted to 0-based exactly once at parse.
	a2 := inst.Activities[2]
	assert.Equal(t, 3, a2.Duration)
	assert.Equal(t, []int{1}, a2.Requirements)
	assert.Equal(t, []core.ActivityID{3, 4}, a2.SortedSuccessors())
	assert.True(t, inst.Activities[0].InBranch(core.RootBranch))
	assert.True(t, inst.Activities[3].InBranch(1))
	assert.True(t, inst.Activities[4].InBranch(2))

	require.Len(t, inst.Subgraphs, 1)
	assert.Equal(t, []core.BranchID{1, 2}, inst.Subgraphs[0].Branches.Sorted())
	assert.Equal(t, core.ActivityID(2), inst.Subgraphs[0].PrincipalActivity)
}

func TestParseWt(t *testing.T) {
	inst, err := ParseWt(strings.NewReader(diamondA), strings.NewReader(diamondBNoParams),
		strings.NewReader(diamondWT), "diamond", nil)
	require.NoError(t, err)

	assert.Equal(t, core.WtGenParams{
		ActivitiesInJob:  5,
		JobsInInstance:   2,
		InstanceStartLag: 0.25,
		ResourceOverlap:  0.5,
		WeightMin:        1,
		WeightMax:        10,
	}, inst.Params)

	require.Len(t, inst.DueDates, 2)
	assert.Equal(t, core.WtDueDate{DueDate: 12, Weight: 3}, inst.DueDates[3])
	assert.Equal(t, core.WtDueDate{DueDate: 9, Weight: 1}, inst.DueDates[4])
	assert.Equal(t, core.ActivityID(2), inst.Subgraphs[0].PrincipalActivity)
}

func TestLoadPicksVariantFromCompanionFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Pat8a.RCP"), diamondA)
	writeFile(t, filepath.Join(dir, "Pat8b.RCP"), diamondB)

	res, err := Load(filepath.Join(dir, "Pat8a.RCP"))
	require.NoError(t, err)
	require.NotNil(t, res.Aslib)
	assert.Nil(t, res.Wt)
	assert.Equal(t, "Pat8", res.Resolved().Name)

	// A wt companion switches the load to weighted-tardiness semantics.
	writeFile(t, filepath.Join(dir, "Pat8b.RCP"), diamondBNoParams)
	writeFile(t, filepath.Join(dir, "Pat8wt.RCP"), diamondWT)

	res, err = Load(filepath.Join(dir, "Pat8a.RCP"))
	require.NoError(t, err)
	require.NotNil(t, res.Wt)
	assert.Nil(t, res.Aslib)
	assert.Len(t, res.Wt.DueDates, 2)
}

func TestCompanionPath(t *testing.T) {
	assert.Equal(t, "testset/Pat8b.RCP", CompanionPath("testset/Pat8a.RCP", "b"))
	assert.Equal(t, "testset/Pat8wt.RCP", CompanionPath("testset/Pat8a.RCP", "wt"))
}

func TestInstanceName(t *testing.T) {
	assert.Equal(t, "Pat8", InstanceName("testset/Pat8a.RCP"))
	assert.Equal(t, "inst_100_1", InstanceName("inst_100_1a.txt"))
}

func TestParseAslibFormatErrors(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"empty a", "", diamondB},
		{"missing params", diamondA, diamondBNoParams},
		{"branch count mismatch", diamondA, strings.Replace(diamondB, "2 2 3", "3 2 3", 1)},
		{"short activity line", strings.Replace(diamondA, "2 1 1 3", "2", 1), diamondB},
		{"successor count mismatch", strings.Replace(diamondA, "3 1 2 4 5", "3 1 3 4 5", 1), diamondB},
		{"non-numeric field", strings.Replace(diamondA, "6 1", "6 x", 1), diamondB},
		{"truncated b", diamondA, diamondB[:20]},
		{"negative activity count", strings.Replace(diamondA, "6 1", "-2 1", 1), diamondB},
		{"negative resource count", strings.Replace(diamondA, "6 1", "6 -1", 1), diamondB},
		{"negative subgraph count", diamondA, strings.Replace(diamondB, "\n1\n", "\n-1\n", 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAslib(strings.NewReader(tc.a), strings.NewReader(tc.b), "bad", nil)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestParseAslibTopologyErrorsPropagate(t *testing.T) {
	// A gap in the subgraph's branch numbering fails downstream of parsing.
	b := strings.Replace(diamondB, "2 2 3", "2 3 5", 1)
	_, err := ParseAslib(strings.NewReader(diamondA), strings.NewReader(b), "bad", nil)
	assert.ErrorIs(t, err, topology.ErrBranchNumbering)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
