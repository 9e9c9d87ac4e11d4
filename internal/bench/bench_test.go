package bench

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

const suiteHCL = `
suite "smoke" {
  data_dir   = "%s"
  patterns   = ["*.data"]
  solver     = "solver --flag"
  time_limit = 30
  max        = 2

  policy = "mig-delay"
}

suite "het" {
  data_dir = "%s"
  solver   = "solver"

  policy          = "heterogeneous"
  fixed_types     = [0]
  migration_types = [1, 2]
}
`

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "bench.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	body := strings.ReplaceAll(suiteHCL, "%s", dir)
	cfg, err := LoadConfig(writeConfig(t, dir, body))
	require.NoError(t, err)
	require.Len(t, cfg.Suites, 2)

	smoke := cfg.SuiteByName("smoke")
	require.NotNil(t, smoke)
	assert.Equal(t, 30, smoke.TimeLimit)
	assert.Equal(t, DefaultWorkers, smoke.Workers)
	assert.Equal(t, DefaultBatchSize, smoke.BatchSize)
	assert.Equal(t, 2, smoke.Max)

	policy, ok := smoke.ParsedPolicy()
	require.True(t, ok)
	assert.Equal(t, validate.MigrationDelay, policy)

	het := cfg.SuiteByName("het")
	require.NotNil(t, het)
	part := het.TypePartition()
	assert.True(t, part.Fixed[0])
	assert.True(t, part.Migrating[2])
	assert.False(t, part.Migrating[0])

	assert.Nil(t, cfg.SuiteByName("absent"))
}

func TestLoadConfigRejectsBadSuites(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing data_dir", "suite \"x\" {\n  solver = \"s\"\n  data_dir = \"\"\n}"},
		{"missing solver", "suite \"x\" {\n  data_dir = \"d\"\n  solver = \"\"\n}"},
		{"unknown policy", "suite \"x\" {\n  data_dir = \"d\"\n  solver = \"s\"\n  policy = \"nope\"\n}"},
		{"het without partition", "suite \"x\" {\n  data_dir = \"d\"\n  solver = \"s\"\n  policy = \"heterogeneous\"\n}"},
		{"partition without policy", "suite \"x\" {\n  data_dir = \"d\"\n  solver = \"s\"\n  fixed_types = [0]\n}"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := LoadConfig(writeConfig(t, dir, tc.body))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestSuiteInstances(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.data", "a.data", "c.data", "skip.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	suite := &Suite{Name: "x", DataDir: dir, Patterns: []string{"*.data", "a.*"}, Max: 2}
	got, err := suite.Instances()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.data"), filepath.Join(dir, "b.data")}, got)
}

// twoTask is a flat instance with one always-available unit.
const twoTask = `2 1 1
0 1 0
0 0
0 4 1
 0 1
1 2 1
 0 1
1
0 1
`

const solverScript = `#!/bin/sh
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "--output" ]; then out="$a"; fi
  prev="$a"
done
cat > "$out" <<'EOF'
[
  {
    "objective": 6,
    "proof": true,
    "duration": 0.25,
    "nbSolutions": 1,
    "solution": {"0": [[0, 4, [0]]], "1": [[4, 6, [0]]]}
  }
]
EOF
`

func TestRunnerEndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.data"), []byte(twoTask), 0o644))
	script := filepath.Join(dir, "solver.sh")
	require.NoError(t, os.WriteFile(script, []byte(solverScript), 0o755))

	suite := &Suite{
		Name:      "smoke",
		DataDir:   dir,
		Patterns:  []string{"*.data"},
		Solver:    "/bin/sh " + script,
		TimeLimit: 5,
		Workers:   1,
		BatchSize: 10,
		Policy:    "mig-delay",
	}

	runner, err := NewRunner(suite, filepath.Join(dir, "out"))
	require.NoError(t, err)

	results, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, filepath.Join(dir, "two.data"), res.Instance)
	require.NotNil(t, res.Objective)
	assert.Equal(t, 6.0, *res.Objective)
	assert.True(t, res.Proof)
	assert.True(t, res.Validated)
	assert.True(t, res.Valid, "violations: %v", res.Violations)
	assert.NotEmpty(t, res.RunID)
}

func TestParseBatchShortOutput(t *testing.T) {
	r := &Runner{suite: &Suite{Name: "x"}}
	batch := []string{"i1", "i2"}

	results := r.parseBatch(context.Background(), batch, []byte(`[{"objective": 3}]`))
	require.Len(t, results, 2)
	assert.Equal(t, "i1", results[0].Instance)
	require.NotNil(t, results[0].Objective)
	assert.Equal(t, "i2", results[1].Instance)
	assert.Equal(t, "missing from solver output", results[1].Error)

	results = r.parseBatch(context.Background(), batch, []byte(`not json`))
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Error, "not a JSON array")
}

func TestParseBatchSkipsValidationWithoutPolicy(t *testing.T) {
	r := &Runner{suite: &Suite{Name: "x"}}
	results := r.parseBatch(context.Background(), []string{"i"}, []byte(
		`[{"solution": {"3": [[1, 4, [0, 2]]]}}]`))
	require.Len(t, results, 1)

	// No policy configured: the schedule is ignored, not validated.
	assert.False(t, results[0].Validated)
}

func TestSummarize(t *testing.T) {
	obj := func(v float64) *float64 { return &v }
	results := []*Result{
		{Objective: obj(10), Proof: true, Duration: 1.5, Validated: true, Valid: true},
		{Objective: obj(20), Duration: 0.5, Validated: true, Valid: false},
		{Error: "timeout"},
		{},
	}

	s := Summarize("smoke", results)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Solved)
	assert.Equal(t, 1, s.Proven)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 2, s.Validated)
	assert.Equal(t, 1, s.Invalid)
	assert.Equal(t, 1.0, s.AvgDuration)
	assert.Equal(t, 1.5, s.MaxDuration)
}

func TestWriteCSV(t *testing.T) {
	obj := 6.0
	results := []*Result{{
		RunID:     "r1",
		Suite:     "smoke",
		Instance:  "two.data",
		Objective: &obj,
		Proof:     true,
		Duration:  0.25,
		Solutions: 1,
		Validated: true,
		Valid:     true,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "run_id,suite,instance"))
	assert.Contains(t, lines[1], "two.data,6,,true,0.250,1,true,0,")
}
