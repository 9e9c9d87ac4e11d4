package report

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/elektrolab-or/rcpspas-research/internal/bench"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

func init() {
	color.NoColor = true
}

func TestValidationReport(t *testing.T) {
	var buf bytes.Buffer
	Validation(&buf, "two.data", validate.MigrationDelay, &validate.Report{Valid: true, Makespan: 6})
	assert.Contains(t, buf.String(), "✓ valid")
	assert.Contains(t, buf.String(), "makespan=6")

	buf.Reset()
	Validation(&buf, "two.data", validate.NoMigrationNoDelay, &validate.Report{
		Valid:      false,
		Violations: []string{"task 1: gap detected between 5 and 6"},
		Makespan:   8,
	})
	out := buf.String()
	assert.Contains(t, out, "✗ invalid")
	assert.Contains(t, out, "1 violation(s)")
	assert.Contains(t, out, "gap detected")
}

func TestResultsAndSummary(t *testing.T) {
	obj := 42.0
	results := []*bench.Result{
		{Instance: "a.data", Objective: &obj, Proof: true, Duration: 1.2, Validated: true, Valid: true},
		{Instance: "b.data"},
		{Instance: "c.data", Error: "timeout"},
	}

	var buf bytes.Buffer
	Results(&buf, results)
	out := buf.String()
	assert.Contains(t, out, "objective=42")
	assert.Contains(t, out, "(proven)")
	assert.Contains(t, out, "no solution")
	assert.Contains(t, out, "ERR c.data: timeout")

	buf.Reset()
	Summary(&buf, bench.Summarize("suite", results))
	out = buf.String()
	assert.Contains(t, out, "3 instances")
	assert.Contains(t, out, "1 solved")
	assert.Contains(t, out, "1 errors")
}
