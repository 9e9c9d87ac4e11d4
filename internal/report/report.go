// Package report renders validation reports and benchmark summaries for
// the terminal.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/elektrolab-or/rcpspas-research/internal/bench"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

var (
	bold      = color.New(color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	boldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
	boldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
)

// Validation writes a schedule validation report.
func Validation(w io.Writer, name string, policy validate.Policy, rep *validate.Report) {
	fmt.Fprintf(w, "%s %s\n", bold(name), dim("("+policy.String()+")"))
	if rep.Valid {
		fmt.Fprintf(w, "  %s makespan=%d\n", boldGreen("✓ valid"), rep.Makespan)
		return
	}
	fmt.Fprintf(w, "  %s %d violation(s), makespan=%d\n", boldRed("✗ invalid"), len(rep.Violations), rep.Makespan)
	for _, v := range rep.Violations {
		fmt.Fprintf(w, "    %s %s\n", red("-"), v)
	}
}

// Results writes one line per benchmark result.
func Results(w io.Writer, results []*bench.Result) {
	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintf(w, "  %s %s: %s\n", red("ERR"), r.Instance, r.Error)
		case r.Objective == nil:
			fmt.Fprintf(w, "  %s %s: no solution\n", yellow("---"), r.Instance)
		default:
			status := green("ok ")
			if r.Validated && !r.Valid {
				status = red("BAD")
			}
			proof := ""
			if r.Proof {
				proof = dim(" (proven)")
			}
			fmt.Fprintf(w, "  %s %s: objective=%g in %.2fs%s\n",
				status, r.Instance, *r.Objective, r.Duration, proof)
		}
	}
}

// Summary writes the aggregate line for one suite run.
func Summary(w io.Writer, s bench.Summary) {
	fmt.Fprintf(w, "%s: %d instances, %s solved, %s proven, %s errors\n",
		bold(s.Suite), s.Total,
		green(fmt.Sprintf("%d", s.Solved)),
		green(fmt.Sprintf("%d", s.Proven)),
		colorCount(s.Errors, red))
	if s.Validated > 0 {
		fmt.Fprintf(w, "  validated %d schedule(s), %s invalid\n",
			s.Validated, colorCount(s.Invalid, boldRed))
	}
	if s.Solved > 0 {
		fmt.Fprintf(w, "  avg time %.2fs, max %.2fs\n", s.AvgDuration, s.MaxDuration)
	}
}

func colorCount(n int, paint func(...interface{}) string) string {
	if n == 0 {
		return "0"
	}
	return paint(fmt.Sprintf("%d", n))
}
