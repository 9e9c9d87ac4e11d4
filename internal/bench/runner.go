package bench

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/ctxlog"
	"github.com/elektrolab-or/rcpspas-research/internal/timeoffs"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

// Result is one solver run on one instance. Pointer fields are nil when
// the solver did not report the value.
type Result struct {
	RunID    string `json:"run_id"`
	Suite    string `json:"suite"`
	Instance string `json:"instance"`

	Objective  *float64 `json:"objective,omitempty"`
	LowerBound *float64 `json:"lower_bound,omitempty"`
	Proof      bool     `json:"proof"`
	Duration   float64  `json:"duration"`
	Solutions  int      `json:"nb_solutions"`
	Error      string   `json:"error,omitempty"`

	Validated  bool     `json:"validated"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// Runner executes a suite's solver over its instances in batches and
// parses the per-batch JSON output files.
type Runner struct {
	suite  *Suite
	argv   []string
	outDir string
}

// NewRunner prepares a runner writing batch output files under outDir.
func NewRunner(suite *Suite, outDir string) (*Runner, error) {
	argv := strings.Fields(suite.Solver)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: suite %q has an empty solver command", ErrConfig, suite.Name)
	}
	return &Runner{suite: suite, argv: argv, outDir: outDir}, nil
}

// Run executes the solver over all suite instances and returns one result
// per instance. Batch failures produce error results for the whole batch
// rather than aborting the run.
func (r *Runner) Run(ctx context.Context) ([]*Result, error) {
	logger := ctxlog.FromContext(ctx)

	instances, err := r.suite.Instances()
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("%w: suite %q matched no instances under %s",
			ErrConfig, r.suite.Name, r.suite.DataDir)
	}
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("bench: %w", err)
	}

	batchSize := r.suite.BatchSize
	totalBatches := (len(instances) + batchSize - 1) / batchSize
	logger.Info("starting benchmark",
		"suite", r.suite.Name,
		"instances", len(instances),
		"batches", totalBatches,
		"time_limit", r.suite.TimeLimit)

	var results []*Result
	for start := 0; start < len(instances); start += batchSize {
		end := start + batchSize
		if end > len(instances) {
			end = len(instances)
		}
		batch := instances[start:end]
		batchNum := start/batchSize + 1

		logger.Info("running batch", "batch", batchNum, "of", totalBatches, "size", len(batch))
		batchResults := r.runBatch(ctx, batch, batchNum)
		results = append(results, batchResults...)
	}
	return results, nil
}

// runBatch invokes the solver once for a slice of instances. The per-batch
// deadline leaves headroom beyond the per-instance limit so the solver can
// write its output file.
func (r *Runner) runBatch(ctx context.Context, batch []string, batchNum int) []*Result {
	logger := ctxlog.FromContext(ctx)
	outFile := filepath.Join(r.outDir, fmt.Sprintf("batch-%d-%s.json", batchNum, uuid.NewString()))
	defer os.Remove(outFile)

	budget := time.Duration(len(batch)*(r.suite.TimeLimit+10)+60) * time.Second
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	args := append([]string(nil), r.argv[1:]...)
	args = append(args, batch...)
	args = append(args,
		"--timeLimit", strconv.Itoa(r.suite.TimeLimit),
		"--workers", strconv.Itoa(r.suite.Workers),
		"--output", outFile)

	cmd := exec.CommandContext(ctx, r.argv[0], args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		logger.Error("solver batch failed", "batch", batchNum, "err", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		return r.failBatch(batch, fmt.Sprintf("no solver output: %v", err))
	}
	return r.parseBatch(ctx, batch, data)
}

func (r *Runner) failBatch(batch []string, msg string) []*Result {
	results := make([]*Result, len(batch))
	for i, inst := range batch {
		results[i] = &Result{
			RunID:    uuid.NewString(),
			Suite:    r.suite.Name,
			Instance: inst,
			Error:    msg,
		}
	}
	return results
}

// parseBatch extracts per-instance results from the solver's JSON output.
// The output is an array of objects; unknown fields are ignored and the
// instance order must match the batch order when no instance field is
// given.
func (r *Runner) parseBatch(ctx context.Context, batch []string, data []byte) []*Result {
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return r.failBatch(batch, "solver output is not a JSON array")
	}

	var results []*Result
	idx := 0
	parsed.ForEach(func(_, entry gjson.Result) bool {
		instance := entry.Get("instance").String()
		if instance == "" && idx < len(batch) {
			instance = batch[idx]
		}
		idx++

		res := &Result{
			RunID:     uuid.NewString(),
			Suite:     r.suite.Name,
			Instance:  instance,
			Proof:     entry.Get("proof").Bool(),
			Duration:  entry.Get("duration").Float(),
			Solutions: int(entry.Get("nbSolutions").Int()),
			Error:     entry.Get("error").String(),
		}
		if obj := entry.Get("objective"); obj.Exists() && obj.Type == gjson.Number {
			v := obj.Float()
			res.Objective = &v
		}
		if lb := entry.Get("lowerBound"); lb.Exists() && lb.Type == gjson.Number {
			v := lb.Float()
			res.LowerBound = &v
		}

		if sol := entry.Get("solution"); sol.Exists() && res.Error == "" {
			r.validateSchedule(ctx, res, sol)
		}

		results = append(results, res)
		return true
	})

	for idx < len(batch) {
		results = append(results, r.failBatch(batch[idx:idx+1], "missing from solver output")...)
		idx++
	}
	return results
}

// validateSchedule checks a returned schedule against the suite's policy
// and cross-checks the reported objective against the computed makespan.
func (r *Runner) validateSchedule(ctx context.Context, res *Result, sol gjson.Result) {
	logger := ctxlog.FromContext(ctx)
	policy, ok := r.suite.ParsedPolicy()
	if !ok {
		return
	}

	inst, err := timeoffs.LoadInstance(res.Instance)
	if err != nil {
		logger.Warn("cannot load instance for validation", "instance", res.Instance, "err", err)
		return
	}

	schedule := decodeSchedule(sol)
	validator := validate.New(inst)

	var report *validate.Report
	if policy == validate.Heterogeneous {
		report, err = validator.ValidateHeterogeneous(schedule, r.suite.TypePartition())
	} else {
		report, err = validator.Validate(schedule, policy)
	}
	if err != nil {
		res.Error = err.Error()
		return
	}

	res.Validated = true
	res.Valid = report.Valid
	res.Violations = report.Violations

	if report.Valid && res.Objective != nil && int(*res.Objective) != report.Makespan {
		res.Valid = false
		res.Violations = append(res.Violations,
			fmt.Sprintf("reported objective %d != computed makespan %d", int(*res.Objective), report.Makespan))
	}
}

// decodeSchedule converts the solver's schedule object, task id mapped to
// [start, end, [units]] triples, into a solution.
func decodeSchedule(sol gjson.Result) *core.Solution {
	segments := make(map[core.TaskID][]core.Segment)
	sol.ForEach(func(key, value gjson.Result) bool {
		tid := core.TaskID(key.Int())
		var segs []core.Segment
		value.ForEach(func(_, triple gjson.Result) bool {
			parts := triple.Array()
			if len(parts) != 3 {
				return true
			}
			seg := core.Segment{Start: int(parts[0].Int()), End: int(parts[1].Int())}
			parts[2].ForEach(func(_, u gjson.Result) bool {
				seg.Units = append(seg.Units, core.UnitID(u.Int()))
				return true
			})
			segs = append(segs, seg)
			return true
		})
		segments[tid] = segs
		return true
	})
	return core.NewSolution(segments)
}
