// Package rcp parses RCPSP-AS benchmark instances in the ASlib two-file
// format (Servranckx & Vanhoucke), plus the optional weighted-tardiness
// companion file.
//
// All activity, branch, and successor identifiers are 1-based in the files
// and converted to 0-based exactly once, here.
package rcp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/topology"
)

// ErrFormat is returned for malformed instance files: wrong token counts,
// short files, or non-numeric fields. Format errors abort the load.
var ErrFormat = errors.New("rcp: malformed instance file")

// Result is a loaded and reconstructed instance. Exactly one of Aslib and
// Wt is set, depending on whether a weighted-tardiness companion file was
// present next to the main file.
type Result struct {
	Aslib *core.AslibInstance
	Wt    *core.WtInstance
}

// Resolved returns the underlying resolved instance.
func (r *Result) Resolved() *core.Instance {
	if r.Wt != nil {
		return &r.Wt.Instance
	}
	return &r.Aslib.Instance
}

// Load reads an instance given the path of its main (a) file, locating the
// companion b file and, if present, the wt file. The presence of a wt file
// switches the instance to multi-sink weighted-tardiness semantics.
func Load(fileA string) (*Result, error) {
	fileB := CompanionPath(fileA, "b")
	fileWT := CompanionPath(fileA, "wt")

	if _, err := os.Stat(fileWT); err == nil {
		wt, err := LoadWt(fileA, fileB, fileWT)
		if err != nil {
			return nil, err
		}
		return &Result{Wt: wt}, nil
	}

	aslib, err := LoadAslib(fileA, fileB)
	if err != nil {
		return nil, err
	}
	return &Result{Aslib: aslib}, nil
}

// LoadAslib loads a Cmax-objective instance from its a and b files and
// reconstructs the principal activities.
func LoadAslib(fileA, fileB string) (*core.AslibInstance, error) {
	ra, err := os.Open(fileA)
	if err != nil {
		return nil, fmt.Errorf("rcp: %w", err)
	}
	defer ra.Close()
	rb, err := os.Open(fileB)
	if err != nil {
		return nil, fmt.Errorf("rcp: %w", err)
	}
	defer rb.Close()

	return ParseAslib(ra, rb, InstanceName(fileA), &core.AslibFiles{FileA: fileA, FileB: fileB})
}

// LoadWt loads a weighted-tardiness instance from its a, b, and wt files
// and reconstructs the principal activities. The single-sink check is
// skipped: wT instances may have multiple sinks.
func LoadWt(fileA, fileB, fileWT string) (*core.WtInstance, error) {
	ra, err := os.Open(fileA)
	if err != nil {
		return nil, fmt.Errorf("rcp: %w", err)
	}
	defer ra.Close()
	rb, err := os.Open(fileB)
	if err != nil {
		return nil, fmt.Errorf("rcp: %w", err)
	}
	defer rb.Close()
	rw, err := os.Open(fileWT)
	if err != nil {
		return nil, fmt.Errorf("rcp: %w", err)
	}
	defer rw.Close()

	return ParseWt(ra, rb, rw, InstanceName(fileA),
		&core.WtFiles{FileA: fileA, FileB: fileB, FileWT: fileWT})
}

// ParseAslib parses a Cmax instance from readers. The b stream must start
// with the flex/nest/linked parameter line.
func ParseAslib(a, b io.Reader, name string, files *core.AslibFiles) (*core.AslibInstance, error) {
	la := newLines(a)
	lb := newLines(b)

	params, err := parseAltParams(lb)
	if err != nil {
		return nil, err
	}

	raw, err := parseRaw(la, lb, name)
	if err != nil {
		return nil, err
	}
	inst, err := topology.Reconstruct(raw)
	if err != nil {
		return nil, err
	}

	return &core.AslibInstance{Instance: *inst, Params: params, Files: files}, nil
}

// ParseWt parses a weighted-tardiness instance from readers. The b stream
// has no parameter line in this variant.
func ParseWt(a, b, wt io.Reader, name string, files *core.WtFiles) (*core.WtInstance, error) {
	la := newLines(a)
	lb := newLines(b)
	lw := newLines(wt)

	params, dueDates, err := parseWtFile(lw)
	if err != nil {
		return nil, err
	}

	raw, err := parseRaw(la, lb, name)
	if err != nil {
		return nil, err
	}
	inst, err := topology.Reconstruct(raw, topology.WithMultipleSinks())
	if err != nil {
		return nil, err
	}

	return &core.WtInstance{Instance: *inst, DueDates: dueDates, Params: params, Files: files}, nil
}

// CompanionPath derives the path of a companion file from the main file
// path: the trailing "a" of the base name is replaced with the suffix.
func CompanionPath(fileA, suffix string) string {
	ext := filepath.Ext(fileA)
	stem := strings.TrimSuffix(fileA, ext)
	stem = strings.TrimSuffix(stem, "a")
	return stem + suffix + ext
}

// InstanceName derives an instance name from the main file path.
func InstanceName(fileA string) string {
	base := filepath.Base(fileA)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, "a")
}

// parseRaw reads both files in lockstep and builds the raw instance.
func parseRaw(la, lb *lines, name string) (*core.RawInstance, error) {
	header, err := la.ints(2)
	if err != nil {
		return nil, err
	}
	activityCount, resourceCount := header[0], header[1]
	if activityCount < 0 || resourceCount < 0 {
		return nil, fmt.Errorf("%w: negative count in header", ErrFormat)
	}

	resources, err := la.ints(resourceCount)
	if err != nil {
		return nil, fmt.Errorf("%w: expected %d resource capacities", ErrFormat, resourceCount)
	}

	countLine, err := lb.ints(1)
	if err != nil {
		return nil, err
	}
	if countLine[0] < 0 {
		return nil, fmt.Errorf("%w: negative subgraph count", ErrFormat)
	}
	subgraphs := make([]core.RawSubgraph, countLine[0])
	for i := range subgraphs {
		branches, err := parseBranchLine(lb)
		if err != nil {
			return nil, fmt.Errorf("subgraph %d: %w", i, err)
		}
		subgraphs[i] = core.RawSubgraph{ID: core.SubgraphID(i), Branches: branches}
	}

	activities := make([]core.Activity, activityCount)
	for i := range activities {
		act, err := parseActivity(la, lb, core.ActivityID(i), resourceCount)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", i+1, err)
		}
		activities[i] = act
	}

	return &core.RawInstance{
		InstanceCore: core.InstanceCore{Name: name, Resources: resources, Activities: activities},
		Subgraphs:    subgraphs,
	}, nil
}

func parseAltParams(lb *lines) (core.AltParams, error) {
	vals, err := lb.floats(3)
	if err != nil {
		return core.AltParams{}, fmt.Errorf("%w: expected flex/nest/linked line", ErrFormat)
	}
	return core.AltParams{Flex: vals[0], Nested: vals[1], Linked: vals[2]}, nil
}

// parseBranchLine reads "<count> <branch>..." and converts 1-based file
// branch IDs to internal 0-based ones.
func parseBranchLine(l *lines) (core.BranchSet, error) {
	vals, err := l.allInts()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 || len(vals)-1 != vals[0] {
		return nil, fmt.Errorf("%w: branch count mismatch", ErrFormat)
	}
	set := make(core.BranchSet, vals[0])
	for _, b := range vals[1:] {
		set[core.BranchID(b-1)] = true
	}
	return set, nil
}

// parseActivity reads corresponding lines from the a and b streams.
func parseActivity(la, lb *lines, id core.ActivityID, resourceCount int) (core.Activity, error) {
	valsA, err := la.allInts()
	if err != nil {
		return core.Activity{}, err
	}
	if len(valsA) < 2+resourceCount {
		return core.Activity{}, fmt.Errorf("%w: short activity line", ErrFormat)
	}
	duration := valsA[0]
	requirements := append([]int(nil), valsA[1:1+resourceCount]...)

	succVals := valsA[1+resourceCount:]
	if len(succVals)-1 != succVals[0] {
		return core.Activity{}, fmt.Errorf("%w: expected %d successors, got %d", ErrFormat, succVals[0], len(succVals)-1)
	}
	successors := make(map[core.ActivityID]bool, succVals[0])
	for _, s := range succVals[1:] {
		successors[core.ActivityID(s-1)] = true
	}

	branches, err := parseBranchLine(lb)
	if err != nil {
		return core.Activity{}, err
	}

	return core.Activity{
		ID:           id,
		Duration:     duration,
		Successors:   successors,
		Branches:     branches,
		Requirements: requirements,
	}, nil
}

// parseWtFile reads the weighted-tardiness companion: the generation
// parameter line, the monitored count, then one "<id> <weight> <dueDate>"
// line per monitored activity.
func parseWtFile(lw *lines) (core.WtGenParams, map[core.ActivityID]core.WtDueDate, error) {
	fields, err := lw.fields(6)
	if err != nil {
		return core.WtGenParams{}, nil, err
	}
	var params core.WtGenParams
	if params.ActivitiesInJob, err = strconv.Atoi(fields[0]); err != nil {
		return params, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if params.JobsInInstance, err = strconv.Atoi(fields[1]); err != nil {
		return params, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if params.InstanceStartLag, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return params, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if params.ResourceOverlap, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return params, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if params.WeightMin, err = strconv.Atoi(fields[4]); err != nil {
		return params, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if params.WeightMax, err = strconv.Atoi(fields[5]); err != nil {
		return params, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	countLine, err := lw.ints(1)
	if err != nil {
		return params, nil, err
	}
	dueDates := make(map[core.ActivityID]core.WtDueDate, countLine[0])
	for i := 0; i < countLine[0]; i++ {
		vals, err := lw.ints(3)
		if err != nil {
			return params, nil, err
		}
		dueDates[core.ActivityID(vals[0]-1)] = core.WtDueDate{DueDate: vals[2], Weight: vals[1]}
	}
	return params, dueDates, nil
}

// lines yields non-empty trimmed lines one at a time.
type lines struct {
	sc *bufio.Scanner
}

func newLines(r io.Reader) *lines {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lines{sc: sc}
}

func (l *lines) next() (string, error) {
	for l.sc.Scan() {
		line := strings.TrimSpace(l.sc.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := l.sc.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return "", fmt.Errorf("%w: unexpected end of file", ErrFormat)
}

// fields reads the next line and requires exactly n whitespace-separated
// tokens.
func (l *lines) fields(n int) ([]string, error) {
	line, err := l.next()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrFormat, n, len(fields))
	}
	return fields, nil
}

// ints reads the next line as exactly n integers.
func (l *lines) ints(n int) ([]int, error) {
	fields, err := l.fields(n)
	if err != nil {
		return nil, err
	}
	return atoiAll(fields)
}

// allInts reads the next line as any number of integers.
func (l *lines) allInts() ([]int, error) {
	line, err := l.next()
	if err != nil {
		return nil, err
	}
	return atoiAll(strings.Fields(line))
}

// floats reads the next line as exactly n floats.
func (l *lines) floats(n int) ([]float64, error) {
	fields, err := l.fields(n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrFormat, f)
		}
		out[i] = v
	}
	return out, nil
}

func atoiAll(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrFormat, f)
		}
		out[i] = v
	}
	return out, nil
}
