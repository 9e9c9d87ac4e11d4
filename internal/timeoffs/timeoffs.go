// Package timeoffs reads and writes the flat .data instance format used by
// the RCPSP time-offs benchmark set: tasks, resource types, per-unit
// availability calendars, and precedence arcs.
package timeoffs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
)

// ErrFormat is returned for malformed .data files.
var ErrFormat = errors.New("timeoffs: malformed instance file")

// LoadInstance reads a .data instance file.
func LoadInstance(path string) (*core.FlatInstance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("timeoffs: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(strings.TrimSuffix(path[strings.LastIndexByte(path, '/')+1:], ".data"), ".DATA")
	return ParseInstance(f, name)
}

// ParseInstance parses a .data stream. Comment lines starting with '#' and
// blank lines are ignored.
func ParseInstance(r io.Reader, name string) (*core.FlatInstance, error) {
	l := newLines(r)

	header, err := l.ints(3)
	if err != nil {
		return nil, err
	}
	numTasks, numTypes, numUnits := header[0], header[1], header[2]
	if numTasks < 0 || numTypes < 0 || numUnits < 0 {
		return nil, fmt.Errorf("%w: negative count in header", ErrFormat)
	}

	inst := &core.FlatInstance{Name: name}

	for i := 0; i < numTypes; i++ {
		vals, err := l.allInts()
		if err != nil {
			return nil, err
		}
		if len(vals) < 2 || len(vals)-2 != vals[1] {
			return nil, fmt.Errorf("%w: resource type line %d", ErrFormat, i)
		}
		rt := core.ResourceType{ID: core.TypeID(vals[0])}
		for _, u := range vals[2:] {
			rt.Units = append(rt.Units, core.UnitID(u))
		}
		inst.Types = append(inst.Types, rt)
	}

	for i := 0; i < numUnits; i++ {
		vals, err := l.allInts()
		if err != nil {
			return nil, err
		}
		if len(vals) < 2 || len(vals)-2 != 2*vals[1] {
			return nil, fmt.Errorf("%w: calendar line for unit %d", ErrFormat, i)
		}
		unit := core.ResourceUnit{ID: core.UnitID(vals[0])}
		for j := 0; j < vals[1]; j++ {
			unit.Calendar = append(unit.Calendar, core.CalendarStep{Time: vals[2+2*j], Value: vals[3+2*j]})
		}
		inst.Units = append(inst.Units, unit)
	}

	for i := 0; i < numTasks; i++ {
		head, err := l.ints(3)
		if err != nil {
			return nil, err
		}
		if head[2] < 0 {
			return nil, fmt.Errorf("%w: negative requirement count for task %d", ErrFormat, head[0])
		}
		task := core.Task{
			ID:           core.TaskID(head[0]),
			Duration:     head[1],
			Requirements: make(map[core.TypeID]int, head[2]),
		}
		for j := 0; j < head[2]; j++ {
			req, err := l.ints(2)
			if err != nil {
				return nil, err
			}
			if req[1] > 0 {
				task.Requirements[core.TypeID(req[0])] = req[1]
			}
		}
		inst.Tasks = append(inst.Tasks, task)
	}

	countLine, err := l.ints(1)
	if err != nil {
		return nil, err
	}
	if countLine[0] < 0 {
		return nil, fmt.Errorf("%w: negative precedence count", ErrFormat)
	}
	for i := 0; i < countLine[0]; i++ {
		arc, err := l.ints(2)
		if err != nil {
			return nil, err
		}
		inst.Precedences = append(inst.Precedences, core.Arc{Pred: core.TaskID(arc[0]), Succ: core.TaskID(arc[1])})
	}

	return inst, nil
}

// WriteInstance writes an instance in the .data format the benchmark
// generator produces, including section comments.
func WriteInstance(w io.Writer, inst *core.FlatInstance, header string) error {
	bw := bufio.NewWriter(w)

	if header != "" {
		fmt.Fprintf(bw, "# %s\n\n", header)
	}

	fmt.Fprintf(bw, "# HEADER: <num_tasks> <num_types> <num_units>\n")
	fmt.Fprintf(bw, "%d %d %d\n\n", len(inst.Tasks), len(inst.Types), len(inst.Units))

	fmt.Fprintf(bw, "# RESOURCE TYPES\n")
	fmt.Fprintf(bw, "# Format: <type_id> <num_units> <unit_id1> <unit_id2> ...\n")
	for _, rt := range inst.Types {
		fmt.Fprintf(bw, "%d %d", rt.ID, len(rt.Units))
		for _, u := range rt.Units {
			fmt.Fprintf(bw, " %d", u)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "# RESOURCE UNITS (Calendars)\n")
	fmt.Fprintf(bw, "# Format: <unit_id> <num_steps> <t1> <v1> <t2> <v2> ...\n")
	for _, u := range inst.Units {
		fmt.Fprintf(bw, "%d %d", u.ID, len(u.Calendar))
		for _, step := range u.Calendar {
			fmt.Fprintf(bw, " %d %d", step.Time, step.Value)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "# TASKS\n")
	fmt.Fprintf(bw, "# Format: <task_id> <size> <num_reqs>\n")
	fmt.Fprintf(bw, "# Then for each requirement: <type_id> <qty>\n")
	for _, task := range inst.Tasks {
		reqs := sortedReqs(task.Requirements, inst.Types)
		fmt.Fprintf(bw, "%d %d %d\n", task.ID, task.Duration, len(reqs))
		for _, req := range reqs {
			fmt.Fprintf(bw, " %d %d\n", req.typeID, req.qty)
		}
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "# PRECEDENCES\n")
	fmt.Fprintf(bw, "%d\n", len(inst.Precedences))
	for _, arc := range inst.Precedences {
		fmt.Fprintf(bw, "%d %d\n", arc.Pred, arc.Succ)
	}

	return bw.Flush()
}

type req struct {
	typeID core.TypeID
	qty    int
}

// sortedReqs lists requirements in declared type order, including explicit
// zero-demand entries the way the generator writes them.
func sortedReqs(reqs map[core.TypeID]int, types []core.ResourceType) []req {
	out := make([]req, 0, len(types))
	for _, rt := range types {
		out = append(out, req{typeID: rt.ID, qty: reqs[rt.ID]})
	}
	return out
}

// lines yields non-empty, non-comment trimmed lines.
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
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	if err := l.sc.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return "", fmt.Errorf("%w: unexpected end of file", ErrFormat)
}

func (l *lines) ints(n int) ([]int, error) {
	vals, err := l.allInts()
	if err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrFormat, n, len(vals))
	}
	return vals, nil
}

func (l *lines) allInts() ([]int, error) {
	line, err := l.next()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
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
