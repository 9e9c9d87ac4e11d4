package timeoffs

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
)

// Solution files map task IDs to segment triples:
//
//	{"7": [[3, 5, [0, 2]], [6, 8, [0, 2]]], ...}
//
// Segment triples are [start, end, [unitIDs...]].

type segmentJSON struct {
	Start int
	End   int
	Units []int
}

func (s segmentJSON) MarshalJSON() ([]byte, error) {
	units := s.Units
	if units == nil {
		units = []int{}
	}
	return json.Marshal([]any{s.Start, s.End, units})
}

func (s *segmentJSON) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("segment must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &s.Start); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &s.End); err != nil {
		return err
	}
	return json.Unmarshal(raw[2], &s.Units)
}

// ParseSolution decodes a solution from its JSON form.
func ParseSolution(r io.Reader) (*core.Solution, error) {
	var file map[string][]segmentJSON
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("timeoffs: decoding solution: %w", err)
	}

	segments := make(map[core.TaskID][]core.Segment, len(file))
	for key, rawSegs := range file {
		tid, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("timeoffs: task key %q: %w", key, err)
		}
		segs := make([]core.Segment, 0, len(rawSegs))
		for _, rs := range rawSegs {
			units := make([]core.UnitID, len(rs.Units))
			for i, u := range rs.Units {
				units[i] = core.UnitID(u)
			}
			segs = append(segs, core.Segment{Start: rs.Start, End: rs.End, Units: units})
		}
		segments[core.TaskID(tid)] = segs
	}
	return core.NewSolution(segments), nil
}

// LoadSolution reads a solution JSON file.
func LoadSolution(path string) (*core.Solution, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("timeoffs: %w", err)
	}
	defer f.Close()
	return ParseSolution(f)
}

// WriteSolution encodes a solution to JSON. Re-parsing the output yields a
// solution that validates identically.
func WriteSolution(w io.Writer, sol *core.Solution) error {
	file := make(map[string][]segmentJSON, len(sol.Assignments))
	for _, tid := range sol.SortedTasks() {
		a := sol.Assignments[tid]
		segs := make([]segmentJSON, 0, len(a.Segments))
		for _, s := range a.Segments {
			units := make([]int, len(s.Units))
			for i, u := range s.Units {
				units[i] = int(u)
			}
			segs = append(segs, segmentJSON{Start: s.Start, End: s.End, Units: units})
		}
		file[strconv.Itoa(int(tid))] = segs
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}
