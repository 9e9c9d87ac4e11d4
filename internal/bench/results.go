package bench

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Summary aggregates a result list.
type Summary struct {
	Suite       string
	Total       int
	Solved      int
	Proven      int
	Errors      int
	Validated   int
	Invalid     int
	AvgDuration float64
	MaxDuration float64
}

// Summarize computes aggregate statistics over a run.
func Summarize(suite string, results []*Result) Summary {
	s := Summary{Suite: suite, Total: len(results)}
	var durations float64
	for _, r := range results {
		if r.Error != "" {
			s.Errors++
			continue
		}
		if r.Objective != nil {
			s.Solved++
			durations += r.Duration
			if r.Duration > s.MaxDuration {
				s.MaxDuration = r.Duration
			}
			if r.Proof {
				s.Proven++
			}
		}
		if r.Validated {
			s.Validated++
			if !r.Valid {
				s.Invalid++
			}
		}
	}
	if s.Solved > 0 {
		s.AvgDuration = durations / float64(s.Solved)
	}
	return s
}

// WriteJSON writes the full result list as indented JSON.
func WriteJSON(w io.Writer, results []*Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// SaveJSON writes the result list to a file.
func SaveJSON(path string, results []*Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, results)
}

// WriteCSV writes one row per result.
func WriteCSV(w io.Writer, results []*Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"run_id", "suite", "instance", "objective", "lower_bound",
		"proof", "duration", "nb_solutions", "valid", "violations", "error",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		objective, lowerBound := "", ""
		if r.Objective != nil {
			objective = fmt.Sprintf("%g", *r.Objective)
		}
		if r.LowerBound != nil {
			lowerBound = fmt.Sprintf("%g", *r.LowerBound)
		}
		valid := ""
		if r.Validated {
			valid = fmt.Sprintf("%t", r.Valid)
		}
		row := []string{
			r.RunID, r.Suite, r.Instance, objective, lowerBound,
			fmt.Sprintf("%t", r.Proof),
			fmt.Sprintf("%.3f", r.Duration),
			fmt.Sprintf("%d", r.Solutions),
			valid,
			fmt.Sprintf("%d", len(r.Violations)),
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// SaveCSV writes the result list to a CSV file.
func SaveCSV(path string, results []*Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bench: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, results)
}
