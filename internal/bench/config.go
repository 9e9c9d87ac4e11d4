// Package bench runs external CP solvers over instance sets and validates
// the schedules they return.
//
// A benchmark is described by an HCL suite file: where the instances live,
// how to invoke the solver, and which scheduling policy the returned
// schedules must satisfy.
package bench

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

// ErrConfig is returned for invalid suite configuration.
var ErrConfig = errors.New("bench: invalid configuration")

// Defaults applied to suites that leave the fields unset.
const (
	DefaultTimeLimit = 60
	DefaultWorkers   = 8
	DefaultBatchSize = 20
)

// Config is the root of a benchmark description file.
type Config struct {
	Suites []*Suite `hcl:"suite,block"`
}

// Suite describes one benchmark run: an instance set, a solver command,
// and an optional scheduling policy to validate the returned schedules
// against.
type Suite struct {
	Name string `hcl:"name,label"`

	DataDir  string   `hcl:"data_dir"`
	Patterns []string `hcl:"patterns,optional"`
	Solver   string   `hcl:"solver"`

	TimeLimit int `hcl:"time_limit,optional"`
	Workers   int `hcl:"workers,optional"`
	BatchSize int `hcl:"batch_size,optional"`
	Max       int `hcl:"max,optional"`

	Policy         string `hcl:"policy,optional"`
	FixedTypes     []int  `hcl:"fixed_types,optional"`
	MigrationTypes []int  `hcl:"migration_types,optional"`
}

// LoadConfig parses and validates a suite file.
func LoadConfig(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrConfig, diags)
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrConfig, diags)
	}

	for _, suite := range cfg.Suites {
		if err := suite.normalize(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// SuiteByName returns the named suite, or nil.
func (c *Config) SuiteByName(name string) *Suite {
	for _, s := range c.Suites {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (s *Suite) normalize() error {
	if s.DataDir == "" {
		return fmt.Errorf("%w: suite %q has no data_dir", ErrConfig, s.Name)
	}
	if s.Solver == "" {
		return fmt.Errorf("%w: suite %q has no solver command", ErrConfig, s.Name)
	}
	if len(s.Patterns) == 0 {
		s.Patterns = []string{"*"}
	}
	if s.TimeLimit <= 0 {
		s.TimeLimit = DefaultTimeLimit
	}
	if s.Workers <= 0 {
		s.Workers = DefaultWorkers
	}
	if s.BatchSize <= 0 {
		s.BatchSize = DefaultBatchSize
	}

	if s.Policy != "" {
		policy, err := validate.ParsePolicy(s.Policy)
		if err != nil {
			return fmt.Errorf("%w: suite %q: %v", ErrConfig, s.Name, err)
		}
		if policy == validate.Heterogeneous && len(s.FixedTypes) == 0 && len(s.MigrationTypes) == 0 {
			return fmt.Errorf("%w: suite %q: heterogeneous policy needs fixed_types and migration_types",
				ErrConfig, s.Name)
		}
	} else if len(s.FixedTypes) > 0 || len(s.MigrationTypes) > 0 {
		return fmt.Errorf("%w: suite %q: type partition given without a policy", ErrConfig, s.Name)
	}
	return nil
}

// ParsedPolicy returns the suite's policy. ok is false when the suite does
// no schedule validation.
func (s *Suite) ParsedPolicy() (validate.Policy, bool) {
	if s.Policy == "" {
		return 0, false
	}
	policy, err := validate.ParsePolicy(s.Policy)
	if err != nil {
		return 0, false
	}
	return policy, true
}

// TypePartition builds the fixed/migrating partition for the heterogeneous
// policy.
func (s *Suite) TypePartition() validate.Partition {
	part := validate.Partition{
		Fixed:     make(map[core.TypeID]bool, len(s.FixedTypes)),
		Migrating: make(map[core.TypeID]bool, len(s.MigrationTypes)),
	}
	for _, t := range s.FixedTypes {
		part.Fixed[core.TypeID(t)] = true
	}
	for _, t := range s.MigrationTypes {
		part.Migrating[core.TypeID(t)] = true
	}
	return part
}

// Instances globs the suite's patterns under its data directory and
// returns the deduplicated sorted instance list, truncated to Max when
// set.
func (s *Suite) Instances() ([]string, error) {
	seen := make(map[string]bool)
	for _, pattern := range s.Patterns {
		matches, err := filepath.Glob(filepath.Join(s.DataDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %v", ErrConfig, pattern, err)
		}
		for _, m := range matches {
			seen[m] = true
		}
	}

	instances := make([]string, 0, len(seen))
	for path := range seen {
		instances = append(instances, path)
	}
	sort.Strings(instances)

	if s.Max > 0 && len(instances) > s.Max {
		instances = instances[:s.Max]
	}
	return instances, nil
}
