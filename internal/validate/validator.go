// Package validate checks candidate schedules against the six RCPSP
// time-offs scheduling policies and the universal scheduling invariants:
// precedence, per-unit non-overlap, and work completion.
//
// Violations are findings about a candidate solution, not errors: every
// check runs to completion and all findings are accumulated into a single
// report so a caller can diagnose every problem in one pass.
package validate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
)

// ErrPartitionRequired is returned when the heterogeneous policy is
// requested without an explicit fixed/migrating type partition. The choice
// materially changes which constraints apply, so it is never defaulted.
var ErrPartitionRequired = errors.New("validate: heterogeneous policy requires an explicit type partition")

// ErrBadPartition is returned when a partition names unknown types or
// assigns a type to both sides.
var ErrBadPartition = errors.New("validate: invalid type partition")

// Partition splits resource types between the fixed (no-migration,
// blocked-style) rules and the migrating (aggregate-capacity) rules for the
// heterogeneous policy.
type Partition struct {
	Fixed     map[core.TypeID]bool
	Migrating map[core.TypeID]bool
}

// Report is the outcome of validating one solution. The violation list is
// ordered and human-readable; the validator never aborts early.
type Report struct {
	Valid      bool
	Violations []string
	Makespan   int
}

// Validator checks solutions against one flat instance. A Validator is
// read-only after construction and safe for concurrent use.
type Validator struct {
	tasks       map[core.TaskID]core.Task
	taskOrder   []core.TaskID
	types       map[core.TypeID][]core.UnitID
	typeOrder   []core.TypeID
	calendars   map[core.UnitID]core.Calendar
	unitType    map[core.UnitID]core.TypeID
	precedences []core.Arc
}

// New builds a validator from a flat instance description.
func New(inst *core.FlatInstance) *Validator {
	v := &Validator{
		tasks:       make(map[core.TaskID]core.Task, len(inst.Tasks)),
		types:       make(map[core.TypeID][]core.UnitID, len(inst.Types)),
		calendars:   inst.UnitCalendars(),
		unitType:    inst.UnitToType(),
		precedences: inst.Precedences,
	}
	for _, t := range inst.Tasks {
		v.tasks[t.ID] = t
		v.taskOrder = append(v.taskOrder, t.ID)
	}
	for _, rt := range inst.Types {
		v.types[rt.ID] = rt.Units
		v.typeOrder = append(v.typeOrder, rt.ID)
	}
	return v
}

// Validate checks a solution under the given policy. It returns an error
// only for configuration problems (unknown policy, or the heterogeneous
// policy, which needs ValidateHeterogeneous); solution defects always come
// back as report violations.
func (v *Validator) Validate(sol *core.Solution, policy Policy) (*Report, error) {
	switch policy {
	case NoMigrationNoDelay, MigrationNoDelay, NoMigrationDelayBlocked,
		MigrationDelay, NoMigrationDelayReleased:
		return v.validate(sol, policy, Partition{}), nil
	case Heterogeneous:
		return nil, ErrPartitionRequired
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(policy))
	}
}

// ValidateHeterogeneous checks a solution under the heterogeneous policy
// with an explicit type partition.
func (v *Validator) ValidateHeterogeneous(sol *core.Solution, part Partition) (*Report, error) {
	if len(part.Fixed) == 0 && len(part.Migrating) == 0 {
		return nil, ErrPartitionRequired
	}
	for t := range part.Fixed {
		if part.Migrating[t] {
			return nil, fmt.Errorf("%w: type %d is both fixed and migrating", ErrBadPartition, t)
		}
		if _, ok := v.types[t]; !ok {
			return nil, fmt.Errorf("%w: unknown fixed type %d", ErrBadPartition, t)
		}
	}
	for t := range part.Migrating {
		if _, ok := v.types[t]; !ok {
			return nil, fmt.Errorf("%w: unknown migrating type %d", ErrBadPartition, t)
		}
	}
	return v.validate(sol, Heterogeneous, part), nil
}

func (v *Validator) validate(sol *core.Solution, policy Policy, part Partition) *Report {
	var violations []string

	// Universal checks run for every policy.
	violations = append(violations, v.checkCompleteness(sol)...)
	violations = append(violations, v.checkPrecedences(sol)...)
	violations = append(violations, v.checkResourceConflicts(sol)...)

	switch policy {
	case NoMigrationNoDelay:
		violations = append(violations, v.checkNoMigration(sol)...)
		violations = append(violations, v.checkNoDelays(sol)...)
		violations = append(violations, v.checkCalendarContinuous(sol)...)
	case MigrationNoDelay:
		violations = append(violations, v.checkNoDelays(sol)...)
		violations = append(violations, v.checkAggregateCapacity(sol, v.typeOrder, "")...)
	case NoMigrationDelayBlocked:
		violations = append(violations, v.checkNoMigration(sol)...)
		violations = append(violations, v.checkBlockedResources(sol)...)
		violations = append(violations, v.checkWorkDuringAvailability(sol)...)
	case MigrationDelay:
		// Segments may sit anywhere the aggregate capacity admits them.
		violations = append(violations, v.checkAggregateCapacity(sol, v.typeOrder, "")...)
	case Heterogeneous:
		violations = append(violations, v.checkHeterogeneous(sol, part)...)
	case NoMigrationDelayReleased:
		violations = append(violations, v.checkNoMigration(sol)...)
		violations = append(violations, v.checkSegmentsInAvailability(sol)...)
	}

	violations = append(violations, v.checkWorkAmounts(sol)...)

	makespan := 0
	for _, a := range sol.Assignments {
		if end := a.End(); end > makespan {
			makespan = end
		}
	}

	return &Report{
		Valid:      len(violations) == 0,
		Violations: violations,
		Makespan:   makespan,
	}
}

// available reports whether a unit is available at time t per its calendar.
// Units without a calendar entry are always available.
func (v *Validator) available(unit core.UnitID, t int) bool {
	return v.calendars[unit].AvailableAt(t)
}

// sortedTaskIDs returns the instance task IDs in ascending order.
func (v *Validator) sortedTaskIDs() []core.TaskID {
	out := append([]core.TaskID(nil), v.taskOrder...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
