package validate

import (
	"errors"
	"fmt"
	"strings"
)

// Policy selects one of the six scheduling policies. The policies combine
// three axes: resource migration, task delay (pausing), and resource hold
// during pauses (blocked vs released).
type Policy int

const (
	// NoMigrationNoDelay: contiguous execution on a fixed resource set.
	NoMigrationNoDelay Policy = iota + 1
	// MigrationNoDelay: contiguous execution, aggregate per-type capacity only.
	MigrationNoDelay
	// NoMigrationDelayBlocked: pausable, resources reserved across the whole
	// span, work accrues only under joint availability.
	NoMigrationDelayBlocked
	// MigrationDelay: pausable, aggregate per-type capacity only.
	MigrationDelay
	// Heterogeneous: per-type partition into fixed and migrating subsets,
	// both evaluated simultaneously for every task.
	Heterogeneous
	// NoMigrationDelayReleased: pausable on a fixed resource set, resources
	// free outside active segments, each segment inside a joint window.
	NoMigrationDelayReleased
)

var policyNames = map[Policy]string{
	NoMigrationNoDelay:       "no-mig-no-delay",
	MigrationNoDelay:         "mig-no-delay",
	NoMigrationDelayBlocked:  "no-mig-delay-blocked",
	MigrationDelay:           "mig-delay",
	Heterogeneous:            "heterogeneous",
	NoMigrationDelayReleased: "no-mig-delay-released",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ErrUnknownPolicy is returned for an unrecognized policy name or number.
var ErrUnknownPolicy = errors.New("validate: unknown policy")

// ParsePolicy resolves a policy from its name or variant number (1-6).
func ParsePolicy(s string) (Policy, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if needle == name || needle == fmt.Sprintf("%d", int(p)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// Policies lists all policies in variant order.
func Policies() []Policy {
	return []Policy{
		NoMigrationNoDelay,
		MigrationNoDelay,
		NoMigrationDelayBlocked,
		MigrationDelay,
		Heterogeneous,
		NoMigrationDelayReleased,
	}
}
