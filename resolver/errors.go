package resolver

import (
	"fmt"
	"strings"
)

// CircularDependencyError reports a dependency cycle. Chain is an ordered
// walk through the cycle, starting and ending at the same mod id.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Chain, " -> "))
}

// MissingDependencyError reports a mod whose declared dependency is absent
// from the working set.
type MissingDependencyError struct {
	ModID      string
	Dependency string
	Constraint string
}

func (e *MissingDependencyError) Error() string {
	if e.Constraint != "" && e.Constraint != "*" {
		return fmt.Sprintf("mod %q requires %q (version %s)", e.ModID, e.Dependency, e.Constraint)
	}
	return fmt.Sprintf("mod %q requires %q", e.ModID, e.Dependency)
}

// VersionConflictError reports a dependency present at an incompatible
// version.
type VersionConflictError struct {
	ModID    string
	Required string
	Actual   string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict for %q: requires %s, but %s is installed", e.ModID, e.Required, e.Actual)
}
