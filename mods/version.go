package mods

import (
	"strconv"
	"strings"
)

// CompareVersions compares two dot-separated version strings component-wise
// as integers. Returns -1 if a < b, 0 if equal, 1 if a > b.
//
// Non-numeric components compare as 0 and missing components compare as 0,
// so "1.2" == "1.2.0" and "1.2.beta" == "1.2.0". This mirrors the lenient
// versioning mods actually ship with; it is deliberately not semver.
func CompareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}

	for i := 0; i < n; i++ {
		av, bv := 0, 0
		if i < len(as) {
			av, _ = strconv.Atoi(strings.TrimSpace(as[i]))
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(strings.TrimSpace(bs[i]))
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// ConstraintSatisfied reports whether version satisfies constraint.
//
// Grammar: "*" matches anything; ">=", ">", "<=", "<" prefix a version to
// compare against; "==" or a bare value requires an exact string match.
func ConstraintSatisfied(version, constraint string) bool {
	constraint = strings.TrimSpace(constraint)

	switch {
	case constraint == "*" || constraint == "":
		return true
	case strings.HasPrefix(constraint, ">="):
		return CompareVersions(version, strings.TrimSpace(constraint[2:])) >= 0
	case strings.HasPrefix(constraint, "<="):
		return CompareVersions(version, strings.TrimSpace(constraint[2:])) <= 0
	case strings.HasPrefix(constraint, "=="):
		return version == strings.TrimSpace(constraint[2:])
	case strings.HasPrefix(constraint, ">"):
		return CompareVersions(version, strings.TrimSpace(constraint[1:])) > 0
	case strings.HasPrefix(constraint, "<"):
		return CompareVersions(version, strings.TrimSpace(constraint[1:])) < 0
	default:
		// Bare value is an exact match.
		return version == constraint
	}
}
