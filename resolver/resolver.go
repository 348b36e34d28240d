// Package resolver builds dependency graphs over mod sets and computes safe
// load orders.
//
// Every operation takes its working set as an explicit argument; the
// package keeps no registry between calls, so independent resolutions are
// trivially safe to run concurrently.
package resolver

import (
	"fmt"

	"valheim-mod-manager/mods"

	"go.uber.org/zap"
)

// log defaults to a nop logger so the package is quiet under test; the CLI
// wires the application logger in via SetLogger.
var log = zap.NewNop().Sugar()

// SetLogger routes resolver diagnostics to the given logger.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		log = l
	}
}

// ResolveLoadOrder computes a load order for the working set in which every
// dependency is positioned earlier than every mod that depends on it.
//
// Fails with *MissingDependencyError if a mod depends on an id absent from
// the set, or *CircularDependencyError if the set contains a dependency
// cycle (including self-dependency).
func ResolveLoadOrder(set []*mods.Mod) ([]string, error) {
	g, err := buildGraph(set)
	if err != nil {
		return nil, err
	}

	if err := g.checkCycles(); err != nil {
		return nil, err
	}

	sorted, err := g.topoSort()
	if err != nil {
		return nil, err
	}

	log.Infow("Resolved load order", zap.Int("mods", len(sorted)))
	return sorted, nil
}

// AllDependencies returns the dependency ids of modID within the working
// set. Non-recursive returns the direct declarations only; recursive
// performs a breadth-first traversal collecting every transitively
// reachable dependency, each at most once, excluding modID itself.
func AllDependencies(modID string, set []*mods.Mod, recursive bool) []string {
	index := indexByID(set)
	mod, ok := index[modID]
	if !ok {
		return nil
	}

	if !recursive {
		direct := make([]string, 0, len(mod.Dependencies))
		for _, dep := range mod.Dependencies {
			direct = append(direct, dep.ModID)
		}
		return direct
	}

	visited := map[string]bool{modID: true}
	var queue []string
	for _, dep := range mod.Dependencies {
		queue = append(queue, dep.ModID)
	}

	var result []string
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, current)

		if m, ok := index[current]; ok {
			for _, dep := range m.Dependencies {
				if !visited[dep.ModID] {
					queue = append(queue, dep.ModID)
				}
			}
		}
	}

	return result
}

// CheckVersionCompatibility verifies every declared dependency of modID
// against the available versions. Returns true with no messages when all
// constraints hold; otherwise false with one human-readable message per
// violation (missing dependency or unsatisfied constraint).
func CheckVersionCompatibility(modID string, set []*mods.Mod, available map[string]string) (bool, []string) {
	index := indexByID(set)
	mod, ok := index[modID]
	if !ok {
		return false, []string{fmt.Sprintf("mod %s not found in working set", modID)}
	}

	var errs []string
	for _, dep := range mod.Dependencies {
		installed, ok := available[dep.ModID]
		if !ok {
			errs = append(errs, fmt.Sprintf("missing dependency: %s (required by %s)", dep.ModID, modID))
			continue
		}
		if !mods.ConstraintSatisfied(installed, dep.VersionConstraint) {
			errs = append(errs, fmt.Sprintf(
				"version conflict: %s requires %s, but %s is installed",
				dep.ModID, dep.VersionConstraint, installed))
		}
	}

	return len(errs) == 0, errs
}

// AutoResolveDependencies expands the requested ids with every transitive
// dependency found in the catalog and returns the combined set in resolved
// load order.
//
// Unlike ResolveLoadOrder, an id missing from the catalog is a logged skip,
// not a failure: this operation explores an open catalog, whereas strict
// resolution operates on a closed, already-validated set.
func AutoResolveDependencies(requested []string, available map[string]*mods.Mod) ([]string, error) {
	log.Infow("Auto-resolving dependencies", zap.Int("requested", len(requested)))

	required := make(map[string]bool, len(requested))
	var queue []string
	for _, id := range requested {
		if !required[id] {
			required[id] = true
			queue = append(queue, id)
		}
	}
	var order []string // catalog-available ids in first-seen order
	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		mod, ok := available[currentID]
		if !ok {
			log.Warnw("Mod not available in catalog, skipping", zap.String("mod_id", currentID))
			continue
		}
		order = append(order, currentID)

		for _, dep := range mod.Dependencies {
			if !required[dep.ModID] {
				log.Infow("Adding dependency", zap.String("mod_id", dep.ModID))
				required[dep.ModID] = true
				queue = append(queue, dep.ModID)
			}
		}
	}

	resolved := make(map[string]bool, len(order))
	for _, id := range order {
		resolved[id] = true
	}

	// Sort over shallow copies with dependencies on skipped ids filtered
	// out, so a skip stays a skip instead of resurfacing as a missing
	// dependency. Catalog entries are never mutated.
	toSort := make([]*mods.Mod, 0, len(order))
	for _, id := range order {
		m := *available[id]
		deps := make([]mods.Dependency, 0, len(m.Dependencies))
		for _, dep := range m.Dependencies {
			if resolved[dep.ModID] {
				deps = append(deps, dep)
			}
		}
		m.Dependencies = deps
		toSort = append(toSort, &m)
	}

	sorted, err := ResolveLoadOrder(toSort)
	if err != nil {
		return nil, err
	}

	log.Infow("Auto-resolution complete",
		zap.Int("total", len(sorted)),
		zap.Int("added", len(sorted)-len(requested)),
	)
	return sorted, nil
}

// FindDependents returns the ids of every mod in the working set that
// declares a dependency on modID.
func FindDependents(modID string, set []*mods.Mod) []string {
	var dependents []string
	for _, m := range set {
		if m.HasDependency(modID) {
			dependents = append(dependents, m.ID)
		}
	}
	return dependents
}

func indexByID(set []*mods.Mod) map[string]*mods.Mod {
	index := make(map[string]*mods.Mod, len(set))
	for _, m := range set {
		index[m.ID] = m
	}
	return index
}
