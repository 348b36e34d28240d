package resolver

import (
	"valheim-mod-manager/mods"
)

// depGraph is a directed "depends on" graph: an edge from a mod to one of
// its dependencies means the mod must load after that dependency.
//
// Node and neighbor order mirror the input, so every traversal below is
// deterministic for a given mod list.
type depGraph struct {
	nodes []string
	edges map[string][]string
}

// buildGraph constructs the graph for a working set. Every mod appears as a
// node even with no edges. A dependency on an id outside the set fails with
// MissingDependencyError.
func buildGraph(set []*mods.Mod) (*depGraph, error) {
	g := &depGraph{edges: make(map[string][]string, len(set))}

	inSet := make(map[string]bool, len(set))
	for _, m := range set {
		if !inSet[m.ID] {
			inSet[m.ID] = true
			g.nodes = append(g.nodes, m.ID)
			g.edges[m.ID] = nil
		}
	}

	for _, m := range set {
		seen := make(map[string]bool, len(m.Dependencies))
		for _, dep := range m.Dependencies {
			if !inSet[dep.ModID] {
				return nil, &MissingDependencyError{
					ModID:      m.ID,
					Dependency: dep.ModID,
					Constraint: dep.VersionConstraint,
				}
			}
			if !seen[dep.ModID] {
				seen[dep.ModID] = true
				g.edges[m.ID] = append(g.edges[m.ID], dep.ModID)
			}
		}
	}

	return g, nil
}

// DFS colors for cycle detection.
const (
	white = iota // unvisited
	gray         // on the current recursion path
	black        // fully processed
)

// checkCycles runs a three-color depth-first search. Reaching a gray node
// closes a cycle; the reported chain is the suffix of the current path from
// the first occurrence of that node back to it.
func (g *depGraph) checkCycles() error {
	colors := make(map[string]int, len(g.nodes))
	var path []string

	var visit func(node string) error
	visit = func(node string) error {
		switch colors[node] {
		case gray:
			start := 0
			for i, id := range path {
				if id == node {
					start = i
					break
				}
			}
			chain := append(append([]string{}, path[start:]...), node)
			return &CircularDependencyError{Chain: chain}
		case black:
			return nil
		}

		colors[node] = gray
		path = append(path, node)

		for _, dep := range g.edges[node] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		colors[node] = black
		return nil
	}

	for _, node := range g.nodes {
		if colors[node] == white {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}

// topoSort runs Kahn's algorithm over in-degree counts.
//
// In-degree here counts dependents: a node nobody depends on enters the
// queue first, so the raw output lists dependents before dependencies. The
// final order is the reverse, guaranteeing every dependency appears before
// every mod that needs it. The queue is FIFO over insertion order, which
// keeps ties deterministic.
func (g *depGraph) topoSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, node := range g.nodes {
		for _, dep := range g.edges[node] {
			inDegree[dep]++
		}
	}

	var queue []string
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	sorted := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		sorted = append(sorted, node)

		for _, dep := range g.edges[node] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	// A residual cycle would leave nodes unsorted. checkCycles runs first,
	// so this is an internal invariant violation, reported in the same
	// shape.
	if len(sorted) != len(g.nodes) {
		sortedSet := make(map[string]bool, len(sorted))
		for _, id := range sorted {
			sortedSet[id] = true
		}
		var residue []string
		for _, node := range g.nodes {
			if !sortedSet[node] {
				residue = append(residue, node)
			}
		}
		return nil, &CircularDependencyError{Chain: residue}
	}

	// Reverse: dependencies before dependents.
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted, nil
}
