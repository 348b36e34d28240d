package resolver

import (
	"errors"
	"testing"

	"valheim-mod-manager/mods"
)

// mod builds a test mod with the given dependencies (any version).
func mod(t *testing.T, id string, deps ...string) *mods.Mod {
	t.Helper()
	m, err := mods.NewMod(id, id, "test", "1.0.0")
	if err != nil {
		t.Fatalf("bad test mod %s: %v", id, err)
	}
	for _, dep := range deps {
		m.Dependencies = append(m.Dependencies, mods.Dependency{ModID: dep, VersionConstraint: "*"})
	}
	return m
}

func indexOf(t *testing.T, order []string, id string) int {
	t.Helper()
	for i, v := range order {
		if v == id {
			return i
		}
	}
	t.Fatalf("id %s not in order %v", id, order)
	return -1
}

func TestResolveLoadOrderChain(t *testing.T) {
	// C depends on B depends on A; input deliberately reversed.
	set := []*mods.Mod{
		mod(t, "test-c", "test-b"),
		mod(t, "test-b", "test-a"),
		mod(t, "test-a"),
	}

	order, err := ResolveLoadOrder(set)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"test-a", "test-b", "test-c"}
	if len(order) != len(want) {
		t.Fatalf("Expected %d ids, got %v", len(want), order)
	}
	for i, id := range want {
		if order[i] != id {
			t.Errorf("Position %d: expected %s, got %s (full order %v)", i, id, order[i], order)
		}
	}
}

func TestResolveLoadOrderEdgeProperty(t *testing.T) {
	// A denser acyclic graph with shared dependencies and several roots.
	set := []*mods.Mod{
		mod(t, "test-app", "test-libx", "test-liby", "test-core"),
		mod(t, "test-libx", "test-core"),
		mod(t, "test-liby", "test-core", "test-util"),
		mod(t, "test-core"),
		mod(t, "test-util"),
		mod(t, "test-extra", "test-libx"),
		mod(t, "test-standalone"),
	}

	order, err := ResolveLoadOrder(set)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(order) != len(set) {
		t.Fatalf("Expected every input mod exactly once, got %v", order)
	}
	seen := make(map[string]int)
	for _, id := range order {
		seen[id]++
	}
	for _, m := range set {
		if seen[m.ID] != 1 {
			t.Errorf("Mod %s appears %d times in output", m.ID, seen[m.ID])
		}
	}

	// For every edge (m depends on d), d must precede m.
	for _, m := range set {
		for _, dep := range m.Dependencies {
			if indexOf(t, order, dep.ModID) >= indexOf(t, order, m.ID) {
				t.Errorf("Dependency %s does not precede dependent %s in %v", dep.ModID, m.ID, order)
			}
		}
	}
}

func TestResolveLoadOrderDeterministic(t *testing.T) {
	set := []*mods.Mod{
		mod(t, "test-a"),
		mod(t, "test-b"),
		mod(t, "test-c"),
	}

	first, err := ResolveLoadOrder(set)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := ResolveLoadOrder(set)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("Order not deterministic: %v vs %v", first, again)
			}
		}
	}
}

func TestResolveLoadOrderCycle(t *testing.T) {
	t.Run("two-node cycle", func(t *testing.T) {
		set := []*mods.Mod{
			mod(t, "test-a", "test-b"),
			mod(t, "test-b", "test-a"),
		}

		_, err := ResolveLoadOrder(set)
		var cycleErr *CircularDependencyError
		if !errors.As(err, &cycleErr) {
			t.Fatalf("Expected CircularDependencyError, got %v", err)
		}

		chain := make(map[string]bool)
		for _, id := range cycleErr.Chain {
			chain[id] = true
		}
		if !chain["test-a"] || !chain["test-b"] {
			t.Errorf("Cycle chain %v should contain both mods", cycleErr.Chain)
		}
		if cycleErr.Chain[0] != cycleErr.Chain[len(cycleErr.Chain)-1] {
			t.Errorf("Cycle chain %v should start and end at the same id", cycleErr.Chain)
		}
	})

	t.Run("self dependency", func(t *testing.T) {
		set := []*mods.Mod{mod(t, "test-selfish", "test-selfish")}

		_, err := ResolveLoadOrder(set)
		var cycleErr *CircularDependencyError
		if !errors.As(err, &cycleErr) {
			t.Fatalf("Expected CircularDependencyError, got %v", err)
		}
		if len(cycleErr.Chain) < 2 || cycleErr.Chain[0] != "test-selfish" {
			t.Errorf("Unexpected chain for self dependency: %v", cycleErr.Chain)
		}
	})

	t.Run("cycle behind a chain", func(t *testing.T) {
		set := []*mods.Mod{
			mod(t, "test-entry", "test-a"),
			mod(t, "test-a", "test-b"),
			mod(t, "test-b", "test-c"),
			mod(t, "test-c", "test-a"),
		}

		_, err := ResolveLoadOrder(set)
		var cycleErr *CircularDependencyError
		if !errors.As(err, &cycleErr) {
			t.Fatalf("Expected CircularDependencyError, got %v", err)
		}
		// The chain must be a real cycle in the input graph, not include
		// the acyclic entry point.
		for _, id := range cycleErr.Chain {
			if id == "test-entry" {
				t.Errorf("Chain %v should only contain cycle members", cycleErr.Chain)
			}
		}
	})
}

func TestResolveLoadOrderMissingDependency(t *testing.T) {
	set := []*mods.Mod{mod(t, "test-a", "test-ghost")}

	_, err := ResolveLoadOrder(set)
	var missingErr *MissingDependencyError
	if !errors.As(err, &missingErr) {
		t.Fatalf("Expected MissingDependencyError, got %v", err)
	}
	if missingErr.ModID != "test-a" || missingErr.Dependency != "test-ghost" {
		t.Errorf("Unexpected error fields: %+v", missingErr)
	}
}

func TestAllDependencies(t *testing.T) {
	set := []*mods.Mod{
		mod(t, "test-app", "test-libx", "test-liby"),
		mod(t, "test-libx", "test-core"),
		mod(t, "test-liby", "test-core"),
		mod(t, "test-core"),
	}

	t.Run("direct only", func(t *testing.T) {
		direct := AllDependencies("test-app", set, false)
		if len(direct) != 2 {
			t.Fatalf("Expected 2 direct deps, got %v", direct)
		}
	})

	t.Run("recursive visits each once", func(t *testing.T) {
		all := AllDependencies("test-app", set, true)
		if len(all) != 3 {
			t.Fatalf("Expected 3 transitive deps, got %v", all)
		}
		seen := make(map[string]bool)
		for _, id := range all {
			if seen[id] {
				t.Errorf("Dependency %s reported twice", id)
			}
			if id == "test-app" {
				t.Error("Origin mod must be excluded")
			}
			seen[id] = true
		}
	})

	t.Run("unknown mod", func(t *testing.T) {
		if deps := AllDependencies("test-nothing", set, true); deps != nil {
			t.Errorf("Expected nil for unknown mod, got %v", deps)
		}
	})
}

func TestCheckVersionCompatibility(t *testing.T) {
	app := mod(t, "test-app")
	app.Dependencies = []mods.Dependency{
		{ModID: "test-libx", VersionConstraint: ">=2.0.0"},
		{ModID: "test-liby", VersionConstraint: "*"},
	}
	set := []*mods.Mod{app}

	t.Run("all satisfied", func(t *testing.T) {
		ok, errs := CheckVersionCompatibility("test-app", set, map[string]string{
			"test-libx": "2.1.0",
			"test-liby": "0.1.0",
		})
		if !ok || len(errs) != 0 {
			t.Errorf("Expected compatible, got errs %v", errs)
		}
	})

	t.Run("version too low", func(t *testing.T) {
		ok, errs := CheckVersionCompatibility("test-app", set, map[string]string{
			"test-libx": "1.9.0",
			"test-liby": "0.1.0",
		})
		if ok || len(errs) != 1 {
			t.Errorf("Expected one conflict, got %v", errs)
		}
	})

	t.Run("missing from available", func(t *testing.T) {
		ok, errs := CheckVersionCompatibility("test-app", set, map[string]string{
			"test-libx": "2.1.0",
		})
		if ok || len(errs) != 1 {
			t.Errorf("Expected one missing-dependency message, got %v", errs)
		}
	})
}

func TestAutoResolveDependencies(t *testing.T) {
	catalog := map[string]*mods.Mod{
		"test-x":    mod(t, "test-x", "test-y"),
		"test-y":    mod(t, "test-y", "test-z"),
		"test-z":    mod(t, "test-z"),
		"test-solo": mod(t, "test-solo"),
	}

	t.Run("pulls transitive dependencies", func(t *testing.T) {
		order, err := AutoResolveDependencies([]string{"test-x"}, catalog)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(order) != 3 {
			t.Fatalf("Expected x, y, z, got %v", order)
		}
		if indexOf(t, order, "test-y") >= indexOf(t, order, "test-x") {
			t.Errorf("Dependency test-y must precede test-x in %v", order)
		}
		if indexOf(t, order, "test-z") >= indexOf(t, order, "test-y") {
			t.Errorf("Dependency test-z must precede test-y in %v", order)
		}
	})

	t.Run("unavailable id is skipped, not fatal", func(t *testing.T) {
		order, err := AutoResolveDependencies([]string{"test-missing", "test-solo"}, catalog)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(order) != 1 || order[0] != "test-solo" {
			t.Errorf("Expected only test-solo, got %v", order)
		}
	})

	t.Run("dependency on an unavailable id is skipped too", func(t *testing.T) {
		gapped := map[string]*mods.Mod{
			"test-top": mod(t, "test-top", "test-gone"),
		}
		order, err := AutoResolveDependencies([]string{"test-top"}, gapped)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(order) != 1 || order[0] != "test-top" {
			t.Errorf("Expected test-top alone, got %v", order)
		}
		// The catalog entry itself keeps its declaration.
		if len(gapped["test-top"].Dependencies) != 1 {
			t.Error("Catalog entry must not be mutated")
		}
	})
}

func TestFindDependents(t *testing.T) {
	set := []*mods.Mod{
		mod(t, "test-core"),
		mod(t, "test-a", "test-core"),
		mod(t, "test-b", "test-core"),
		mod(t, "test-c", "test-a"),
	}

	dependents := FindDependents("test-core", set)
	if len(dependents) != 2 {
		t.Fatalf("Expected 2 dependents, got %v", dependents)
	}
	if FindDependents("test-c", set) != nil {
		t.Error("Expected no dependents for leaf mod")
	}
}
