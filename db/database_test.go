package db

import (
	"path/filepath"
	"testing"

	"valheim-mod-manager/deploy"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "mods.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return store
}

func TestDeploymentStateRoundTrip(t *testing.T) {
	store := openTestStore(t)

	state, err := store.GetDeploymentState("test-profile")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(state) != 0 {
		t.Errorf("Expected empty state for fresh profile, got %v", state)
	}

	if err := store.SaveDeploymentState("/game/plugins/a/a.dll", "hash-a", "author-a", "test-profile"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.SaveDeploymentState("/game/plugins/b/b.dll", "hash-b", "author-b", "test-profile"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	state, err = store.GetDeploymentState("test-profile")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(state) != 2 {
		t.Fatalf("Expected 2 tracked files, got %d", len(state))
	}
	want := deploy.FileState{Hash: "hash-a", ModID: "author-a"}
	if state["/game/plugins/a/a.dll"] != want {
		t.Errorf("Expected %+v, got %+v", want, state["/game/plugins/a/a.dll"])
	}
}

func TestSaveDeploymentStateUpserts(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveDeploymentState("/game/plugins/a/a.dll", "hash-v1", "author-a", "test-profile"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.SaveDeploymentState("/game/plugins/a/a.dll", "hash-v2", "author-a", "test-profile"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	state, err := store.GetDeploymentState("test-profile")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(state) != 1 {
		t.Fatalf("Expected a single row after upsert, got %d", len(state))
	}
	if state["/game/plugins/a/a.dll"].Hash != "hash-v2" {
		t.Errorf("Expected updated hash, got %+v", state["/game/plugins/a/a.dll"])
	}
}

func TestDeploymentStateIsolatedPerProfile(t *testing.T) {
	store := openTestStore(t)

	// Same file path under two profiles must coexist.
	if err := store.SaveDeploymentState("/game/plugins/a/a.dll", "hash-main", "author-a", "main"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.SaveDeploymentState("/game/plugins/a/a.dll", "hash-alt", "author-a", "alt"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	main, _ := store.GetDeploymentState("main")
	alt, _ := store.GetDeploymentState("alt")
	if main["/game/plugins/a/a.dll"].Hash != "hash-main" || alt["/game/plugins/a/a.dll"].Hash != "hash-alt" {
		t.Errorf("Profiles leaked into each other: main=%v alt=%v", main, alt)
	}

	if err := store.ClearDeploymentState("main"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	main, _ = store.GetDeploymentState("main")
	alt, _ = store.GetDeploymentState("alt")
	if len(main) != 0 {
		t.Errorf("Expected cleared profile to be empty, got %v", main)
	}
	if len(alt) != 1 {
		t.Errorf("Clearing one profile must not touch another, got %v", alt)
	}
}

func TestRemoveDeploymentState(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveDeploymentState("/game/plugins/a/a.dll", "hash-a", "author-a", "test-profile"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.RemoveDeploymentState("/game/plugins/a/a.dll", "test-profile"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	state, _ := store.GetDeploymentState("test-profile")
	if len(state) != 0 {
		t.Errorf("Expected empty state after remove, got %v", state)
	}

	// Removing a row that is not there is not an error.
	if err := store.RemoveDeploymentState("/game/plugins/a/a.dll", "test-profile"); err != nil {
		t.Errorf("Unexpected error removing absent row: %v", err)
	}

	// A re-save after remove must not hit a stale unique index entry.
	if err := store.SaveDeploymentState("/game/plugins/a/a.dll", "hash-a2", "author-a", "test-profile"); err != nil {
		t.Errorf("Re-save after remove failed: %v", err)
	}
}

func TestDeploymentLogs(t *testing.T) {
	store := openTestStore(t)

	if err := store.LogDeployment("test-profile", "deploy", 3, 1, 0); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.LogDeployment("test-profile", "rollback", 0, 0, 4); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.LogDeployment("other-profile", "clear", 0, 0, 2); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	logs, err := store.RecentLogs("test-profile", 10)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("Expected 2 logs for profile, got %d", len(logs))
	}
	actions := map[string]bool{}
	for _, entry := range logs {
		actions[entry.Action] = true
	}
	if !actions["deploy"] || !actions["rollback"] {
		t.Errorf("Expected deploy and rollback entries, got %v", actions)
	}

	limited, err := store.RecentLogs("test-profile", 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected limit to apply, got %d rows", len(limited))
	}
}
