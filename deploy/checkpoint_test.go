package deploy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCheckpointSaveLoadRoundTrip(t *testing.T) {
	backups := t.TempDir()
	game := t.TempDir()
	writeFile(t, filepath.Join(game, PluginsDir, "test-a", "a.dll"), "payload")

	cp := &Checkpoint{
		ProfileName: "test-profile",
		GamePath:    game,
		Timestamp:   time.Now().Truncate(time.Second),
		State: map[string]FileState{
			filepath.Join(game, PluginsDir, "test-a", "a.dll"): {Hash: "abc123", ModID: "test-a"},
		},
		Files: []string{filepath.Join(game, PluginsDir, "test-a", "a.dll")},
		Dir:   newCheckpointDir(backups, time.Now()),
	}
	if err := cp.save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadCheckpoint(cp.Dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ProfileName != cp.ProfileName || loaded.GamePath != cp.GamePath {
		t.Errorf("Loaded checkpoint differs: %+v", loaded)
	}
	if !loaded.Timestamp.Equal(cp.Timestamp) {
		t.Errorf("Expected timestamp %v, got %v", cp.Timestamp, loaded.Timestamp)
	}
	if len(loaded.State) != 1 || loaded.State[cp.Files[0]].Hash != "abc123" {
		t.Errorf("State snapshot not preserved: %v", loaded.State)
	}
	if loaded.Dir != cp.Dir {
		t.Errorf("Expected Dir to be derived from location, got %s", loaded.Dir)
	}
}

func TestLoadCheckpointMissing(t *testing.T) {
	if _, err := LoadCheckpoint(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing checkpoint directory")
	}
}

func TestLatestCheckpoint(t *testing.T) {
	backups := t.TempDir()

	t.Run("no backups directory", func(t *testing.T) {
		cp, err := LatestCheckpoint(filepath.Join(backups, "missing"), "test-profile")
		if err != nil || cp != nil {
			t.Errorf("Expected nil, nil, got %v, %v", cp, err)
		}
	})

	t.Run("no matching checkpoints", func(t *testing.T) {
		cp, err := LatestCheckpoint(backups, "test-profile")
		if err != nil || cp != nil {
			t.Errorf("Expected nil, nil, got %v, %v", cp, err)
		}
	})

	base := time.Now().Truncate(time.Second)
	for i, profile := range []string{"test-profile", "test-profile", "other-profile"} {
		cp := &Checkpoint{
			ProfileName: profile,
			GamePath:    "/game",
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Dir:         newCheckpointDir(backups, base),
		}
		if err := cp.save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	t.Run("picks newest for the profile", func(t *testing.T) {
		cp, err := LatestCheckpoint(backups, "test-profile")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cp == nil {
			t.Fatal("Expected a checkpoint")
		}
		if !cp.Timestamp.Equal(base.Add(time.Minute)) {
			t.Errorf("Expected the newer test-profile checkpoint, got %v", cp.Timestamp)
		}
	})
}

func TestCheckpointPruning(t *testing.T) {
	store := newMemStore()
	engine := newTestEngine(t, store)
	engine.opts.MaxCheckpoints = 2

	game := newGameDir(t)
	profile := newTestProfile(t, game)

	base := time.Now()
	for i := 0; i < 4; i++ {
		cp := &Checkpoint{
			ProfileName: profile.Name,
			GamePath:    game,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Dir:         newCheckpointDir(engine.opts.BackupsDir, base),
		}
		if err := cp.save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	engine.pruneCheckpoints(profile.Name)

	cps := profileCheckpoints(engine.opts.BackupsDir, profile.Name)
	if len(cps) != 2 {
		t.Fatalf("Expected 2 checkpoints after pruning, got %d", len(cps))
	}
	// Newest survive.
	if !cps[0].Timestamp.After(cps[1].Timestamp) {
		t.Error("Expected newest-first ordering")
	}
	if cps[1].Timestamp.Before(base.Add(2*time.Minute).Add(-time.Second)) {
		t.Errorf("Expected the two newest checkpoints to survive, oldest kept is %v", cps[1].Timestamp)
	}
}

func TestModFilesSkipsMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "plugin.dll"), "x")
	writeFile(t, filepath.Join(dir, "manifest.json"), "x")
	writeFile(t, filepath.Join(dir, "icon.png"), "x")
	writeFile(t, filepath.Join(dir, "README.md"), "x")
	writeFile(t, filepath.Join(dir, "CHANGELOG.md"), "x")
	writeFile(t, filepath.Join(dir, "config", "settings.cfg"), "x")

	files := modFiles(dir)
	want := []string{filepath.Join("config", "settings.cfg"), "plugin.dll"}
	if len(files) != len(want) {
		t.Fatalf("Expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("Expected %s at index %d, got %s", want[i], i, files[i])
		}
	}
}

func TestRemoveFileAndPrune(t *testing.T) {
	t.Run("prunes empty parents up to root", func(t *testing.T) {
		root := t.TempDir()
		target := filepath.Join(root, "a", "b", "c", "file.txt")
		writeFile(t, target, "x")

		if err := removeFileAndPrune(target, root); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "a")); !os.IsNotExist(err) {
			t.Error("Expected empty parent chain to be pruned")
		}
		if _, err := os.Stat(root); err != nil {
			t.Error("Root itself must never be pruned")
		}
	})

	t.Run("stops at non-empty parent", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a", "keep.txt"), "x")
		target := filepath.Join(root, "a", "b", "file.txt")
		writeFile(t, target, "x")

		if err := removeFileAndPrune(target, root); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "a", "b")); !os.IsNotExist(err) {
			t.Error("Expected empty directory to be pruned")
		}
		if _, err := os.Stat(filepath.Join(root, "a", "keep.txt")); err != nil {
			t.Error("Sibling file must survive pruning")
		}
	})

	t.Run("missing file is not an error", func(t *testing.T) {
		root := t.TempDir()
		if err := removeFileAndPrune(filepath.Join(root, "gone.txt"), root); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("never prunes outside root", func(t *testing.T) {
		outer := t.TempDir()
		root := filepath.Join(outer, "root")
		target := filepath.Join(outer, "elsewhere", "file.txt")
		writeFile(t, target, "x")

		if err := removeFileAndPrune(target, root); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(outer, "elsewhere")); err != nil {
			t.Error("Directory outside root must not be pruned")
		}
	})
}
