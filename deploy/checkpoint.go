package deploy

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	checkpointMetaFile = "checkpoint.json"
	checkpointFilesDir = "files"
	checkpointPrefix   = "checkpoint_"
)

// Checkpoint is a pre-deployment snapshot: the deployment state at capture
// time plus a backup copy of every then-deployed file. The on-disk layout
// is fully self-describing, so a rollback can run from disk alone without
// the original deployment call's memory.
type Checkpoint struct {
	ProfileName string               `json:"profile_name"`
	GamePath    string               `json:"game_path"`
	Timestamp   time.Time            `json:"timestamp"`
	State       map[string]FileState `json:"deployment_state"`
	Files       []string             `json:"files_backed_up"` // original absolute paths

	// Dir is where this checkpoint lives on disk; derived from the
	// location, not stored in the metadata file.
	Dir string `json:"-"`
}

// filesDir is the root of the backed-up file tree, mirroring paths
// relative to GamePath.
func (c *Checkpoint) filesDir() string {
	return filepath.Join(c.Dir, checkpointFilesDir)
}

// save writes the checkpoint metadata next to the backup tree.
func (c *Checkpoint) save() error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	return os.WriteFile(filepath.Join(c.Dir, checkpointMetaFile), data, 0644)
}

// Discard removes the checkpoint and its backup tree from disk.
func (c *Checkpoint) Discard() error {
	return os.RemoveAll(c.Dir)
}

// LoadCheckpoint reads a checkpoint back from its directory.
func LoadCheckpoint(dir string) (*Checkpoint, error) {
	data, err := os.ReadFile(filepath.Join(dir, checkpointMetaFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint metadata: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint metadata: %w", err)
	}
	cp.Dir = dir
	return &cp, nil
}

// LatestCheckpoint finds the newest on-disk checkpoint for a profile under
// backupsDir. Returns nil without error when none exists.
func LatestCheckpoint(backupsDir, profileName string) (*Checkpoint, error) {
	entries, err := os.ReadDir(backupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan backups directory: %w", err)
	}

	var latest *Checkpoint
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), checkpointPrefix) {
			continue
		}
		cp, err := LoadCheckpoint(filepath.Join(backupsDir, entry.Name()))
		if err != nil {
			continue // unreadable checkpoint, skip it
		}
		if cp.ProfileName != profileName {
			continue
		}
		if latest == nil || cp.Timestamp.After(latest.Timestamp) {
			latest = cp
		}
	}
	return latest, nil
}

// newCheckpointDir builds a unique directory name. The uuid suffix keeps
// two captures within the same second from colliding.
func newCheckpointDir(backupsDir string, now time.Time) string {
	name := fmt.Sprintf("%s%s_%s", checkpointPrefix, now.Format("20060102_150405"), uuid.NewString()[:8])
	return filepath.Join(backupsDir, name)
}

// profileCheckpoints lists every checkpoint for a profile, newest first.
func profileCheckpoints(backupsDir, profileName string) []*Checkpoint {
	entries, err := os.ReadDir(backupsDir)
	if err != nil {
		return nil
	}

	var cps []*Checkpoint
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), checkpointPrefix) {
			continue
		}
		cp, err := LoadCheckpoint(filepath.Join(backupsDir, entry.Name()))
		if err != nil || cp.ProfileName != profileName {
			continue
		}
		cps = append(cps, cp)
	}

	sort.Slice(cps, func(i, j int) bool { return cps[i].Timestamp.After(cps[j].Timestamp) })
	return cps
}

// restoreFiles copies the backed-up tree back under the game path.
func (c *Checkpoint) restoreFiles() error {
	root := c.filesDir()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil // nothing was deployed at capture time
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(c.GamePath, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		return copyFile(path, dst)
	})
}
