// Package deploy synchronizes a profile's enabled mods into a live game
// directory.
//
// Deployments are incremental: the engine diffs the desired file set
// against the durably tracked state by content fingerprint, touches only
// what changed, and checkpoints before mutating so any failure rolls the
// target back to its pre-deployment bytes.
package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"valheim-mod-manager/hashing"
	"valheim-mod-manager/mods"

	"go.uber.org/zap"
)

// PluginsDir is the subdirectory of the game installation that hosts
// deployed mod files, one folder per mod id.
const PluginsDir = "BepInEx/plugins"

// gameExecutables are the binaries that mark a directory as a Valheim
// installation.
var gameExecutables = []string{"valheim.exe", "valheim", "valheim.x86_64"}

// Options configures an Engine.
type Options struct {
	BackupsDir     string // where checkpoints live
	AutoBackup     bool   // checkpoint before every deployment
	MaxCheckpoints int    // checkpoints retained per profile after success
	CacheSize      int    // LRU hash cache capacity
}

// Engine deploys profiles. Each engine owns its own hash cache and must
// not be used for concurrent deployments of the same profile; engines for
// different profiles are independent.
type Engine struct {
	store StateStore
	cache *hashing.Cache
	opts  Options
	log   *zap.SugaredLogger

	// checkpoint active for the in-flight deployment, if any.
	checkpoint *Checkpoint
}

// NewEngine builds an engine over the given state store.
func NewEngine(store StateStore, opts Options, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.MaxCheckpoints <= 0 {
		opts.MaxCheckpoints = 5
	}
	return &Engine{
		store: store,
		cache: hashing.NewCache(opts.CacheSize),
		opts:  opts,
		log:   log,
	}
}

// plannedFile is one desired destination file and where it comes from.
type plannedFile struct {
	Source string
	Hash   string
	ModID  string
}

// ChangeSet is the difference between a profile's desired file set and its
// tracked deployment state.
type ChangeSet struct {
	ToAdd    []string // desired, not tracked
	ToUpdate []string // tracked with a different fingerprint
	ToRemove []string // tracked, no longer desired

	desired map[string]plannedFile
}

// Total is the number of discrete operations the change set implies.
func (c *ChangeSet) Total() int {
	return len(c.ToAdd) + len(c.ToUpdate) + len(c.ToRemove)
}

// Empty reports whether the deployment is already up to date.
func (c *ChangeSet) Empty() bool { return c.Total() == 0 }

// ValidateGamePath checks that path is an existing Valheim installation.
// A missing plugin-host directory is only warned about: deployment will
// create it.
func (e *Engine) ValidateGamePath(path string) error {
	if path == "" {
		return &GamePathInvalidError{Path: path, Reason: "no game path set"}
	}
	if _, err := os.Stat(path); err != nil {
		return &GamePathInvalidError{Path: path, Reason: "directory does not exist"}
	}

	hasExe := false
	for _, exe := range gameExecutables {
		if _, err := os.Stat(filepath.Join(path, exe)); err == nil {
			hasExe = true
			break
		}
	}
	if !hasExe {
		return &GamePathInvalidError{Path: path, Reason: "game executable not found"}
	}

	if _, err := os.Stat(filepath.Join(path, "BepInEx")); os.IsNotExist(err) {
		e.log.Warnw("BepInEx not found in game directory, it will be created on deploy",
			zap.String("game_path", path))
	}

	return nil
}

// CalculateChanges diffs the desired state of the given mods (in load
// order) against the tracked deployment state for the profile. Files whose
// fingerprint is unchanged appear in neither list and cost no I/O later.
func (e *Engine) CalculateChanges(profile *mods.Profile, enabled []*mods.Mod) (*ChangeSet, error) {
	current, err := e.store.GetDeploymentState(profile.Name)
	if err != nil {
		return nil, err
	}

	changes := &ChangeSet{desired: make(map[string]plannedFile)}
	pluginsRoot := filepath.Join(profile.GamePath, PluginsDir)

	for _, mod := range enabled {
		if mod.InstallPath == "" {
			e.log.Warnw("Mod has no install path, skipping", zap.String("mod_id", mod.ID))
			continue
		}
		if _, err := os.Stat(mod.InstallPath); err != nil {
			e.log.Warnw("Mod install path missing, skipping",
				zap.String("mod_id", mod.ID),
				zap.String("install_path", mod.InstallPath))
			continue
		}

		for _, rel := range modFiles(mod.InstallPath) {
			src := filepath.Join(mod.InstallPath, rel)
			dst := filepath.Join(pluginsRoot, mod.ID, rel)
			hash := e.cache.HashFile(src)

			changes.desired[dst] = plannedFile{Source: src, Hash: hash, ModID: mod.ID}

			if tracked, ok := current[dst]; !ok {
				changes.ToAdd = append(changes.ToAdd, dst)
			} else if tracked.Hash != hash {
				changes.ToUpdate = append(changes.ToUpdate, dst)
			}
		}
	}

	for path := range current {
		if _, ok := changes.desired[path]; !ok {
			changes.ToRemove = append(changes.ToRemove, path)
		}
	}
	sort.Strings(changes.ToRemove)

	e.log.Infow("Calculated changes",
		zap.String("profile", profile.Name),
		zap.Int("to_add", len(changes.ToAdd)),
		zap.Int("to_update", len(changes.ToUpdate)),
		zap.Int("to_remove", len(changes.ToRemove)),
	)
	return changes, nil
}

// CreateCheckpoint snapshots the profile's tracked state and backs up every
// currently-deployed file. Must run before any destructive operation.
func (e *Engine) CreateCheckpoint(profile *mods.Profile) (*Checkpoint, error) {
	if profile.GamePath == "" {
		return nil, &GamePathInvalidError{Reason: "profile has no game path set"}
	}

	state, err := e.store.GetDeploymentState(profile.Name)
	if err != nil {
		return nil, err
	}

	cp := &Checkpoint{
		ProfileName: profile.Name,
		GamePath:    profile.GamePath,
		Timestamp:   time.Now(),
		State:       state,
		Dir:         newCheckpointDir(e.opts.BackupsDir, time.Now()),
	}

	for _, path := range sortedPaths(state) {
		if _, err := os.Stat(path); err != nil {
			continue // tracked but already gone, nothing to back up
		}
		rel, err := filepath.Rel(profile.GamePath, path)
		if err != nil {
			continue
		}
		dst := filepath.Join(cp.filesDir(), rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return nil, fmt.Errorf("failed to prepare backup directory: %w", err)
		}
		if err := copyFile(path, dst); err != nil {
			return nil, fmt.Errorf("failed to back up %s: %w", path, err)
		}
		cp.Files = append(cp.Files, path)
	}

	if err := cp.save(); err != nil {
		return nil, err
	}

	e.log.Infow("Created checkpoint",
		zap.String("profile", profile.Name),
		zap.String("path", cp.Dir),
		zap.Int("files_backed_up", len(cp.Files)),
	)
	return cp, nil
}

// DeployProfile synchronizes the profile's enabled mods into its game
// directory: validate, checkpoint, diff, apply. Removals run first, then
// copies in ascending load order. Any copy failure rolls back through the
// active checkpoint and surfaces as *DeploymentFailedError.
func (e *Engine) DeployProfile(profile *mods.Profile, progress ProgressFunc) error {
	if err := e.ValidateGamePath(profile.GamePath); err != nil {
		return err
	}

	log := e.log.With(zap.String("profile", profile.Name))
	log.Infow("Starting deployment")

	enabled := profile.EnabledMods()
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].LoadOrder < enabled[j].LoadOrder
	})
	if len(enabled) == 0 {
		log.Warnw("No enabled mods in profile, deployment will remove everything tracked")
	}

	if e.opts.AutoBackup {
		cp, err := e.CreateCheckpoint(profile)
		if err != nil {
			return &DeploymentFailedError{ProfileName: profile.Name, Err: err}
		}
		e.checkpoint = cp
	} else {
		e.checkpoint = nil
		log.Warnw("Auto-backup disabled, rollback will not be available")
	}

	changes, err := e.CalculateChanges(profile, enabled)
	if err != nil {
		return e.failDeployment(profile, err)
	}

	total := changes.Total()
	done := 0
	report := func(msg string) {
		if progress != nil {
			progress(done, total, msg)
		}
	}

	// Removals first: files from disabled or removed mods. Per-file errors
	// here are best-effort — a stale leftover is less harmful than an
	// aborted deployment.
	for _, dst := range changes.ToRemove {
		report(fmt.Sprintf("Removing: %s", filepath.Base(dst)))
		if err := removeFileAndPrune(dst, profile.GamePath); err != nil {
			log.Warnw("Failed to remove deployed file, skipping",
				zap.String("file", dst), zap.Error(err))
			done++
			continue
		}
		if err := e.store.RemoveDeploymentState(dst, profile.Name); err != nil {
			return e.failDeployment(profile, err)
		}
		done++
	}

	// Copies in load order. Per-file errors here are fatal.
	apply := make(map[string]bool, len(changes.ToAdd)+len(changes.ToUpdate))
	for _, dst := range changes.ToAdd {
		apply[dst] = true
	}
	for _, dst := range changes.ToUpdate {
		apply[dst] = true
	}

	for _, mod := range enabled {
		if mod.InstallPath == "" {
			continue
		}
		for _, rel := range modFiles(mod.InstallPath) {
			dst := filepath.Join(profile.GamePath, PluginsDir, mod.ID, rel)
			if !apply[dst] {
				continue
			}
			planned := changes.desired[dst]

			report(fmt.Sprintf("Copying: %s - %s", mod.Name, filepath.Base(rel)))

			// Self-heal: a file left behind by a crash between copy and
			// state write is absorbed when its content already matches.
			if e.cache.HashFile(dst) != planned.Hash {
				if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
					return e.failDeployment(profile, err)
				}
				if err := copyFile(planned.Source, dst); err != nil {
					return e.failDeployment(profile, err)
				}
				e.cache.Invalidate(dst)
			}

			if err := e.store.SaveDeploymentState(dst, planned.Hash, mod.ID, profile.Name); err != nil {
				return e.failDeployment(profile, err)
			}
			done++
		}
	}

	if err := e.store.LogDeployment(profile.Name, "deploy",
		len(changes.ToAdd), len(changes.ToUpdate), len(changes.ToRemove)); err != nil {
		log.Warnw("Failed to record deployment log", zap.Error(err))
	}

	profile.Active = true
	e.checkpoint = nil
	e.pruneCheckpoints(profile.Name)

	report("Deployment complete")
	log.Infow("Profile deployed successfully",
		zap.Int("added", len(changes.ToAdd)),
		zap.Int("updated", len(changes.ToUpdate)),
		zap.Int("removed", len(changes.ToRemove)),
	)
	return nil
}

// failDeployment rolls back through the active checkpoint (when there is
// one) and wraps the cause. A rollback failure takes precedence: that
// error must surface loudly.
func (e *Engine) failDeployment(profile *mods.Profile, cause error) error {
	e.log.Errorw("Deployment failed", zap.String("profile", profile.Name), zap.Error(cause))

	if e.checkpoint != nil {
		cp := e.checkpoint
		e.checkpoint = nil
		if err := e.Rollback(cp); err != nil {
			return err
		}
	}
	return &DeploymentFailedError{ProfileName: profile.Name, Err: cause}
}

// Rollback restores the checkpoint's file tree and tracked state exactly,
// then discards the checkpoint. Failure is fatal and surfaces as
// *RollbackError.
func (e *Engine) Rollback(cp *Checkpoint) error {
	log := e.log.With(zap.String("profile", cp.ProfileName))
	log.Infow("Rolling back to checkpoint", zap.Time("captured", cp.Timestamp))

	current, err := e.store.GetDeploymentState(cp.ProfileName)
	if err != nil {
		return &RollbackError{ProfileName: cp.ProfileName, Err: err}
	}

	// Remove whatever is deployed now; the backup tree replaces it.
	for _, path := range sortedPaths(current) {
		if err := removeFileAndPrune(path, cp.GamePath); err != nil {
			log.Warnw("Failed to remove file during rollback",
				zap.String("file", path), zap.Error(err))
		}
		e.cache.Invalidate(path)
	}

	if err := cp.restoreFiles(); err != nil {
		return &RollbackError{ProfileName: cp.ProfileName, Err: err}
	}

	if err := e.store.ClearDeploymentState(cp.ProfileName); err != nil {
		return &RollbackError{ProfileName: cp.ProfileName, Err: err}
	}
	for _, path := range sortedPaths(cp.State) {
		fs := cp.State[path]
		if err := e.store.SaveDeploymentState(path, fs.Hash, fs.ModID, cp.ProfileName); err != nil {
			return &RollbackError{ProfileName: cp.ProfileName, Err: err}
		}
	}

	if err := e.store.LogDeployment(cp.ProfileName, "rollback", 0, 0, len(current)); err != nil {
		log.Warnw("Failed to record rollback log", zap.Error(err))
	}

	if err := cp.Discard(); err != nil {
		log.Warnw("Failed to discard consumed checkpoint", zap.Error(err))
	}

	log.Infow("Rollback completed successfully", zap.Int("files_restored", len(cp.Files)))
	return nil
}

// ClearDeployment removes every tracked file for the profile, clears its
// state and marks it inactive. Full undeploy, not partial sync.
func (e *Engine) ClearDeployment(profile *mods.Profile) error {
	log := e.log.With(zap.String("profile", profile.Name))
	log.Infow("Clearing deployment")

	state, err := e.store.GetDeploymentState(profile.Name)
	if err != nil {
		return err
	}

	for _, path := range sortedPaths(state) {
		if err := removeFileAndPrune(path, profile.GamePath); err != nil {
			log.Warnw("Failed to remove deployed file, skipping",
				zap.String("file", path), zap.Error(err))
		}
		e.cache.Invalidate(path)
	}

	if err := e.store.ClearDeploymentState(profile.Name); err != nil {
		return err
	}

	if err := e.store.LogDeployment(profile.Name, "clear", 0, 0, len(state)); err != nil {
		log.Warnw("Failed to record clear log", zap.Error(err))
	}

	profile.Active = false
	log.Infow("Deployment cleared", zap.Int("files_removed", len(state)))
	return nil
}

// DeploymentInfo summarizes the current deployment of a profile.
type DeploymentInfo struct {
	ProfileName   string
	FilesDeployed int
	TotalSize     int64
	Active        bool
}

// GetDeploymentInfo reports what is currently tracked for the profile.
func (e *Engine) GetDeploymentInfo(profile *mods.Profile) (*DeploymentInfo, error) {
	state, err := e.store.GetDeploymentState(profile.Name)
	if err != nil {
		return nil, err
	}

	info := &DeploymentInfo{
		ProfileName:   profile.Name,
		FilesDeployed: len(state),
		Active:        profile.Active,
	}
	for path := range state {
		if fi, err := os.Stat(path); err == nil {
			info.TotalSize += fi.Size()
		}
	}
	return info, nil
}

// pruneCheckpoints keeps only the newest MaxCheckpoints checkpoints for
// the profile.
func (e *Engine) pruneCheckpoints(profileName string) {
	cps := profileCheckpoints(e.opts.BackupsDir, profileName)
	for i, cp := range cps {
		if i < e.opts.MaxCheckpoints {
			continue
		}
		if err := cp.Discard(); err != nil {
			e.log.Warnw("Failed to prune old checkpoint",
				zap.String("path", cp.Dir), zap.Error(err))
		}
	}
}

func sortedPaths(state map[string]FileState) []string {
	paths := make([]string, 0, len(state))
	for path := range state {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
