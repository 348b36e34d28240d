package cmd

import (
	"fmt"
	"path/filepath"

	"valheim-mod-manager/config"
	"valheim-mod-manager/db"
	"valheim-mod-manager/deploy"
	"valheim-mod-manager/logger"
	"valheim-mod-manager/mods"
	"valheim-mod-manager/resolver"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for commands.
func bootstrap(cmd *cobra.Command) (config.Config, *db.Store) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load configuration", zap.Error(err))
	}

	store, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logger.Log.Fatalw("Failed to initialize database", zap.Error(err))
	}
	logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))

	resolver.SetLogger(logger.Log)

	return cfg, store
}

// newEngine builds a deployment engine from the loaded configuration.
func newEngine(cfg config.Config, store *db.Store, autoBackup bool) *deploy.Engine {
	return deploy.NewEngine(store, deploy.Options{
		BackupsDir:     cfg.BackupsDir,
		AutoBackup:     autoBackup,
		MaxCheckpoints: cfg.MaxCheckpoints,
		CacheSize:      cfg.HashCacheSize,
	}, logger.Log)
}

// profilePath maps a profile name to its JSON document under the
// configured profiles directory.
func profilePath(cfg config.Config, name string) string {
	return filepath.Join(cfg.ProfilesDir, name+".json")
}

// loadProfileByName loads a named profile document. Profiles without a
// game path of their own inherit the configured Valheim directory.
func loadProfileByName(cfg config.Config, name string) *mods.Profile {
	if err := mods.ValidateProfileName(name); err != nil {
		logger.Log.Fatalw("Invalid profile name", zap.String("profile", name), zap.Error(err))
	}

	path := profilePath(cfg, name)
	profile, err := mods.LoadProfile(path)
	if err != nil {
		logger.Log.Fatalw("Failed to load profile", zap.String("path", path), zap.Error(err))
	}
	if profile.GamePath == "" {
		profile.GamePath = cfg.ValheimDir
	}
	return profile
}

// saveProfile persists profile mutations (load order, active flag) back
// to its document.
func saveProfile(cfg config.Config, profile *mods.Profile) {
	if err := profile.Save(profilePath(cfg, profile.Name)); err != nil {
		logger.Log.Warnw("Failed to save profile",
			zap.String("profile", profile.Name), zap.Error(err))
	}
}

// orderedEnabledMods resolves the dependency load order for the profile's
// enabled mods, applies it, and returns the mods in that order.
func orderedEnabledMods(profile *mods.Profile) []*mods.Mod {
	enabled := profile.EnabledMods()
	order, err := resolver.ResolveLoadOrder(enabled)
	if err != nil {
		logger.Log.Fatalw("Failed to resolve load order",
			zap.String("profile", profile.Name), zap.Error(err))
	}
	profile.ApplyLoadOrder(order)
	return profile.EnabledMods()
}

// formatSize renders a byte count for terminal output.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
