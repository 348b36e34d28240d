package cmd

import (
	"fmt"

	"valheim-mod-manager/deploy"
	"valheim-mod-manager/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rollbackCmd represents the rollback command
var rollbackCmd = &cobra.Command{
	Use:   "rollback [profile]",
	Short: "Roll a profile's deployment back to its latest checkpoint",
	Long: `Roll a profile's deployment back to its latest checkpoint.
Example: valheim-mod-manager rollback main

The newest on-disk checkpoint for the profile is loaded and its file
tree and tracked state are restored exactly. Checkpoints are
self-describing, so this works after a crash or in a fresh process.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, store := bootstrap(cmd)
		profile := loadProfileByName(cfg, args[0])

		cp, err := deploy.LatestCheckpoint(cfg.BackupsDir, profile.Name)
		if err != nil {
			logger.Log.Fatalw("Failed to scan checkpoints", zap.Error(err))
		}
		if cp == nil {
			logger.Log.Fatalw("No checkpoint found for profile",
				zap.String("profile", profile.Name),
				zap.String("backups_dir", cfg.BackupsDir))
		}

		engine := newEngine(cfg, store, cfg.AutoBackup)
		if err := engine.Rollback(cp); err != nil {
			logger.Log.Fatalw("Rollback failed", zap.Error(err))
		}

		fmt.Printf("Rolled back %s to checkpoint from %s (%d files restored)\n",
			profile.Name, cp.Timestamp.Format("2006-01-02 15:04:05"), len(cp.Files))
	},
}

func init() {
	rootCmd.AddCommand(rollbackCmd)
}
