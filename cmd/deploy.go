package cmd

import (
	"fmt"

	"valheim-mod-manager/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	deployNoBackup bool
	deployPlain    bool
)

// deployCmd represents the deploy command
var deployCmd = &cobra.Command{
	Use:   "deploy [profile]",
	Short: "Deploy a profile's enabled mods into the game directory",
	Long: `Deploy a profile's enabled mods into the game directory.
Example: valheim-mod-manager deploy main

Mods are resolved into dependency load order and synchronized
incrementally: only files whose content changed are copied, files
belonging to disabled mods are removed. Unless --no-backup is given,
a checkpoint is captured first so a failed deployment rolls back.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, store := bootstrap(cmd)
		profile := loadProfileByName(cfg, args[0])
		enabled := orderedEnabledMods(profile)

		autoBackup := cfg.AutoBackup && !deployNoBackup
		engine := newEngine(cfg, store, autoBackup)

		if deployPlain {
			err := engine.DeployProfile(profile, func(current, total int, message string) {
				fmt.Printf("[%d/%d] %s\n", current, total, message)
			})
			if err != nil {
				logger.Log.Fatalw("Deployment failed", zap.Error(err))
			}
		} else {
			model := initialDeployModel(engine, profile, len(enabled))
			final, err := tea.NewProgram(model).Run()
			if err != nil {
				logger.Log.Fatalw("Failed to run deployment UI", zap.Error(err))
			}
			if m, ok := final.(DeployModel); ok && m.err != nil {
				saveProfile(cfg, profile)
				logger.Log.Fatalw("Deployment failed", zap.Error(m.err))
			}
		}

		saveProfile(cfg, profile)
		fmt.Printf("Deployed profile %s (%d mods enabled)\n", profile.Name, len(enabled))
	},
}

func init() {
	deployCmd.Flags().BoolVar(&deployNoBackup, "no-backup", false, "skip the pre-deployment checkpoint")
	deployCmd.Flags().BoolVar(&deployPlain, "plain", false, "log progress instead of the interactive UI")
	rootCmd.AddCommand(deployCmd)
}
