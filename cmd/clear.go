package cmd

import (
	"fmt"

	"valheim-mod-manager/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// clearCmd represents the clear command
var clearCmd = &cobra.Command{
	Use:   "clear [profile]",
	Short: "Remove every deployed file tracked for a profile",
	Long: `Remove every deployed file tracked for a profile.
Example: valheim-mod-manager clear main

This is a full undeploy: tracked files are deleted from the game
directory, emptied mod folders are pruned, the deployment state is
cleared and the profile is marked inactive. Untracked files are never
touched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, store := bootstrap(cmd)
		profile := loadProfileByName(cfg, args[0])

		engine := newEngine(cfg, store, cfg.AutoBackup)
		if err := engine.ClearDeployment(profile); err != nil {
			logger.Log.Fatalw("Failed to clear deployment", zap.Error(err))
		}
		saveProfile(cfg, profile)

		fmt.Printf("Cleared deployment for profile %s\n", profile.Name)
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
