package cmd

import (
	"fmt"

	"valheim-mod-manager/logger"
	"valheim-mod-manager/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [profile]",
	Short: "Show a profile's deployment state and recent operations",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, store := bootstrap(cmd)
		profile := loadProfileByName(cfg, args[0])

		engine := newEngine(cfg, store, cfg.AutoBackup)
		info, err := engine.GetDeploymentInfo(profile)
		if err != nil {
			logger.Log.Fatalw("Failed to query deployment state", zap.Error(err))
		}

		active := ui.Warning("inactive")
		if info.Active {
			active = ui.Success("active")
		}
		fmt.Printf("%s %s\n", ui.Heading("Profile:"), profile.Name)
		fmt.Printf("%s %s\n", ui.Heading("Status:"), active)
		fmt.Printf("%s %s\n", ui.Heading("Game path:"), profile.GamePath)
		fmt.Printf("%s %d enabled / %d total\n", ui.Heading("Mods:"), len(profile.EnabledMods()), len(profile.Mods))
		fmt.Printf("%s %d files, %s\n", ui.Heading("Deployed:"), info.FilesDeployed, formatSize(info.TotalSize))

		logs, err := store.RecentLogs(profile.Name, 5)
		if err != nil {
			logger.Log.Warnw("Failed to query deployment history", zap.Error(err))
			return
		}
		if len(logs) > 0 {
			fmt.Printf("\n%s\n", ui.Heading("Recent operations:"))
			for _, entry := range logs {
				fmt.Printf("  %s %-8s +%d ~%d -%d\n",
					ui.Subtle(entry.CreatedAt.Format("2006-01-02 15:04")),
					entry.Action, entry.Added, entry.Updated, entry.Removed)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
