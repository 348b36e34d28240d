package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; every subcommand registers itself in its
// file's init().
var rootCmd = &cobra.Command{
	Use:   "valheim-mod-manager",
	Short: "Profile-based mod manager for Valheim",
	Long: `Manage Valheim mod profiles: resolve dependency load orders,
deploy enabled mods into the game's BepInEx/plugins directory
incrementally, and roll back to the pre-deployment state when
something goes wrong.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", ".", "directory containing the .env config file")
}
