package cmd

import (
	"errors"
	"fmt"

	"valheim-mod-manager/logger"
	"valheim-mod-manager/resolver"
	"valheim-mod-manager/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resolveTree string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [profile]",
	Short: "Print the dependency load order for a profile",
	Long: `Print the dependency load order for a profile's enabled mods.
Example: valheim-mod-manager resolve main
         valheim-mod-manager resolve main --tree denikson-BepInExPack_Valheim

Without --tree, prints the full resolved load order: every mod appears
after its dependencies. With --tree, renders the dependency tree rooted
at the given mod instead.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _ := bootstrap(cmd)
		profile := loadProfileByName(cfg, args[0])
		enabled := profile.EnabledMods()

		if resolveTree != "" {
			node := resolver.DependencyTree(resolveTree, enabled, resolver.DefaultMaxTreeDepth)
			if node == nil {
				logger.Log.Fatalw("Mod not found in profile", zap.String("mod_id", resolveTree))
			}
			fmt.Print(ui.RenderTree(node))
			return
		}

		order, err := resolver.ResolveLoadOrder(enabled)
		if err != nil {
			var cycleErr *resolver.CircularDependencyError
			if errors.As(err, &cycleErr) {
				fmt.Println(ui.Failure("Circular dependency: " + cycleErr.Error()))
			}
			logger.Log.Fatalw("Failed to resolve load order", zap.Error(err))
		}

		fmt.Printf("%s\n", ui.Heading(fmt.Sprintf("Load order for %s:", profile.Name)))
		for i, id := range order {
			version := ""
			if m := profile.GetMod(id); m != nil {
				version = m.Version
			}
			fmt.Printf("  %2d. %s %s\n", i+1, id, ui.Subtle(version))
		}
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolveTree, "tree", "", "render the dependency tree for this mod id")
	rootCmd.AddCommand(resolveCmd)
}
