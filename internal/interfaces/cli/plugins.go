package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dawg-ai/claphost/internal/infrastructure/discovery"
	"github.com/dawg-ai/claphost/internal/interfaces/di"
)

// newPluginsCommand lists the candidate plugin libraries found in the
// configured plugin directories.
func newPluginsCommand(container *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List plugin libraries found in the configured directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := discovery.Scan(container.Config.PluginDirs)
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No plugin libraries found in %v\n",
					container.Config.PluginDirs)
				return nil
			}

			for _, file := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\t%s\n",
					file.Name, file.Size, file.Path)
			}
			return nil
		},
	}
}
