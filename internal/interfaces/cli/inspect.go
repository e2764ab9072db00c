package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dawg-ai/claphost/internal/interfaces/di"
)

// newInspectCommand opens a library just long enough to print the
// plugin descriptors it publishes. Nothing gets instantiated.
func newInspectCommand(container *di.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <library>",
		Short: "List the plugin descriptors a library exposes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptors, err := container.Host.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d plugin(s)\n", args[0], len(descriptors))
			for i, desc := range descriptors {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", i, desc.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "    name:    %s\n", desc.Name)
				fmt.Fprintf(cmd.OutOrStdout(), "    vendor:  %s\n", desc.Vendor)
				fmt.Fprintf(cmd.OutOrStdout(), "    version: %s\n", desc.Version)
				if desc.Description != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "    about:   %s\n", desc.Description)
				}
			}
			return nil
		},
	}
}
