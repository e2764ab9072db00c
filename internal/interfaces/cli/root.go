// Package cli implements the claphost command surface.
package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dawg-ai/claphost/internal/infrastructure/config"
	"github.com/dawg-ai/claphost/internal/interfaces/di"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// NewRootCommand builds the base command with every subcommand
// attached.
func NewRootCommand(container *di.Container) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "claphost",
		Short: "claphost - native CLAP plugin host bridge",
		Long: `claphost loads native CLAP audio plugins, drives their lifecycle
(initialize, activate, process, deactivate, unload) and forwards
parameter get/set commands, all without linking against the plugins
at build time.

Plugins are addressed by opaque numeric handles; every lifecycle
transition is validated against the plugin state machine before any
native call is made.`,
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyFlagOverrides(cmd, container)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.claphost/config.json)")

	rootCmd.AddCommand(newPluginsCommand(container))
	rootCmd.AddCommand(newInspectCommand(container))
	rootCmd.AddCommand(newRunCommand(container))
	rootCmd.AddCommand(newDashboardCommand(container))

	return rootCmd
}

// applyFlagOverrides reapplies configuration from the persistent
// flags, which are only known after cobra has parsed the command line.
func applyFlagOverrides(cmd *cobra.Command, container *di.Container) error {
	if cmd.Flags().Changed("config") {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to apply configuration overrides: %w", err)
		}
		container.Config = cfg
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		container.Logger.SetLevel(hclog.Debug)
	}
	return nil
}

// goVersion returns the Go version used to build the binary.
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// Execute runs the root command under ctx and exits non-zero on
// error.
func Execute(ctx context.Context, container *di.Container) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
